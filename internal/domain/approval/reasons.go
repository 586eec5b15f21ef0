package approval

import "strings"

// CommonReasons are offered as one-click rejection reasons.
var CommonReasons = []string{
	"Falta foto del acta firmada",
	"Falta foto del montaje",
	"La foto del acta no es legible",
	"Fotos borrosas o insuficientes",
	"Falta firma del cliente",
}

// ComposeReason joins the selected reasons and the trimmed comment with
// ". ", skipping empty parts. The result is empty when nothing was given.
func ComposeReason(selected []string, comment string) string {
	parts := make([]string, 0, len(selected)+1)
	for _, r := range selected {
		if r = strings.TrimSpace(r); r != "" {
			parts = append(parts, r)
		}
	}
	if c := strings.TrimSpace(comment); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, ". ")
}
