package export

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"fieldjobs/internal/domain"
)

// FolderName is the per-job directory inside the archive.
func FolderName(j domain.Job) string {
	name := slug.Make(j.Title)
	if name == "" {
		name = "trabajo"
	}
	id := j.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return name + "-" + id
}

// FileName names the n-th evidence file of a job, counting from 1.
// Signatures are always png; photos keep the URL's extension or fall
// back to jpg.
func FileName(n int, e domain.Evidence) string {
	ext := "png"
	if e.Type != domain.EvidenceSignature {
		ext = extFromURL(e.URL)
	}
	return fmt.Sprintf("evidencia_%d.%s", n, ext)
}

func ErrorFileName(n int) string {
	return fmt.Sprintf("error_%d.txt", n)
}

// ArchiveName is the download name for an export started at t.
func ArchiveName(t time.Time) string {
	return "evidencias_" + t.Format("20060102_150405") + ".zip"
}

func extFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "jpg"
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if ext == "" || len(ext) > 5 || strings.ContainsAny(ext, "/\\") {
		return "jpg"
	}
	return ext
}
