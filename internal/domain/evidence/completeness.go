package evidence

import "fieldjobs/internal/domain"

// Completeness summarizes whether a job's evidence allows submission.
type Completeness struct {
	Photos     int                   `json:"photos"`
	Signatures int                   `json:"signatures"`
	CanSubmit  bool                  `json:"can_submit"`
	Missing    []domain.EvidenceType `json:"missing"`
}

// Check requires at least one photo and one signature. Missing lists the
// absent types, photo before signature.
func Check(items []domain.Evidence) Completeness {
	c := Completeness{Missing: []domain.EvidenceType{}}
	for _, e := range items {
		switch e.Type {
		case domain.EvidencePhoto:
			c.Photos++
		case domain.EvidenceSignature:
			c.Signatures++
		}
	}
	if c.Photos == 0 {
		c.Missing = append(c.Missing, domain.EvidencePhoto)
	}
	if c.Signatures == 0 {
		c.Missing = append(c.Missing, domain.EvidenceSignature)
	}
	c.CanSubmit = len(c.Missing) == 0
	return c
}

// Split groups evidence by type, preserving order.
func Split(items []domain.Evidence) (photos, signatures []domain.Evidence) {
	photos, signatures = []domain.Evidence{}, []domain.Evidence{}
	for _, e := range items {
		if e.Type == domain.EvidenceSignature {
			signatures = append(signatures, e)
		} else {
			photos = append(photos, e)
		}
	}
	return photos, signatures
}
