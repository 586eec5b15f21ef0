package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type EvidenceType string

const (
	EvidencePhoto     EvidenceType = "photo"
	EvidenceSignature EvidenceType = "signature"
)

func ParseEvidenceType(s string) (EvidenceType, error) {
	switch EvidenceType(s) {
	case EvidencePhoto, EvidenceSignature:
		return EvidenceType(s), nil
	}
	return "", fmt.Errorf("unknown evidence type %q", s)
}

func (t *EvidenceType) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	parsed, err := ParseEvidenceType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t EvidenceType) Value() (driver.Value, error) {
	return string(t), nil
}

type Evidence struct {
	ID         string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	JobID      string       `gorm:"type:varchar(36);not null;index" json:"job_id"`
	URL        string       `gorm:"not null" json:"url"`
	Type       EvidenceType `gorm:"type:varchar(20);not null" json:"type"`
	UploadedAt time.Time    `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (Evidence) TableName() string { return "evidence" }

func (e *Evidence) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
