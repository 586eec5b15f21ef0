package domain

import (
	"time"

	"gorm.io/gorm"
)

// PushSubscription is the single browser push endpoint registered per user.
type PushSubscription struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID       string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Endpoint     string    `gorm:"not null" json:"endpoint"`
	Subscription string    `gorm:"type:text;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (PushSubscription) TableName() string { return "push_subscriptions" }

func (p *PushSubscription) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
