package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

func ParseNotificationType(s string) (NotificationType, error) {
	switch NotificationType(s) {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return NotificationType(s), nil
	}
	return "", fmt.Errorf("unknown notification type %q", s)
}

func (t *NotificationType) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	parsed, err := ParseNotificationType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t NotificationType) Value() (driver.Value, error) {
	return string(t), nil
}

type Notification struct {
	ID        string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string           `gorm:"type:varchar(36);not null;index:idx_notifications_user_read" json:"user_id"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"not null" json:"message"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Metadata  map[string]any   `gorm:"serializer:json;type:text" json:"metadata,omitempty"`
	IsRead    bool             `gorm:"not null;default:false;index:idx_notifications_user_read" json:"is_read"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
