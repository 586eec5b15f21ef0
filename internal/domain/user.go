package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleInstaller UserRole = "installer"
)

func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(s) {
	case RoleAdmin, RoleInstaller:
		return UserRole(s), nil
	}
	return "", fmt.Errorf("unknown user role %q", s)
}

func (r *UserRole) Scan(value any) error {
	s, err := scanString(value)
	if err != nil {
		return err
	}
	parsed, err := ParseUserRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r UserRole) Value() (driver.Value, error) {
	return string(r), nil
}

type User struct {
	ID                  string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash        string     `gorm:"not null" json:"-"`
	Role                UserRole   `gorm:"type:varchar(20);not null;index" json:"role"`
	FullName            string     `json:"full_name"`
	Phone               string     `json:"phone,omitempty"`
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// scanString accepts the textual column shapes both drivers produce.
func scanString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("unexpected NULL")
	default:
		return "", fmt.Errorf("unsupported column type %T", value)
	}
}
