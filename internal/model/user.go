package model

import (
	"time"
)

// Role is the closed set of user roles within a tenant store.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// ParseRole maps a stored role value onto the closed set. Unknown values are
// rejected rather than treated as employee.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleEmployee:
		return RoleEmployee, true
	default:
		return "", false
	}
}

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// User represents an account inside one tenant's record store. Users are never
// shared across stores.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(80);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'employee'"`
	ProfileImage string    `json:"profile_image,omitempty" gorm:"type:varchar(200)"`
	ThemePref    string    `json:"theme_preference" gorm:"type:varchar(20);default:'default'"`
	CreatedAt    time.Time `json:"created_at"`
}
