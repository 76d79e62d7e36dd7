package model

import (
	"time"
)

// Log is an append-only audit entry. UserID is nil for system-originated
// events.
type Log struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id,omitempty" gorm:"index"`
	Action    string    `json:"action" gorm:"type:varchar(100);not null"`
	Details   string    `json:"details" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
