package model

import (
	"time"
)

// Direction is the closed set of stock movement directions.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// ParseDirection maps an input value onto the closed set
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirectionIn:
		return DirectionIn, true
	case DirectionOut:
		return DirectionOut, true
	default:
		return "", false
	}
}

// StockMovement is an immutable record of a quantity change applied to a
// product. Movements are never edited or deleted.
type StockMovement struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"product_id" gorm:"index;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Direction Direction `json:"direction" gorm:"type:varchar(10);not null"`
	Reason    string    `json:"reason" gorm:"type:varchar(100)"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
