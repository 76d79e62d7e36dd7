package model

import (
	"time"
)

// Category groups products. Deleting a category never deletes its products;
// their reference is nulled instead.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
}

// Product represents the product master data of one tenant store.
//
// Quantity is only ever mutated through the stock movement engine so that the
// movement history stays the source of truth.
type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:text"`
	SKU         string    `json:"sku" gorm:"type:varchar(50);uniqueIndex;not null"`
	Quantity    int       `json:"quantity" gorm:"default:0"`
	MinStock    int       `json:"min_stock" gorm:"default:5"`
	BuyPrice    float64   `json:"buy_price" gorm:"default:0"`
	SellPrice   float64   `json:"sell_price" gorm:"default:0"`
	UpdatedAt   time.Time `json:"updated_at"`

	CategoryID *uint     `json:"category_id,omitempty"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	ProviderID *uint     `json:"provider_id,omitempty"`
	Provider   *Provider `json:"provider,omitempty" gorm:"foreignKey:ProviderID;constraint:OnDelete:SET NULL"`
}

// LowStock reports whether the product is at or below its minimum threshold
func (p *Product) LowStock() bool {
	return p.Quantity <= p.MinStock
}
