package inventory

import (
	"errors"
	"fmt"

	"inventory-service/internal/audit"
	"inventory-service/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrProductNotFound is returned when the movement names an unknown product
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidQuantity is returned for zero or negative quantities
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrInvalidDirection is returned for directions outside IN/OUT
	ErrInvalidDirection = errors.New("direction must be IN or OUT")
)

// InsufficientStockError reports an OUT movement larger than the current
// stock. No mutation happens when it is returned.
type InsufficientStockError struct {
	ProductID uint
	Current   int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: have %d, requested %d",
		e.ProductID, e.Current, e.Requested)
}

// ApplyInput describes one stock movement to apply
type ApplyInput struct {
	ProductID uint
	Direction model.Direction
	Quantity  int
	Reason    string
	UserID    uint
}

// Apply adjusts a product's quantity and records the movement as one
// transaction: either both the quantity change and the movement row commit,
// or neither does. The quantity change is a single guarded UPDATE whose WHERE
// clause re-checks sufficiency, so two concurrent OUT movements cannot both
// pass the check and both deduct. The audit entry is appended after commit,
// best-effort.
func Apply(db *gorm.DB, in ApplyInput) (*model.StockMovement, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if in.Direction != model.DirectionIn && in.Direction != model.DirectionOut {
		return nil, ErrInvalidDirection
	}

	var (
		movement    model.StockMovement
		productName string
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.First(&product, in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		productName = product.Name

		var res *gorm.DB
		switch in.Direction {
		case model.DirectionIn:
			res = tx.Model(&model.Product{}).
				Where("id = ?", in.ProductID).
				Update("quantity", gorm.Expr("quantity + ?", in.Quantity))
		case model.DirectionOut:
			res = tx.Model(&model.Product{}).
				Where("id = ? AND quantity >= ?", in.ProductID, in.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", in.Quantity))
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// The guard rejected the deduction: report the stock the
			// caller raced against.
			return &InsufficientStockError{
				ProductID: in.ProductID,
				Current:   product.Quantity,
				Requested: in.Quantity,
			}
		}

		movement = model.StockMovement{
			ProductID: in.ProductID,
			UserID:    in.UserID,
			Direction: in.Direction,
			Reason:    in.Reason,
			Quantity:  in.Quantity,
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return nil, err
	}

	audit.Record(db, &in.UserID, "Stock Movement",
		fmt.Sprintf("%s %d of %s (Reason: %s)", in.Direction, in.Quantity, productName, in.Reason))

	return &movement, nil
}
