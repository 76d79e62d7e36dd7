package inventory

import (
	"errors"
	"path/filepath"
	"testing"

	"inventory-service/internal/model"
	"inventory-service/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, quantity int) model.Product {
	t.Helper()

	product := model.Product{
		Name:     "Widget",
		SKU:      "WID-001",
		Quantity: quantity,
		MinStock: 5,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}

func TestApplyInIncreasesQuantity(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, 10)

	movement, err := Apply(db, ApplyInput{
		ProductID: product.ID,
		Direction: model.DirectionIn,
		Quantity:  5,
		Reason:    "restock",
		UserID:    1,
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if movement.ID == 0 {
		t.Error("expected movement to be persisted with an ID")
	}

	var got model.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if got.Quantity != 15 {
		t.Errorf("expected quantity 15, got %d", got.Quantity)
	}

	var movementCount int64
	db.Model(&model.StockMovement{}).Count(&movementCount)
	if movementCount != 1 {
		t.Errorf("expected exactly 1 movement, got %d", movementCount)
	}

	var logCount int64
	db.Model(&model.Log{}).Where("action = ?", "Stock Movement").Count(&logCount)
	if logCount != 1 {
		t.Errorf("expected exactly 1 audit entry, got %d", logCount)
	}
}

func TestApplyOutDecreasesQuantity(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, 10)

	if _, err := Apply(db, ApplyInput{
		ProductID: product.ID,
		Direction: model.DirectionOut,
		Quantity:  10,
		Reason:    "sale",
		UserID:    1,
	}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	var got model.Product
	db.First(&got, product.ID)
	if got.Quantity != 0 {
		t.Errorf("expected quantity 0, got %d", got.Quantity)
	}
}

func TestApplyOutInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, 10)

	// Drain the stock, then try to take one more.
	if _, err := Apply(db, ApplyInput{
		ProductID: product.ID,
		Direction: model.DirectionOut,
		Quantity:  10,
		UserID:    1,
	}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	_, err := Apply(db, ApplyInput{
		ProductID: product.ID,
		Direction: model.DirectionOut,
		Quantity:  1,
		UserID:    1,
	})
	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.Current != 0 {
		t.Errorf("expected current quantity 0, got %d", insufficient.Current)
	}

	var got model.Product
	db.First(&got, product.ID)
	if got.Quantity != 0 {
		t.Errorf("quantity changed on rejected movement: got %d", got.Quantity)
	}

	var movementCount int64
	db.Model(&model.StockMovement{}).Count(&movementCount)
	if movementCount != 1 {
		t.Errorf("rejected movement was persisted: count %d", movementCount)
	}
}

// The audit write is best-effort: when it has nowhere to go, the committed
// movement and quantity change stand.
func TestApplySucceedsWhenAuditWriteFails(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, 10)

	if err := db.Migrator().DropTable(&model.Log{}); err != nil {
		t.Fatalf("failed to drop logs table: %v", err)
	}

	movement, err := Apply(db, ApplyInput{
		ProductID: product.ID,
		Direction: model.DirectionIn,
		Quantity:  5,
		Reason:    "restock",
		UserID:    1,
	})
	if err != nil {
		t.Fatalf("Apply failed when only the audit write could not land: %v", err)
	}
	if movement.ID == 0 {
		t.Error("expected movement to be persisted")
	}

	var got model.Product
	db.First(&got, product.ID)
	if got.Quantity != 15 {
		t.Errorf("expected quantity 15, got %d", got.Quantity)
	}
}

func TestApplyRejectsInvalidInput(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, 10)

	if _, err := Apply(db, ApplyInput{
		ProductID: product.ID,
		Direction: model.DirectionIn,
		Quantity:  0,
		UserID:    1,
	}); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity for zero quantity, got %v", err)
	}

	if _, err := Apply(db, ApplyInput{
		ProductID: product.ID,
		Direction: model.Direction("SIDEWAYS"),
		Quantity:  1,
		UserID:    1,
	}); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}

	if _, err := Apply(db, ApplyInput{
		ProductID: 9999,
		Direction: model.DirectionIn,
		Quantity:  1,
		UserID:    1,
	}); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}

	var got model.Product
	db.First(&got, product.ID)
	if got.Quantity != 10 {
		t.Errorf("quantity changed on rejected input: got %d", got.Quantity)
	}
}
