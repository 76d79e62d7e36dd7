package handler

import (
	"errors"
	"net/http"
	"time"

	"inventory-service/internal/inventory"
	"inventory-service/internal/model"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListMovements returns the stock movement history, newest first
func ListMovements(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.FromContext(c).Model(&model.StockMovement{}).
		Preload("Product").Preload("User")
	if productID := c.QueryParam("product_id"); productID != "" {
		query = query.Where("product_id = ?", productID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var movements []model.StockMovement
	if err := query.Order("timestamp DESC, id DESC").Find(&movements).Error; err != nil {
		log.Error("Failed to fetch movements", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch movements"})
	}

	return c.JSON(http.StatusOK, movements)
}

// CreateMovement records a stock IN or OUT movement and adjusts the product's
// quantity atomically
func CreateMovement(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		ProductID uint   `json:"product_id"`
		Direction string `json:"direction"`
		Quantity  int    `json:"quantity"`
		Reason    string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	direction, _ := model.ParseDirection(req.Direction)

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	movement, err := inventory.Apply(database.FromContext(c), inventory.ApplyInput{
		ProductID: req.ProductID,
		Direction: direction,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		UserID:    userID,
	})
	if err != nil {
		var insufficient *inventory.InsufficientStockError
		switch {
		case errors.Is(err, inventory.ErrInvalidQuantity):
			prometheus.RecordMovementRejected("invalid_quantity")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be a positive integer"})
		case errors.Is(err, inventory.ErrInvalidDirection):
			prometheus.RecordMovementRejected("invalid_direction")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "direction must be IN or OUT"})
		case errors.Is(err, inventory.ErrProductNotFound):
			prometheus.RecordMovementRejected("product_not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		case errors.As(err, &insufficient):
			prometheus.RecordMovementRejected("insufficient_stock")
			log.Warn("Insufficient stock",
				zap.Uint("product_id", insufficient.ProductID),
				zap.Int("current", insufficient.Current),
				zap.Int("requested", insufficient.Requested))
			return c.JSON(http.StatusConflict, echo.Map{
				"error":            "insufficient stock",
				"current_quantity": insufficient.Current,
			})
		default:
			log.Error("Failed to apply movement", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record movement"})
		}
	}

	prometheus.RecordMovement(string(movement.Direction))
	log.Info("Movement recorded",
		zap.Uint("movement_id", movement.ID),
		zap.Uint("product_id", movement.ProductID),
		zap.String("direction", string(movement.Direction)),
		zap.Int("quantity", movement.Quantity))
	return c.JSON(http.StatusCreated, movement)
}
