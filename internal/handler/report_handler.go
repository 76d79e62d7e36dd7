package handler

import (
	"net/http"
	"time"

	"inventory-service/internal/model"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LowStockReport lists products at or below their minimum stock level
func LowStockReport(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var products []model.Product
	if err := database.FromContext(c).Preload("Category").Preload("Provider").
		Where("quantity <= min_stock").Order("quantity").
		Find(&products).Error; err != nil {
		log.Error("Failed to build low stock report", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build report"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":    len(products),
		"products": products,
	})
}

// MovementReport returns movements within an optional date range, newest first
func MovementReport(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.FromContext(c).Model(&model.StockMovement{}).
		Preload("Product").Preload("User")
	if from := c.QueryParam("date_from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date_from must be YYYY-MM-DD"})
		}
		query = query.Where("timestamp >= ?", t)
	}
	if to := c.QueryParam("date_to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date_to must be YYYY-MM-DD"})
		}
		query = query.Where("timestamp < ?", t.AddDate(0, 0, 1))
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var movements []model.StockMovement
	if err := query.Order("timestamp DESC, id DESC").Find(&movements).Error; err != nil {
		log.Error("Failed to build movement report", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build report"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":     len(movements),
		"movements": movements,
	})
}
