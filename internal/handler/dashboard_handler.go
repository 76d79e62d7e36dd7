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

// Dashboard returns summary counters for the store: product and provider
// totals, today's movement count, low-stock count and the most recent
// movements
func Dashboard(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var productCount, providerCount, lowStockCount, movementsToday int64
	db.Model(&model.Product{}).Count(&productCount)
	db.Model(&model.Provider{}).Count(&providerCount)
	db.Model(&model.Product{}).Where("quantity <= min_stock").Count(&lowStockCount)

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	db.Model(&model.StockMovement{}).Where("timestamp >= ?", startOfDay).Count(&movementsToday)

	var recent []model.StockMovement
	if err := db.Preload("Product").Preload("User").
		Order("timestamp DESC, id DESC").Limit(5).
		Find(&recent).Error; err != nil {
		log.Error("Failed to fetch recent movements", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_products":   productCount,
		"total_providers":  providerCount,
		"movements_today":  movementsToday,
		"low_stock_count":  lowStockCount,
		"recent_movements": recent,
	})
}
