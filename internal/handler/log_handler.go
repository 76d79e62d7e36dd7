package handler

import (
	"net/http"
	"strconv"
	"time"

	"inventory-service/internal/model"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const defaultLogsPerPage = 20

// ListLogs returns the audit trail, newest first, with optional filters and
// pagination. Admin only.
func ListLogs(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.FromContext(c)

	query := db.Model(&model.Log{}).Preload("User")
	if action := c.QueryParam("action"); action != "" {
		query = query.Where("action LIKE ?", "%"+action+"%")
	}
	if userID := c.QueryParam("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
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
		// inclusive end of day
		query = query.Where("timestamp < ?", t.AddDate(0, 0, 1))
	}

	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	perPage := defaultLogsPerPage
	if pp, err := strconv.Atoi(c.QueryParam("per_page")); err == nil && pp > 0 {
		perPage = pp
	}

	var total int64
	query.Count(&total)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var logs []model.Log
	if err := query.Order("timestamp DESC, id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&logs).Error; err != nil {
		log.Error("Failed to fetch logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch logs"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"logs":     logs,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}
