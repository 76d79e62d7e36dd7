package handler

import (
	"net/http"
	"time"

	"inventory-service/internal/audit"
	"inventory-service/internal/model"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListCategories returns all categories
func ListCategories(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var categories []model.Category
	if err := database.FromContext(c).Order("name").Find(&categories).Error; err != nil {
		log.Error("Failed to fetch categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch categories"})
	}

	return c.JSON(http.StatusOK, categories)
}

// CreateCategory adds a category, admin only
func CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	db := database.FromContext(c)
	var count int64
	db.Model(&model.Category{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
	}

	category := model.Category{Name: req.Name}
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := db.Create(&category).Error; err != nil {
		log.Error("Failed to create category", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create category"})
	}

	audit.FromRequest(c, "Create Category", "Created category "+category.Name)
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory renames a category, admin only
func UpdateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.FromContext(c)

	var category model.Category
	if err := db.First(&category, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	var count int64
	db.Model(&model.Category{}).Where("name = ? AND id != ?", req.Name, category.ID).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
	}

	category.Name = req.Name
	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Save(&category).Error; err != nil {
		log.Error("Failed to update category", zap.Uint("id", category.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update category"})
	}

	audit.FromRequest(c, "Edit Category", "Renamed category to "+category.Name)
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category, admin only. Products keep existing with
// their category reference cleared.
func DeleteCategory(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.FromContext(c)

	var category model.Category
	if err := db.First(&category, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := db.Delete(&category).Error; err != nil {
		log.Error("Failed to delete category", zap.Uint("id", category.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete category"})
	}

	audit.FromRequest(c, "Delete Category", "Deleted category "+category.Name)
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}
