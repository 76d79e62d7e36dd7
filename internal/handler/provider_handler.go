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

type providerRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

// ListProviders returns all providers, optionally filtered by a
// case-insensitive name search
func ListProviders(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.FromContext(c).Model(&model.Provider{})
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var providers []model.Provider
	if err := query.Order("name").Find(&providers).Error; err != nil {
		log.Error("Failed to fetch providers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch providers"})
	}

	return c.JSON(http.StatusOK, providers)
}

// GetProvider returns a single provider by ID
func GetProvider(c echo.Context) error {
	var provider model.Provider
	if err := database.FromContext(c).First(&provider, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "provider not found"})
	}
	return c.JSON(http.StatusOK, provider)
}

// CreateProvider registers a supplier, admin only
func CreateProvider(c echo.Context) error {
	log := logger.FromContext(c)

	var req providerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	provider := model.Provider{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.FromContext(c).Create(&provider).Error; err != nil {
		log.Error("Failed to create provider", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create provider"})
	}

	audit.FromRequest(c, "Create Provider", "Created provider "+provider.Name)
	log.Info("Provider created", zap.Uint("id", provider.ID))
	return c.JSON(http.StatusCreated, provider)
}

// UpdateProvider edits supplier details, admin only
func UpdateProvider(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.FromContext(c)

	var provider model.Provider
	if err := db.First(&provider, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "provider not found"})
	}

	var req providerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name != "" {
		provider.Name = req.Name
	}
	if req.ContactPerson != "" {
		provider.ContactPerson = req.ContactPerson
	}
	if req.Email != "" {
		provider.Email = req.Email
	}
	if req.Phone != "" {
		provider.Phone = req.Phone
	}
	if req.Address != "" {
		provider.Address = req.Address
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Save(&provider).Error; err != nil {
		log.Error("Failed to update provider", zap.Uint("id", provider.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update provider"})
	}

	audit.FromRequest(c, "Edit Provider", "Updated provider "+provider.Name)
	return c.JSON(http.StatusOK, provider)
}

// DeleteProvider removes a supplier, admin only. Products keep existing with
// their provider reference cleared.
func DeleteProvider(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.FromContext(c)

	var provider model.Provider
	if err := db.First(&provider, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "provider not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := db.Delete(&provider).Error; err != nil {
		log.Error("Failed to delete provider", zap.Uint("id", provider.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete provider"})
	}

	audit.FromRequest(c, "Delete Provider", "Deleted provider "+provider.Name)
	return c.JSON(http.StatusOK, echo.Map{"message": "provider deleted"})
}
