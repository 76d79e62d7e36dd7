package handler

import (
	"errors"
	"net/http"

	"inventory-service/internal/tenant"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListTenants returns every registered access code and its store location
func ListTenants(c echo.Context) error {
	tenants := tenant.GetDirectory().List()
	prometheus.UpdateActiveTenants(len(tenants))
	return c.JSON(http.StatusOK, echo.Map{
		"count":   len(tenants),
		"tenants": tenants,
	})
}

// CreateTenant registers a new tenant: generates an access code, provisions
// its store and seeds the default admin account
func CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)

	code, location, err := tenant.GetDirectory().Create()
	if err != nil {
		log.Error("Failed to create tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create tenant"})
	}

	prometheus.RecordTenantOperation("create")
	prometheus.UpdateActiveTenants(len(tenant.GetDirectory().List()))
	log.Info("Tenant created", zap.String("access_code", code), zap.String("location", location))
	return c.JSON(http.StatusCreated, echo.Map{
		"access_code": code,
		"location":    location,
	})
}

// DeleteTenant removes a tenant's directory entry and its store
func DeleteTenant(c echo.Context) error {
	log := logger.FromContext(c)
	code := c.Param("code")

	if err := tenant.GetDirectory().Delete(code); err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to delete tenant", zap.String("access_code", code), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete tenant"})
	}

	prometheus.RecordTenantOperation("delete")
	prometheus.UpdateActiveTenants(len(tenant.GetDirectory().List()))
	log.Info("Tenant deleted", zap.String("access_code", code))
	return c.JSON(http.StatusOK, echo.Map{"message": "tenant deleted"})
}

// ResetTenant wipes a tenant's store and re-provisions it with the default
// admin account. The access code stays the same.
func ResetTenant(c echo.Context) error {
	log := logger.FromContext(c)
	code := c.Param("code")

	if err := tenant.GetDirectory().Reset(code); err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to reset tenant", zap.String("access_code", code), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reset tenant"})
	}

	prometheus.RecordTenantOperation("reset")
	log.Info("Tenant reset", zap.String("access_code", code))
	return c.JSON(http.StatusOK, echo.Map{"message": "tenant reset"})
}
