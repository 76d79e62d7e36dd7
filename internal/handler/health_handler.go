package handler

import (
	"net/http"
	"time"

	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
)

var startTime = time.Now()

// HealthCheck reports service liveness
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "ok",
		"service": "inventory-service",
		"uptime":  time.Since(startTime).String(),
	})
}

// MetricsHandler serves Prometheus metrics
func MetricsHandler(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
