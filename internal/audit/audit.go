package audit

import (
	"inventory-service/internal/model"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Record appends an audit entry to the given record store. It is strictly
// best-effort: a failed write is traced through the fallback logger and the
// audit failure counter, and the triggering operation is never aborted or
// rolled back because of it. userID is nil for system-originated events.
func Record(db *gorm.DB, userID *uint, action, details string) {
	if db == nil {
		fallback(userID, action, details, nil)
		return
	}

	entry := model.Log{
		UserID:  userID,
		Action:  action,
		Details: details,
	}
	if err := db.Create(&entry).Error; err != nil {
		fallback(userID, action, details, err)
	}
}

// FromRequest appends an audit entry to the store bound to the current
// request, attributing it to the authenticated user.
func FromRequest(c echo.Context, action, details string) {
	var userID *uint
	if uid, ok := c.Get("user_id").(uint); ok && uid != 0 {
		userID = &uid
	}
	Record(database.FromContext(c), userID, action, details)
}

func fallback(userID *uint, action, details string, err error) {
	prometheus.RecordAuditFallback()
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("details", details),
	}
	if userID != nil {
		fields = append(fields, zap.Uint("user_id", *userID))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.GetLogger().Error("Failed to write audit log entry", fields...)
}
