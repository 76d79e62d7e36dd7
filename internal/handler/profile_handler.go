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
	"golang.org/x/crypto/bcrypt"
)

// GetProfile returns the authenticated user's own record
func GetProfile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := database.FromContext(c).First(&user, userID).Error; err != nil {
		log.Error("Profile user not found", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateProfile lets a user change their own username, theme preference and
// profile image reference
func UpdateProfile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Username     string `json:"username"`
		ThemePref    string `json:"theme_preference"`
		ProfileImage string `json:"profile_image"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid profile update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	db := database.FromContext(c)
	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		log.Error("Profile user not found", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if req.Username != "" && req.Username != user.Username {
		var count int64
		db.Model(&model.User{}).Where("username = ? AND id != ?", req.Username, userID).Count(&count)
		if count > 0 {
			log.Warn("Username already taken", zap.String("username", req.Username))
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
		}
		user.Username = req.Username
	}
	if req.ThemePref != "" {
		user.ThemePref = req.ThemePref
	}
	if req.ProfileImage != "" {
		user.ProfileImage = req.ProfileImage
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Save(&user).Error; err != nil {
		log.Error("Failed to update profile", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}

	audit.FromRequest(c, "Edit Profile", "User updated their profile")
	log.Info("Profile updated", zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, user)
}

// ChangePassword verifies the current password before setting a new one
func ChangePassword(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid password change request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current_password and new_password are required"})
	}

	db := database.FromContext(c)
	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		log.Error("Password change user not found", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		log.Warn("Incorrect current password", zap.Uint("user_id", userID))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect current password"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password change failed"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		log.Error("Failed to update password", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password change failed"})
	}

	audit.FromRequest(c, "Change Password", "User changed their password")
	log.Info("Password changed", zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
