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

// ListUsers returns all users in the store, admin only
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	if err := database.FromContext(c).Order("username").Find(&users).Error; err != nil {
		log.Error("Failed to fetch users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch users"})
	}

	return c.JSON(http.StatusOK, users)
}

// CreateUser registers a new user account, admin only
func CreateUser(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	role, ok := model.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be admin or employee"})
	}

	db := database.FromContext(c)
	var count int64
	db.Model(&model.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		log.Warn("Username already exists", zap.String("username", req.Username))
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	user := model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := db.Create(&user).Error; err != nil {
		log.Error("Failed to create user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	audit.FromRequest(c, "Create User", "Created user "+user.Username)
	log.Info("User created", zap.Uint("id", user.ID), zap.String("username", user.Username))
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser edits a user's role or resets their password, admin only
func UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.FromContext(c)

	var user model.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Username != "" && req.Username != user.Username {
		var count int64
		db.Model(&model.User{}).Where("username = ? AND id != ?", req.Username, user.ID).Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		user.Username = req.Username
	}
	if req.Role != "" {
		role, ok := model.ParseRole(req.Role)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be admin or employee"})
		}
		user.Role = role
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
		}
		user.PasswordHash = string(hash)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Save(&user).Error; err != nil {
		log.Error("Failed to update user", zap.Uint("id", user.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	audit.FromRequest(c, "Edit User", "Updated user "+user.Username)
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user account, admin only. Admins cannot delete
// themselves.
func DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.FromContext(c)

	var user model.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if callerID, ok := c.Get("user_id").(uint); ok && callerID == user.ID {
		log.Warn("Self-deletion attempt", zap.Uint("user_id", user.ID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete your own account"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := db.Delete(&user).Error; err != nil {
		log.Error("Failed to delete user", zap.Uint("id", user.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}

	audit.FromRequest(c, "Delete User", "Deleted user "+user.Username)
	log.Info("User deleted", zap.Uint("id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
