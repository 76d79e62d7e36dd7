package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"inventory-service/internal/audit"
	"inventory-service/internal/model"
	"inventory-service/internal/tenant"
	"inventory-service/pkg/database"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Login authenticates a user against the tenant store selected by the access
// code. An unknown access code and a wrong password produce responses of the
// same status and shape so the two cases cannot be told apart from outside.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordLogin()

	var req struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		AccessCode string `json:"access_code"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Username == "" || req.Password == "" || req.AccessCode == "" {
		log.Error("Incomplete login request", zap.String("username", req.Username))
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, password and access_code are required"})
	}

	// Select the tenant via the directory. This is the only moment the
	// directory is consulted; afterwards the token carries the location.
	location, err := tenant.GetDirectory().Resolve(req.AccessCode)
	if err != nil {
		log.Warn("Login with unknown access code", zap.String("access_code", req.AccessCode))
		prometheus.RecordAuthError("invalid_access_code")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid access code"})
	}

	// Authentication happens against that tenant's store, never a fallback.
	db, err := database.Open(location)
	if err != nil {
		log.Error("Tenant store unreachable during login",
			zap.String("access_code", req.AccessCode),
			zap.String("location", location),
			zap.Error(err))
		prometheus.RecordAuthError("store_unavailable")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Login failed: user not found", zap.String("username", req.Username))
			prometheus.RecordAuthError("user_not_found")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Error("Tenant store query failed during login",
			zap.String("location", location), zap.Error(err))
		prometheus.RecordAuthError("store_unavailable")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("Login failed: invalid password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Username, string(user.Role), req.AccessCode, location)
	if err != nil {
		log.Error("Failed to generate session token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()
	audit.Record(db, &user.ID, "Login", fmt.Sprintf("User %s logged in.", user.Username))

	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("access_code", req.AccessCode),
		zap.String("role", string(user.Role)))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// Logout records the end of a session. Sessions are token-based, so the
// transition back to unbound is the client discarding its token.
func Logout(c echo.Context) error {
	log := logger.FromContext(c)

	audit.FromRequest(c, "Logout", "User logged out")
	prometheus.DecreaseActiveTokens()

	username, _ := c.Get("username").(string)
	log.Info("User logged out", zap.String("username", username))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
