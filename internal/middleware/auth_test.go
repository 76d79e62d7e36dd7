package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inventory-service/internal/model"

	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

func newContext(headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	c, rec := newContext(nil)
	if err := AuthMiddleware(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	c, rec := newContext(map[string]string{"Authorization": "Token abc"})
	if err := AuthMiddleware(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for malformed header, got %d", rec.Code)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	c, rec := newContext(nil)
	c.Set("role", model.RoleAdmin)
	if err := RequireAdmin(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestRequireAdminRejectsEmployee(t *testing.T) {
	c, rec := newContext(nil)
	c.Set("role", model.RoleEmployee)
	if err := RequireAdmin(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for employee, got %d", rec.Code)
	}
}

// A context without a role is an unauthenticated request, not a forbidden
// one: 401, distinct from the 403 an employee gets.
func TestRequireAdminRejectsMissingRole(t *testing.T) {
	c, rec := newContext(nil)
	if err := RequireAdmin(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without role, got %d", rec.Code)
	}
}

func TestTenantAdminMiddleware(t *testing.T) {
	mw := TenantAdminMiddleware("s3cret")

	c, rec := newContext(map[string]string{"X-Tenant-Admin-Secret": "s3cret"})
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with correct secret, got %d", rec.Code)
	}

	c, rec = newContext(map[string]string{"X-Tenant-Admin-Secret": "wrong"})
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong secret, got %d", rec.Code)
	}

	c, rec = newContext(nil)
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with missing secret, got %d", rec.Code)
	}
}

// An unset admin secret disables tenant administration entirely instead of
// leaving it open.
func TestTenantAdminMiddlewareEmptySecret(t *testing.T) {
	mw := TenantAdminMiddleware("")

	c, rec := newContext(map[string]string{"X-Tenant-Admin-Secret": ""})
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 when no secret configured, got %d", rec.Code)
	}
}
