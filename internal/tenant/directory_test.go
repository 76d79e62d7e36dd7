package tenant

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"inventory-service/internal/model"
	"inventory-service/pkg/config"
	"inventory-service/pkg/database"

	"golang.org/x/crypto/bcrypt"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Tenant: config.TenantConfig{
			DirectoryFile:        filepath.Join(dir, "tenants.json"),
			StoreDir:             filepath.Join(dir, "tenants"),
			DefaultAdminUser:     "admin",
			DefaultAdminPassword: "password",
		},
	}
	return NewDirectory(cfg)
}

func TestNewAccessCodeFormat(t *testing.T) {
	format := regexp.MustCompile(`^[0-9A-F]{8}$`)
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		code := NewAccessCode()
		if !format.MatchString(code) {
			t.Fatalf("access code %q is not 8 uppercase hex characters", code)
		}
		if seen[code] {
			t.Fatalf("duplicate access code %q after %d generations", code, i)
		}
		seen[code] = true
	}
}

func TestCreateSeedsDefaultAdmin(t *testing.T) {
	d := newTestDirectory(t)

	code, location, err := d.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := d.Resolve(code)
	if err != nil {
		t.Fatalf("Resolve failed after Create: %v", err)
	}
	if got != location {
		t.Errorf("Resolve returned %q, want %q", got, location)
	}

	db, err := database.Open(location)
	if err != nil {
		t.Fatalf("failed to open provisioned store: %v", err)
	}

	var users []model.User
	if err := db.Find(&users).Error; err != nil {
		t.Fatalf("failed to list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected exactly 1 seeded user, got %d", len(users))
	}
	admin := users[0]
	if admin.Username != "admin" {
		t.Errorf("expected seeded username admin, got %q", admin.Username)
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("expected seeded role admin, got %q", admin.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("password")); err != nil {
		t.Error("seeded admin password does not match the configured default")
	}
}

func TestResolveIsCaseSensitive(t *testing.T) {
	d := newTestDirectory(t)

	code, _, err := d.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := d.Resolve(strings.ToLower(code)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for lowercased code, got %v", err)
	}
	if _, err := d.Resolve("NOPE1234"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown code, got %v", err)
	}
}

func TestDeleteRemovesMappingAndStore(t *testing.T) {
	d := newTestDirectory(t)

	code, location, err := d.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := d.Delete(code); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := d.Resolve(code); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after Delete, got %v", err)
	}
	if _, err := os.Stat(location); !os.IsNotExist(err) {
		t.Errorf("expected store file to be removed, stat returned %v", err)
	}

	if err := d.Delete(code); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestDeleteSucceedsWhenStoreFileGone(t *testing.T) {
	d := newTestDirectory(t)

	code, location, err := d.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	database.Evict(location)
	if err := os.Remove(location); err != nil {
		t.Fatalf("failed to remove store file: %v", err)
	}

	if err := d.Delete(code); err != nil {
		t.Fatalf("Delete failed with missing store file: %v", err)
	}
	if _, err := d.Resolve(code); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after Delete, got %v", err)
	}
}

func TestResetReprovisionsStore(t *testing.T) {
	d := newTestDirectory(t)

	code, location, err := d.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	db, err := database.Open(location)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	extra := model.User{Username: "worker", PasswordHash: "x", Role: model.RoleEmployee}
	if err := db.Create(&extra).Error; err != nil {
		t.Fatalf("failed to create extra user: %v", err)
	}

	if err := d.Reset(code); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	// Mapping entry survives a reset.
	got, err := d.Resolve(code)
	if err != nil || got != location {
		t.Fatalf("Resolve after Reset: %q, %v", got, err)
	}

	db, err = database.Open(location)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	var count int64
	db.Model(&model.User{}).Count(&count)
	if count != 1 {
		t.Errorf("expected only the seeded admin after reset, got %d users", count)
	}
}

func TestCorruptDirectoryFileDegradesToEmpty(t *testing.T) {
	d := newTestDirectory(t)

	if err := os.WriteFile(d.file, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	if got := d.List(); len(got) != 0 {
		t.Errorf("expected empty directory for corrupt file, got %d entries", len(got))
	}

	// The directory stays usable: a create rewrites the file cleanly.
	code, _, err := d.Create()
	if err != nil {
		t.Fatalf("Create after corrupt file failed: %v", err)
	}
	if _, err := d.Resolve(code); err != nil {
		t.Errorf("Resolve after recovery failed: %v", err)
	}
}

func TestStoreIsolationBetweenTenants(t *testing.T) {
	d := newTestDirectory(t)

	codeA, locationA, err := d.Create()
	if err != nil {
		t.Fatalf("Create tenant A failed: %v", err)
	}
	codeB, locationB, err := d.Create()
	if err != nil {
		t.Fatalf("Create tenant B failed: %v", err)
	}
	if codeA == codeB || locationA == locationB {
		t.Fatalf("tenants share identity: %q/%q", codeA, codeB)
	}

	dbA, err := database.Open(locationA)
	if err != nil {
		t.Fatalf("failed to open store A: %v", err)
	}
	product := model.Product{Name: "Only in A", SKU: "A-1", Quantity: 3}
	if err := dbA.Create(&product).Error; err != nil {
		t.Fatalf("failed to create product in A: %v", err)
	}

	dbB, err := database.Open(locationB)
	if err != nil {
		t.Fatalf("failed to open store B: %v", err)
	}
	var count int64
	dbB.Model(&model.Product{}).Count(&count)
	if count != 0 {
		t.Errorf("tenant B sees %d products created in tenant A", count)
	}
}
