package tenant

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"inventory-service/internal/model"
	"inventory-service/pkg/config"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound is returned when an access code has no directory entry
var ErrNotFound = errors.New("tenant not found")

// Directory is the single authoritative mapping from access codes to record
// store locations. It lives outside any tenant's store, in one JSON file, and
// serializes every mutation behind a mutex so concurrent create/delete/reset
// requests never lose updates.
type Directory struct {
	file          string
	storeDir      string
	adminUser     string
	adminPassword string

	mu sync.Mutex
}

var directory *Directory

// Initialize sets up the global directory from config
func Initialize(cfg *config.Config) {
	directory = NewDirectory(cfg)
}

// GetDirectory returns the global directory instance
func GetDirectory() *Directory {
	return directory
}

// NewDirectory creates a directory over the configured mapping file
func NewDirectory(cfg *config.Config) *Directory {
	return &Directory{
		file:          cfg.Tenant.DirectoryFile,
		storeDir:      cfg.Tenant.StoreDir,
		adminUser:     cfg.Tenant.DefaultAdminUser,
		adminPassword: cfg.Tenant.DefaultAdminPassword,
	}
}

// load reads the mapping file. A missing or corrupt file degrades to an empty
// directory rather than an error: the service keeps running with no tenants.
func (d *Directory) load() map[string]string {
	data, err := os.ReadFile(d.file)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.GetLogger().Error("Failed to read tenant directory file",
				zap.String("file", d.file), zap.Error(err))
		}
		return map[string]string{}
	}

	tenants := map[string]string{}
	if err := json.Unmarshal(data, &tenants); err != nil {
		logger.GetLogger().Error("Tenant directory file is corrupt, treating as empty",
			zap.String("file", d.file), zap.Error(err))
		return map[string]string{}
	}
	return tenants
}

// save atomically rewrites the mapping file (temp file + rename)
func (d *Directory) save(tenants map[string]string) error {
	data, err := json.MarshalIndent(tenants, "", "    ")
	if err != nil {
		return fmt.Errorf("encode tenant directory: %w", err)
	}

	if dir := filepath.Dir(d.file); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for tenants file: %w", err)
		}
	}

	tmp := d.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tenant directory: %w", err)
	}
	if err := os.Rename(tmp, d.file); err != nil {
		return fmt.Errorf("replace tenant directory: %w", err)
	}
	return nil
}

// Resolve looks up an access code. The match is case-sensitive and exact.
func (d *Directory) Resolve(code string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	location, ok := d.load()[code]
	if !ok {
		return "", ErrNotFound
	}
	return location, nil
}

// List returns a snapshot of the current mapping
func (d *Directory) List() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load()
}

// NewAccessCode generates an opaque access code: eight uppercase hex
// characters drawn from a random UUID.
func NewAccessCode() string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:4]))
}

// Create provisions a new tenant: a fresh access code, a fresh record store
// seeded with one default administrator, and a durable mapping entry.
// Provisioning and mapping persistence are one logical unit: if provisioning
// fails no entry is written, and if the mapping write fails the error is
// reported (the already provisioned store is an orphan, cleaned up out of
// band).
func (d *Directory) Create() (string, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tenants := d.load()

	code := NewAccessCode()
	for _, exists := tenants[code]; exists; _, exists = tenants[code] {
		code = NewAccessCode()
	}

	location := filepath.Join(d.storeDir, fmt.Sprintf("tenant_%s.db", code))
	if err := d.provision(location); err != nil {
		return "", "", fmt.Errorf("provision tenant store: %w", err)
	}

	tenants[code] = location
	if err := d.save(tenants); err != nil {
		return "", "", err
	}

	logger.GetLogger().Info("Tenant created",
		zap.String("access_code", code), zap.String("location", location))
	return code, location, nil
}

// Delete removes the mapping entry and best-effort deletes the underlying
// store. A failed store deletion is surfaced as a warning but never blocks
// the removal of the entry.
func (d *Directory) Delete(code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tenants := d.load()
	location, ok := tenants[code]
	if !ok {
		return ErrNotFound
	}

	database.Evict(location)
	d.removeStore(location)

	delete(tenants, code)
	if err := d.save(tenants); err != nil {
		return err
	}

	logger.GetLogger().Info("Tenant deleted", zap.String("access_code", code))
	return nil
}

// Reset destroys and re-provisions a tenant's store in place. The mapping
// entry is unchanged.
func (d *Directory) Reset(code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	location, ok := d.load()[code]
	if !ok {
		return ErrNotFound
	}

	database.Evict(location)
	d.removeStore(location)

	if err := d.provision(location); err != nil {
		return fmt.Errorf("re-provision tenant store: %w", err)
	}

	logger.GetLogger().Info("Tenant reset", zap.String("access_code", code))
	return nil
}

// removeStore deletes a file-backed store from disk. Server-backed (DSN)
// locations have nothing to remove here.
func (d *Directory) removeStore(location string) {
	if database.IsServerDSN(location) {
		return
	}
	if err := os.Remove(location); err != nil && !os.IsNotExist(err) {
		logger.GetLogger().Warn("Failed to delete tenant store file",
			zap.String("location", location), zap.Error(err))
	}
}

// provision opens (creating if needed) the store at location, migrates the
// schema, and seeds the default administrator account.
func (d *Directory) provision(location string) error {
	if !database.IsServerDSN(location) {
		if dir := filepath.Dir(location); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create store directory: %w", err)
			}
		}
	}

	db, err := database.Create(location)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", d.adminUser).Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(d.adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := model.User{
		Username:     d.adminUser,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	return nil
}
