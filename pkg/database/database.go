package database

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"inventory-service/internal/model"
	"inventory-service/pkg/config"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ContextKey is the echo context key under which the middleware binds the
// record store for the current request.
const ContextKey = "db"

var (
	mu       sync.RWMutex
	handles  = make(map[string]*gorm.DB)
	storeCfg config.StoreConfig
)

// Initialize configures the connection settings applied to every opened store
func Initialize(cfg *config.Config) {
	storeCfg = cfg.Store
}

var serverDSNRegex = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)

// IsServerDSN reports whether a store location names a postgres database
// rather than a sqlite file path. Locations are opaque strings; the shape
// decides the driver.
func IsServerDSN(location string) bool {
	lower := strings.ToLower(strings.TrimSpace(location))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return true
	}
	return serverDSNRegex.MatchString(location)
}

// Open returns a store handle for the given location, reusing an already open
// handle when one exists. A missing sqlite store file is an error here, not an
// implicit fresh store: only provisioning may create stores. The cache only
// pools connections; which store a request uses is decided per request by the
// middleware, never here.
func Open(location string) (*gorm.DB, error) {
	return open(location, false)
}

// Create is Open for provisioning: a file-backed store that does not exist
// yet is created.
func Create(location string) (*gorm.DB, error) {
	return open(location, true)
}

func open(location string, create bool) (*gorm.DB, error) {
	mu.RLock()
	db, ok := handles[location]
	mu.RUnlock()
	if ok {
		return db, nil
	}

	mu.Lock()
	defer mu.Unlock()
	if db, ok := handles[location]; ok {
		return db, nil
	}

	db, err := openStore(location, create)
	if err != nil {
		return nil, err
	}
	handles[location] = db
	return db, nil
}

func sqliteDSN(path string, create bool) string {
	mode := "rw"
	if create {
		mode = "rwc"
	}
	return fmt.Sprintf("file:%s?mode=%s&_busy_timeout=5000", path, mode)
}

func openStore(location string, create bool) (*gorm.DB, error) {
	logLevel := storeCfg.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var (
		db  *gorm.DB
		err error
	)
	if IsServerDSN(location) {
		// Disables implicit prepared statement usage to prevent
		// "prepared statement already exists" errors
		pgConfig := postgres.Config{DSN: location, PreferSimpleProtocol: true}
		db, err = gorm.Open(postgres.New(pgConfig), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(sqliteDSN(location, create)), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", location, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get store connection: %w", err)
	}
	if storeCfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(storeCfg.MaxIdleConns)
	}
	if storeCfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(storeCfg.MaxOpenConns)
	}
	if storeCfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(storeCfg.ConnMaxLifetime)
	}
	return db, nil
}

// Evict closes and forgets the cached handle for a location. Used when a
// tenant store is deleted or reset so a stale handle is never handed out.
func Evict(location string) {
	mu.Lock()
	db, ok := handles[location]
	if ok {
		delete(handles, location)
	}
	mu.Unlock()

	if ok {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// Migrate creates or updates the record store schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Provider{},
		&model.Product{},
		&model.StockMovement{},
		&model.Log{},
	); err != nil {
		return fmt.Errorf("failed to run store migrations: %w", err)
	}
	return nil
}

// FromContext returns the record store bound to the current request by the
// auth middleware. Handlers never reach a store any other way.
func FromContext(c echo.Context) *gorm.DB {
	db, _ := c.Get(ContextKey).(*gorm.DB)
	return db
}
