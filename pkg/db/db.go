package db

import (
	"fmt"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/portcullis/pkg/model"
)

// Dialect names as reported by gorm.Dialector.Name
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL env var)
	URL string
	// MaxOpenConns caps the pool; in-memory SQLite forces it to 1
	MaxOpenConns int
}

// Connect establishes a database connection.
// If no URL is provided, it reads from DATABASE_URL environment variable.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = URL()
	}
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	dialector, err := dialectorFor(dbURL)
	if err != nil {
		return nil, err
	}

	// Default to silent logging unless PORTCULLIS_LOG_LEVEL=debug is set
	logMode := logger.Silent
	if os.Getenv("PORTCULLIS_LOG_LEVEL") == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	maxOpen := cfg.MaxOpenConns
	if IsInMemory(dbURL) {
		// every connection to :memory: is a separate database
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}

	return db, nil
}

func dialectorFor(dbURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		return postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}), nil
	case strings.HasPrefix(dbURL, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dbURL, "sqlite://")), nil
	case strings.HasPrefix(dbURL, "file:"), dbURL == ":memory:":
		return sqlite.Open(dbURL), nil
	default:
		return nil, fmt.Errorf("unsupported database URL scheme in %q", redact(dbURL))
	}
}

// IsInMemory reports whether the URL names an in-memory SQLite database.
func IsInMemory(dbURL string) bool {
	return dbURL == ":memory:" || dbURL == "sqlite://:memory:" || strings.Contains(dbURL, "mode=memory")
}

// IsPostgres reports whether the URL names a PostgreSQL database.
func IsPostgres(dbURL string) bool {
	return strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://")
}

// AutoMigrate creates the schema from the models. It is used for SQLite;
// PostgreSQL deployments apply the SQL migrations in db/migrations instead.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}

func redact(dbURL string) string {
	if i := strings.Index(dbURL, "@"); i > 0 {
		if j := strings.Index(dbURL, "://"); j > 0 && j < i {
			return dbURL[:j+3] + "***" + dbURL[i:]
		}
	}
	return dbURL
}
