package integration

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hashicorp/go-hclog"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/portcullis/db"
	"github.com/doodlesbykumbi/portcullis/pkg/config"
	pdb "github.com/doodlesbykumbi/portcullis/pkg/db"
	"github.com/doodlesbykumbi/portcullis/pkg/server"
	"github.com/doodlesbykumbi/portcullis/pkg/server/endpoints"
)

// Clock is the time source of the test server. Scenarios move it forward to
// expire tokens.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Now()
}

// syncBuffer collects audit lines written by concurrent requests
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	Container   testcontainers.Container
	DatabaseURL string
	ServerURL   string
	Server      *server.Server
	Clock       *Clock
	Audit       *syncBuffer
	HTTPClient  *http.Client

	httpServer *httptest.Server
}

// NewTestContext starts PostgreSQL in a container, migrates it and serves the
// API in-process on top of it.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("portcullis_test"),
		tcpostgres.WithUsername("portcullis"),
		tcpostgres.WithPassword("portcullis"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := runMigrations(connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	database, err := pdb.Connect(pdb.Config{URL: connStr})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	cfg := config.Default()
	cfg.SecretKey = strings.Repeat("integration", 4)
	cfg.BcryptCost = bcrypt.MinCost
	cfg.MaxTokenTTL = 3600
	if err := cfg.Validate(); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	clock := &Clock{now: time.Now()}
	audit := &syncBuffer{}

	s, err := server.NewServer(cfg, database, server.Options{
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:  "portcullis",
			Level: hclog.Warn,
		}),
		AuditWriter: audit,
		Clock:       clock.Now,
		Version:     "integration",
	})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	endpoints.RegisterAll(s)

	httpServer := httptest.NewServer(s.Handler())
	log.Printf("Portcullis listening on %s", httpServer.URL)

	return &TestContext{
		DB:          database,
		Container:   pgContainer,
		DatabaseURL: connStr,
		ServerURL:   httpServer.URL,
		Server:      s,
		Clock:       clock,
		Audit:       audit,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		httpServer:  httpServer,
	}, nil
}

// Reset empties every table and rewinds the clock between scenarios
func (tc *TestContext) Reset() error {
	tc.Clock.Reset()
	tc.Audit.Reset()
	return tc.DB.Exec(`TRUNCATE users, users_perm, groups, groups_perm, permissions, object_perm, audit_messages RESTART IDENTITY`).Error
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.httpServer != nil {
		tc.httpServer.Close()
	}
	if tc.DB != nil {
		if sqlDB, err := tc.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// runMigrations applies the embedded migrations with golang-migrate
func runMigrations(dbURL string) error {
	migrationsFS, err := fs.Sub(db.Migrations, "migrations")
	if err != nil {
		return err
	}
	source, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
