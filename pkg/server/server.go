package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/portcullis/pkg/audit"
	"github.com/doodlesbykumbi/portcullis/pkg/authenticator"
	"github.com/doodlesbykumbi/portcullis/pkg/authenticator/authn"
	"github.com/doodlesbykumbi/portcullis/pkg/authenticator/authn_token"
	"github.com/doodlesbykumbi/portcullis/pkg/config"
	"github.com/doodlesbykumbi/portcullis/pkg/provision"
	"github.com/doodlesbykumbi/portcullis/pkg/registry"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
	storegorm "github.com/doodlesbykumbi/portcullis/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/portcullis/pkg/token"
)

// Options configures a Server beyond what config.Config holds
type Options struct {
	Host string
	Port string

	// Logger is the root logger; a null logger when nil
	Logger hclog.Logger

	// AuditWriter receives RFC5424 audit lines; stdout when nil
	AuditWriter io.Writer

	// Clock replaces time.Now for token issue and validation
	Clock func() time.Time

	Version string
}

type Server struct {
	Config  *config.Config
	Router  *mux.Router
	DB      *gorm.DB
	Logger  hclog.Logger
	Version string

	Signer        *token.Signer
	Authenticator authenticator.Authenticator
	Registry      *registry.Registry
	Provisioner   *provision.Provisioner
	Auditor       *audit.Auditor

	UserStore       store.UserStore
	PermissionStore store.PermissionStore
	HealthStore     store.HealthStore

	srv *http.Server
}

// NewServer wires the stores, authenticators and services for cfg on db.
// cfg must already be valid.
func NewServer(cfg *config.Config, db *gorm.DB, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	var signerOpts []token.Option
	if opts.Clock != nil {
		signerOpts = append(signerOpts, token.WithClock(opts.Clock))
	}
	signer, err := token.NewSigner(cfg.TokenConfig(), signerOpts...)
	if err != nil {
		return nil, err
	}

	hasher, err := cfg.Hasher()
	if err != nil {
		return nil, err
	}

	userStore := storegorm.NewUserStore(db)
	permStore := storegorm.NewPermissionStore(db)
	healthStore := storegorm.NewHealthStore(db)

	auditor := audit.New(audit.Options{
		Enabled: cfg.AuditEnabled,
		Writer:  opts.AuditWriter,
		Store:   audit.NewStore(db),
		Logger:  logger.Named("audit"),
	})

	router := mux.NewRouter().UseEncodedPath()
	accessLog := logger.Named("http").StandardWriter(&hclog.StandardLoggerOptions{
		ForceLevel: hclog.Info,
	})

	s := &Server{
		Config:  cfg,
		Router:  router,
		DB:      db,
		Logger:  logger,
		Version: opts.Version,
		Signer:  signer,
		Authenticator: authenticator.NewChain(
			authn_token.New(signer, userStore),
			authn.New(userStore, healthStore),
			logger.Named("authenticator"),
		),
		Registry: registry.New(userStore, permStore),
		Provisioner: provision.New(userStore, permStore, hasher, provision.Options{
			BindPermissions: cfg.BindPermissionsOnCreate,
		}),
		Auditor:         auditor,
		UserStore:       userStore,
		PermissionStore: permStore,
		HealthStore:     healthStore,
	}

	s.srv = &http.Server{
		Handler:      handlers.LoggingHandler(accessLog, router),
		Addr:         net.JoinHostPort(opts.Host, opts.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return s, nil
}

// Handler returns the router wrapped in the access log
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	s.Logger.Info("listening", "address", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
