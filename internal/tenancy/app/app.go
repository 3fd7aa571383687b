package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	httpapi "github.com/aussiebroadwan/tenancy/internal/tenancy/http"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/keymanager"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/postgres"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application holds the tenancy service and everything it depends on.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	secrets secrets

	provisioningService *service.ProvisioningService
	merchantService     *service.MerchantService
	keyStoreManager     *service.KeyStoreManager
	authService         *service.AuthService
	inviteService       *service.InviteService
	roleService         *service.RoleService
	mfaService          *service.MFAService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router

	started bool
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tenancy-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	sec, err := loadSecrets(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.secrets = sec

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DBDriver {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqliteDSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", app.cfg.DBDriver, err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app.db = db
	app.logger.Info("database initialized", "driver", app.cfg.DBDriver)
	return nil
}

func sqliteDSN(file string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", file)
}

func (app *Application) initServices() error {
	blocklist, err := loadBlocklist(app.cfg)
	if err != nil {
		return err
	}

	hasher := cryptox.Argon2Hasher{Pepper: app.secrets.pepper}
	builder := &domain.Builder{
		Emails:       domain.NewEmailParser(blocklist),
		Production:   app.cfg.Production(),
		EmailEnabled: app.cfg.EmailEnabled,
	}

	var roleVersion *domain.RoleVersion
	if app.cfg.RoleVersion != "" {
		v := domain.RoleVersion(app.cfg.RoleVersion)
		roleVersion = &v
	}

	app.merchantService = &service.MerchantService{Store: app.db}
	app.provisioningService = &service.ProvisioningService{
		Store:         app.db,
		Merchants:     app.merchantService,
		Builder:       builder,
		Hasher:        hasher,
		Version:       app.cfg.PlatformVersion,
		RoleVersion:   roleVersion,
		InternalOrgID: app.cfg.InternalOrgID,
	}

	app.keyStoreManager = &service.KeyStoreManager{
		Store:     app.db,
		MasterKey: app.secrets.masterKey,
	}
	if app.cfg.KeyManagerURL != "" {
		app.keyStoreManager.Transfer = keymanager.New(app.cfg.KeyManagerURL, app.cfg.KeyManagerTimeout)
		app.logger.Info("key transfer enabled", "url", app.cfg.KeyManagerURL)
	}

	app.authService = &service.AuthService{
		Store:                 app.db,
		Hasher:                hasher,
		Tokens:                app.secrets.signer,
		Issuer:                app.cfg.Issuer,
		TokenTTL:              app.cfg.TokenTTL,
		AllowedUnverifiedDays: app.cfg.AllowedUnverifiedDays,
		PasswordValidityDays:  app.cfg.PasswordValidityDays,
	}
	app.roleService = &service.RoleService{Store: app.db}
	app.inviteService = &service.InviteService{
		Store:   app.db,
		Builder: builder,
		Hasher:  hasher,
		Roles:   app.roleService,
		TTL:     app.cfg.InviteTTL,
	}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Keys:   app.keyStoreManager,
		Hasher: hasher,
		Issuer: app.cfg.Issuer,
	}
	app.housekeepingService = service.NewHousekeepingService(app.db, app.logger, app.cfg.HousekeepingInterval)

	return nil
}

func (app *Application) initHTTP() {
	verifier := jwtx.NewVerifier(app.secrets.signer, app.cfg.Issuer)

	app.router = httpapi.NewRouter(verifier, BuildVersion, app.db, app.logger)
	app.router.Provisioning = app.provisioningService
	app.router.Auth = app.authService
	app.router.Invites = app.inviteService
	app.router.Roles = app.roleService
	app.router.MFA = app.mfaService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run serves HTTP and housekeeping until ctx is cancelled or the server
// fails, then shuts everything down.
func (app *Application) Run(ctx context.Context) error {
	app.started = true
	app.housekeepingService.Start()

	app.logger.Info("starting tenancy service",
		"port", app.cfg.Port,
		"env", app.cfg.Env,
		"platform_version", app.cfg.PlatformVersion,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		shutdownErr := app.Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return shutdownErr
		}
		return errors.Join(fmt.Errorf("server failed: %w", err), shutdownErr)

	case <-ctx.Done():
		app.logger.Info("shutdown signal received")
		return app.Shutdown()
	}
}

// Shutdown stops the server, waits for background work and closes the
// database.
func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	var errs []error
	if err := app.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown failed: %w", err))
	}

	if app.started {
		app.housekeepingService.Stop()
	}
	app.provisioningService.Wait()

	if err := app.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close failed: %w", err))
	}

	app.logger.Info("shutdown complete")
	return errors.Join(errs...)
}
