// Package app wires configuration, logging, storage and routing into the
// two runnable services and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/usrlinks/internal/config"
	"github.com/patric-chuzhbe/usrlinks/internal/db/memorystorage"
	"github.com/patric-chuzhbe/usrlinks/internal/db/postgresdb"
	"github.com/patric-chuzhbe/usrlinks/internal/grpchealth"
	"github.com/patric-chuzhbe/usrlinks/internal/ipchecker"
	"github.com/patric-chuzhbe/usrlinks/internal/logger"
	"github.com/patric-chuzhbe/usrlinks/internal/metrics"
	"github.com/patric-chuzhbe/usrlinks/internal/models"
	"github.com/patric-chuzhbe/usrlinks/internal/router"
	"github.com/patric-chuzhbe/usrlinks/internal/service"
)

type userStorage interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SearchUsersByName(ctx context.Context, term string) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, name, email, passwordHash string) (int64, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) error
	DeleteUser(ctx context.Context, id int64) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// App holds one configured service ready to be run.
type App struct {
	cfg         *config.Config
	name        string
	httpHandler http.Handler
	checker     *grpchealth.Checker
	db          userStorage
}

// NewUsers builds the user management service. Users are kept in PostgreSQL
// when a DSN is configured and in process memory otherwise.
func NewUsers(optionsProto ...config.InitOption) (*App, error) {
	app, err := newApp("users", optionsProto...)
	if err != nil {
		return nil, err
	}

	app.db, err = getUserStorage(app.cfg)
	if err != nil {
		return nil, err
	}

	users := service.NewUsers(app.db)
	if app.cfg.SeedSampleUsers {
		inserted, err := users.SeedSampleUsers(context.Background())
		if err != nil {
			_ = app.db.Close()
			return nil, fmt.Errorf(
				"in internal/app/app.go/NewUsers(): error while `users.SeedSampleUsers()` calling: %w",
				err,
			)
		}
		logger.Log.Infow("sample users seeded", "inserted", inserted)
	}

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.httpHandler = router.NewUsers(users, metrics.New(app.name), checker)
	app.checker.Register(app.name, app.db)

	return app, nil
}

// NewShortener builds the URL shortener service.
func NewShortener(optionsProto ...config.InitOption) (*App, error) {
	app, err := newApp("shortener", optionsProto...)
	if err != nil {
		return nil, err
	}

	shortener := service.NewShortener(
		memorystorage.NewURLStore(),
		&sync.Mutex{},
		service.WithMaxAttempts(app.cfg.MaxCodeAttempts),
		service.WithShortURLBase(app.cfg.ShortURLBase),
	)

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.NewShortener(shortener, metrics.New(app.name), checker)
	app.checker.Register(app.name, grpchealth.AlwaysServing)

	return app, nil
}

func newApp(name string, optionsProto ...config.InitOption) (*App, error) {
	cfg, err := config.New(optionsProto...)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		name:    name,
		checker: grpchealth.NewChecker(),
	}, nil
}

func getUserStorage(cfg *config.Config) (userStorage, error) {
	if cfg.DatabaseDSN == "" {
		logger.Log.Warnw("DATABASE_DSN is empty, users are kept in memory")
		return memorystorage.NewUserStore(), nil
	}

	return postgresdb.New(
		context.Background(),
		cfg.DatabaseDSN,
		cfg.DBConnectionTimeout,
		postgresdb.WithDBPreReset(cfg.DBPreReset),
	)
}

// Handler returns the HTTP handler of the service.
func (a *App) Handler() http.Handler {
	return a.httpHandler
}

// Run serves HTTP, and gRPC health checks when configured, until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	lis, err := net.Listen("tcp", a.cfg.RunAddr)
	if err != nil {
		return fmt.Errorf("in internal/app/app.go/run(): error while `net.Listen()` calling: %w", err)
	}

	server := &http.Server{
		Handler:           a.httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 2)
	go func() {
		if a.cfg.EnableHTTPS {
			serverErrCh <- server.ServeTLS(lis, a.cfg.TLSCertFile, a.cfg.TLSKeyFile)
			return
		}
		serverErrCh <- server.Serve(lis)
	}()
	logger.Log.Infow("server running", "service", a.name, "RunAddr", lis.Addr().String(), "https", a.cfg.EnableHTTPS)

	stopGRPC := func() {}
	if a.cfg.GRPCHealthAddr != "" {
		grpcServer, grpcLis, err := grpchealth.NewServer(a.cfg.GRPCHealthAddr, a.checker)
		if err != nil {
			_ = server.Close()
			return fmt.Errorf("in internal/app/app.go/run(): error while `grpchealth.NewServer()` calling: %w", err)
		}
		go func() {
			serverErrCh <- grpcServer.Serve(grpcLis)
		}()
		stopGRPC = grpcServer.GracefulStop
		logger.Log.Infow("gRPC health server running", "addr", grpcLis.Addr().String())
	}

	select {
	case <-ctx.Done():
		logger.Log.Infow("received shutdown signal", "service", a.name)
		stopGRPC()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.closeStorage()

	case err := <-serverErrCh:
		stopGRPC()
		_ = server.Close()
		closeErr := a.closeStorage()
		if errors.Is(err, http.ErrServerClosed) {
			return closeErr
		}
		return errors.Join(fmt.Errorf("server error: %w", err), closeErr)
	}
}

func (a *App) closeStorage() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Close flushes the logger.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
