// Package server wires the photo backend together: configuration, the
// Postgres pool and migrations, object storage, services, the HTTP API and
// the gRPC health endpoint. It also handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/hynorvixx/backend/internal/cryptox"
	"github.com/hynorvixx/backend/internal/logging"
	"github.com/hynorvixx/backend/internal/server/auth"
	"github.com/hynorvixx/backend/internal/server/config"
	"github.com/hynorvixx/backend/internal/server/httpapi"
	"github.com/hynorvixx/backend/internal/server/repositories/repomanager"
	"github.com/hynorvixx/backend/internal/server/services"
	"github.com/hynorvixx/backend/internal/server/storage"

	gs "github.com/hynorvixx/backend/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	authService  *services.AuthService
	photoService *services.PhotoService

	httpServer   *httpapi.Server
	healthServer *gs.HealthServer
}

// seams for tests
var (
	openPostgres   = repomanager.OpenPostgres
	newS3Gateway   = storage.NewS3Gateway
	newRepoManager = func() repomanager.RepositoryManager { return repomanager.NewPostgresRepositoryManager() }
)

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(c.LogLevel)

	db, err := openPostgres(ctx, c.DatabaseDSN, repomanager.PoolOptions{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}

	var store services.ObjectStorage
	if c.StorageConfigured() {
		gw, err := newS3Gateway(ctx, storage.Settings{
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
			Bucket:          c.S3Bucket,
			Region:          c.S3Region,
			BaseEndpoint:    c.S3BaseEndpoint,
			UsePathStyle:    c.S3UsePathStyle,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("storage init error: %w", err)
		}
		store = gw
	} else {
		logger.Warn(ctx, "object storage is not configured, upload endpoints will answer 503")
	}

	tokens := auth.NewTokenService([]byte(c.AccessTokenSecret), []byte(c.RefreshTokenSecret), c.AccessTokenTTL, c.RefreshTokenTTL)
	hasher := cryptox.NewPasswordHasher(c.BcryptCost)

	policy := services.DefaultUploadPolicy()
	policy.MaxSize = c.MaxUploadSize
	policy.UploadURLTTL = c.UploadURLTTL
	policy.ViewURLTTL = c.ViewURLTTL
	policy.VerifyOnFinalize = c.VerifyUploadOnFinalize

	as := services.NewAuthService(db, rm, tokens, hasher, logger)
	ps := services.NewPhotoService(db, rm, store, policy, logger)

	if !c.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	hs := httpapi.NewServer(httpapi.Options{
		Addr:        c.HTTPAddr,
		Environment: c.Environment,
		CORSOrigins: c.CORSOrigins,
	}, as, ps, db, logger)

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		authService:  as,
		photoService: ps,
		httpServer:   hs,
		healthServer: gs.NewHealthServer(c.GRPCHealthAddr, db, store != nil, logger),
	}, nil
}

func (app *App) Close() error {
	return app.db.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP and gRPC health until a signal arrives, ctx is cancelled
// or one of the servers fails. The database pool is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	app.initSignalHandler(cancelFunc)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	start := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				app.logger.Error(ctx, "server stopped with error", "server", name, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	start("http", app.httpServer.Run)
	start("grpc_health", app.healthServer.Run)

	wg.Wait()

	if err := app.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close db: %w", err))
	}
	app.logger.Info(context.Background(), "App stopped")
	return errors.Join(errs...)
}
