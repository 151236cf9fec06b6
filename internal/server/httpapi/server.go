// Package httpapi exposes the auth and photo services over HTTP using gin.
// Every route is mounted both at the root and under /api.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hynorvixx/backend/internal/logging"
	"github.com/hynorvixx/backend/internal/server/auth"
	"github.com/hynorvixx/backend/internal/server/models"
	"github.com/hynorvixx/backend/internal/server/services"
)

const defaultShutdownTimeout = 10 * time.Second

// AuthService is what the handlers and the access guard need from the
// authenticator.
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*models.User, *auth.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string)
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// PhotoService is what the photo handlers need from the upload orchestrator.
type PhotoService interface {
	RequestUpload(ctx context.Context, ownerID, filename, contentType string, fileSize int64) (*services.UploadIntent, error)
	Finalize(ctx context.Context, ownerID, key, originalName, contentType string, fileSize int64) (*models.Photo, error)
	List(ctx context.Context, ownerID string, page, limit int) (*services.PhotoPage, error)
	Get(ctx context.Context, ownerID, id string) (*models.Photo, error)
	Update(ctx context.Context, ownerID, id string, patch models.PhotoPatch) (*models.Photo, error)
	Delete(ctx context.Context, ownerID, id string) error
	ViewURL(ctx context.Context, key string, ttl time.Duration) (*services.SignedURL, error)
	StorageAvailable() bool
}

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Addr            string
	Environment     string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

type Server struct {
	addr            string
	environment     string
	showInternal    bool
	shutdownTimeout time.Duration

	auth   AuthService
	photos PhotoService
	db     Pinger
	logger logging.Logger

	engine *gin.Engine
	now    func() time.Time
}

func NewServer(opts Options, a AuthService, p PhotoService, db Pinger, l logging.Logger) *Server {
	s := &Server{
		addr:            opts.Addr,
		environment:     opts.Environment,
		showInternal:    opts.Environment == "development",
		shutdownTimeout: opts.ShutdownTimeout,
		auth:            a,
		photos:          p,
		db:              db,
		logger:          l.With("module", "http_server"),
		now:             time.Now,
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}

	s.engine = gin.New()
	s.engine.Use(s.recovery(), s.requestLogger(), cors.New(corsConfig(opts.CORSOrigins)))
	s.routes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	s.engine.GET("/health", s.health)
	s.engine.GET("/api", s.OptionalAuth(), s.index)

	for _, prefix := range []string{"", "/api"} {
		g := s.engine.Group(prefix)

		a := g.Group("/auth")
		a.POST("/signup", s.signup)
		a.POST("/login", s.login)
		a.POST("/refresh", s.refresh)
		a.POST("/logout", s.logout)

		p := g.Group("/photos", s.RequireAuth())
		p.POST("/upload-url", s.uploadURL)
		p.GET("/view-url", s.viewURL)
		p.POST("", s.finalize)
		p.GET("", s.listPhotos)
		p.GET("/:id", s.getPhoto)
		p.PUT("/:id", s.updatePhoto)
		p.DELETE("/:id", s.deletePhoto)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "Route not found")
	})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
		if o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
