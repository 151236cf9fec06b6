// Package grpc runs the standard grpc.health.v1 service next to the HTTP API
// so orchestrators can probe database and storage readiness.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/hynorvixx/backend/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// StorageService is the health service name reporting object storage.
const StorageService = "photos.storage"

const defaultProbeInterval = 15 * time.Second

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthServer struct {
	address           string
	db                Pinger
	storageConfigured bool
	interval          time.Duration
	logger            logging.Logger
	health            *health.Server
}

func NewHealthServer(address string, db Pinger, storageConfigured bool, l logging.Logger) *HealthServer {
	return &HealthServer{
		address:           address,
		db:                db,
		storageConfigured: storageConfigured,
		interval:          defaultProbeInterval,
		logger:            l.With("module", "grpc_health"),
		health:            health.NewServer(),
	}
}

// Probe pings the database and publishes the resulting statuses.
func (s *HealthServer) Probe(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		s.logger.Warn(ctx, "database ping failed", "error", err)
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", overall)

	storage := healthpb.HealthCheckResponse_NOT_SERVING
	if s.storageConfigured {
		storage = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(StorageService, storage)
}

func (s *HealthServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve runs on an existing listener until ctx is cancelled.
func (s *HealthServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)

	s.Probe(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping gRPC health server...")
				s.health.Shutdown()
				srv.GracefulStop()
				return
			case <-ticker.C:
				s.Probe(ctx)
			}
		}
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", listen.Addr().String())

	return srv.Serve(listen)
}
