// Package handler exposes the readiness checker over HTTP probes and the
// standard gRPC health protocol.
package handler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"psychaid/backend/internal/health"
)

// ServiceName is the gRPC health service name reported alongside the
// overall ("") status.
const ServiceName = "psychaid.backend"

// Server keeps a grpc health server in step with the readiness checker.
type Server struct {
	checker *health.Checker
	health  *grpchealth.Server
	log     logrus.FieldLogger
}

// NewServer returns a Server whose status starts as NOT_SERVING until the
// first Refresh.
func NewServer(checker *health.Checker, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	hs := grpchealth.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{checker: checker, health: hs, log: log}
}

// Register adds the health service to s.
func (s *Server) Register(r grpc.ServiceRegistrar) {
	healthpb.RegisterHealthServer(r, s.health)
}

// Refresh runs the checks once and publishes the result.
func (s *Server) Refresh(ctx context.Context) health.Report {
	rep := s.checker.Check(ctx)
	st := healthpb.HealthCheckResponse_SERVING
	if !rep.Ready() {
		st = healthpb.HealthCheckResponse_NOT_SERVING
		s.log.WithField("checks", rep.Checks).Warn("health: not ready")
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	return rep
}

// Run refreshes every interval until ctx is done, then marks the service as
// shutting down.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			return
		case <-t.C:
			s.Refresh(ctx)
		}
	}
}
