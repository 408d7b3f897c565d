package server

import (
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"psychaid/backend/internal/health"
	healthhandler "psychaid/backend/internal/health/handler"
)

// GRPCDeps holds the services exposed over gRPC.
type GRPCDeps struct {
	// Health is the gRPC health service. Required.
	Health *healthhandler.Server
	// Reflection registers the reflection service for grpcurl. Enable outside production only.
	Reflection bool
}

// NewGRPCServer returns a gRPC server instrumented with otelgrpc and with
// every service in deps registered.
func NewGRPCServer(deps GRPCDeps, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())}, opts...)
	s := grpc.NewServer(opts...)
	RegisterServices(s, deps)
	return s
}

// NewHealthGRPCServer builds the gRPC server cmd/server runs: the health
// service backed by checker, plus reflection when enabled. The returned
// health server must be driven with Run to track readiness.
func NewHealthGRPCServer(checker *health.Checker, log logrus.FieldLogger, reflection bool, opts ...grpc.ServerOption) (*grpc.Server, *healthhandler.Server) {
	hs := healthhandler.NewServer(checker, log)
	return NewGRPCServer(GRPCDeps{Health: hs, Reflection: reflection}, opts...), hs
}

// RegisterServices registers the gRPC services with s.
//
//   - grpc.health.v1.Health → internal/health/handler
//   - grpc.reflection       → only when deps.Reflection
func RegisterServices(s grpc.ServiceRegistrar, deps GRPCDeps) {
	deps.Health.Register(s)
	if deps.Reflection {
		if gs, ok := s.(*grpc.Server); ok {
			reflection.Register(gs)
		}
	}
}
