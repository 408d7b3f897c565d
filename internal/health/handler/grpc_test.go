package handler

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"psychaid/backend/internal/health"
	"psychaid/backend/internal/platform/logging"
)

type flipCheck struct{ err error }

func (f *flipCheck) run(context.Context) error { return f.err }

func dial(t *testing.T, srv *Server) healthpb.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	srv.Register(gs)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestServer_TracksChecker(t *testing.T) {
	flip := &flipCheck{err: errors.New("db down")}
	srv := NewServer(health.NewChecker(0, health.Check{Name: "database", Run: flip.run}), logging.Discard())
	client := dial(t, srv)
	ctx := context.Background()

	status := func(service string) healthpb.HealthCheckResponse_ServingStatus {
		t.Helper()
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		if err != nil {
			t.Fatalf("Check(%q): %v", service, err)
		}
		return resp.GetStatus()
	}

	if got := status(""); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("initial = %v, want NOT_SERVING", got)
	}
	srv.Refresh(ctx)
	if got := status(ServiceName); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("with failing check = %v", got)
	}
	flip.err = nil
	srv.Refresh(ctx)
	if got := status(""); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("after recovery = %v, want SERVING", got)
	}
}

func TestHTTPProbes(t *testing.T) {
	flip := &flipCheck{}
	h := NewHTTP(health.NewChecker(0, health.Check{Name: "redis", Run: flip.run}))

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("liveness = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("readiness = %d", rec.Code)
	}

	flip.err = errors.New("refused")
	rec = httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness with failure = %d, want 503", rec.Code)
	}
}
