// Package health runs the readiness checks shared by the HTTP probes and the
// gRPC health service.
package health

import (
	"context"
	"sort"
	"time"
)

// Status values reported per check and overall.
const (
	StatusOK   = "ok"
	StatusDown = "down"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ContextPinger is satisfied by the Redis revocation store.
type ContextPinger interface {
	Ping(ctx context.Context) error
}

// PolicyChecker is satisfied by the OPA evaluator.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Check is one named dependency probe.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// DatabaseCheck pings the database.
func DatabaseCheck(p Pinger) Check {
	return Check{Name: "database", Run: p.PingContext}
}

// RedisCheck pings Redis.
func RedisCheck(p ContextPinger) Check {
	return Check{Name: "redis", Run: p.Ping}
}

// PolicyCheck evaluates the access policy once.
func PolicyCheck(p PolicyChecker) Check {
	return Check{Name: "policy", Run: p.HealthCheck}
}

// Report is the readiness result.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Ready reports whether every check passed.
func (r Report) Ready() bool { return r.Status == StatusOK }

// Checker runs a fixed set of checks, each bounded by timeout.
type Checker struct {
	checks  []Check
	timeout time.Duration
}

// NewChecker returns a Checker. A non-positive timeout defaults to 2s.
func NewChecker(timeout time.Duration, checks ...Check) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	sorted := append([]Check(nil), checks...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Checker{checks: sorted, timeout: timeout}
}

// Check runs every check and returns the combined report.
func (c *Checker) Check(ctx context.Context) Report {
	rep := Report{Status: StatusOK, Checks: make(map[string]string, len(c.checks))}
	for _, chk := range c.checks {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		err := chk.Run(cctx)
		cancel()
		if err != nil {
			rep.Checks[chk.Name] = StatusDown
			rep.Status = StatusDown
			continue
		}
		rep.Checks[chk.Name] = StatusOK
	}
	return rep
}

// Names returns the configured check names in order.
func (c *Checker) Names() []string {
	out := make([]string, len(c.checks))
	for i, chk := range c.checks {
		out[i] = chk.Name
	}
	return out
}
