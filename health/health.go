package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/natansdj/electives"
)

// Status represents health check status
type Status string

const (
	// StatusHealthy indicates the dependency answered in time
	StatusHealthy Status = "healthy"

	// StatusUnhealthy indicates the dependency failed or did not answer in time
	StatusUnhealthy Status = "unhealthy"
)

// DefaultTimeout bounds a single probe
const DefaultTimeout = 3 * time.Second

// CheckResult represents result of a health check. Error is kept for logging only.
type CheckResult struct {
	Status    Status    `json:"status"`
	LatencyMs int64     `json:"latencyMs"`
	Timestamp time.Time `json:"timestamp"`
	Error     error     `json:"-"`
}

// HTTPStatus maps the result to the /health response code
func (r CheckResult) HTTPStatus() int {
	if r.Status == StatusHealthy {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// Checker defines health check interface
type Checker interface {
	// Check performs health check
	Check(ctx context.Context) CheckResult

	// Name returns checker name
	Name() string
}

// Pinger is anything that can prove a database round trip, such as *pool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseChecker runs SELECT 1 through the pool under a hard deadline
type DatabaseChecker struct {
	name    string
	pinger  Pinger
	timeout time.Duration
}

func NewDatabaseChecker(name string, pinger Pinger, timeout time.Duration) *DatabaseChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DatabaseChecker{
		name:    name,
		pinger:  pinger,
		timeout: timeout,
	}
}

func (d *DatabaseChecker) Name() string {
	return d.name
}

// Check returns once the ping finishes or the timeout passes, whichever is first.
// A pinger that ignores its context is abandoned, not waited for.
func (d *DatabaseChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("health check %s panicked: %v", d.name, r)
			}
		}()
		done <- d.pinger.Ping(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	result := CheckResult{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
		Timestamp: time.Now(),
	}

	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err
		electives.LogERL("health-"+d.name, "Health check %s failed: %s", d.name, err.Error())
	}

	return result
}
