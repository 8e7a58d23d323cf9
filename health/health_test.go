package health

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/natansdj/electives/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type fakeConn struct{}

func (fakeConn) Close() error                   { return nil }
func (fakeConn) Ping(ctx context.Context) error { return nil }

func TestHealthyDatabase(t *testing.T) {
	p := pool.NewPool(pool.FactoryFunc(func(ctx context.Context) (pool.Connection, error) {
		return fakeConn{}, nil
	}), pool.Config{MaxSize: 2, WaitForConnections: true})
	defer p.Shutdown(context.Background())

	result := NewDatabaseChecker("mysql", p, 0).Check(context.Background())

	assert.Equal(t, StatusHealthy, result.Status)
	assert.NoError(t, result.Error)
	assert.Equal(t, http.StatusOK, result.HTTPStatus())
	assert.False(t, result.Timestamp.IsZero())
	assert.Equal(t, 0, p.Stats().InUse)
}

func TestUnreachableDatabase(t *testing.T) {
	p := pool.NewPool(pool.FactoryFunc(func(ctx context.Context) (pool.Connection, error) {
		return nil, errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")
	}), pool.Config{MaxSize: 2, WaitForConnections: true})
	defer p.Shutdown(context.Background())

	result := NewDatabaseChecker("mysql", p, time.Second).Check(context.Background())

	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.ErrorIs(t, result.Error, pool.ErrConnectionFailure)
	assert.Equal(t, http.StatusInternalServerError, result.HTTPStatus())
}

func TestSlowDatabaseIsBoundedByTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	// Ignores its context on purpose
	stuck := pingerFunc(func(ctx context.Context) error {
		<-release
		return nil
	})

	start := time.Now()
	result := NewDatabaseChecker("mysql", stuck, 50*time.Millisecond).Check(context.Background())
	elapsed := time.Since(start)

	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.ErrorIs(t, result.Error, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestPanickingPingerIsUnhealthy(t *testing.T) {
	boom := pingerFunc(func(ctx context.Context) error {
		panic("driver bug")
	})

	var result CheckResult
	require.NotPanics(t, func() {
		result = NewDatabaseChecker("mysql", boom, time.Second).Check(context.Background())
	})
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Contains(t, result.Error.Error(), "driver bug")
}

func TestDefaultTimeout(t *testing.T) {
	c := NewDatabaseChecker("mysql", pingerFunc(func(context.Context) error { return nil }), 0)
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.Equal(t, "mysql", c.Name())
}
