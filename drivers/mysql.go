package drivers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/natansdj/electives"
	"github.com/natansdj/electives/pool"
	"github.com/natansdj/electives/types"

	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// IsMySQLBadConn extends pool.IsBadConn with the driver's invalid connection error
func IsMySQLBadConn(err error) bool {
	return pool.IsBadConn(err) || errors.Is(err, mysql.ErrInvalidConn)
}

// backoff doubles per attempt, capped at a minute
func backoff(attempt int) time.Duration {
	d := time.Second * time.Duration(1<<uint(attempt))
	if d > 60*time.Second {
		d = 60 * time.Second
	}
	return d
}

// MySQL connects with retries, verifies the link with a pooled ping and starts keep-alive.
func MySQL(ctx context.Context, config types.IMySQL) (*Provider, error) {
	electives.LogI("MySQL Client Starting ...")

	maxRetries := config.GetMaxRetries()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoff(attempt - 1)
			electives.LogERL("mysql-connect-retry", "MySQL connection attempt %d failed: %v. Retrying in %v...", attempt, lastErr, wait)

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		provider, err := connectMySQL(ctx, config)
		if err == nil {
			return provider, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("mysql: max connection retries (%d) exceeded: %w", maxRetries, lastErr)
}

func connectMySQL(ctx context.Context, config types.IMySQL) (*Provider, error) {
	g, err := gorm.Open(gormmysql.New(gormmysql.Config{
		DSN:                       config.GetDsn(),
		DefaultStringSize:         256,
		SkipInitializeWithVersion: false,
	}), gormConfig(config.DebugMode()))
	if err != nil {
		return nil, err
	}

	provider, err := newProvider("MySQL", g, config.GetPool(), IsMySQLBadConn)
	if err != nil {
		return nil, err
	}

	if err := provider.Pool.Ping(ctx); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		electives.LogErr(provider.Pool.Shutdown(shutdownCtx))
		return nil, err
	}

	pc := config.GetPool()
	electives.LogI("MySQL Client Connected (Pool: %d, Queue: %v/%d, Keep-alive: %v)",
		pc.GetSize(), pc.GetWaitForConnections(), pc.GetQueueLimit(), pc.GetKeepAliveInterval())
	return provider, nil
}
