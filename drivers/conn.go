package drivers

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/natansdj/electives"
	"github.com/natansdj/electives/circuitbreaker"
	"github.com/natansdj/electives/pool"
	"gorm.io/gorm"
)

// sqlConn pins one physical connection of a *sql.DB for the lifetime of a pool slot.
type sqlConn struct {
	conn *sql.Conn
}

func (c *sqlConn) Ping(ctx context.Context) error {
	var one int
	return c.conn.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

// Close destroys the physical connection instead of returning it to database/sql.
func (c *sqlConn) Close() error {
	err := c.conn.Raw(func(any) error { return driver.ErrBadConn })
	if err == nil || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return nil
	}
	return err
}

func (c *sqlConn) ConnPool() gorm.ConnPool {
	return c.conn
}

// NewSQLFactory opens pool connections from db
func NewSQLFactory(db *sql.DB) pool.Factory {
	return pool.FactoryFunc(func(ctx context.Context) (pool.Connection, error) {
		conn, err := db.Conn(ctx)
		if err != nil {
			return nil, err
		}
		return &sqlConn{conn: conn}, nil
	})
}

// guardFactory fails dials fast once the database has refused several in a row.
// Cancelled or timed-out acquires do not count against it.
func guardFactory(name string, factory pool.Factory) pool.Factory {
	breaker := circuitbreaker.New(name, circuitbreaker.Settings{
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			electives.LogW("%s connection breaker: %s -> %s", name, from, to)
		},
	})

	return pool.FactoryFunc(func(ctx context.Context) (pool.Connection, error) {
		var conn pool.Connection
		err := breaker.Execute(func() error {
			var err error
			conn, err = factory.Create(ctx)
			return err
		})
		return conn, err
	})
}

// Session binds a gorm session to one checked-out connection
func Session(ctx context.Context, db *gorm.DB, c *pool.Conn) *gorm.DB {
	tx := db.Session(&gorm.Session{NewDB: true, Context: ctx})
	if sc, ok := c.Raw().(interface{ ConnPool() gorm.ConnPool }); ok {
		tx.Statement.ConnPool = sc.ConnPool()
	}
	return tx
}
