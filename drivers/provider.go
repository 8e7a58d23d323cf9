package drivers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/natansdj/electives"
	"github.com/natansdj/electives/pool"
	"github.com/natansdj/electives/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Provider owns one database handle and the pool that hands out its connections
type Provider struct {
	Name string
	Gorm *gorm.DB
	Sql  *sql.DB
	Pool *pool.Pool
}

func gormConfig(debug bool) *gorm.Config {
	var logType logger.Interface = logger.Default.LogMode(logger.Warn)
	if debug {
		logType = logger.Default.LogMode(logger.Info)
	}

	return &gorm.Config{
		Logger: logType,
		NamingStrategy: schema.NamingStrategy{
			NoLowerCase:   true,
			SingularTable: true,
		},
		PrepareStmt: false,
	}
}

// newProvider sizes database/sql to the pool and wires the pool's close hook to it.
func newProvider(name string, g *gorm.DB, config types.IPool, isBroken func(error) bool) (*Provider, error) {
	sqlDB, err := g.DB()
	if err != nil {
		return nil, err
	}

	size := config.GetSize()
	sqlDB.SetMaxOpenConns(size)
	sqlDB.SetMaxIdleConns(size)

	poolConfig := pool.Config{
		MaxSize:            size,
		WaitForConnections: config.GetWaitForConnections(),
		QueueLimit:         config.GetQueueLimit(),
		AcquireTimeout:     config.GetAcquireTimeout(),
		MaxLifetime:        config.GetConnMaxLifetime(),
		MaxIdleTime:        config.GetConnMaxIdleTime(),
		IsBroken:           isBroken,
		OnClose:            sqlDB.Close,
	}

	p := &Provider{
		Name: name,
		Gorm: g,
		Sql:  sqlDB,
		Pool: pool.NewPool(guardFactory(name, NewSQLFactory(sqlDB)), poolConfig),
	}
	p.Pool.StartKeepAlive(config.GetKeepAliveInterval(), config.GetKeepAliveTimeout())

	return p, nil
}

// Disconnect drains the pool and closes the database handle
func (p *Provider) Disconnect(ctx context.Context) error {
	electives.LogI("%s Stopping ...", p.Name)

	err := p.Pool.Shutdown(ctx)
	if err != nil && !errors.Is(err, pool.ErrShutdownInProgress) {
		electives.LogE("%s shutdown: %s", p.Name, err.Error())
		return err
	}

	electives.LogI("%s Stopped ...", p.Name)
	return nil
}

// Open connects the driver selected in config
func Open(ctx context.Context, config *types.Config) (*Provider, error) {
	if config.GetDriver() == types.DRIVER_SQLITE {
		return SqLite(ctx, &config.SqLite)
	}
	return MySQL(ctx, &config.MySQL)
}
