package drivers

import (
	"context"

	"github.com/natansdj/electives"
	"github.com/natansdj/electives/pool"
	"github.com/natansdj/electives/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SqLite opens a file database behind the same pool, for local development
func SqLite(ctx context.Context, config types.ISqLite) (*Provider, error) {
	electives.LogI("SqLite Client Starting ...")

	g, err := gorm.Open(sqlite.Open(config.GetPath()), gormConfig(config.DebugMode()))
	if err != nil {
		return nil, err
	}

	provider, err := newProvider("SqLite", g, config.GetPool(), pool.IsBadConn)
	if err != nil {
		return nil, err
	}

	if err := provider.Pool.Ping(ctx); err != nil {
		electives.LogErr(provider.Pool.Shutdown(ctx))
		return nil, err
	}

	electives.LogI("SqLite Client Connected (%s)", config.GetPath())
	return provider, nil
}
