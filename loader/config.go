package loader

import (
	"github.com/natansdj/electives/types"
)

// Config reads the process environment into the service configuration.
// Unset values stay zero and fall back to the defaults in types.
func Config() *types.Config {
	pool := types.Pool{
		Size:               getEnvInt("DB_POOL_SIZE"),
		WaitForConnections: getEnvBoolPtr("DB_WAIT_FOR_CONNECTIONS"),
		QueueLimit:         getEnvInt("DB_QUEUE_LIMIT"),
		AcquireTimeout:     getEnvDuration("DB_ACQUIRE_TIMEOUT"),
		ConnMaxLifetime:    getEnvDuration("DB_CONN_MAX_LIFETIME"),
		ConnMaxIdleTime:    getEnvDuration("DB_CONN_MAX_IDLE_TIME"),
		KeepAliveInterval:  getEnvDuration("DB_KEEPALIVE_INTERVAL"),
		KeepAliveTimeout:   getEnvDuration("DB_KEEPALIVE_TIMEOUT"),
	}

	debug := getEnvBool("DB_DEBUG", false)

	return &types.Config{
		Environment: types.Environment{
			Name:     getEnv("APP_ENV"),
			LogLevel: getEnv("LOG_LEVEL"),
		},
		Driver: getEnv("DB_DRIVER"),
		MySQL: types.MySQL{
			Host:       getEnv("DB_HOST"),
			Port:       getEnv("DB_PORT"),
			Username:   getEnv("DB_USER"),
			Password:   getEnv("DB_PASSWORD"),
			Database:   getEnv("DB_NAME"),
			Debug:      debug,
			MaxRetries: getEnvInt("DB_MAX_RETRIES"),
			Pool:       pool,
		},
		SqLite: types.SqLite{
			Path:  getEnv("DB_SQLITE_PATH"),
			Debug: debug,
			Pool:  pool,
		},
		Http: types.HttpServer{
			Port:           getEnv("PORT"),
			Mode:           getEnv("HTTP_MODE"),
			Gzip:           getEnvBool("HTTP_GZIP", false),
			RequestTimeout: getEnvDuration("HTTP_REQUEST_TIMEOUT"),
			HealthTimeout:  getEnvDuration("HEALTH_TIMEOUT"),
			ShutdownGrace:  getEnvDuration("SHUTDOWN_GRACE"),
			ReviewRoutes:   getEnvBool("ROUTES_REVIEWS", true),
		},
	}
}
