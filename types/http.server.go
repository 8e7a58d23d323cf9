package types

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natansdj/electives"
)

// Default HTTP configuration
const (
	SERVER_HTTP_PORT            = "5001"
	SERVER_HTTP_MODE            = gin.ReleaseMode
	SERVER_HTTP_REQUEST_TIMEOUT = 5 * time.Second
	SERVER_HTTP_HEALTH_TIMEOUT  = 3 * time.Second
	SERVER_HTTP_SHUTDOWN_GRACE  = 10 * time.Second
)

// Interface for accessable method
type IHttpServer interface {
	GetPort() string
	GetMode() string
	GetGzip() bool
	GetRequestTimeout() time.Duration
	GetHealthTimeout() time.Duration
	GetShutdownGrace() time.Duration
	GetMiddleware() func(*gin.Engine)
	GetRouter() func(*gin.Engine)
}

// Serve information
type HttpServer struct {
	Port           string
	Mode           string
	Gzip           bool
	RequestTimeout time.Duration
	HealthTimeout  time.Duration
	ShutdownGrace  time.Duration
	ReviewRoutes   bool
	Middleware     func(*gin.Engine)
	Router         func(*gin.Engine)
}

// Get Port
func (h *HttpServer) GetPort() string {
	if h.Port == "" {
		electives.LogW("Config: PORT is not set, using default configuration.")
		return SERVER_HTTP_PORT
	}
	return h.Port
}

// Get Mode
func (h *HttpServer) GetMode() string {
	switch h.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return h.Mode
	}
	return SERVER_HTTP_MODE
}

func (h *HttpServer) GetGzip() bool {
	return h.Gzip
}

// GetRequestTimeout is the per-request deadline
func (h *HttpServer) GetRequestTimeout() time.Duration {
	if h.RequestTimeout <= 0 {
		return SERVER_HTTP_REQUEST_TIMEOUT
	}
	return h.RequestTimeout
}

// GetHealthTimeout bounds the /health probe query
func (h *HttpServer) GetHealthTimeout() time.Duration {
	if h.HealthTimeout <= 0 {
		return SERVER_HTTP_HEALTH_TIMEOUT
	}
	return h.HealthTimeout
}

// GetShutdownGrace bounds the drain of in-flight requests and pool checkouts
func (h *HttpServer) GetShutdownGrace() time.Duration {
	if h.ShutdownGrace <= 0 {
		return SERVER_HTTP_SHUTDOWN_GRACE
	}
	return h.ShutdownGrace
}

func (h *HttpServer) GetMiddleware() func(*gin.Engine) {
	if h.Middleware == nil {
		return func(*gin.Engine) {}
	}
	return h.Middleware
}

func (h *HttpServer) GetRouter() func(*gin.Engine) {
	if h.Router == nil {
		return func(*gin.Engine) {}
	}
	return h.Router
}
