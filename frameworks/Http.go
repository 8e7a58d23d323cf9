package frameworks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/natansdj/electives"
	"github.com/natansdj/electives/supervisor"
	"github.com/natansdj/electives/types"
)

// HTTP service struct
type HttpServer struct {
	server     *http.Server
	engine     *gin.Engine
	middleware func(*gin.Engine)
	router     func(*gin.Engine)
	gzip       bool
	timeout    time.Duration
	stopped    atomic.Bool
}

// LogFormatter prints gin access lines in the same layout as the rest of the log
func LogFormatter(param gin.LogFormatterParams) string {
	var statusColor, methodColor, resetColor string
	if param.IsOutputColor() {
		statusColor = param.StatusCodeColor()
		methodColor = param.MethodColor()
		resetColor = param.ResetColor()
	}

	if param.Latency > time.Minute {
		param.Latency = param.Latency.Truncate(time.Second)
	}

	return fmt.Sprintf("%s[HTTP]%s %v |%s %3d %s| %13v | %15s |%s %-7s %s %#v\n%s",
		"\x1b[90;32m", resetColor,
		param.TimeStamp.Format("2006-01-02 15:04:05"),
		statusColor, param.StatusCode, resetColor,
		param.Latency,
		param.ClientIP,
		methodColor, param.Method, resetColor,
		param.Path,
		param.ErrorMessage,
	)
}

// Initialize service. The deadline sits after the app middleware and before
// routing, so CORS headers reach the 504 and every route is covered.
func (h *HttpServer) init(config types.IHttpServer) {
	gin.SetMode(config.GetMode())

	h.engine = gin.New()
	h.engine.SetTrustedProxies(nil)

	h.middleware = config.GetMiddleware()
	h.router = config.GetRouter()
	h.gzip = config.GetGzip()
	h.timeout = config.GetRequestTimeout()

	h.engine.Use(gin.LoggerWithFormatter(LogFormatter), gin.Recovery())

	h.middleware(h.engine)

	h.engine.Use(supervisor.Timeout(supervisor.Config{Timeout: h.timeout}))

	// Implement GZip Features
	if h.gzip {
		h.engine.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	h.router(h.engine)

	h.server = &http.Server{
		Addr:              fmt.Sprintf(":%s", config.GetPort()),
		Handler:           h.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run service, restarting the listener after an unexpected failure
func (h *HttpServer) serve() {
	go func() {
		err := h.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) || h.stopped.Load() {
			return
		}
		if err != nil {
			electives.LogE("HTTP Server: %s", err.Error())
		}

		time.Sleep(time.Second)
		if !h.stopped.Load() {
			h.serve()
		}
	}()
}

// Handler exposes the configured engine, mainly for tests
func (h *HttpServer) Handler() http.Handler {
	return h.engine
}

// Disconnect stops accepting requests and waits for in-flight ones until ctx ends
func (h *HttpServer) Disconnect(ctx context.Context) error {
	electives.LogI("HTTP Server Stopping ...")

	h.stopped.Store(true)
	if err := h.server.Shutdown(ctx); err != nil {
		electives.LogE("HTTP Server shutdown: %s", err.Error())
		h.server.Close()
		return err
	}

	electives.LogI("HTTP Server Stopped ...")
	return nil
}

// NewHttp builds the engine without listening
func NewHttp(config types.IHttpServer) *HttpServer {
	var h HttpServer
	h.init(config)
	return &h
}

// Start http service
func Http(config types.IHttpServer) *HttpServer {
	electives.LogI("HTTP Server Starting ...")

	h := NewHttp(config)
	h.serve()

	electives.LogI("HTTP Server listening on %s", h.server.Addr)
	return h
}
