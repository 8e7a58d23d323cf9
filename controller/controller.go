package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/natansdj/electives"
	"github.com/natansdj/electives/health"
	"github.com/natansdj/electives/metrics"
	"github.com/natansdj/electives/pool"
	"github.com/natansdj/electives/repository"
)

// Store is the data access the routes need, satisfied by *repository.Repository
type Store interface {
	AllModules(ctx context.Context) ([]repository.Module, error)
	SearchModules(ctx context.Context, q string) ([]repository.Module, error)
	ModuleByCode(ctx context.Context, code string) (*repository.Module, error)
	ModuleReviews(ctx context.Context, code string) ([]repository.Review, error)
	SubmitReview(ctx context.Context, review *repository.Review) error
}

// PoolReporter exposes pool counters on /health, satisfied by *pool.Pool
type PoolReporter interface {
	Stats() pool.PoolStats
	GetMetrics() *metrics.Metrics
}

// Controller holds the canonical route set. Every handler shares the one store.
type Controller struct {
	Store   Store
	Health  health.Checker
	Pool    PoolReporter
	Reviews bool
}

func New(store Store, checker health.Checker, reporter PoolReporter) *Controller {
	return &Controller{
		Store:   store,
		Health:  checker,
		Pool:    reporter,
		Reviews: true,
	}
}

// Router registers every route plus the 404 fallback
func (ctl *Controller) Router(engine *gin.Engine) {
	modules := engine.Group("/modules")
	{
		modules.GET("/all", ctl.AllModules)
		modules.GET("/search", ctl.SearchModules)
		modules.GET("/:module_code", ctl.GetModule)

		if ctl.Reviews {
			modules.GET("/:module_code/reviews", ctl.ModuleReviews)
		}
	}

	if ctl.Reviews {
		engine.POST("/review/submission", ctl.SubmitReview)
	}

	engine.GET("/health", ctl.CheckHealth)
	engine.NoRoute(NotFound)
}

type errorResponse struct {
	Error string `json:"error"`
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, errorResponse{Error: message})
}

// fail logs err with the request and answers a generic 500
func fail(c *gin.Context, err error, message string) {
	key := "controller-" + c.FullPath()
	if errors.Is(err, pool.ErrPoolExhausted) {
		key = "controller-pool-exhausted"
	}
	electives.LogERL(key, "%s %s: %s", c.Request.Method, c.Request.URL.Path, err.Error())

	abort(c, http.StatusInternalServerError, message)
}

// NotFound answers any unmatched route
func NotFound(c *gin.Context) {
	abort(c, http.StatusNotFound, "Not found")
}
