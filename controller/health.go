package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/natansdj/electives/health"
	"github.com/natansdj/electives/metrics"
	"github.com/natansdj/electives/pool"
)

type healthResponse struct {
	health.CheckResult
	Pool    *pool.PoolStats          `json:"pool,omitempty"`
	Metrics *metrics.MetricsSnapshot `json:"metrics,omitempty"`
}

// CheckHealth handles GET /health: 200 when the database answers, 500 otherwise
func (ctl *Controller) CheckHealth(c *gin.Context) {
	result := ctl.Health.Check(c.Request.Context())

	res := healthResponse{CheckResult: result}
	if ctl.Pool != nil {
		stats := ctl.Pool.Stats()
		snapshot := ctl.Pool.GetMetrics().GetSnapshot()
		res.Pool = &stats
		res.Metrics = &snapshot
	}

	c.JSON(result.HTTPStatus(), res)
}
