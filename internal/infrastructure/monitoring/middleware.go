package monitoring

import (
	"strconv"
	"time"

	"github.com/GriffinCanCode/ShareView/backend/internal/domain/share"
	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Matched route template keeps label cardinality bounded.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
			int64(c.Writer.Size()),
		)
	}
}

// Timer measures a share operation
type Timer struct {
	start     time.Time
	metrics   *Metrics
	operation string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, operation string) *Timer {
	return &Timer{
		start:     time.Now(),
		metrics:   metrics,
		operation: operation,
	}
}

// Stop records the duration and, for failures, the share error kind
func (t *Timer) Stop(err error) {
	kind := ""
	if err != nil {
		kind = string(share.KindOf(err))
	}
	t.metrics.RecordOperation(t.operation, kind, time.Since(t.start))
}
