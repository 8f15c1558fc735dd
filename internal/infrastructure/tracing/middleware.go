package tracing

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	TraceHeader = "X-Trace-ID"
	SpanHeader  = "X-Span-ID"

	maxHeaderIDLength = 64
)

// HTTPMiddleware creates Gin middleware for HTTP tracing
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithSpan(c.Request.Context(),
			TraceID(sanitizeID(c.GetHeader(TraceHeader))),
			SpanID(sanitizeID(c.GetHeader(SpanHeader))),
		)

		name := c.FullPath()
		if name == "" {
			name = c.Request.URL.Path
		}
		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+name)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.path", c.Request.URL.Path)
		span.SetTag("http.client_ip", c.ClientIP())

		c.Request = c.Request.WithContext(ctx)

		c.Header(TraceHeader, string(span.TraceID))
		c.Header(SpanHeader, string(span.SpanID))

		c.Next()

		span.SetStatus(c.Writer.Status())
		span.SetTag("http.status", strconv.Itoa(c.Writer.Status()))
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}

		span.Finish()
		tracer.Submit(span)
	}
}

// sanitizeID drops caller-supplied ids that are too long or contain characters
// outside [A-Za-z0-9-_].
func sanitizeID(id string) string {
	if len(id) == 0 || len(id) > maxHeaderIDLength {
		return ""
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ""
		}
	}
	return id
}
