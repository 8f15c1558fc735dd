package http

import (
	"net/http"

	"github.com/GriffinCanCode/ShareView/backend/internal/domain/share"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a share error kind to an HTTP status.
func statusFor(kind share.Kind) int {
	switch kind {
	case share.KindAccessDenied:
		return http.StatusForbidden
	case share.KindNotFound:
		return http.StatusNotFound
	case share.KindNotADirectory, share.KindIsADirectory, share.KindInvalidArgument:
		return http.StatusBadRequest
	case share.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case share.KindConfigurationError:
		return http.StatusNotImplemented
	case share.KindUnsupportedFile:
		return http.StatusUnsupportedMediaType
	case share.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a share error. Internal failures hide their cause, which may
// carry absolute paths.
func (h *Handlers) writeError(c *gin.Context, err error) {
	kind := share.KindOf(err)
	status := statusFor(kind)

	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		message = "internal error"
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	h.render(c, status, gin.H{"error": message, "kind": string(kind)})
}

// badRequest renders a parameter error.
func (h *Handlers) badRequest(c *gin.Context, message string) {
	h.render(c, http.StatusBadRequest, gin.H{"error": message, "kind": string(share.KindInvalidArgument)})
}
