package http

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const jsonContentType = "application/json; charset=utf-8"

// render writes v as JSON using sonic.
func (h *Handlers) render(c *gin.Context, status int, v interface{}) {
	body, err := sonic.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		c.Data(http.StatusInternalServerError, jsonContentType, []byte(`{"error":"internal error","kind":"internal"}`))
		return
	}
	c.Data(status, jsonContentType, body)
}
