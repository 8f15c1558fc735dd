package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/ShareView/backend/internal/domain/share"
	"github.com/GriffinCanCode/ShareView/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ShareView/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/ShareView/backend/internal/service"
	"github.com/GriffinCanCode/ShareView/backend/internal/types"
	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root endpoint.
const Version = "0.1.0"

const (
	maxExecuteBodySize = 1 << 20
	maxParamsDepth     = 20
)

// Handlers contains all HTTP handlers
type Handlers struct {
	svc      *share.Service
	registry *service.Registry
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(svc *share.Service, registry *service.Registry, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		svc:      svc,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	h.render(c, http.StatusOK, gin.H{
		"status":  "online",
		"service": "ShareView",
		"version": Version,
	})
}

// Health handles the detailed health check
func (h *Handlers) Health(c *gin.Context) {
	cfg := h.svc.Config()
	h.render(c, http.StatusOK, gin.H{
		"status": "healthy",
		"share": gin.H{
			"snapshots_enabled": cfg.SnapshotsEnabled(),
			"metadata_enabled":  h.svc.MetadataEnabled(),
			"max_scan_items":    cfg.MaxScanItems,
		},
		"registry": h.registry.Stats(),
		"metrics":  h.metrics.Snapshot(),
	})
}

// ListFolder lists the direct children of a folder
func (h *Handlers) ListFolder(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit")
	if !ok {
		return
	}

	timer := monitoring.NewTimer(h.metrics, "list_folder")
	listing, err := h.svc.ListFolder(c.Query("path"), limit, c.Query("snapshot"))
	timer.Stop(err)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.metrics.RecordListing("list_folder", listing.Len(), listing.Truncated)
	h.render(c, http.StatusOK, listing)
}

// FileContent streams the raw bytes of a file
func (h *Handlers) FileContent(c *gin.Context) {
	kind, ok := h.limitKind(c)
	if !ok {
		return
	}
	relativePath := c.Query("path")

	timer := monitoring.NewTimer(h.metrics, "read_file")
	data, err := h.svc.ReadFileBytes(relativePath, kind, c.Query("snapshot"))
	timer.Stop(err)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.metrics.RecordBytes("read_file", len(data))
	if name := path.Base(strings.ReplaceAll(relativePath, "\\", "/")); name != "" && name != "." && name != "/" {
		c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": name}))
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}

// FileText returns a file decoded as text
func (h *Handlers) FileText(c *gin.Context) {
	kind, ok := h.limitKind(c)
	if !ok {
		return
	}
	relativePath := c.Query("path")

	timer := monitoring.NewTimer(h.metrics, "read_text")
	text, err := h.svc.ReadFileText(relativePath, kind, c.Query("snapshot"))
	timer.Stop(err)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.metrics.RecordBytes("read_text", len(text))
	h.render(c, http.StatusOK, gin.H{
		"path":    relativePath,
		"content": text,
	})
}

// FileMetadata describes a file and its extracted metadata
func (h *Handlers) FileMetadata(c *gin.Context) {
	timer := monitoring.NewTimer(h.metrics, "get_metadata")
	result, err := h.svc.GetMetadata(c.Query("path"), c.Query("snapshot"))
	timer.Stop(err)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.render(c, http.StatusOK, result)
}

// ListSnapshots lists the snapshots that may contain a path
func (h *Handlers) ListSnapshots(c *gin.Context) {
	timer := monitoring.NewTimer(h.metrics, "list_snapshots")
	listing, err := h.svc.ListSnapshots(c.Query("path"))
	timer.Stop(err)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.render(c, http.StatusOK, listing)
}

// Search finds entries matching a glob below a folder
func (h *Handlers) Search(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit")
	if !ok {
		return
	}

	timer := monitoring.NewTimer(h.metrics, "search")
	result, err := h.svc.Search(c.Request.Context(), c.Query("path"), c.Query("pattern"), limit, c.Query("snapshot"))
	timer.Stop(err)
	if err != nil {
		if ctxErr := c.Request.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			// Client went away.
			c.Status(499)
			return
		}
		h.writeError(c, err)
		return
	}

	h.metrics.RecordListing("search", result.Len(), result.Truncated)
	h.render(c, http.StatusOK, result)
}

// ListServices lists registered tool services
func (h *Handlers) ListServices(c *gin.Context) {
	var category *types.Category
	if raw := c.Query("category"); raw != "" {
		cat := types.Category(raw)
		category = &cat
	}

	h.render(c, http.StatusOK, gin.H{
		"services": h.registry.List(category),
		"stats":    h.registry.Stats(),
	})
}

// DiscoverServices ranks services for a free-form query
func (h *Handlers) DiscoverServices(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		h.badRequest(c, "q parameter required")
		return
	}
	h.render(c, http.StatusOK, gin.H{
		"query":    query,
		"services": h.registry.Discover(query, 5),
	})
}

// ExecuteRequest is the body of POST /services/execute
type ExecuteRequest struct {
	ToolID string                 `json:"tool_id"`
	Params map[string]interface{} `json:"params"`
}

// ExecuteService executes a registry tool
func (h *Handlers) ExecuteService(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxExecuteBodySize))
	if err != nil {
		h.render(c, http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large", "kind": string(share.KindTooLarge)})
		return
	}

	var req ExecuteRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		h.badRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.ToolID == "" {
		h.badRequest(c, "tool_id is required")
		return
	}
	if err := validateDepth(req.Params, 0, maxParamsDepth); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	traceID := string(tracing.GetTraceID(c.Request.Context()))
	clientIP := c.ClientIP()
	appCtx := &types.Context{TraceID: &traceID, ClientIP: &clientIP}

	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	if err != nil {
		if result != nil {
			h.metrics.RecordToolCall("unknown", false)
			h.render(c, http.StatusNotFound, result)
			return
		}
		h.writeError(c, err)
		return
	}

	h.metrics.RecordToolCall(req.ToolID, result.Success)
	h.render(c, http.StatusOK, result)
}

func (h *Handlers) queryInt(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		h.badRequest(c, fmt.Sprintf("%s must be an integer", name))
		return nil, false
	}
	return &n, true
}

func (h *Handlers) limitKind(c *gin.Context) (share.SizeLimitKind, bool) {
	kind, err := share.ParseSizeLimitKind(c.Query("limit_kind"))
	if err != nil {
		h.badRequest(c, err.Error())
		return "", false
	}
	return kind, true
}

// validateDepth rejects deeply nested tool parameters.
func validateDepth(data interface{}, depth, maxDepth int) error {
	if depth > maxDepth {
		return fmt.Errorf("params nesting depth exceeds %d", maxDepth)
	}
	switch v := data.(type) {
	case map[string]interface{}:
		for _, value := range v {
			if err := validateDepth(value, depth+1, maxDepth); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, value := range v {
			if err := validateDepth(value, depth+1, maxDepth); err != nil {
				return err
			}
		}
	}
	return nil
}
