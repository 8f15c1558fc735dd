package share

import (
	"context"
	"encoding/base64"
	"fmt"

	domain "github.com/GriffinCanCode/ShareView/backend/internal/domain/share"
	"github.com/GriffinCanCode/ShareView/backend/internal/types"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// Provider exposes a share as registry tools
type Provider struct {
	svc    *domain.Service
	logger *zap.Logger
}

// NewProvider creates a share tool provider
func NewProvider(svc *domain.Service, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{svc: svc, logger: logger}
}

// Definition returns the share service definition
func (p *Provider) Definition() types.Service {
	capabilities := []string{"list", "read", "search", "snapshots"}
	if p.svc.MetadataEnabled() {
		capabilities = append(capabilities, "metadata")
	}
	return types.Service{
		ID:           "share",
		Name:         "Share Browser",
		Description:  "Read-only access to a sandboxed directory tree and its snapshots",
		Category:     types.CategoryFilesystem,
		Capabilities: capabilities,
		Tools:        p.getTools(),
		DataModels:   dataModels(),
	}
}

// Execute runs a share tool
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "share.folder_contents":
		return p.folderContents(params)
	case "share.file_text":
		return p.fileText(params)
	case "share.file_content":
		return p.fileContent(params)
	case "share.file_metadata":
		return p.fileMetadata(params)
	case "share.list_snapshots":
		return p.listSnapshots(params)
	case "share.search":
		return p.search(ctx, params)
	case "share.image":
		return p.image(params)
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) folderContents(params map[string]interface{}) (*types.Result, error) {
	limit, err := intParam(params, "limit")
	if err != nil {
		return failure(err.Error())
	}

	listing, err := p.svc.ListFolder(stringParam(params, "path"), limit, stringParam(params, "snapshot"))
	if err != nil {
		return p.fail("share.folder_contents", err)
	}
	return toData(listing)
}

func (p *Provider) fileText(params map[string]interface{}) (*types.Result, error) {
	path, ok := requiredPath(params)
	if !ok {
		return failure("path parameter required")
	}
	kind, err := domain.ParseSizeLimitKind(stringParam(params, "limit_kind"))
	if err != nil {
		return failure(err.Error())
	}

	text, err := p.svc.ReadFileText(path, kind, stringParam(params, "snapshot"))
	if err != nil {
		return p.fail("share.file_text", err)
	}
	return success(map[string]interface{}{
		"path":    path,
		"content": text,
		"length":  len(text),
	})
}

func (p *Provider) fileContent(params map[string]interface{}) (*types.Result, error) {
	path, ok := requiredPath(params)
	if !ok {
		return failure("path parameter required")
	}
	kind, err := domain.ParseSizeLimitKind(stringParam(params, "limit_kind"))
	if err != nil {
		return failure(err.Error())
	}

	data, err := p.svc.ReadFileBytes(path, kind, stringParam(params, "snapshot"))
	if err != nil {
		return p.fail("share.file_content", err)
	}
	return success(map[string]interface{}{
		"path":     path,
		"content":  base64.StdEncoding.EncodeToString(data),
		"encoding": "base64",
		"size":     len(data),
	})
}

func (p *Provider) fileMetadata(params map[string]interface{}) (*types.Result, error) {
	path, ok := requiredPath(params)
	if !ok {
		return failure("path parameter required")
	}

	result, err := p.svc.GetMetadata(path, stringParam(params, "snapshot"))
	if err != nil {
		return p.fail("share.file_metadata", err)
	}
	// Metadata keeps its own key order when rendered.
	return success(map[string]interface{}{
		"file":     result.File,
		"metadata": result.Metadata,
	})
}

func (p *Provider) listSnapshots(params map[string]interface{}) (*types.Result, error) {
	listing, err := p.svc.ListSnapshots(stringParam(params, "path"))
	if err != nil {
		return p.fail("share.list_snapshots", err)
	}
	return toData(listing)
}

func (p *Provider) search(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	pattern := stringParam(params, "pattern")
	if pattern == "" {
		return failure("pattern parameter required")
	}
	limit, err := intParam(params, "limit")
	if err != nil {
		return failure(err.Error())
	}

	result, err := p.svc.Search(ctx, stringParam(params, "path"), pattern, limit, stringParam(params, "snapshot"))
	if err != nil {
		return p.fail("share.search", err)
	}
	return toData(result)
}

// image returns a supported image with its format, bounded by the return limit.
func (p *Provider) image(params map[string]interface{}) (*types.Result, error) {
	path, ok := requiredPath(params)
	if !ok {
		return failure("path parameter required")
	}

	format, err := p.svc.ImageFormat(path)
	if err != nil {
		return p.fail("share.image", err)
	}
	data, err := p.svc.ReadFileBytes(path, domain.LimitReturn, stringParam(params, "snapshot"))
	if err != nil {
		return p.fail("share.image", err)
	}
	return success(map[string]interface{}{
		"path":     path,
		"format":   format,
		"content":  base64.StdEncoding.EncodeToString(data),
		"encoding": "base64",
		"size":     len(data),
	})
}

// fail converts a share error into a failed result carrying its kind.
func (p *Provider) fail(toolID string, err error) (*types.Result, error) {
	kind := domain.KindOf(err)
	p.logger.Debug("tool failed",
		zap.String("tool", toolID),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	msg := err.Error()
	return &types.Result{
		Success: false,
		Data:    map[string]interface{}{"kind": string(kind)},
		Error:   &msg,
	}, nil
}

// toData flattens a typed result into the generic tool payload.
func toData(v interface{}) (*types.Result, error) {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	var data map[string]interface{}
	if err := sonic.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return success(data)
}

// Helper functions
func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}
