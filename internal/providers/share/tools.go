package share

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/ShareView/backend/internal/types"
)

func (p *Provider) getTools() []types.Tool {
	pathParam := types.Parameter{Name: "path", Type: "string", Description: "Path relative to the share root", Required: true}
	snapshotParam := types.Parameter{Name: "snapshot", Type: "string", Description: "Snapshot id; live tree when empty", Required: false}
	limitKindParam := types.Parameter{Name: "limit_kind", Type: "string", Description: "Size limit to apply: return, read or none", Required: false}

	tools := []types.Tool{
		{
			ID:          "share.folder_contents",
			Name:        "Folder Contents",
			Description: "List the direct subfolders and files of a folder",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Folder path; share root when empty", Required: false},
				{Name: "limit", Type: "number", Description: "Maximum entries to return", Required: false},
				snapshotParam,
			},
			Returns: "object",
		},
		{
			ID:          "share.file_text",
			Name:        "File Text",
			Description: "Read a file as text, replacing undecodable bytes",
			Parameters:  []types.Parameter{pathParam, limitKindParam, snapshotParam},
			Returns:     "string",
		},
		{
			ID:          "share.file_content",
			Name:        "File Content",
			Description: "Read the raw bytes of a file, base64 encoded",
			Parameters:  []types.Parameter{pathParam, limitKindParam, snapshotParam},
			Returns:     "string",
		},
		{
			ID:          "share.list_snapshots",
			Name:        "List Snapshots",
			Description: "List snapshots newest first and whether each contains the path",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Path to look up in each snapshot", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "share.search",
			Name:        "Search",
			Description: "Find entries below a folder whose relative path matches a glob",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Folder to search; share root when empty", Required: false},
				{Name: "pattern", Type: "string", Description: "Glob pattern, ** matches across folders", Required: true},
				{Name: "limit", Type: "number", Description: "Maximum matches to return", Required: false},
				snapshotParam,
			},
			Returns: "object",
		},
		{
			ID:          "share.image",
			Name:        "Image",
			Description: "Read a PNG or JPEG image with its format",
			Parameters:  []types.Parameter{pathParam, snapshotParam},
			Returns:     "object",
		},
	}

	if p.svc.MetadataEnabled() {
		tools = append(tools, types.Tool{
			ID:          "share.file_metadata",
			Name:        "File Metadata",
			Description: "Describe a file and extract its metadata",
			Parameters:  []types.Parameter{pathParam, snapshotParam},
			Returns:     "object",
		})
	}
	return tools
}

func dataModels() []types.DataModel {
	return []types.DataModel{
		{
			Name: "FolderItem",
			Fields: map[string]string{
				"name": "string",
				"path": "string",
			},
		},
		{
			Name: "FileItem",
			Fields: map[string]string{
				"name":                     "string",
				"path":                     "string",
				"size":                     "number",
				"is_too_large":             "boolean",
				"is_supported_image":       "boolean",
				"supports_text_extraction": "boolean",
			},
		},
		{
			Name: "SnapshotDescriptor",
			Fields: map[string]string{
				"id":            "string",
				"display_name":  "string",
				"timestamp":     "string",
				"contains_path": "boolean",
			},
		},
	}
}

func stringParam(params map[string]interface{}, name string) string {
	s, _ := params[name].(string)
	return s
}

func requiredPath(params map[string]interface{}) (string, bool) {
	path := stringParam(params, "path")
	return path, strings.TrimSpace(path) != ""
}

// intParam reads an optional integer. JSON numbers arrive as float64.
func intParam(params map[string]interface{}, name string) (*int, error) {
	raw, ok := params[name]
	if !ok || raw == nil {
		return nil, nil
	}

	var n int
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%s must be an integer", name)
		}
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	case string:
		if v == "" {
			return nil, nil
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer", name)
		}
		n = parsed
	default:
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}
