// Package testutil provides fixtures and mocks shared by the backend tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GriffinCanCode/ShareView/backend/internal/domain/share"
	"github.com/GriffinCanCode/ShareView/backend/internal/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Tree describes a share fixture: relative path to file content. Paths ending in "/"
// create empty directories.
type Tree map[string]string

// NewShare creates a temporary share root populated with tree.
func NewShare(t *testing.T, tree Tree) string {
	t.Helper()
	root := t.TempDir()
	Populate(t, root, tree)
	return root
}

// Populate writes tree below root.
func Populate(t *testing.T, root string, tree Tree) {
	t.Helper()
	for rel, content := range tree {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// Symlink creates link pointing at target, creating the parent of link if needed.
func Symlink(t *testing.T, target, link string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0o755))
	require.NoError(t, os.Symlink(target, link))
}

// ShareConfig returns a config for root with snapshots under ".snapshot" and no limits.
func ShareConfig(root string) share.Config {
	return share.Config{
		Root:           root,
		SnapshotFolder: ".snapshot",
	}
}

// NewService builds a share service and fails the test on configuration errors.
func NewService(t *testing.T, cfg share.Config, opts ...share.Option) *share.Service {
	t.Helper()
	svc, err := share.NewService(cfg, opts...)
	require.NoError(t, err)
	return svc
}

// MockExtractor is a mock implementation of share.MetadataExtractor.
type MockExtractor struct {
	mock.Mock
}

// Extract mocks the Extract method.
func (m *MockExtractor) Extract(absolutePath string) (*share.Metadata, error) {
	args := m.Called(absolutePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*share.Metadata), args.Error(1)
}

// MockServiceProvider is a mock implementation of service.Provider.
type MockServiceProvider struct {
	mock.Mock
}

// Definition mocks the Definition method.
func (m *MockServiceProvider) Definition() types.Service {
	args := m.Called()
	return args.Get(0).(types.Service)
}

// Execute mocks the Execute method.
func (m *MockServiceProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	args := m.Called(ctx, toolID, params, appCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Result), args.Error(1)
}

// NewMockServiceProvider creates a mock provider whose definition carries serviceID.
func NewMockServiceProvider(t *testing.T, serviceID string) *MockServiceProvider {
	t.Helper()
	m := new(MockServiceProvider)
	m.On("Definition").Return(types.Service{
		ID:          serviceID,
		Name:        "Mock Service",
		Description: "Mock service for testing",
		Category:    types.CategoryFilesystem,
		Tools:       []types.Tool{},
	}).Maybe()
	return m
}

// AssertSuccess fails the test unless result reports success.
func AssertSuccess(t *testing.T, result *types.Result) {
	t.Helper()
	if result == nil {
		t.Fatal("Result is nil")
	}
	if !result.Success {
		msg := "<nil>"
		if result.Error != nil {
			msg = *result.Error
		}
		t.Fatalf("Expected success, got error: %s", msg)
	}
}

// AssertError fails the test unless result reports a failure with a message.
func AssertError(t *testing.T, result *types.Result) {
	t.Helper()
	if result == nil {
		t.Fatal("Result is nil")
	}
	if result.Success {
		t.Fatal("Expected error, got success")
	}
	if result.Error == nil {
		t.Fatal("Expected error message, got nil")
	}
}
