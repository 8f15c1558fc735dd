package share_test

import (
	"context"
	"testing"

	"github.com/GriffinCanCode/ShareView/backend/internal/domain/share"
	"github.com/GriffinCanCode/ShareView/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchPaths(result *share.SearchResult) (folders, files []string) {
	for _, f := range result.Subfolders {
		folders = append(folders, f.Path)
	}
	for _, f := range result.Files {
		files = append(files, f.Path)
	}
	return folders, files
}

func TestSearch(t *testing.T) {
	root := testutil.NewShare(t, testutil.Tree{
		"docs/a.txt":           "a",
		"docs/b.md":            "b",
		"docs/deep/c.txt":      "c",
		"docs/deep/txt/":       "",
		"private/d.txt":        "d",
		"src/.git/e.txt":       "e",
		"top.txt":              "top",
		".snapshot/snap/f.txt": "f",
	})
	cfg := testutil.ShareConfig(root)
	cfg.ExcludeFolders = []string{"private"}
	cfg.ExcludePatterns = []string{"**/.git"}
	svc := testutil.NewService(t, cfg)
	ctx := context.Background()

	t.Run("recursive pattern", func(t *testing.T) {
		result, err := svc.Search(ctx, "", "**/*.txt", nil, "")
		require.NoError(t, err)

		folders, files := searchPaths(result)
		assert.Empty(t, folders)
		assert.Equal(t, []string{"docs/a.txt", "docs/deep/c.txt", "top.txt"}, files)
		assert.Equal(t, "**/*.txt", result.Pattern)
		assert.False(t, result.Truncated)
	})

	t.Run("relative to folder", func(t *testing.T) {
		result, err := svc.Search(ctx, "docs/", "deep/*", nil, "")
		require.NoError(t, err)

		folders, files := searchPaths(result)
		assert.Equal(t, []string{"docs/deep/txt"}, folders)
		assert.Equal(t, []string{"docs/deep/c.txt"}, files)
		assert.Equal(t, "docs", result.Root)
	})

	t.Run("limit", func(t *testing.T) {
		result, err := svc.Search(ctx, "", "**/*.txt", intPtr(1), "")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Len())
		assert.True(t, result.Truncated)
	})

	t.Run("snapshot", func(t *testing.T) {
		result, err := svc.Search(ctx, "", "*.txt", nil, "snap")
		require.NoError(t, err)
		_, files := searchPaths(result)
		assert.Equal(t, []string{"f.txt"}, files)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := svc.Search(ctx, "", "[", nil, "")
		assert.Equal(t, share.KindInvalidArgument, share.KindOf(err))
		_, err = svc.Search(ctx, "", "", nil, "")
		assert.Equal(t, share.KindInvalidArgument, share.KindOf(err))
	})

	t.Run("excluded folder", func(t *testing.T) {
		_, err := svc.Search(ctx, "private", "*", nil, "")
		assert.True(t, share.IsNotFound(err))
	})

	t.Run("not a directory", func(t *testing.T) {
		_, err := svc.Search(ctx, "top.txt", "*", nil, "")
		assert.Equal(t, share.KindNotADirectory, share.KindOf(err))
	})

	t.Run("cancelled", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.Search(cancelled, "", "**", nil, "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
