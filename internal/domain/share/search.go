package share

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

var errSearchLimit = errors.New("search limit reached")

// Search walks the tree below relativePath and returns the entries whose path relative
// to that folder matches pattern. Excluded sub-trees are pruned and symlinks are not
// followed. Results are sorted by path.
func (s *Service) Search(ctx context.Context, relativePath, pattern string, limit *int, snapshotID string) (*SearchResult, error) {
	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return nil, newError(KindInvalidArgument, "search", pattern, fmt.Errorf("invalid pattern %q", pattern))
	}
	logical := normalizeLogical(relativePath)

	abs, err := s.resolver.Resolve(logical, snapshotID)
	if err != nil {
		return nil, err
	}
	if !isDir(abs) {
		return nil, newError(KindNotADirectory, "search", relativePath, errors.New("path is not a directory"))
	}
	liveBase, err := s.resolver.ResolveRoot(logical)
	if err != nil {
		return nil, err
	}

	cfg := s.resolver.cfg
	hideSnapshots := snapshotID == "" && !cfg.IncludeSnapshotRoot && cfg.SnapshotsEnabled()
	maxItems := s.resolver.policy.scanLimit(limit)

	result := &SearchResult{
		Root:       logical,
		Pattern:    pattern,
		Subfolders: []FolderItem{},
		Files:      []FileItem{},
	}
	var mu sync.Mutex

	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, abs, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return nil
		}

		rel, relErr := filepath.Rel(abs, p)
		if relErr != nil || rel == "." {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if s.resolver.IsExcluded(filepath.Join(liveBase, rel)) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}
		if d.IsDir() && hideSnapshots && d.Name() == cfg.SnapshotFolder {
			return fastwalk.SkipDir
		}

		relSlash := filepath.ToSlash(rel)
		matched, _ := doublestar.Match(pattern, relSlash)
		if !matched {
			return nil
		}

		var entry Entry
		itemPath := joinLogical(logical, relSlash)
		if d.IsDir() {
			entry = FolderItem{Name: d.Name(), Path: itemPath}
		} else {
			info, infoErr := d.Info()
			if infoErr != nil {
				return nil
			}
			entry = newFileItem(d.Name(), itemPath, info.Size(), s.resolver.policy)
		}

		mu.Lock()
		defer mu.Unlock()
		if maxItems > 0 && result.Len() >= maxItems {
			result.Truncated = true
			return errSearchLimit
		}
		result.add(entry)
		return nil
	})

	if walkErr != nil && !errors.Is(walkErr, errSearchLimit) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newError(KindInternal, "search", relativePath, walkErr)
	}

	sort.Slice(result.Subfolders, func(i, j int) bool { return result.Subfolders[i].Path < result.Subfolders[j].Path })
	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Path < result.Files[j].Path })

	s.logger.Debug("search completed",
		zap.String("path", logical),
		zap.String("pattern", pattern),
		zap.Int("matches", result.Len()),
		zap.Bool("truncated", result.Truncated),
	)
	return result, nil
}
