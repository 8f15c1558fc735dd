package share

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Snapshot folder names carry their creation time in one of these layouts,
// e.g. 2024_01_31_22.00 or 2024_01_31_22.00UTC.
var snapshotLayouts = []string{
	"2006_01_02_15.04MST",
	"2006_01_02_15.04",
}

// ParseSnapshotTimestamp extracts the creation time from a snapshot id.
func ParseSnapshotTimestamp(id string) (time.Time, bool) {
	for _, layout := range snapshotLayouts {
		if t, err := time.Parse(layout, id); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortSnapshots orders snapshots newest first. Snapshots without a timestamp count as the
// oldest; ties are broken by descending id.
func SortSnapshots(snapshots []SnapshotDescriptor) {
	sort.SliceStable(snapshots, func(i, j int) bool {
		ti, tj := snapshotTime(snapshots[i]), snapshotTime(snapshots[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return snapshots[i].ID > snapshots[j].ID
	})
}

func snapshotTime(s SnapshotDescriptor) time.Time {
	if s.Timestamp == nil {
		return time.Time{}
	}
	return *s.Timestamp
}

// ListSnapshots enumerates the snapshots of the share and whether each one holds
// relativePath. Disabled snapshots, a missing snapshot root, and excluded or escaping paths
// all produce an empty listing.
func (s *Service) ListSnapshots(relativePath string) (*SnapshotListing, error) {
	target := relativePath
	if isRootPath(target) {
		target = ""
	}
	cfg := s.resolver.Config()
	listing := &SnapshotListing{
		SnapshotFolder: cfg.SnapshotFolder,
		TargetPath:     target,
		Snapshots:      []SnapshotDescriptor{},
	}
	if !cfg.SnapshotsEnabled() {
		return listing, nil
	}

	snapshotRoot, err := s.resolver.SnapshotRoot()
	if err != nil {
		s.logger.Debug("snapshot root unavailable", zap.Error(err))
		return listing, nil
	}
	live, err := s.resolver.ResolveRoot(target)
	if err != nil || s.resolver.IsExcluded(live) {
		return listing, nil
	}

	entries, err := os.ReadDir(snapshotRoot)
	if err != nil {
		return nil, statError("list_snapshots", cfg.SnapshotFolder, err)
	}

	for _, entry := range entries {
		base, ok := s.snapshotDir(snapshotRoot, entry)
		if !ok {
			continue
		}
		descriptor := SnapshotDescriptor{
			ID:           entry.Name(),
			DisplayName:  entry.Name(),
			ContainsPath: containsPath(base, target),
		}
		if t, ok := ParseSnapshotTimestamp(entry.Name()); ok {
			descriptor.Timestamp = &t
		}
		listing.Snapshots = append(listing.Snapshots, descriptor)
	}

	SortSnapshots(listing.Snapshots)
	return listing, nil
}

// snapshotDir returns the canonical base of a snapshot candidate, following symlinks only
// when they stay inside the snapshot root.
func (s *Service) snapshotDir(snapshotRoot string, entry os.DirEntry) (string, bool) {
	path := filepath.Join(snapshotRoot, entry.Name())
	if entry.Type()&os.ModeSymlink == 0 {
		return path, entry.IsDir()
	}
	resolved, err := canonicalize(path)
	if err != nil || !within(resolved, snapshotRoot) || resolved == snapshotRoot {
		return "", false
	}
	return resolved, isDir(resolved)
}

func containsPath(base, relativePath string) bool {
	if relativePath == "" {
		return true
	}
	candidate, err := canonicalize(filepath.Join(base, filepath.FromSlash(relativePath)))
	if err != nil || !within(candidate, base) {
		return false
	}
	_, err = os.Stat(candidate)
	return err == nil
}
