package share

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// Resolver maps untrusted relative paths onto verified absolute paths inside the share
// root or inside a snapshot of it.
type Resolver struct {
	cfg      Config
	root     string
	excluded []string
	patterns []string
	policy   policy
	logger   *zap.Logger
}

// NewResolver validates cfg and returns a resolver holding its canonical form.
func NewResolver(cfg Config, logger *zap.Logger) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, newError(KindConfigurationError, "configure", cfg.Root, errors.New("root path is required"))
	}

	root, err := canonicalize(cfg.Root)
	if err != nil {
		return nil, newError(KindConfigurationError, "configure", cfg.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, newError(KindConfigurationError, "configure", cfg.Root, err)
	}
	if !info.IsDir() {
		return nil, newError(KindConfigurationError, "configure", cfg.Root, errors.New("root path is not a directory"))
	}

	if cfg.SnapshotFolder != "" && !isSingleSegment(cfg.SnapshotFolder) {
		return nil, newError(KindConfigurationError, "configure", cfg.SnapshotFolder,
			errors.New("snapshot folder must be a single folder name"))
	}
	if cfg.MaxScanItems < 0 || cfg.MaxReturnFileSize < 0 || cfg.MaxReadFileSize < 0 {
		return nil, newError(KindConfigurationError, "configure", cfg.Root, errors.New("limits cannot be negative"))
	}

	excluded := make([]string, 0, len(cfg.ExcludeFolders))
	for _, folder := range cfg.ExcludeFolders {
		folder = strings.TrimSpace(folder)
		if folder == "" {
			continue
		}
		path := folder
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Root, filepath.FromSlash(path))
		}
		canonical, err := canonicalize(path)
		if err != nil {
			return nil, newError(KindConfigurationError, "configure", folder, err)
		}
		if !within(canonical, root) || canonical == root {
			return nil, newError(KindConfigurationError, "configure", folder,
				errors.New("excluded folder must be inside the root"))
		}
		excluded = append(excluded, canonical)
	}

	patterns := make([]string, 0, len(cfg.ExcludePatterns))
	for _, pattern := range cfg.ExcludePatterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, newError(KindConfigurationError, "configure", pattern, errors.New("invalid exclude pattern"))
		}
		patterns = append(patterns, pattern)
	}

	cfg.Root = root
	cfg.ExcludeFolders = excluded
	cfg.ExcludePatterns = patterns

	return &Resolver{
		cfg:      cfg,
		root:     root,
		excluded: excluded,
		patterns: patterns,
		policy: policy{
			maxScanItems:      cfg.MaxScanItems,
			maxReturnFileSize: cfg.MaxReturnFileSize,
			maxReadFileSize:   cfg.MaxReadFileSize,
		},
		logger: logger,
	}, nil
}

// Root returns the canonical share root.
func (r *Resolver) Root() string {
	return r.root
}

// Config returns the validated configuration.
func (r *Resolver) Config() Config {
	return r.cfg
}

// ResolveRoot joins relativePath onto the live root and verifies that the canonical
// result stays inside it. Existence is not checked.
func (r *Resolver) ResolveRoot(relativePath string) (string, error) {
	return r.resolveUnder(r.root, relativePath, "resolve")
}

// IsExcluded reports whether a canonical live path is, or is inside, an excluded folder.
// Paths that reach into a snapshot through the snapshot folder are also checked by their
// position inside the snapshot, and the snapshot folder itself counts as excluded while it
// is hidden.
func (r *Resolver) IsExcluded(absolutePath string) bool {
	if r.excludedLive(absolutePath) {
		return true
	}
	logical, ok := r.logicalPath(absolutePath)
	if !ok || !r.cfg.SnapshotsEnabled() {
		return false
	}
	head, rest, _ := strings.Cut(logical, "/")
	if head != r.cfg.SnapshotFolder {
		return false
	}
	if !r.cfg.IncludeSnapshotRoot {
		return true
	}
	if _, tail, ok := strings.Cut(rest, "/"); ok && tail != "" {
		return r.excludedLive(filepath.Join(r.root, filepath.FromSlash(tail)))
	}
	return false
}

func (r *Resolver) excludedLive(absolutePath string) bool {
	for _, prefix := range r.excluded {
		if within(absolutePath, prefix) {
			return true
		}
	}
	if len(r.patterns) == 0 {
		return false
	}
	logical, ok := r.logicalPath(absolutePath)
	if !ok || logical == "" {
		return false
	}
	return matchesAnyAncestor(r.patterns, logical)
}

// liveEquivalent maps a path below reference (the live root or a snapshot base) to the
// live path at the same position.
func (r *Resolver) liveEquivalent(reference, absolutePath string) string {
	rel, err := filepath.Rel(reference, absolutePath)
	if err != nil {
		return absolutePath
	}
	return filepath.Join(r.root, rel)
}

// EnforceNotExcluded fails with NotFound for excluded paths so their existence is not revealed.
func (r *Resolver) EnforceNotExcluded(absolutePath string) error {
	if r.IsExcluded(absolutePath) {
		r.logger.Debug("excluded path requested", zap.String("path", absolutePath))
		logical, _ := r.logicalPath(absolutePath)
		return newError(KindNotFound, "resolve", logical, fs.ErrNotExist)
	}
	return nil
}

// SnapshotRoot returns the directory that holds the snapshots.
func (r *Resolver) SnapshotRoot() (string, error) {
	if !r.cfg.SnapshotsEnabled() {
		return "", newError(KindConfigurationError, "snapshot_root", "", errors.New("snapshot support is disabled"))
	}
	path, err := canonicalize(filepath.Join(r.root, r.cfg.SnapshotFolder))
	if err != nil {
		return "", newError(KindInternal, "snapshot_root", r.cfg.SnapshotFolder, err)
	}
	if !isDir(path) {
		return "", newError(KindNotFound, "snapshot_root", r.cfg.SnapshotFolder, fs.ErrNotExist)
	}
	return path, nil
}

// SnapshotBase returns the root of the snapshot named snapshotID.
func (r *Resolver) SnapshotBase(snapshotID string) (string, error) {
	if !isSingleSegment(snapshotID) {
		r.logger.Warn("invalid snapshot id", zap.String("snapshot", snapshotID))
		return "", newError(KindAccessDenied, "snapshot", snapshotID, errors.New("invalid snapshot id"))
	}
	snapshotRoot, err := r.SnapshotRoot()
	if err != nil {
		return "", err
	}
	base, err := canonicalize(filepath.Join(snapshotRoot, snapshotID))
	if err != nil {
		return "", newError(KindInternal, "snapshot", snapshotID, err)
	}
	if !within(base, snapshotRoot) || base == snapshotRoot {
		r.logger.Warn("snapshot escapes snapshot root",
			zap.String("snapshot", snapshotID),
			zap.String("resolved", base),
		)
		return "", newError(KindAccessDenied, "snapshot", snapshotID, errors.New("snapshot outside snapshot root"))
	}
	if !isDir(base) {
		return "", newError(KindNotFound, "snapshot", snapshotID, fmt.Errorf("snapshot %s is not available: %w", snapshotID, fs.ErrNotExist))
	}
	return base, nil
}

// ResolveInSnapshot resolves relativePath inside a snapshot. Exclusions are defined on the
// live tree's logical paths, so they are checked against the live root first.
func (r *Resolver) ResolveInSnapshot(snapshotID, relativePath string) (string, error) {
	live, err := r.ResolveRoot(relativePath)
	if err != nil {
		return "", err
	}
	if err := r.EnforceNotExcluded(live); err != nil {
		return "", err
	}
	base, err := r.SnapshotBase(snapshotID)
	if err != nil {
		return "", err
	}
	return r.resolveUnder(base, relativePath, "resolve_snapshot")
}

// Resolve returns the verified, existing absolute path for relativePath, inside the
// snapshot snapshotID when it is non-empty.
func (r *Resolver) Resolve(relativePath, snapshotID string) (string, error) {
	var (
		path string
		err  error
	)
	if snapshotID != "" {
		path, err = r.ResolveInSnapshot(snapshotID, relativePath)
	} else {
		path, err = r.ResolveRoot(relativePath)
		if err == nil {
			err = r.EnforceNotExcluded(path)
		}
	}
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err != nil {
		return "", statError("resolve", relativePath, err)
	}
	return path, nil
}

// referenceRoot is the boundary for entries listed under a live or snapshot path.
func (r *Resolver) referenceRoot(snapshotID string) (string, error) {
	if snapshotID == "" {
		return r.root, nil
	}
	return r.SnapshotBase(snapshotID)
}

func (r *Resolver) resolveUnder(base, relativePath, op string) (string, error) {
	if isRootPath(relativePath) {
		return base, nil
	}
	canonical, err := canonicalize(filepath.Join(base, filepath.FromSlash(relativePath)))
	if err != nil {
		return "", newError(KindInternal, op, relativePath, err)
	}
	if !within(canonical, base) {
		r.logger.Warn("path escapes share boundary",
			zap.String("op", op),
			zap.String("path", relativePath),
			zap.String("resolved", canonical),
			zap.String("base", base),
		)
		return "", newError(KindAccessDenied, op, relativePath, errors.New("access to the path is not allowed"))
	}
	return canonical, nil
}

// logicalPath returns absolutePath relative to the live root with forward slashes.
func (r *Resolver) logicalPath(absolutePath string) (string, bool) {
	if !within(absolutePath, r.root) {
		return "", false
	}
	rel, err := filepath.Rel(r.root, absolutePath)
	if err != nil {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return filepath.ToSlash(rel), true
}

func matchesAnyAncestor(patterns []string, logical string) bool {
	segments := strings.Split(logical, "/")
	for i := range segments {
		candidate := strings.Join(segments[:i+1], "/")
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, candidate); ok {
				return true
			}
		}
	}
	return false
}

// canonicalize returns the absolute, symlink-free form of path. Components that do not
// exist yet are appended lexically to the canonical form of their deepest existing parent.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	parent := filepath.Dir(abs)
	if parent == abs {
		return abs, nil
	}
	resolvedParent, err := canonicalize(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(abs)), nil
}

// within reports whether path equals base or lies below it on a segment boundary.
func within(path, base string) bool {
	if path == base {
		return true
	}
	if !strings.HasSuffix(base, string(os.PathSeparator)) {
		base += string(os.PathSeparator)
	}
	return strings.HasPrefix(path, base)
}

func isRootPath(relativePath string) bool {
	switch relativePath {
	case "", "/", "\\", ".":
		return true
	}
	return false
}

func isSingleSegment(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func statError(op, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return newError(KindNotFound, op, path, fs.ErrNotExist)
	case errors.Is(err, fs.ErrPermission):
		return newError(KindAccessDenied, op, path, err)
	default:
		return newError(KindInternal, op, path, err)
	}
}
