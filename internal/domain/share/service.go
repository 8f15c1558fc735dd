package share

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// readDirBatch is the number of entries requested per ReadDir call while listing.
const readDirBatch = 256

// MetadataExtractor extracts structured metadata from a resolved file.
// Implementations report unparseable files with ErrParseFailure and a missing
// backend with ErrExtractorUnavailable.
type MetadataExtractor interface {
	Extract(absolutePath string) (*Metadata, error)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used by the service and its resolver.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetadataExtractor enables GetMetadata.
func WithMetadataExtractor(extractor MetadataExtractor) Option {
	return func(s *Service) {
		s.extractor = extractor
	}
}

// Service is a read-only view over the share. Every operation resolves its path through
// the Resolver before touching the filesystem. It holds no mutable state and is safe for
// concurrent use.
type Service struct {
	resolver  *Resolver
	extractor MetadataExtractor
	logger    *zap.Logger
}

// NewService validates cfg and builds a service over it.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	s := &Service{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	resolver, err := NewResolver(cfg, s.logger)
	if err != nil {
		return nil, err
	}
	s.resolver = resolver
	return s, nil
}

// Resolver returns the resolver backing the service.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// Config returns the validated share configuration.
func (s *Service) Config() Config {
	return s.resolver.Config()
}

// MetadataEnabled reports whether a metadata extractor is configured.
func (s *Service) MetadataEnabled() bool {
	return s.extractor != nil
}

// ListFolder lists the direct children of a folder, stopping after the effective scan
// limit. Excluded folders, symlinks leaving the share, and the snapshot folder (unless
// configured visible) are left out and do not count toward the limit.
func (s *Service) ListFolder(relativePath string, scanLimit *int, snapshotID string) (*FolderListing, error) {
	logical := normalizeLogical(relativePath)

	abs, err := s.resolver.Resolve(logical, snapshotID)
	if err != nil {
		return nil, err
	}
	if !isDir(abs) {
		return nil, newError(KindNotADirectory, "list_folder", relativePath, errors.New("path is not a directory"))
	}
	reference, err := s.resolver.referenceRoot(snapshotID)
	if err != nil {
		return nil, err
	}
	liveParent, err := s.resolver.ResolveRoot(logical)
	if err != nil {
		return nil, err
	}

	listing := &FolderListing{
		Folder:     FolderItem{Name: folderName(logical), Path: logical},
		Subfolders: []FolderItem{},
		Files:      []FileItem{},
	}
	limit := s.resolver.policy.scanLimit(scanLimit)

	dir, err := os.Open(abs)
	if err != nil {
		return nil, statError("list_folder", relativePath, err)
	}
	defer dir.Close()

	for {
		entries, readErr := dir.ReadDir(readDirBatch)
		for _, entry := range entries {
			item, ok := s.childEntry(childContext{
				logical:    logical,
				parent:     abs,
				liveParent: liveParent,
				reference:  reference,
				snapshotID: snapshotID,
			}, entry)
			if !ok {
				continue
			}
			if limit > 0 && listing.Len() >= limit {
				listing.Truncated = true
				return listing, nil
			}
			listing.add(item)
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, newError(KindInternal, "list_folder", relativePath, readErr)
		}
	}

	s.logger.Debug("folder listed",
		zap.String("path", logical),
		zap.String("snapshot", snapshotID),
		zap.Int("entries", listing.Len()),
	)
	return listing, nil
}

type childContext struct {
	logical    string
	parent     string
	liveParent string
	reference  string
	snapshotID string
}

// childEntry builds the entry for one directory child, or reports false when the child
// must stay hidden.
func (s *Service) childEntry(c childContext, entry fs.DirEntry) (Entry, bool) {
	name := entry.Name()
	itemPath := joinLogical(c.logical, name)
	abs := filepath.Join(c.parent, name)

	if entry.Type()&fs.ModeSymlink != 0 {
		target, err := canonicalize(abs)
		if err != nil || !within(target, c.reference) {
			s.logger.Debug("skipping symlink outside share", zap.String("path", itemPath))
			return nil, false
		}
		if s.resolver.IsExcluded(s.resolver.liveEquivalent(c.reference, target)) {
			return nil, false
		}
		abs = target
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, false
	}
	if s.resolver.IsExcluded(filepath.Join(c.liveParent, name)) {
		return nil, false
	}

	if info.IsDir() {
		cfg := s.resolver.cfg
		if c.snapshotID == "" && !cfg.IncludeSnapshotRoot && cfg.SnapshotsEnabled() && name == cfg.SnapshotFolder {
			return nil, false
		}
		return FolderItem{Name: name, Path: itemPath}, true
	}
	return newFileItem(name, itemPath, info.Size(), s.resolver.policy), true
}

// ReadFileBytes returns the full content of a file after enforcing the size limit
// selected by kind.
func (s *Service) ReadFileBytes(relativePath string, kind SizeLimitKind, snapshotID string) ([]byte, error) {
	if !kind.Valid() {
		return nil, newError(KindInvalidArgument, "read_file", relativePath, fmt.Errorf("unknown size limit kind %q", kind))
	}
	abs, info, err := s.resolveFile(relativePath, snapshotID, "read_file")
	if err != nil {
		return nil, err
	}
	if s.resolver.policy.exceeds(info.Size(), kind) {
		return nil, s.tooLarge("read_file", relativePath, kind)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, statError("read_file", relativePath, err)
	}
	defer f.Close()

	var r io.Reader = f
	if limit := s.resolver.policy.limit(kind); limit > 0 && limit < math.MaxInt64 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newError(KindInternal, "read_file", relativePath, err)
	}
	// The file may have grown since it was stat'ed.
	if s.resolver.policy.exceeds(int64(len(data)), kind) {
		return nil, s.tooLarge("read_file", relativePath, kind)
	}
	return data, nil
}

// ReadFileText returns the content of a file as text. Undecodable bytes are replaced,
// never reported.
func (s *Service) ReadFileText(relativePath string, kind SizeLimitKind, snapshotID string) (string, error) {
	data, err := s.ReadFileBytes(relativePath, kind, snapshotID)
	if err != nil {
		return "", err
	}
	return DecodeText(data, s.resolver.cfg.DetectCharset), nil
}

// GetMetadata describes a file and the metadata extracted from it.
func (s *Service) GetMetadata(relativePath, snapshotID string) (*FileMetadata, error) {
	if s.extractor == nil {
		return nil, newError(KindUnavailable, "get_metadata", relativePath, ErrExtractorUnavailable)
	}
	abs, info, err := s.resolveFile(relativePath, snapshotID, "get_metadata")
	if err != nil {
		return nil, err
	}

	logical := normalizeLogical(relativePath)
	result := &FileMetadata{
		File: newFileItem(path.Base(logical), logical, info.Size(), s.resolver.policy),
	}

	metadata, err := s.extractor.Extract(abs)
	switch {
	case err == nil:
	case errors.Is(err, ErrExtractorUnavailable):
		return nil, newError(KindUnavailable, "get_metadata", relativePath, err)
	case errors.Is(err, ErrParseFailure):
		return nil, newError(KindUnsupportedFile, "get_metadata", relativePath, err)
	default:
		return nil, newError(KindInternal, "get_metadata", relativePath, err)
	}
	if metadata == nil {
		metadata = NewMetadata()
	}
	result.Metadata = metadata
	return result, nil
}

// ImageFormat returns the image format name for a supported image path.
func (s *Service) ImageFormat(relativePath string) (string, error) {
	switch strings.ToLower(filepath.Ext(relativePath)) {
	case ".png":
		return "png", nil
	case ".jpg", ".jpeg":
		return "jpg", nil
	default:
		return "", newError(KindUnsupportedFile, "image_format", relativePath,
			fmt.Errorf("unsupported image format %q", filepath.Ext(relativePath)))
	}
}

func (s *Service) resolveFile(relativePath, snapshotID, op string) (string, os.FileInfo, error) {
	abs, err := s.resolver.Resolve(normalizeLogical(relativePath), snapshotID)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", nil, statError(op, relativePath, err)
	}
	if info.IsDir() {
		return "", nil, newError(KindIsADirectory, op, relativePath, errors.New("path is a directory"))
	}
	return abs, info, nil
}

func (s *Service) tooLarge(op, relativePath string, kind SizeLimitKind) error {
	return newError(KindTooLarge, op, relativePath,
		fmt.Errorf("file exceeds the %s limit of %d bytes", kind, s.resolver.policy.limit(kind)))
}

// normalizeLogical maps the root aliases to "" and drops trailing slashes.
func normalizeLogical(relativePath string) string {
	if isRootPath(relativePath) {
		return ""
	}
	trimmed := strings.TrimRight(relativePath, `/\`)
	if trimmed == "" {
		return ""
	}
	return trimmed
}

func folderName(logical string) string {
	if logical == "" {
		return ""
	}
	return path.Base(filepath.ToSlash(logical))
}

func joinLogical(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
