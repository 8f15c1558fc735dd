package share

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config describes the share exposed by a Resolver. It is validated once by NewResolver
// and never mutated afterwards.
type Config struct {
	Root                string
	SnapshotFolder      string
	IncludeSnapshotRoot bool
	ExcludeFolders      []string
	ExcludePatterns     []string
	MaxScanItems        int
	MaxReturnFileSize   int64
	MaxReadFileSize     int64
	DetectCharset       bool
}

// SnapshotsEnabled reports whether a snapshot folder is configured.
func (c Config) SnapshotsEnabled() bool {
	return c.SnapshotFolder != ""
}

// SizeLimitKind selects which configured threshold applies to a content fetch.
type SizeLimitKind string

const (
	LimitRead   SizeLimitKind = "read"
	LimitReturn SizeLimitKind = "return"
	LimitNone   SizeLimitKind = "none"
)

// Valid reports whether k is one of the known limit selectors.
func (k SizeLimitKind) Valid() bool {
	switch k {
	case LimitRead, LimitReturn, LimitNone:
		return true
	}
	return false
}

// ParseSizeLimitKind parses a limit selector, defaulting to LimitReturn for "".
func ParseSizeLimitKind(s string) (SizeLimitKind, error) {
	switch SizeLimitKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", LimitReturn:
		return LimitReturn, nil
	case LimitRead:
		return LimitRead, nil
	case LimitNone:
		return LimitNone, nil
	default:
		return "", fmt.Errorf("unknown size limit kind %q", s)
	}
}

// Entry is either a FolderItem or a FileItem.
type Entry interface {
	EntryName() string
	EntryPath() string
	sealed()
}

// FolderItem is a folder inside the share.
type FolderItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (f FolderItem) EntryName() string { return f.Name }
func (f FolderItem) EntryPath() string { return f.Path }
func (FolderItem) sealed()             {}

// FileItem is a file inside the share.
type FileItem struct {
	Name                   string `json:"name"`
	Path                   string `json:"path"`
	Size                   int64  `json:"size"`
	IsTooLarge             bool   `json:"is_too_large"`
	IsSupportedImage       bool   `json:"is_supported_image"`
	SupportsTextExtraction bool   `json:"supports_text_extraction"`
}

func (f FileItem) EntryName() string { return f.Name }
func (f FileItem) EntryPath() string { return f.Path }
func (FileItem) sealed()             {}

var (
	imageExtensions          = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}
	textExtractionExtensions = map[string]bool{".pdf": true, ".docx": true}
)

func newFileItem(name, path string, size int64, p policy) FileItem {
	ext := strings.ToLower(filepath.Ext(name))
	return FileItem{
		Name:                   name,
		Path:                   path,
		Size:                   size,
		IsTooLarge:             p.exceeds(size, LimitReturn),
		IsSupportedImage:       imageExtensions[ext],
		SupportsTextExtraction: textExtractionExtensions[ext],
	}
}

// FolderListing is a bounded view of one folder's direct children.
type FolderListing struct {
	Folder     FolderItem   `json:"folder"`
	Subfolders []FolderItem `json:"subfolders"`
	Files      []FileItem   `json:"files"`
	Truncated  bool         `json:"truncated"`
}

func (l *FolderListing) add(e Entry) {
	switch item := e.(type) {
	case FolderItem:
		l.Subfolders = append(l.Subfolders, item)
	case FileItem:
		l.Files = append(l.Files, item)
	default:
		panic(fmt.Sprintf("share: unknown entry type %T", e))
	}
}

// Len returns the number of listed children.
func (l *FolderListing) Len() int {
	return len(l.Subfolders) + len(l.Files)
}

// SnapshotDescriptor describes one snapshot directory.
type SnapshotDescriptor struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"display_name"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	ContainsPath bool       `json:"contains_path"`
}

// SnapshotListing lists the snapshots available for a path, newest first.
type SnapshotListing struct {
	SnapshotFolder string               `json:"snapshot_folder"`
	TargetPath     string               `json:"target_path"`
	Snapshots      []SnapshotDescriptor `json:"snapshots"`
}

// FileMetadata is a file descriptor extended with extracted metadata.
type FileMetadata struct {
	File     FileItem  `json:"file"`
	Metadata *Metadata `json:"metadata"`
}

// SearchResult holds the entries matched by a pattern search.
type SearchResult struct {
	Root       string       `json:"root"`
	Pattern    string       `json:"pattern"`
	Subfolders []FolderItem `json:"subfolders"`
	Files      []FileItem   `json:"files"`
	Truncated  bool         `json:"truncated"`
}

func (r *SearchResult) add(e Entry) {
	switch item := e.(type) {
	case FolderItem:
		r.Subfolders = append(r.Subfolders, item)
	case FileItem:
		r.Files = append(r.Files, item)
	default:
		panic(fmt.Sprintf("share: unknown entry type %T", e))
	}
}

// Len returns the number of matched entries.
func (r *SearchResult) Len() int {
	return len(r.Subfolders) + len(r.Files)
}
