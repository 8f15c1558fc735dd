package share

// policy holds the size and scan limits. The listing flag and read enforcement both go
// through exceeds so they cannot drift apart.
type policy struct {
	maxScanItems      int
	maxReturnFileSize int64
	maxReadFileSize   int64
}

func (p policy) limit(kind SizeLimitKind) int64 {
	switch kind {
	case LimitRead:
		return p.maxReadFileSize
	case LimitReturn:
		return p.maxReturnFileSize
	default:
		return 0
	}
}

// exceeds reports whether size is over the threshold selected by kind. A zero threshold
// means no limit; an unknown kind is always exceeded.
func (p policy) exceeds(size int64, kind SizeLimitKind) bool {
	if !kind.Valid() {
		return true
	}
	limit := p.limit(kind)
	return limit > 0 && size > limit
}

// scanLimit returns the effective number of entries to enumerate; 0 means unlimited.
func (p policy) scanLimit(requested *int) int {
	if requested == nil || *requested < 0 {
		return p.maxScanItems
	}
	n := *requested
	if n == 0 {
		return p.maxScanItems
	}
	if p.maxScanItems > 0 && n > p.maxScanItems {
		return p.maxScanItems
	}
	return n
}
