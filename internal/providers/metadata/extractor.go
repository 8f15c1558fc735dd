package metadata

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder for DecodeConfig
	_ "image/jpeg" // register JPEG decoder for DecodeConfig
	_ "image/png"  // register PNG decoder for DecodeConfig
	"io"
	"math"
	"mime"
	"os"
	"strconv"
	"time"

	"github.com/GriffinCanCode/ShareView/backend/internal/domain/share"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"go.uber.org/zap"
)

// Extractor produces lightweight metadata for files: MIME type for everything, dimensions
// for raster images and EXIF fields for photos.
type Extractor struct {
	logger *zap.Logger
}

// New creates an extractor.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract implements share.MetadataExtractor.
func (e *Extractor) Extract(absolutePath string) (*share.Metadata, error) {
	f, err := os.Open(absolutePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", share.ErrParseFailure, err)
	}
	if mtype.Is("application/octet-stream") {
		return nil, fmt.Errorf("%w: unrecognized content", share.ErrParseFailure)
	}

	md := share.NewMetadata()
	mediaType, params, err := mime.ParseMediaType(mtype.String())
	if err != nil {
		mediaType = mtype.String()
	}
	md.Add("mime_type", mediaType)
	md.Add("extension", mtype.Extension())
	md.Add("charset", params["charset"])
	md.Add("file_size", formatBytes(info.Size()))
	md.Add("modified", info.ModTime().UTC().Format(time.RFC3339))

	if isRasterImage(mtype) {
		if err := addImageConfig(md, f); err != nil {
			return nil, err
		}
	}
	if mtype.Is("image/jpeg") || mtype.Is("image/tiff") {
		if _, err := f.Seek(0, io.SeekStart); err == nil {
			addExif(md, f)
		}
	}

	e.logger.Debug("metadata extracted",
		zap.String("path", absolutePath),
		zap.String("mime_type", mediaType),
		zap.Int("keys", md.Len()),
	)
	return md, nil
}

func isRasterImage(mtype *mimetype.MIME) bool {
	return mtype.Is("image/png") || mtype.Is("image/jpeg") || mtype.Is("image/gif")
}

func addImageConfig(md *share.Metadata, r io.ReadSeeker) error {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return fmt.Errorf("%w: %v", share.ErrParseFailure, err)
	}
	md.Add("image_format", format)
	md.Add("width", strconv.Itoa(cfg.Width))
	md.Add("height", strconv.Itoa(cfg.Height))
	return nil
}

// addExif copies the interesting EXIF fields. Photos without EXIF are not an error.
func addExif(md *share.Metadata, r io.Reader) {
	x, err := exif.Decode(r)
	if err != nil {
		return
	}

	md.Add("camera_make", tagString(x, exif.Make))
	md.Add("camera_model", tagString(x, exif.Model))
	md.Add("lens_model", tagString(x, exif.LensModel))

	if dt, err := x.DateTime(); err == nil {
		md.Add("date_taken", dt.Format(time.RFC3339))
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if v, err := tag.Int(0); err == nil {
			md.Add("iso", strconv.Itoa(v))
		}
	}
	if tag, err := x.Get(exif.ExposureTime); err == nil {
		if num, denom, err := tag.Rat2(0); err == nil && denom != 0 {
			md.Add("exposure_time", formatRational(num, denom))
		}
	}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil && v >= 1 && v <= 8 {
			md.Add("orientation", strconv.Itoa(v))
		}
	}
	if lat, lon, err := x.LatLong(); err == nil && !math.IsNaN(lat) && !math.IsNaN(lon) {
		md.Add("gps_position", formatCoordinate(lat), formatCoordinate(lon))
	}
}

func tagString(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	if tag.Format() == tiff.StringVal {
		s, _ := tag.StringVal()
		return s
	}
	return tag.String()
}

func formatRational(num, denom int64) string {
	if denom == 1 {
		return fmt.Sprintf("%ds", num)
	}
	return fmt.Sprintf("%d/%d", num, denom)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// formatBytes formats bytes to human-readable size
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
