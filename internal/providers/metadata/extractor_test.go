package metadata

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/ShareView/backend/internal/domain/share"
	"github.com/GriffinCanCode/ShareView/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, path string, encode func(*bytes.Buffer, image.Image) error) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func get(t *testing.T, md *share.Metadata, key string) any {
	t.Helper()
	v, ok := md.Get(key)
	require.True(t, ok, "missing key %s", key)
	return v
}

func TestExtractText(t *testing.T) {
	root := testutil.NewShare(t, testutil.Tree{"notes.txt": "hello world\n"})

	md, err := New(nil).Extract(filepath.Join(root, "notes.txt"))
	require.NoError(t, err)

	assert.Equal(t, "text/plain", get(t, md, "mime_type"))
	assert.Equal(t, ".txt", get(t, md, "extension"))
	assert.Equal(t, "utf-8", get(t, md, "charset"))
	assert.Equal(t, "12 B", get(t, md, "file_size"))
	_, ok := md.Get("width")
	assert.False(t, ok)
}

func TestExtractImages(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "pixel.png"), func(b *bytes.Buffer, img image.Image) error {
		return png.Encode(b, img)
	})
	writeImage(t, filepath.Join(root, "pixel.jpg"), func(b *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(b, img, nil)
	})

	tests := []struct {
		file     string
		mimeType string
		format   string
	}{
		{file: "pixel.png", mimeType: "image/png", format: "png"},
		{file: "pixel.jpg", mimeType: "image/jpeg", format: "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			md, err := New(nil).Extract(filepath.Join(root, tt.file))
			require.NoError(t, err)

			assert.Equal(t, tt.mimeType, get(t, md, "mime_type"))
			assert.Equal(t, tt.format, get(t, md, "image_format"))
			assert.Equal(t, "4", get(t, md, "width"))
			assert.Equal(t, "3", get(t, md, "height"))

			// Encoded without EXIF.
			_, ok := md.Get("camera_make")
			assert.False(t, ok)
		})
	}
}

func TestExtractFailures(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "blob.bin"), []byte{0x00, 0x01, 0x02, 0xfe, 0x00, 0x7f}, 0o644))
	// PNG signature followed by garbage.
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.png"),
		append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x00}, 16)...), 0o644))

	_, err := New(nil).Extract(filepath.Join(root, "blob.bin"))
	assert.True(t, errors.Is(err, share.ErrParseFailure))

	_, err = New(nil).Extract(filepath.Join(root, "broken.png"))
	assert.True(t, errors.Is(err, share.ErrParseFailure))

	_, err = New(nil).Extract(filepath.Join(root, "missing"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2*1024*1024))

	assert.Equal(t, "1/250", formatRational(1, 250))
	assert.Equal(t, "2s", formatRational(2, 1))
	assert.Equal(t, "52.370216", formatCoordinate(52.3702157))
}

func TestExtractorWithService(t *testing.T) {
	root := testutil.NewShare(t, testutil.Tree{"docs/readme.md": "# Title\n"})
	svc := testutil.NewService(t, share.Config{Root: root}, share.WithMetadataExtractor(New(nil)))

	result, err := svc.GetMetadata("docs/readme.md", "")
	require.NoError(t, err)
	assert.Equal(t, "readme.md", result.File.Name)
	assert.Equal(t, "text/plain", get(t, result.Metadata, "mime_type"))
}
