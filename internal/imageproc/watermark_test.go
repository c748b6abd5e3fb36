package imageproc

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/photoblog/photoflow/internal/model"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
)

func testImageReader(t *testing.T, w, h int, format imaging.Format) *bytes.Reader {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 100, B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	err := imaging.Encode(&buf, img, format)
	require.NoError(t, err)

	return bytes.NewReader(buf.Bytes())
}

func mustDecode(t *testing.T, r io.Reader) image.Image {
	t.Helper()

	img, err := imaging.Decode(r)
	require.NoError(t, err)
	require.NotNil(t, img)

	return img
}

func testOpts() Options {
	return Options{
		Label: "Alice Smith",
		Faces: DefaultSource{},
		Now:   func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestWatermark(t *testing.T) {
	tests := []struct {
		name    string
		reader  io.Reader
		w, h    int
		wantErr error
	}{
		{
			name:   "OK png",
			reader: testImageReader(t, 400, 300, imaging.PNG),
			w:      400,
			h:      300,
		},
		{
			name:   "OK jpeg",
			reader: testImageReader(t, 250, 250, imaging.JPEG),
			w:      250,
			h:      250,
		},
		{
			name:   "OK tiny image",
			reader: testImageReader(t, 20, 20, imaging.PNG),
			w:      20,
			h:      20,
		},
		{
			name:    "nil reader",
			reader:  nil,
			wantErr: errors.New("nil-reader baseIMG provided"),
		},
		{
			name:    "broken image",
			reader:  bytes.NewReader([]byte("not-an-image")),
			wantErr: model.ErrUndecodableImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, size, err := Watermark(tt.reader, testOpts())

			if tt.wantErr != nil {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, r)
			require.Greater(t, size, int64(0))

			// размеры исходника сохраняются
			img := mustDecode(t, r)
			require.Equal(t, tt.w, img.Bounds().Dx())
			require.Equal(t, tt.h, img.Bounds().Dy())
		})
	}
}

func TestWatermark_UndecodableError(t *testing.T) {
	_, _, err := Watermark(bytes.NewReader([]byte("garbage")), testOpts())
	require.ErrorIs(t, err, model.ErrUndecodableImage)
}

// формат выходного файла совпадает с исходным
func TestWatermark_FormatPreserved(t *testing.T) {
	tests := []struct {
		name   string
		format imaging.Format
		magic  []byte
	}{
		{"png stays png", imaging.PNG, []byte("\x89PNG")},
		{"jpeg stays jpeg", imaging.JPEG, []byte("\xff\xd8")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, err := Watermark(testImageReader(t, 100, 100, tt.format), testOpts())
			require.NoError(t, err)

			out, err := io.ReadAll(r)
			require.NoError(t, err)
			require.True(t, bytes.HasPrefix(out, tt.magic))
		})
	}
}

// водяной знак действительно меняет пиксели
func TestWatermark_ChangesPixels(t *testing.T) {
	src := testImageReader(t, 200, 200, imaging.PNG)
	original := mustDecode(t, testImageReader(t, 200, 200, imaging.PNG))

	r, _, err := Watermark(src, testOpts())
	require.NoError(t, err)

	stamped := mustDecode(t, r)

	changed := false
	for y := 0; y < 200 && !changed; y++ {
		for x := 0; x < 200; x++ {
			if original.At(x, y) != stamped.At(x, y) {
				changed = true
				break
			}
		}
	}
	require.True(t, changed)
}

func TestWatermark_GuideLines(t *testing.T) {
	opts := testOpts()
	opts.GuideLines = true

	r, size, err := Watermark(testImageReader(t, 300, 200, imaging.PNG), opts)
	require.NoError(t, err)
	require.NotNil(t, r)
	require.Greater(t, size, int64(0))
}

func TestDefaultSource_Face(t *testing.T) {
	face, err := DefaultSource{}.Face(1000)
	require.NoError(t, err)
	require.NotNil(t, face)
}

// цепочка деградирует до встроенного шрифта вместо ошибки
func TestFallbackChain_Degrades(t *testing.T) {
	chain := FallbackChain{brokenSource{}, brokenSource{}}

	face, err := chain.Face(500)
	require.NoError(t, err)
	require.NotNil(t, face)
}

func TestFallbackChain_FirstHealthyWins(t *testing.T) {
	chain := FallbackChain{brokenSource{}, DefaultSource{}}

	face, err := chain.Face(500)
	require.NoError(t, err)
	require.NotNil(t, face)
}

type brokenSource struct{}

func (brokenSource) Face(int) (font.Face, error) {
	return nil, errors.New("font source is down")
}
