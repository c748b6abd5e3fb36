// Package imageproc provides the watermark operation applied to every
// uploaded image before it is committed to durable storage.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/photoblog/photoflow/internal/model"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	textPadding = 30
	strokeWidth = 3
	lineStep    = 50 // шаг диагональных направляющих
	lineWidth   = 8
)

var (
	fillColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 230}
	strokeColor = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	lineColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Options управляют содержимым водяного знака
type Options struct {
	Label      string
	GuideLines bool
	Faces      FaceSource       // nil - берется DefaultFaces()
	Now        func() time.Time // nil - time.Now
}

// Watermark decodes the image, stamps a semi-transparent centered label with
// a timestamp over it and re-encodes the result in the original format.
// Pixel dimensions are preserved. Fails only on undecodable input.
func Watermark(r io.Reader, opts Options) (io.Reader, int64, error) {
	if r == nil {
		return nil, 0, errors.New("nil-reader baseIMG provided")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read base image: %w", err)
	}

	// формат выходного файла должен совпадать с исходным
	_, fname, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", model.ErrUndecodableImage, err)
	}
	format, err := imaging.FormatFromExtension(fname)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", model.ErrUnsupportedFormat, err)
	}

	base, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", model.ErrUndecodableImage, err)
	}

	width := base.Bounds().Dx()
	height := base.Bounds().Dy()

	// прозрачный оверлей поверх исходника
	overlay := image.NewNRGBA(image.Rect(0, 0, width, height))

	if opts.GuideLines {
		drawGuideLines(overlay, width, height)
	}

	faces := opts.Faces
	if faces == nil {
		faces = DefaultFaces()
	}
	face, err := faces.Face(width)
	if err != nil {
		// цепочка деградирует сама, сюда попадает только кастомный источник
		return nil, 0, fmt.Errorf("resolve watermark font: %w", err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	label := opts.Label + "\n" + now().Format("2006-01-02 15:04:05")

	drawLabel(overlay, face, label, width, height)

	result := imaging.Overlay(base, overlay, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, result, format); err != nil {
		return nil, 0, fmt.Errorf("encode result image: %w", err)
	}

	return &buf, int64(buf.Len()), nil
}

// drawLabel рисует многострочный текст по центру с жирной черной обводкой,
// чтобы знак читался на любом фоне
func drawLabel(dst draw.Image, face font.Face, label string, width, height int) {
	lines := strings.Split(label, "\n")

	metrics := face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()

	maxLineWidth := 0
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > maxLineWidth {
			maxLineWidth = w
		}
	}

	blockWidth := maxLineWidth + textPadding
	blockHeight := lineHeight*len(lines) + textPadding

	x := (width - blockWidth) / 2
	y := (height-blockHeight)/2 + metrics.Ascent.Ceil()

	for i, line := range lines {
		lineY := y + i*lineHeight

		// обводка - текст несколько раз со смещением
		for dx := -strokeWidth; dx <= strokeWidth; dx += strokeWidth {
			for dy := -strokeWidth; dy <= strokeWidth; dy += strokeWidth {
				if dx == 0 && dy == 0 {
					continue
				}
				drawString(dst, face, line, x+dx, lineY+dy, strokeColor)
			}
		}

		drawString(dst, face, line, x, lineY, fillColor)
	}
}

func drawString(dst draw.Image, face font.Face, s string, x, y int, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawGuideLines рисует диагональные штрихи из левого нижнего угла
func drawGuideLines(dst *image.NRGBA, width, height int) {
	for i := 0; i < width+height; i += lineStep {
		drawLine(dst, 0, height-i, i, height)
	}
}

func drawLine(dst *image.NRGBA, x0, y0, x1, y1 int) {
	steps := x1 - x0
	if dy := y1 - y0; dy > steps {
		steps = dy
	}
	if steps <= 0 {
		return
	}

	for s := 0; s <= steps; s++ {
		x := x0 + (x1-x0)*s/steps
		y := y0 + (y1-y0)*s/steps
		for w := -lineWidth / 2; w <= lineWidth/2; w++ {
			dst.SetNRGBA(x+w, y, lineColor)
			dst.SetNRGBA(x, y+w, lineColor)
		}
	}
}
