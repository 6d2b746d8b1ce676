package sceneload

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"mime"
	"path"
	"strings"

	// registered raster formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const sniffLen = 512

// default size of replaced elements without intrinsic dimensions
const (
	defaultSVGWidth  = 300
	defaultSVGHeight = 150
)

// DefaultMaxPixels is the pixel limit of loaders with a zero MaxPixels.
const DefaultMaxPixels = 1 << 26

// ErrImageTooLarge is returned (wrapped in a *ResourceLoadError)
// for images whose size exceeds the loader pixel limit.
var ErrImageTooLarge = errors.New("image too large")

func (l *Loader) maxPixels() int64 {
	if l.MaxPixels > 0 {
		return l.MaxPixels
	}
	return DefaultMaxPixels
}

// checkSize rejects raster dimensions below one pixel, not finite,
// or whose area exceeds the pixel limit.
func (l *Loader) checkSize(w, h float64) (int, int, error) {
	limit := float64(l.maxPixels())
	if math.IsNaN(w) || math.IsNaN(h) || w < 1 || h < 1 || w > limit || h > limit || w*h > limit {
		return 0, 0, fmt.Errorf("%w: %gx%g pixels (limit %d)", ErrImageTooLarge, w, h, l.maxPixels())
	}
	return int(w), int(h), nil
}

func (l *Loader) decode(r io.Reader, contentType, url string) (image.Image, string, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	if isSVG(br, contentType, url) {
		img, err := l.rasterSVG(br)
		return img, "svg", err
	}

	// the header is read twice: once for the size check, then by the decoder
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(br, &header))
	if err != nil {
		return nil, "", err
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > l.maxPixels() {
		return nil, "", fmt.Errorf("%w: %dx%d pixels (limit %d)", ErrImageTooLarge, cfg.Width, cfg.Height, l.maxPixels())
	}
	return image.Decode(io.MultiReader(&header, br))
}

// isSVG uses, in this order, the content type, the URL extension
// and the first bytes of the content.
func isSVG(br *bufio.Reader, contentType, url string) bool {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			if mediaType == "image/svg+xml" {
				return true
			}
			if strings.HasPrefix(mediaType, "image/") {
				return false
			}
		}
	}
	if !strings.HasPrefix(url, "data:") {
		u := url
		if i := strings.IndexAny(u, "?#"); i >= 0 {
			u = u[:i]
		}
		if strings.EqualFold(path.Ext(u), ".svg") {
			return true
		}
	}
	head, _ := br.Peek(sniffLen)
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	head = bytes.TrimSpace(head)
	if bytes.HasPrefix(head, []byte("<svg")) {
		return true
	}
	return bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg"))
}

// rasterSVG renders an SVG source into an RGBA image, at its
// viewBox size.
func (l *Loader) rasterSVG(r io.Reader) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(r, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, err
	}
	fw, fh := icon.ViewBox.W, icon.ViewBox.H
	if !(fw >= 1) {
		fw = float64(l.SVGWidth)
	}
	if !(fh >= 1) {
		fh = float64(l.SVGHeight)
	}
	if fw <= 0 {
		fw = defaultSVGWidth
	}
	if fh <= 0 {
		fh = defaultSVGHeight
	}
	w, h, err := l.checkSize(fw, fh)
	if err != nil {
		return nil, err
	}
	if !(icon.ViewBox.W > 0) || !(icon.ViewBox.H > 0) {
		icon.ViewBox.W, icon.ViewBox.H = float64(w), float64(h)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img, nil
}
