// Loads the external images referenced by scene descriptors
// (image sources, pattern sources), with cancellation through
// a context.
//
// Sources may be http(s), data: or file URLs, as well as plain
// filesystem paths. PNG, JPEG, GIF, BMP, TIFF and WebP are decoded;
// SVG sources are rasterized at their intrinsic size.
package sceneload

import (
	"context"
	"image"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/benoitkugler/okscene/scenemetrics"
	"github.com/rs/zerolog"
)

// CrossOrigin is the CORS policy applied to a load request.
type CrossOrigin string

const (
	NoCrossOrigin  CrossOrigin = ""
	Anonymous      CrossOrigin = "anonymous"
	UseCredentials CrossOrigin = "use-credentials"
)

// LoadOptions parametrize one image load.
type LoadOptions struct {
	CrossOrigin CrossOrigin
}

// Image is a loaded image handle.
// The zero value is the empty image, returned for empty URLs.
type Image struct {
	URL    string
	Format string // as reported by the decoder, "svg" for rasterized sources

	mu  sync.Mutex
	img image.Image
}

// NewImage wraps an already decoded image.
func NewImage(url string, img image.Image) *Image {
	return &Image{URL: url, img: img}
}

// Empty returns true if there is no pixel data, either because
// the source URL was empty or because the image was disposed.
func (im *Image) Empty() bool {
	return im.Source() == nil
}

// Source returns the decoded image, or nil.
func (im *Image) Source() image.Image {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.img
}

// Bounds returns the image bounds, empty for an empty image.
func (im *Image) Bounds() image.Rectangle {
	if src := im.Source(); src != nil {
		return src.Bounds()
	}
	return image.Rectangle{}
}

// Dispose releases the decoded pixels.
func (im *Image) Dispose() {
	im.mu.Lock()
	im.img = nil
	im.mu.Unlock()
}

// Loader fetches and decodes images. The zero value is ready to use
// and fetches with http.DefaultClient.
type Loader struct {
	// Fetcher, if not nil, replaces the built-in fetching.
	Fetcher Fetcher

	Client    *http.Client
	UserAgent string

	// Origin is sent as the Origin header of cross origin requests.
	Origin string
	// Credentials is called on requests which may carry credentials,
	// that is all requests but Anonymous ones.
	Credentials func(*http.Request)

	// AllowedSchemes restricts the URL schemes, nil meaning
	// http, https, data and file.
	AllowedSchemes []string

	// MaxBytes caps the size of a fetched resource, 0 meaning no limit.
	MaxBytes int64

	// MaxPixels caps the area of decoded images, 0 meaning DefaultMaxPixels.
	// Larger sources fail with ErrImageTooLarge.
	MaxPixels int64

	// SVGWidth and SVGHeight are used for SVG sources
	// without intrinsic size.
	SVGWidth, SVGHeight int
}

// Default is the loader used by LoadImage.
var Default = &Loader{}

// LoadImage loads `url` with the Default loader.
func LoadImage(ctx context.Context, url string, opts LoadOptions) (*Image, error) {
	return Default.LoadImage(ctx, url, opts)
}

// LoadImage fetches and decodes the image at `url`.
// It fails with an *AbortedError if `ctx` is done before or during the load,
// and with a *ResourceLoadError if the source can't be fetched or decoded.
// An empty url is not an error: an empty *Image is returned right away.
func (l *Loader) LoadImage(ctx context.Context, url string, opts LoadOptions) (*Image, error) {
	if err := Aborted(ctx); err != nil {
		scenemetrics.RecordImageLoad(scenemetrics.ResultAborted, 0)
		return nil, err
	}
	if url == "" {
		scenemetrics.RecordImageLoad(scenemetrics.ResultEmpty, 0)
		return &Image{}, nil
	}

	start := time.Now()
	img, err := l.load(ctx, url, opts)
	took := time.Since(start)

	logger := zerolog.Ctx(ctx)
	switch {
	case err == nil:
		scenemetrics.RecordImageLoad(scenemetrics.ResultOK, took)
		logger.Debug().Str("url", shortURL(url)).Str("format", img.Format).Dur("took", took).Msg("image loaded")
	case IsAborted(err):
		scenemetrics.RecordImageLoad(scenemetrics.ResultAborted, took)
		logger.Debug().Str("url", shortURL(url)).Err(err).Msg("image load aborted")
	default:
		scenemetrics.RecordImageLoad(scenemetrics.ResultError, took)
		logger.Debug().Str("url", shortURL(url)).Err(err).Msg("image load failed")
	}
	return img, err
}

func (l *Loader) load(ctx context.Context, url string, opts LoadOptions) (*Image, error) {
	fetcher := l.Fetcher
	if fetcher == nil {
		fetcher = l
	}
	rc, contentType, err := fetcher.Fetch(ctx, Request{URL: url, CrossOrigin: opts.CrossOrigin})
	if err != nil {
		if abortErr := Aborted(ctx); abortErr != nil {
			return nil, abortErr
		}
		return nil, &ResourceLoadError{URL: url, Err: err}
	}

	var once sync.Once
	closeSource := func() { once.Do(func() { rc.Close() }) }
	// closing the source on abort interrupts the decoder
	stop := context.AfterFunc(ctx, closeSource)

	var body io.Reader = rc
	if l.MaxBytes > 0 {
		body = http.MaxBytesReader(nil, rc, l.MaxBytes)
	}
	img, format, err := l.decode(body, contentType, url)

	aborted := !stop()
	closeSource()
	if aborted {
		return nil, &AbortedError{Cause: context.Cause(ctx)}
	}
	if err != nil {
		return nil, &ResourceLoadError{URL: url, Err: err}
	}
	return &Image{URL: url, Format: format, img: img}, nil
}
