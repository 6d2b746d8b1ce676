package sceneshape

import (
	"context"
	"fmt"

	"github.com/benoitkugler/okscene/scene"
	"github.com/benoitkugler/okscene/sceneload"
	"golang.org/x/sync/errgroup"
)

// Image is a raster image. Its outline is the image rectangle.
type Image struct {
	Object
	Source      *sceneload.Image
	Src         string
	CrossOrigin sceneload.CrossOrigin
	CropX       float64
	CropY       float64
}

func (im *Image) readField(key string, v any) (bool, error) {
	switch key {
	case "src":
		return true, setString(&im.Src, v)
	case "crossOrigin":
		var s string
		err := setString(&s, v)
		im.CrossOrigin = sceneload.CrossOrigin(s)
		return true, err
	case "cropX":
		return true, setNumber(&im.CropX, v)
	case "cropY":
		return true, setNumber(&im.CropY, v)
	}
	return im.Object.readField(key, v)
}

// newImage loads the source concurrently with the enlivables.
func newImage(ctx context.Context, d scene.Descriptor, opts scene.Options) (any, error) {
	src, err := d.String("src", "")
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	crossOrigin, err := d.String("crossOrigin", "")
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}

	var (
		source *sceneload.Image
		props  scene.Descriptor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		source, err = opts.ImageLoader().LoadImage(gctx, src, sceneload.LoadOptions{CrossOrigin: sceneload.CrossOrigin(crossOrigin)})
		return err
	})
	g.Go(func() (err error) {
		props, err = scene.EnlivenEnlivables(gctx, d, opts)
		return err
	})
	err = g.Wait()
	if err != nil {
		// the caller abort takes precedence over child failures
		if abortErr := sceneload.Aborted(ctx); abortErr != nil {
			err = abortErr
		}
	}
	if err == nil {
		im := &Image{Object: defaultObject(), Source: source}
		if err = decode(ctx, props, opts, im); err == nil {
			return im, nil
		}
	}
	if source != nil {
		source.Dispose()
	}
	disposeValues(props)
	return nil, err
}

// finish defaults the size to the image one
func (im *Image) finish() error {
	bounds := im.Source.Bounds()
	if im.Width == 0 {
		im.Width = float64(bounds.Dx())
	}
	if im.Height == 0 {
		im.Height = float64(bounds.Dy())
	}
	return nil
}

func (im *Image) Outline() Path {
	var p Path
	w, h := im.Width/2, im.Height/2
	p.addRect(-w, -h, w, h)
	return p
}

// Dispose releases the image pixels, then the common resources.
func (im *Image) Dispose() {
	im.dispose(func() {
		if im.Source != nil {
			im.Source.Dispose()
		}
	})
}
