package scene

import (
	"context"
	"fmt"
	"image"

	"github.com/benoitkugler/okscene/sceneload"
)

func init() {
	// patterns serialized with a type tag resolve through the namespace
	DefaultNamespace.MustRegister("pattern", func(ctx context.Context, d Descriptor, opts Options) (any, error) {
		return PatternFromObject(ctx, d, opts)
	})
}

// Repeat is the tiling mode of a pattern.
type Repeat string

const (
	RepeatBoth Repeat = "repeat"
	RepeatX    Repeat = "repeat-x"
	RepeatY    Repeat = "repeat-y"
	NoRepeat   Repeat = "no-repeat"
)

// Pattern is an image based paint.
type Pattern struct {
	ID          string
	Source      *sceneload.Image
	SourceURL   string // empty when the source was given as an image
	Repeat      Repeat
	OffsetX     float64
	OffsetY     float64
	CrossOrigin sceneload.CrossOrigin
	Transform   Matrix2D // patternTransform
}

// PatternFromObject builds a pattern from its descriptor, loading its source
// with opts.Loader :
//
//	{source: <url> | image.Image, repeat, offsetX, offsetY,
//	 crossOrigin, patternTransform: [a, b, c, d, e, f], id}
func PatternFromObject(ctx context.Context, d Descriptor, opts Options) (*Pattern, error) {
	p := &Pattern{Transform: Identity}
	var err error
	if p.ID, err = d.String("id", ""); err != nil {
		return nil, patternError(err)
	}
	repeat, err := d.String("repeat", string(RepeatBoth))
	if err != nil {
		return nil, patternError(err)
	}
	switch p.Repeat = Repeat(repeat); p.Repeat {
	case RepeatBoth, RepeatX, RepeatY, NoRepeat:
	default:
		return nil, patternError(fmt.Errorf("unknown repeat mode %q", repeat))
	}
	if p.OffsetX, err = d.Number("offsetX", 0); err != nil {
		return nil, patternError(err)
	}
	if p.OffsetY, err = d.Number("offsetY", 0); err != nil {
		return nil, patternError(err)
	}
	crossOrigin, err := d.String("crossOrigin", "")
	if err != nil {
		return nil, patternError(err)
	}
	p.CrossOrigin = sceneload.CrossOrigin(crossOrigin)
	if p.Transform, err = MatrixFromValue(d["patternTransform"]); err != nil {
		return nil, patternError(err)
	}

	switch src := d["source"].(type) {
	case string:
		p.SourceURL = src
		img, err := opts.ImageLoader().LoadImage(ctx, src, sceneload.LoadOptions{CrossOrigin: p.CrossOrigin})
		if err != nil {
			return nil, err
		}
		p.Source = img
	case image.Image:
		p.Source = sceneload.NewImage("", src)
	default:
		return nil, patternError(fmt.Errorf("unsupported source %T", src))
	}
	return p, nil
}

func patternError(err error) error {
	return fmt.Errorf("invalid pattern: %w", err)
}

// Dispose releases the source image.
func (p *Pattern) Dispose() {
	if p.Source != nil {
		p.Source.Dispose()
	}
}
