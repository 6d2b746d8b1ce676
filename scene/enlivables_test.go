package scene

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benoitkugler/okscene/sceneload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, image.NewNRGBA(image.Rect(0, 0, w, h))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b.Bytes())
}

// slowLoader fails or blocks on demand
type slowLoader struct {
	delay time.Duration
	err   error
	calls int32
}

func (l *slowLoader) LoadImage(ctx context.Context, url string, _ sceneload.LoadOptions) (*sceneload.Image, error) {
	atomic.AddInt32(&l.calls, 1)
	select {
	case <-time.After(l.delay):
	case <-ctx.Done():
		return nil, sceneload.Aborted(ctx)
	}
	if l.err != nil {
		return nil, &sceneload.ResourceLoadError{URL: url, Err: l.err}
	}
	return sceneload.NewImage(url, image.NewNRGBA(image.Rect(0, 0, 1, 1))), nil
}

func TestClassify(t *testing.T) {
	for _, test := range []struct {
		value any
		kind  enlivableKind
	}{
		{nil, plainValue},
		{"red", plainValue},
		{0.0, plainValue},
		{map[string]any{}, plainValue},
		{map[string]any{"colorStops": []any{}}, gradientValue},
		{map[string]any{"colorStops": []any{}, "type": "rect", "source": "a.png"}, gradientValue},
		{map[string]any{"type": "rect", "source": "a.png"}, objectValue},
		{map[string]any{"source": "a.png"}, patternValue},
		{map[string]any{"source": ""}, plainValue},
		{map[string]any{"type": ""}, plainValue},
	} {
		kind, _ := classify(test.value)
		assert.Equal(t, test.kind, kind, "%v", test.value)
	}
}

func TestEnlivenEnlivables(t *testing.T) {
	tb := newTestBed(t)
	opts := tb.options()
	d := Descriptor{
		"left":   10.0,
		"fill":   "red",
		"stroke": map[string]any{"type": "linear", "colorStops": []any{map[string]any{"offset": 1.0, "color": "blue"}}},
		"clipPath": map[string]any{
			"type": "item", "name": "clip",
		},
		"shadow": map[string]any{"blur": 2.0},
		"pattern": map[string]any{
			"source": pngDataURL(t, 3, 2),
			"repeat": "no-repeat",
		},
	}

	out, err := EnlivenEnlivables(context.Background(), d, opts)
	require.NoError(t, err)
	assert.Equal(t, d.Keys(), out.Keys())
	assert.Equal(t, 10.0, out["left"])
	assert.Equal(t, "red", out["fill"])
	assert.Equal(t, d["shadow"], out["shadow"])

	grad, ok := out["stroke"].(*Gradient)
	require.True(t, ok)
	assert.False(t, grad.IsRadial())

	assert.Equal(t, "clip", out["clipPath"].(*tracked).name)

	pattern, ok := out["pattern"].(*Pattern)
	require.True(t, ok)
	assert.Equal(t, NoRepeat, pattern.Repeat)
	assert.Equal(t, image.Rect(0, 0, 3, 2), pattern.Source.Bounds())

	// the input is untouched
	_, isMap := d["stroke"].(map[string]any)
	assert.True(t, isMap)
}

func TestEnlivenEnlivablesPlain(t *testing.T) {
	loader := &slowLoader{}
	d := Descriptor{"a": 1.0, "b": nil, "c": []any{"x"}, "d": false}

	out, err := EnlivenEnlivables(context.Background(), d, Options{Loader: loader})
	require.NoError(t, err)
	assert.Equal(t, d, out)
	assert.Zero(t, atomic.LoadInt32(&loader.calls))

	// enlivening an already enlivened descriptor is the identity
	again, err := EnlivenEnlivables(context.Background(), out, Options{Loader: loader})
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestEnlivenEnlivablesIdempotent(t *testing.T) {
	d := Descriptor{"fill": map[string]any{"colorStops": []any{map[string]any{"offset": 0.0}}}}
	out, err := EnlivenEnlivables(context.Background(), d, Options{})
	require.NoError(t, err)
	grad := out["fill"]

	again, err := EnlivenEnlivables(context.Background(), out, Options{})
	require.NoError(t, err)
	assert.Same(t, grad, again["fill"])
}

func TestEnlivenEnlivablesLoadError(t *testing.T) {
	tb := newTestBed(t)
	opts := tb.options()
	opts.Loader = &slowLoader{delay: 30 * time.Millisecond, err: assert.AnError}
	d := Descriptor{
		"clipPath": map[string]any{"type": "item", "name": "clip"},
		"fill":     map[string]any{"source": "http://example.com/missing.png"},
	}

	out, err := EnlivenEnlivables(context.Background(), d, opts)
	assert.Nil(t, out)
	var loadErr *ResourceLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "http://example.com/missing.png", loadErr.URL)

	built := tb.instances()
	require.Len(t, built, 1)
	assert.Equal(t, 1, built[0].disposals())
}

func TestEnlivenEnlivablesInvalidGradient(t *testing.T) {
	tb := newTestBed(t)
	d := Descriptor{
		"a": map[string]any{"type": "item", "name": "first"},
		"b": map[string]any{"colorStops": []any{map[string]any{"color": "red"}}},
		"c": map[string]any{"type": "item", "name": "never"},
	}

	_, err := EnlivenEnlivables(context.Background(), d, tb.options())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid gradient")
	for _, instance := range tb.instances() {
		assert.NotEqual(t, "never", instance.name)
		assert.Equal(t, 1, instance.disposals())
	}
}

func TestEnlivenEnlivablesAborted(t *testing.T) {
	loader := &slowLoader{delay: 2 * time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := EnlivenEnlivables(ctx, Descriptor{"fill": map[string]any{"source": "a.png"}}, Options{Loader: loader})
	require.True(t, IsAborted(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// no load is attempted once aborted
	_, err = EnlivenEnlivables(ctx, Descriptor{"fill": map[string]any{"source": "a.png"}}, Options{Loader: loader})
	require.True(t, IsAborted(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&loader.calls))
}

func TestPatternFromObject(t *testing.T) {
	loader := &slowLoader{}
	p, err := PatternFromObject(context.Background(), Descriptor{
		"source":           "http://example.com/a.png",
		"repeat":           "repeat-x",
		"offsetX":          2.0,
		"crossOrigin":      "anonymous",
		"patternTransform": []any{2.0, 0.0, 0.0, 2.0, 5.0, 5.0},
	}, Options{Loader: loader})
	require.NoError(t, err)
	assert.Equal(t, RepeatX, p.Repeat)
	assert.Equal(t, 2.0, p.OffsetX)
	assert.Equal(t, sceneload.Anonymous, p.CrossOrigin)
	assert.Equal(t, Matrix2D{2, 0, 0, 2, 5, 5}, p.Transform)
	assert.Equal(t, "http://example.com/a.png", p.SourceURL)

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	p, err = PatternFromObject(context.Background(), Descriptor{"source": src}, Options{Loader: loader})
	require.NoError(t, err)
	assert.Equal(t, RepeatBoth, p.Repeat)
	assert.Equal(t, src.Bounds(), p.Source.Bounds())
	p.Dispose()
	assert.True(t, p.Source.Empty())

	// invalid fields are reported before loading
	_, err = PatternFromObject(context.Background(), Descriptor{"source": "a.png", "repeat": "tile"}, Options{Loader: loader})
	assert.Error(t, err)
	_, err = PatternFromObject(context.Background(), Descriptor{"source": 4.0}, Options{Loader: loader})
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loader.calls))
}
