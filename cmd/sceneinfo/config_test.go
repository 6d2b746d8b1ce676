package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benoitkugler/okscene/scene"
	"github.com/benoitkugler/okscene/scenedoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	path := writeFile(t, "sceneinfo.toml", `
error_mode = "strict"
timeout = "5s"

[loader]
user_agent = " okscene/1.0 "
max_bytes = 1048576
max_pixels = 4000000
allowed_schemes = ["HTTPS", " data ", ""]
svg_width = 640
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, scene.StrictErrorMode, cfg.ErrorMode)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "okscene/1.0", cfg.Loader.UserAgent)
	assert.Equal(t, int64(1<<20), cfg.Loader.MaxBytes)
	assert.Equal(t, int64(4000000), cfg.Loader.MaxPixels)
	assert.Equal(t, []string{"https", "data"}, cfg.Loader.AllowedSchemes)
	assert.Equal(t, 640, cfg.Loader.SVGWidth)
	assert.Equal(t, 0, cfg.Loader.SVGHeight)
	assert.Empty(t, cfg.Loader.Origin)

	cfg, err = loadConfig(writeFile(t, "empty.toml", ""))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	for _, content := range []string{
		`error_mode = "loud"`,
		`timeout = "soon"`,
		`timeout = "-1s"`,
		`unknown = 1`,
		"[loader]\nmax_bytes = -4",
		"[loader]\nsvg_height = -1",
		"[loader]\nmax_pixels = -1",
		`timeout = `,
	} {
		_, err := loadConfig(writeFile(t, "bad.toml", content))
		assert.Error(t, err, content)
	}

	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	path := writeFile(t, "scene.json", `{
		"background": "white",
		"objects": [
			{"type": "rect", "left": 0, "top": 0, "width": 10, "height": 10, "strokeWidth": 0,
			 "clipPath": {"type": "circle", "radius": 2}},
			{"type": "group", "objects": [
				{"type": "line", "x2": 4, "stroke": "black", "fill": {"colorStops": [{"offset": 0}]}}
			]}
		]
	}`)
	sc, err := scenedoc.ReadScene(context.Background(), path, scenedoc.ReadOptions{})
	require.NoError(t, err)
	defer sc.Dispose()

	var out bytes.Buffer
	describe(&out, sc)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "background: #ffffff", strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "  Rect [0.0 0.0 10.0 10.0] fill=#000000 clipped d=M-5.000"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "  Group "), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "    Line "), lines[3])
	assert.Contains(t, lines[3], "fill=linear-gradient")
}
