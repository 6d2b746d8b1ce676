package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/benoitkugler/okscene/scene"
	"github.com/benoitkugler/okscene/sceneload"
)

type config struct {
	ErrorMode scene.ErrorMode
	Timeout   time.Duration
	Loader    sceneload.Loader
}

func defaultConfig() config {
	return config{
		ErrorMode: scene.WarnErrorMode,
		Timeout:   30 * time.Second,
		Loader:    sceneload.Loader{UserAgent: "sceneinfo"},
	}
}

type fileConfig struct {
	ErrorMode string           `toml:"error_mode"`
	Timeout   string           `toml:"timeout"`
	Loader    fileLoaderConfig `toml:"loader"`
}

type fileLoaderConfig struct {
	UserAgent      string   `toml:"user_agent"`
	Origin         string   `toml:"origin"`
	MaxBytes       int64    `toml:"max_bytes"`
	MaxPixels      int64    `toml:"max_pixels"`
	AllowedSchemes []string `toml:"allowed_schemes"`
	SVGWidth       int      `toml:"svg_width"`
	SVGHeight      int      `toml:"svg_height"`
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load sceneinfo config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load sceneinfo config: unknown key %s", undecoded[0])
	}

	if meta.IsDefined("error_mode") {
		mode, err := parseErrorMode(raw.ErrorMode)
		if err != nil {
			return config{}, err
		}
		cfg.ErrorMode = mode
	}

	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}

	if meta.IsDefined("loader", "user_agent") {
		cfg.Loader.UserAgent = strings.TrimSpace(raw.Loader.UserAgent)
	}
	if meta.IsDefined("loader", "origin") {
		cfg.Loader.Origin = strings.TrimSpace(raw.Loader.Origin)
	}
	if meta.IsDefined("loader", "max_bytes") {
		cfg.Loader.MaxBytes = raw.Loader.MaxBytes
	}
	if meta.IsDefined("loader", "max_pixels") {
		cfg.Loader.MaxPixels = raw.Loader.MaxPixels
	}
	if meta.IsDefined("loader", "allowed_schemes") {
		cfg.Loader.AllowedSchemes = normalizeSchemes(raw.Loader.AllowedSchemes)
	}
	if meta.IsDefined("loader", "svg_width") {
		cfg.Loader.SVGWidth = raw.Loader.SVGWidth
	}
	if meta.IsDefined("loader", "svg_height") {
		cfg.Loader.SVGHeight = raw.Loader.SVGHeight
	}

	return cfg, cfg.validate()
}

func (cfg *config) validate() error {
	if cfg.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s", cfg.Timeout)
	}
	if cfg.Loader.MaxBytes < 0 {
		return fmt.Errorf("invalid loader max_bytes %d", cfg.Loader.MaxBytes)
	}
	if cfg.Loader.MaxPixels < 0 {
		return fmt.Errorf("invalid loader max_pixels %d", cfg.Loader.MaxPixels)
	}
	if cfg.Loader.SVGWidth < 0 || cfg.Loader.SVGHeight < 0 {
		return fmt.Errorf("invalid loader svg size %dx%d", cfg.Loader.SVGWidth, cfg.Loader.SVGHeight)
	}
	return nil
}

func parseErrorMode(s string) (scene.ErrorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore":
		return scene.IgnoreErrorMode, nil
	case "warn":
		return scene.WarnErrorMode, nil
	case "strict":
		return scene.StrictErrorMode, nil
	}
	return 0, fmt.Errorf("invalid error_mode %q (expected ignore, warn or strict)", s)
}

func normalizeSchemes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, scheme := range in {
		v := strings.ToLower(strings.TrimSpace(scheme))
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
