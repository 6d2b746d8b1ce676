package scenedoc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/okscene/scene"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// ReadOptions parametrize the reading of a scene document.
type ReadOptions struct {
	scene.Options

	// Charset is the encoding label of JSON documents.
	// If empty, documents are read as UTF-8, or as UTF-16 when
	// they start with the matching byte order mark.
	Charset string
}

// ReadSceneStream decodes a JSON document and loads the scene.
func ReadSceneStream(ctx context.Context, r io.Reader, opts ReadOptions) (*Scene, error) {
	var (
		src io.Reader
		err error
	)
	if opts.Charset != "" {
		src, err = charset.NewReaderLabel(opts.Charset, r)
	} else {
		src = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	var d scene.Descriptor
	if err := json.NewDecoder(src).Decode(&d); err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	return LoadScene(ctx, d, opts.Options)
}

// ReadSceneYAML decodes a YAML document and loads the scene.
func ReadSceneYAML(ctx context.Context, r io.Reader, opts ReadOptions) (*Scene, error) {
	var d map[string]any
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	return LoadScene(ctx, scene.Descriptor(d), opts.Options)
}

// ReadScene loads the document at `path`, which is read
// as YAML for .yaml and .yml files, and as JSON otherwise.
func ReadScene(ctx context.Context, path string, opts ReadOptions) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadSceneYAML(ctx, f, opts)
	default:
		return ReadSceneStream(ctx, f, opts)
	}
}
