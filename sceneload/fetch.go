package sceneload

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

var defaultSchemes = []string{"http", "https", "data", "file"}

// Request describes one resource to fetch.
type Request struct {
	URL         string
	CrossOrigin CrossOrigin
}

// Fetcher opens the raw content of a resource.
// It must honor the cancellation of `ctx`; the returned reader
// may also be closed concurrently to abort an in-flight load.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (rc io.ReadCloser, contentType string, err error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req Request) (io.ReadCloser, string, error)

func (f FetcherFunc) Fetch(ctx context.Context, req Request) (io.ReadCloser, string, error) {
	return f(ctx, req)
}

// Fetch implements Fetcher for http(s), data and file URLs,
// and plain filesystem paths.
func (l *Loader) Fetch(ctx context.Context, req Request) (io.ReadCloser, string, error) {
	scheme, rest := splitScheme(req.URL)
	if !l.allows(scheme) {
		return nil, "", fmt.Errorf("url scheme %q is not allowed", scheme)
	}
	switch scheme {
	case "http", "https":
		return l.fetchHTTP(ctx, req)
	case "data":
		return fetchData(rest)
	case "file":
		path := req.URL
		if u, err := url.Parse(req.URL); err == nil && u.Scheme == "file" {
			path = u.Path
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, "", err
		}
		return f, "", nil
	default:
		return nil, "", fmt.Errorf("unsupported url scheme %q", scheme)
	}
}

// splitScheme returns the lower cased scheme of `u`, "file" for
// plain paths (including windows drive letters).
func splitScheme(u string) (scheme, rest string) {
	i := strings.IndexByte(u, ':')
	if i <= 1 || strings.ContainsAny(u[:i], "/\\") {
		return "file", u
	}
	return strings.ToLower(u[:i]), u[i+1:]
}

func (l *Loader) allows(scheme string) bool {
	schemes := l.AllowedSchemes
	if schemes == nil {
		schemes = defaultSchemes
	}
	for _, s := range schemes {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

func (l *Loader) fetchHTTP(ctx context.Context, req Request) (io.ReadCloser, string, error) {
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, "", err
	}
	if l.UserAgent != "" {
		hreq.Header.Set("User-Agent", l.UserAgent)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	if req.CrossOrigin != NoCrossOrigin && l.Origin != "" {
		hreq.Header.Set("Origin", l.Origin)
	}
	switch req.CrossOrigin {
	case Anonymous:
		// no cookies nor credentials at all
		if client.Jar != nil {
			anonymous := *client
			anonymous.Jar = nil
			client = &anonymous
		}
	default:
		if l.Credentials != nil {
			l.Credentials(hreq)
		}
	}

	resp, err := client.Do(hreq)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// fetchData decodes the content of a data URL, without the "data:" prefix :
// [<mediatype>][;base64],<data>
func fetchData(rest string) (io.ReadCloser, string, error) {
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, "", fmt.Errorf("malformed data url: missing comma")
	}
	header, payload := rest[:comma], rest[comma+1:]
	isBase64 := false
	if strings.HasSuffix(header, ";base64") {
		isBase64 = true
		header = strings.TrimSuffix(header, ";base64")
	}
	var (
		data []byte
		err  error
	)
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// tolerate unpadded payloads
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		data = []byte(s)
	}
	if err != nil {
		return nil, "", fmt.Errorf("malformed data url: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), header, nil
}
