package svgdraw

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
)

// AssetLoader resolves external references (images and fonts)
// into their content.
type AssetLoader interface {
	LoadAsset(ref string) ([]byte, error)
}

// FSLoader loads assets from a file system, such as os.DirFS(dir)
// or an embed.FS.
type FSLoader struct {
	FS fs.FS
}

// LoadAsset reads `ref`, interpreted as a slash separated path
// relative to the root of the file system.
func (l FSLoader) LoadAsset(ref string) ([]byte, error) {
	name := strings.TrimPrefix(path.Clean("/"+ref), "/")
	return fs.ReadFile(l.FS, name)
}

var errNoLoader = errors.New("no asset loader")

// loadHref returns the content of an `href`, handling data URIs.
// The media type is empty when unknown.
func (b *Builder) loadHref(href string) (mediaType string, data []byte, err error) {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "data:") {
		return decodeDataURI(href)
	}
	if b.loader == nil {
		return "", nil, errNoLoader
	}
	data, err = b.loader.LoadAsset(href)
	if err != nil {
		return "", nil, fmt.Errorf("loading %q: %w", href, err)
	}
	if strings.HasSuffix(strings.ToLower(href), ".svg") {
		mediaType = "image/svg+xml"
	}
	return mediaType, data, nil
}

// decodeDataURI parses data:[<media type>][;base64],<data>
func decodeDataURI(uri string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return "", nil, errors.New("invalid data URI: missing comma")
	}
	params := strings.Split(header, ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	isBase64 := false
	for _, p := range params[1:] {
		if strings.TrimSpace(p) == "base64" {
			isBase64 = true
		}
	}
	if isBase64 {
		// whitespace is frequent in inlined images
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return "", nil, fmt.Errorf("invalid data URI: %w", err)
		}
		return mediaType, data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid data URI: %w", err)
	}
	return mediaType, []byte(data), nil
}
