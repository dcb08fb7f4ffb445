package svgdraw

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("ignore: [fill, mask]\nlanguage: fr\nantialias: false\nassets: testdata\n"))
	require.NoError(t, err)
	assert.Equal(t, IgnoreFill|IgnoreMask, cfg.Ignore)
	assert.Equal(t, "fr", cfg.Language)
	require.NotNil(t, cfg.Antialias)
	assert.False(t, *cfg.Antialias)
	assert.Len(t, cfg.Options(), 3)

	cfg, err = ParseConfig([]byte("ignore: stroke|opacity\n"))
	require.NoError(t, err)
	assert.Equal(t, IgnoreStroke|IgnoreOpacity, cfg.Ignore)
	assert.Equal(t, "en", cfg.Language)
	assert.Nil(t, cfg.Antialias)
	assert.Len(t, cfg.Options(), 1)

	_, err = ParseConfig([]byte("ignore: [fill, colors]\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("language: [a\n"))
	assert.Error(t, err)
}

func TestConfigRoundTrip(t *testing.T) {
	aa := true
	cfg := &Config{Ignore: IgnoreClip | IgnoreFilter, Language: "de", Antialias: &aa}
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	got, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language: it\n"), 0o644))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "it", cfg.Language)

	_, err = LoadConfig(t.TempDir()) // a directory
	assert.Error(t, err)
}

func TestConfigOptions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), testPNG(t, 3, 3), 0o644))
	aa := false
	cfg := &Config{Language: "fr", Antialias: &aa, Assets: dir}

	tree, _ := buildSrc(t, svgDoc(`<switch><rect id="fr" systemLanguage="fr" width="10" height="10"/><rect id="other" width="10" height="10"/></switch>
		<image id="i" href="a.png"/>`), cfg.Ignore, cfg.Options()...)
	fr := nodeByID(t, tree, "fr")
	assert.True(t, fr.IsDrawable)
	assert.False(t, fr.IsAntialias)
	assert.True(t, nodeByID(t, tree, "i").IsDrawable)
}

func TestDecodeDataURI(t *testing.T) {
	for _, test := range []struct {
		uri       string
		mediaType string
		data      string
	}{
		{"data:image/png;base64,aGVsbG8=", "image/png", "hello"},
		{"data:image/png;base64,aGVs\n bG8=", "image/png", "hello"},
		{"data:;base64,aGVsbG8", "", "hello"},
		{"data:,a%20b", "", "a b"},
		{"data:image/SVG+xml;charset=utf8,%3Csvg%3E", "image/svg+xml", "<svg>"},
	} {
		mediaType, data, err := decodeDataURI(test.uri)
		require.NoError(t, err, test.uri)
		assert.Equal(t, test.mediaType, mediaType, test.uri)
		assert.Equal(t, test.data, string(data), test.uri)
	}

	for _, bad := range []string{"data:image/png;base64", "data:;base64,!!!", "data:,%zz"} {
		_, _, err := decodeDataURI(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadHref(t *testing.T) {
	b := NewBuilder(&Recorder{})
	_, _, err := b.loadHref("icon.svg")
	assert.ErrorIs(t, err, errNoLoader)

	b = NewBuilder(&Recorder{}, WithAssetLoader(FSLoader{FS: fstest.MapFS{
		"dir/icon.SVG": {Data: []byte("<svg/>")},
	}}))
	mediaType, data, err := b.loadHref("../dir/./icon.SVG")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", mediaType)
	assert.Equal(t, "<svg/>", string(data))

	_, _, err = b.loadHref("other.png")
	assert.Error(t, err)
}

func TestIsSVGContent(t *testing.T) {
	assert.True(t, isSVGContent("image/svg+xml", nil))
	assert.True(t, isSVGContent("", []byte("\ufeff \n<?xml version=\"1.0\"?><svg/>")))
	assert.False(t, isSVGContent("image/png", []byte("\x89PNG")))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	buildSrc(t, svgDoc(`<rect width="10" height="10" fill="url(#missing)"/><rect width="1" height="1" transform="skew(1"/>`), IgnoreNone)
	assert.Contains(t, buf.String(), "paint server not resolved")
	assert.Contains(t, buf.String(), "invalid transform")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
