// Test Type: Unit Test
// Description: Tests for plugin construction and the built-in plugins

package plugins_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/arthur-debert/webrig/pkg/emit"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/plugins"
	"github.com/arthur-debert/webrig/pkg/testutil"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compilation(t *testing.T) (*plugins.Compilation, *emit.StagedWriter) {
	t.Helper()
	w := emit.NewStagedWriter(t.TempDir())
	c := plugins.NewCompilation(w)
	c.Hash = "0123456789abcdef"
	c.PublicPath = "/"
	c.MainFile = "bundle.js"
	return c, w
}

func asset(t *testing.T, c *plugins.Compilation, name string) []byte {
	t.Helper()
	for _, a := range c.Assets() {
		if a.Name == name {
			return a.Content
		}
	}
	t.Fatalf("asset %s was not emitted", name)
	return nil
}

func TestBuild(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.AddFile("index.html", "<html><body></body></html>")

	list, err := plugins.Build([]config.Plugin{
		{Name: "HotModuleReplacementPlugin"},
		{Name: "no-emit-on-errors"},
		{Name: "html-webpack-plugin", Options: map[string]interface{}{"template": "index.html"}},
		{Name: "CompressionPlugin"},
	}, plugins.Env{Context: p.Dir})
	require.NoError(t, err)

	var names []string
	for _, plugin := range list {
		names = append(names, plugin.Name())
	}
	assert.Equal(t, []string{"hot-module-replacement", "no-emit-on-errors", "html", "compression"}, names)
}

func TestBuild_Errors(t *testing.T) {
	env := plugins.Env{Context: t.TempDir()}

	tests := []struct {
		name   string
		plugin config.Plugin
		code   errors.ErrorCode
	}{
		{"unknown", config.Plugin{Name: "DefinePlugin"}, errors.ErrUnknownPlugin},
		{"missing template", config.Plugin{Name: "html", Options: map[string]interface{}{"template": "nope.html"}}, errors.ErrTemplateNotFound},
		{"bad inject", config.Plugin{Name: "html", Options: map[string]interface{}{"inject": "footer"}}, errors.ErrConfigInvalid},
		{"bad test", config.Plugin{Name: "compression", Options: map[string]interface{}{"test": "(js"}}, errors.ErrPatternInvalid},
		{"bad ratio", config.Plugin{Name: "compression", Options: map[string]interface{}{"minRatio": 0}}, errors.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := plugins.Build([]config.Plugin{tt.plugin}, env)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestNoEmitOnErrors(t *testing.T) {
	plugin, err := plugins.New(config.Plugin{Name: "NoEmitOnErrorsPlugin"}, plugins.Env{})
	require.NoError(t, err)

	configurer, ok := plugin.(plugins.Configurer)
	require.True(t, ok)
	var opts plugins.Options
	configurer.Configure(&opts)
	assert.True(t, opts.Staged)
}

func TestHTML_Template(t *testing.T) {
	p := testutil.NewTestProject(t)
	p.AddFile("index.html", `<!DOCTYPE html>
<html><head><title><%= htmlWebpackPlugin.options.title %></title></head>
<body><div id="app"></div></body></html>`)

	tests := []struct {
		inject interface{}
		want   string
		absent bool
	}{
		{inject: true, want: `<script src="/bundle.js"></script></body>`},
		{inject: "head", want: `<script src="/bundle.js"></script></head>`},
		{inject: false, absent: true},
	}

	for _, tt := range tests {
		plugin, err := plugins.New(config.Plugin{Name: "html", Options: map[string]interface{}{
			"template": "index.html",
			"inject":   tt.inject,
			"title":    "Demo & co",
		}}, plugins.Env{Context: p.Dir})
		require.NoError(t, err)

		c, _ := compilation(t)
		require.NoError(t, plugin.(plugins.AssetEmitter).EmitAssets(context.Background(), c))

		page := string(asset(t, c, "index.html"))
		assert.Contains(t, page, "Demo &amp; co")
		if tt.absent {
			assert.NotContains(t, page, "<script")
		} else {
			assert.Contains(t, page, tt.want)
		}
	}
}

func TestHTML_DefaultPage(t *testing.T) {
	plugin, err := plugins.New(config.Plugin{Name: "html", Options: map[string]interface{}{
		"filename": "app/page.html",
	}}, plugins.Env{Context: t.TempDir()})
	require.NoError(t, err)

	c, w := compilation(t)
	c.PublicPath = "/static/"
	require.NoError(t, plugin.(plugins.AssetEmitter).EmitAssets(context.Background(), c))

	page := string(asset(t, c, "app/page.html"))
	assert.Contains(t, page, "<title>webrig</title>")
	assert.Contains(t, page, `<script src="/static/bundle.js"></script>`)
	assert.Equal(t, 1, w.Pending())
}

func TestHotModuleReplacement(t *testing.T) {
	plugin, err := plugins.New(config.Plugin{Name: "hot-module-replacement"}, plugins.Env{})
	require.NoError(t, err)
	hmr := plugin.(*plugins.HotModuleReplacement)

	run := func(hash string, modules ...plugins.ModuleInfo) plugins.HotUpdate {
		c, _ := compilation(t)
		c.Hash = hash
		c.Modules = modules
		require.NoError(t, hmr.EmitAssets(context.Background(), c))
		hmr.Done(c)

		var update plugins.HotUpdate
		require.NoError(t, json.Unmarshal(asset(t, c, plugins.HotUpdateFile), &update))
		return update
	}

	first := run("aaaa", plugins.ModuleInfo{Path: "src/index.js", Checksum: 1}, plugins.ModuleInfo{Path: "src/a.js", Checksum: 2})
	assert.Equal(t, "aaaa", first.Hash)
	assert.Empty(t, first.PreviousHash)
	assert.Equal(t, []string{"src/a.js", "src/index.js"}, first.Changed)

	second := run("bbbb", plugins.ModuleInfo{Path: "src/index.js", Checksum: 1}, plugins.ModuleInfo{Path: "src/a.js", Checksum: 3})
	assert.Equal(t, "aaaa", second.PreviousHash)
	assert.Equal(t, []string{"src/a.js"}, second.Changed)
	assert.Equal(t, "bbbb", hmr.Hash())
}

func TestHotModuleReplacement_FailedBuildKeepsState(t *testing.T) {
	hmr, err := plugins.New(config.Plugin{Name: "hot-module-replacement"}, plugins.Env{})
	require.NoError(t, err)
	p := hmr.(*plugins.HotModuleReplacement)

	c, _ := compilation(t)
	c.Hash = "aaaa"
	require.NoError(t, p.EmitAssets(context.Background(), c))
	// Done is never called for a build that fails after emitting
	assert.Empty(t, p.Hash())
}

func TestCompression(t *testing.T) {
	plugin, err := plugins.New(config.Plugin{Name: "compression", Options: map[string]interface{}{
		"threshold": 100,
	}}, plugins.Env{})
	require.NoError(t, err)

	c, _ := compilation(t)
	big := []byte(strings.Repeat("console.log('webrig');\n", 200))
	require.NoError(t, c.Emit("bundle.js", big))
	require.NoError(t, c.Emit("tiny.js", []byte("1;")))
	require.NoError(t, c.Emit("logo.png", big))

	require.NoError(t, plugin.(plugins.AssetEmitter).EmitAssets(context.Background(), c))

	var names []string
	for _, f := range c.Files() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"bundle.js", "tiny.js", "logo.png", "bundle.js.gz"}, names)

	r, err := gzip.NewReader(bytes.NewReader(asset(t, c, "bundle.js.gz")))
	require.NoError(t, err)
	plain, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, big, plain)
}

func TestCompilation_EmitRejectsEscapes(t *testing.T) {
	c, _ := compilation(t)
	err := c.Emit("../outside.js", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Empty(t, c.Assets())
}
