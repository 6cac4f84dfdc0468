// Test Type: Integration Test
// Description: Tests for the build orchestrator - full builds through the walker, assembler, emitter and plugins

package build_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/arthur-debert/webrig/pkg/build"
	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/plugins"
	"github.com/arthur-debert/webrig/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var appRules = []config.Rule{
	{Test: `/\.css$/`, Use: config.UseList{{Loader: "style-loader"}, {Loader: "css-loader"}}},
	{Test: `\.png$`, Loader: "file-loader?name=[name].[ext]"},
}

func appProject(t *testing.T) *testutil.TestProject {
	t.Helper()
	return testutil.NewTestProjectWithFiles(t, map[string]string{
		"src/index.js": `require("./style.css");
var logo = require("./logo.png");
import("./lazy").then(function (m) { m.run(logo); });
`,
		"src/style.css": "body { color: red; }\n",
		"src/logo.png":  "png-bytes",
		"src/lazy.js":   "exports.run = function (x) { return x; };\n",
	})
}

func fileNames(r *build.Result) []string {
	var out []string
	for _, f := range r.Files {
		out = append(out, f.Name)
	}
	return out
}

func TestRun(t *testing.T) {
	p := appProject(t)
	cfg := p.Config("./src/index.js", appRules...)
	cfg.Output.PublicPath = "/"
	cfg.Plugins = []config.Plugin{{Name: "html"}, {Name: "hot-module-replacement"}}

	c, err := build.New(cfg)
	require.NoError(t, err)

	result, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Modules)
	require.Len(t, result.Chunks, 2)
	assert.Equal(t, "bundle.js", result.Chunks[0].File)
	assert.Equal(t, "lazy.chunk.js", result.Chunks[1].File)
	assert.Len(t, result.Hash, 16)
	assert.Equal(t, []string{"bundle.js", "lazy.chunk.js", "logo.png", "index.html", plugins.HotUpdateFile}, fileNames(result))

	testutil.AssertFileContains(t, p.Path("dist/bundle.js"), "__webrig_require__.load(1, ")
	testutil.AssertFileContains(t, p.Path("dist/lazy.chunk.js"), "__webrig_register__")
	testutil.AssertFileContains(t, p.Path("dist/index.html"), `<script src="/bundle.js"></script>`)
	assert.Equal(t, "png-bytes", p.ReadOutput("logo.png"))

	var update plugins.HotUpdate
	require.NoError(t, json.Unmarshal([]byte(p.ReadOutput(plugins.HotUpdateFile)), &update))
	assert.Equal(t, result.Hash, update.Hash)
	assert.Len(t, update.Changed, 4)
}

func TestRun_Rebuild(t *testing.T) {
	p := appProject(t)
	cfg := p.Config("./src/index.js", appRules...)
	cfg.Plugins = []config.Plugin{{Name: "hot-module-replacement"}}

	c, err := build.New(cfg)
	require.NoError(t, err)

	first, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, first.CacheHits)

	p.AddFile("src/lazy.js", "exports.run = function (x) { return [x]; };\n")
	second, err := c.Run(context.Background())
	require.NoError(t, err)

	// style.css and logo.png go through rules and are served from the cache
	assert.Equal(t, 2, second.CacheHits)
	assert.NotEqual(t, first.Hash, second.Hash)

	var update plugins.HotUpdate
	require.NoError(t, json.Unmarshal([]byte(p.ReadOutput(plugins.HotUpdateFile)), &update))
	assert.Equal(t, first.Hash, update.PreviousHash)
	assert.Equal(t, []string{"src/lazy.js"}, update.Changed)
}

func TestRun_NoCache(t *testing.T) {
	p := appProject(t)
	c, err := build.New(p.Config("./src/index.js", appRules...), build.WithCacheSize(0))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		result, err := c.Run(context.Background())
		require.NoError(t, err)
		assert.Zero(t, result.CacheHits)
	}
}

func TestRun_NoEmitOnErrors(t *testing.T) {
	broken := []config.Plugin{{Name: "html", Options: map[string]interface{}{"filename": "../escape.html"}}}

	t.Run("staged output is discarded", func(t *testing.T) {
		p := appProject(t)
		cfg := p.Config("./src/index.js", appRules...)
		cfg.Plugins = append([]config.Plugin{{Name: "NoEmitOnErrorsPlugin"}}, broken...)

		c, err := build.New(cfg)
		require.NoError(t, err)
		assert.True(t, c.Staged())

		_, err = c.Run(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		testutil.AssertNoFile(t, p.Path("dist"))
	})

	t.Run("direct output is partial", func(t *testing.T) {
		p := appProject(t)
		cfg := p.Config("./src/index.js", appRules...)
		cfg.Plugins = broken

		c, err := build.New(cfg)
		require.NoError(t, err)
		assert.False(t, c.Staged())

		_, err = c.Run(context.Background())
		require.Error(t, err)
		testutil.AssertFileExists(t, p.Path("dist/bundle.js"))
	})
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		code  errors.ErrorCode
	}{
		{"unresolvable import", map[string]string{"src/index.js": `require("./missing");`}, errors.ErrResolve},
		{"no rule", map[string]string{"src/index.js": `require("./notes.txt");`, "src/notes.txt": "hi"}, errors.ErrNoMatch},
		{"invalid json", map[string]string{"src/index.js": `require("./bad.json");`, "src/bad.json": "{ nope"}, errors.ErrTransform},
		{"missing entry", map[string]string{"src/other.js": ""}, errors.ErrResolve},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testutil.NewTestProjectWithFiles(t, tt.files)
			c, err := build.New(p.Config("./src/index.js", appRules...))
			require.NoError(t, err)

			_, err = c.Run(context.Background())
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestRun_TypeScriptStringMentioningRequire(t *testing.T) {
	p := testutil.NewTestProjectWithFiles(t, map[string]string{
		"src/index.tsx": `export const help: string = "use require('lodash') to load it";` + "\n",
	})
	cfg := p.Config("./src/index.tsx", config.Rule{Test: `\.tsx$`, Loader: "awesome-typescript-loader"})
	c, err := build.New(cfg)
	require.NoError(t, err)

	result, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Modules)
	testutil.AssertFileContains(t, p.Path("dist/bundle.js"), `use require('lodash') to load it`)
}

func TestRun_Cancelled(t *testing.T) {
	p := appProject(t)
	c, err := build.New(p.Config("./src/index.js", appRules...))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		code   errors.ErrorCode
	}{
		{"empty entry", func(c *config.Config) { c.Entry = "" }, errors.ErrConfigInvalid},
		{"bad pattern", func(c *config.Config) { c.Rules = []config.Rule{{Test: "(", Loader: "raw-loader"}} }, errors.ErrPatternInvalid},
		{"unknown loader", func(c *config.Config) { c.Rules = []config.Rule{{Test: `\.x$`, Loader: "coffee-loader"}} }, errors.ErrUnknownTransform},
		{"unknown plugin", func(c *config.Config) { c.Plugins = []config.Plugin{{Name: "DefinePlugin"}} }, errors.ErrUnknownPlugin},
		{"missing template", func(c *config.Config) {
			c.Plugins = []config.Plugin{{Name: "html", Options: map[string]interface{}{"template": "missing.html"}}}
		}, errors.ErrTemplateNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testutil.NewTestProject(t)
			cfg := p.Config("./src/index.js", appRules...)
			tt.mutate(cfg)

			_, err := build.New(cfg)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
			testutil.AssertNoFile(t, p.Path("dist"))
		})
	}
}

func TestNew_Accessors(t *testing.T) {
	p := testutil.NewTestProject(t)
	cfg := p.Config("./src/index.js", appRules...)
	cfg.Devtool = "source-map"

	c, err := build.New(cfg)
	require.NoError(t, err)

	assert.Equal(t, p.Path("dist"), c.OutputDir())
	assert.Equal(t, 2, c.Rules().Len())
	assert.Equal(t, []string{"style-loader", "css-loader"}, c.Chain(0).Names())
	assert.Same(t, cfg, c.Config())
	assert.Empty(t, c.Plugins())
}
