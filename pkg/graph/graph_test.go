// Test Type: Integration Test
// Description: Tests for the graph walker - parallel discovery, deterministic ids and the transform cache

package graph_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/webrig/pkg/chain"
	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/graph"
	"github.com/arthur-debert/webrig/pkg/resolve"
	"github.com/arthur-debert/webrig/pkg/rules"
	"github.com/arthur-debert/webrig/pkg/testutil"
	"github.com/arthur-debert/webrig/pkg/transforms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var projectRules = []config.Rule{
	{Test: `\.css$`, Use: config.UseList{{Loader: "raw-loader"}}},
	{Test: `\.png$`, Use: config.UseList{{Loader: "file-loader", Options: map[string]interface{}{"name": "[name].[ext]"}}}},
	{Test: `\.bmp$`, Use: config.UseList{{Loader: "image-webpack-loader"}}},
}

func newWalker(t *testing.T, p *testutil.TestProject, parallelism int, cache *graph.Cache) *graph.Walker {
	t.Helper()

	table, err := rules.Compile(projectRules)
	require.NoError(t, err)

	reg := transforms.Builtins()
	chains := make([]*chain.Chain, len(projectRules))
	for i, r := range projectRules {
		steps, err := r.Steps()
		require.NoError(t, err)
		chains[i], err = chain.Compile(reg, steps)
		require.NoError(t, err)
	}

	resolver := resolve.New([]string{".js", ".json"}, map[string]string{"react": "React"})
	return graph.NewWalker(table, chains, resolver, cache, graph.Options{
		Context:     p.Dir,
		PublicPath:  "/",
		Parallelism: parallelism,
	})
}

func sampleProject(t *testing.T) *testutil.TestProject {
	return testutil.NewTestProjectWithFiles(t, map[string]string{
		"src/index.js": `var a = require("./a");
require("./style.css");
var React = require("react");
document.onclick = function () { import("./lazy").then(function (m) { m.run(); }); };
`,
		"src/a.js":      `module.exports = require("./b") + require("./data.json").n + require("./logo.png");`,
		"src/b.js":      `module.exports = 1; require("./a");`,
		"src/style.css": `body { color: red; }`,
		"src/lazy.js":   `exports.run = function () { return require("./b"); };`,
		"src/data.json": `{ "n": 2 }`,
		"src/logo.png":  "png-bytes",
	})
}

func keys(g *graph.Graph) []string {
	var out []string
	for _, m := range g.Modules {
		out = append(out, m.Rel)
	}
	return out
}

func TestWalk_DiscoveryOrder(t *testing.T) {
	p := sampleProject(t)

	g, err := newWalker(t, p, 4, nil).Walk(context.Background(), "./src/index.js")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/index.js",
		"src/a.js",
		"src/style.css",
		"external React",
		"src/lazy.js",
		"src/b.js",
		"src/data.json",
		"src/logo.png",
	}, keys(g))

	entry := g.Entry()
	require.Len(t, entry.Deps, 4)
	assert.Equal(t, graph.Dependency{Specifier: "./lazy", Dynamic: true, Target: 4}, entry.Deps[3])
	assert.Equal(t, 3, entry.Deps[2].Target)

	// the cycle a -> b -> a resolves to the existing id
	b := g.Module(5)
	require.Len(t, b.Deps, 1)
	assert.Equal(t, 1, b.Deps[0].Target)

	assert.Contains(t, g.Module(3).Source, `globalThis["React"]`)
	assert.Equal(t, "module.exports = {\"n\":2};\n", g.Module(6).Source)
	assert.Equal(t, graph.NoRule, g.Module(6).Rule)
	assert.Equal(t, 0, g.Module(2).Rule)

	logo := g.Module(7)
	require.Len(t, logo.Assets, 1)
	assert.Equal(t, "logo.png", logo.Assets[0].Name)
	assert.Equal(t, "module.exports = \"/logo.png\";\n", logo.Source)
}

func TestWalk_IgnoresCallsInsideLiterals(t *testing.T) {
	p := testutil.NewTestProjectWithFiles(t, map[string]string{
		"src/index.js": "var help = \"use require('lodash') to load it\";\n" +
			"// require('./gone')\n" +
			"module.exports = help + require(\"./a\") + require(\"./style.css\");\n",
		"src/a.js":      `module.exports = "import('./nope')";`,
		"src/style.css": `a::after { content: "require('./missing')"; }`,
	})

	g, err := newWalker(t, p, 2, nil).Walk(context.Background(), "./src/index.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/index.js", "src/a.js", "src/style.css"}, keys(g))
	assert.Contains(t, g.Module(2).Source, `require('./missing')`)
}

func TestWalk_DeterministicAcrossParallelism(t *testing.T) {
	p := sampleProject(t)

	g1, err := newWalker(t, p, 1, nil).Walk(context.Background(), "./src/index.js")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		g2, err := newWalker(t, p, 16, nil).Walk(context.Background(), "./src/index.js")
		require.NoError(t, err)
		assert.Equal(t, keys(g1), keys(g2))
	}
}

func TestWalk_Cache(t *testing.T) {
	p := sampleProject(t)
	cache, err := graph.NewCache(16)
	require.NoError(t, err)
	w := newWalker(t, p, 2, cache)

	_, err = w.Walk(context.Background(), "./src/index.js")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len(), "css and png modules go through chains")

	p.AddFile("src/style.css", "body { color: blue; }")
	g, err := w.Walk(context.Background(), "./src/index.js")
	require.NoError(t, err)

	assert.False(t, g.Module(2).Cached)
	assert.Contains(t, g.Module(2).Source, "blue")

	logo := g.Module(7)
	assert.True(t, logo.Cached)
	require.Len(t, logo.Assets, 1, "cached modules replay emitted assets")

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(3), misses)
}

func TestWalk_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		code  errors.ErrorCode
	}{
		{"no rule", map[string]string{"src/index.js": `require("./README.md")`, "src/README.md": "# hi"}, errors.ErrNoMatch},
		{"unresolved", map[string]string{"src/index.js": `require("./missing")`}, errors.ErrResolve},
		{"chain ends raw", map[string]string{"src/index.js": `require("./x.bmp")`, "src/x.bmp": "BM"}, errors.ErrTransform},
		{"bad json", map[string]string{"src/index.js": `require("./x.json")`, "src/x.json": "{"}, errors.ErrTransform},
		{"missing entry", map[string]string{"src/other.js": ""}, errors.ErrResolve},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testutil.NewTestProjectWithFiles(t, tt.files)
			_, err := newWalker(t, p, 2, nil).Walk(context.Background(), "./src/index.js")
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestWalk_NoMatchReportsPath(t *testing.T) {
	p := testutil.NewTestProjectWithFiles(t, map[string]string{
		"src/index.js":  `require("./notes.txt")`,
		"src/notes.txt": "x",
	})
	_, err := newWalker(t, p, 1, nil).Walk(context.Background(), "./src/index.js")
	require.Error(t, err)
	assert.Equal(t, p.Path("src/notes.txt"), errors.GetErrorDetails(err)["path"])
}

func TestWalk_Cancelled(t *testing.T) {
	p := sampleProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newWalker(t, p, 2, nil).Walk(ctx, "./src/index.js")
	assert.Error(t, err)
}
