// Test Type: Unit Test
// Description: Tests for the rule dispatcher - ordered, first-match-wins rule tables

package rules_test

import (
	"sync"
	"testing"

	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func starterTable(t *testing.T) *rules.Table {
	t.Helper()
	table, err := rules.Compile(config.Starter().Rules)
	require.NoError(t, err)
	return table
}

func TestTable_Resolve(t *testing.T) {
	table := starterTable(t)

	tests := []struct {
		path      string
		wantIndex int
		wantFirst string
	}{
		{"./src/index.tsx", 0, "awesome-typescript-loader"},
		{"./src/app.css", 1, "style-loader"},
		{"./src/page.html", 2, "html-loader"},
		{"./fonts/icons.woff2", 3, "file-loader"},
		{"./img/logo.png", 4, "file-loader"},
		{"./img/photo.JPG", -1, ""},
		{"./data/info.json", 5, "json-loader"},
		{"./media/clip.mp4", 6, "url-loader"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := table.Resolve(tt.path)
			if tt.wantIndex < 0 {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantIndex, m.Index)
			assert.Equal(t, tt.wantFirst, m.Steps[0].Loader)
		})
	}
}

func TestTable_FirstMatchWins(t *testing.T) {
	table := starterTable(t)

	// svg is listed by both the font rule and the image rule
	m, ok := table.Resolve("./assets/font.svg")
	require.True(t, ok)
	assert.Equal(t, 3, m.Index)
	require.Len(t, m.Steps, 1)
	assert.Equal(t, "file-loader", m.Steps[0].Loader)

	// svgz only appears in the image rule
	m, ok = table.Resolve("./assets/x.svgz")
	require.True(t, ok)
	assert.Equal(t, 4, m.Index)
	require.Len(t, m.Steps, 2)
	assert.Equal(t, "image-webpack", m.Steps[1].Loader)
}

func TestTable_Exclude(t *testing.T) {
	table := starterTable(t)

	_, ok := table.Resolve("./node_modules/lib/index.tsx")
	assert.False(t, ok, "tsx under node_modules is excluded and no later rule matches")

	m, ok := table.Resolve("./node_modules/lib/style.html")
	require.True(t, ok)
	assert.Equal(t, 2, m.Index)
}

func TestTable_MustResolve(t *testing.T) {
	table := starterTable(t)

	_, err := table.MustResolve("README.md")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoMatch))
	assert.Equal(t, "README.md", errors.GetErrorDetails(err)["path"])

	m, err := table.MustResolve(`C:\proj\src\index.tsx`)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Index)
}

func TestTable_Deterministic(t *testing.T) {
	table := starterTable(t)

	var wg sync.WaitGroup
	results := make([]int, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, _ := table.Resolve("./assets/font.svg")
			results[i] = m.Index
		}(i)
	}
	wg.Wait()

	for _, idx := range results {
		assert.Equal(t, 3, idx)
	}
}

func TestTable_LoaderShorthand(t *testing.T) {
	table, err := rules.Compile([]config.Rule{
		{Test: `\.(mp4|webm)$`, Loader: "url-loader?limit=10000&mimetype=video/mp4"},
	})
	require.NoError(t, err)

	m, ok := table.Resolve("intro.webm")
	require.True(t, ok)
	require.Len(t, m.Steps, 1)
	assert.Equal(t, "url-loader", m.Steps[0].Loader)
	assert.EqualValues(t, 10000, m.Steps[0].Options["limit"])
	assert.Equal(t, "video/mp4", m.Steps[0].Options["mimetype"])
}

func TestCompile_Errors(t *testing.T) {
	_, err := rules.Compile([]config.Rule{{Test: `\.(js$`, Loader: "raw"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatternInvalid))

	_, err = rules.Compile([]config.Rule{{Test: `\.js$`, Exclude: `[`, Loader: "raw"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatternInvalid))

	_, err = rules.Compile([]config.Rule{{Test: `/\.js$/x`, Loader: "raw"}})
	assert.NoError(t, err, "unknown trailing text is part of a bare pattern")
}

func TestTable_Rules(t *testing.T) {
	table := starterTable(t)
	assert.Equal(t, 7, table.Len())
	assert.Equal(t, `\.tsx$`, table.Rules()[0].Test)
}

func TestTable_Steps(t *testing.T) {
	table := starterTable(t)
	for i, rule := range table.Rules() {
		want, err := rule.Steps()
		require.NoError(t, err)
		assert.Equal(t, want, table.Steps(i), "rule %d", i)
	}
	assert.Equal(t, "awesome-typescript-loader", table.Steps(0)[0].Loader)
}
