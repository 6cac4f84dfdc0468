// pkg/testutil/project.go
// DEPENDENCIES: pkg/config
// PURPOSE: Build project directories for build, graph and CLI tests

package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/stretchr/testify/require"
)

// TestProject is a project directory with a src tree
type TestProject struct {
	Dir string
	t   *testing.T
}

// NewTestProject creates an empty project directory
func NewTestProject(t *testing.T) *TestProject {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return &TestProject{Dir: dir, t: t}
}

// NewTestProjectWithFiles creates a project holding files, keyed by
// slash-separated relative path
func NewTestProjectWithFiles(t *testing.T, files map[string]string) *TestProject {
	t.Helper()

	p := NewTestProject(t)
	for name, content := range files {
		p.AddFile(name, content)
	}
	return p
}

// Path returns the absolute path of a relative, slash-separated name
func (p *TestProject) Path(name string) string {
	return filepath.Join(p.Dir, filepath.FromSlash(name))
}

// AddFile writes a file, creating parent directories
func (p *TestProject) AddFile(name, content string) string {
	p.t.Helper()
	return p.AddBytes(name, []byte(content))
}

// AddBytes writes binary content
func (p *TestProject) AddBytes(name string, content []byte) string {
	p.t.Helper()

	path := p.Path(name)
	require.NoError(p.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(p.t, os.WriteFile(path, content, 0644))
	return path
}

// AddPackage creates node_modules/<name> with a package.json built from
// manifest and the given files
func (p *TestProject) AddPackage(name string, manifest map[string]interface{}, files map[string]string) string {
	p.t.Helper()

	dir := "node_modules/" + name
	if manifest != nil {
		data, err := json.MarshalIndent(manifest, "", "  ")
		require.NoError(p.t, err)
		p.AddBytes(dir+"/package.json", data)
	}
	for file, content := range files {
		p.AddFile(dir+"/"+file, content)
	}
	return p.Path(dir)
}

// WriteConfig writes cfg as the project's webrig.toml
func (p *TestProject) WriteConfig(cfg *config.Config) string {
	p.t.Helper()

	data, err := config.Marshal(cfg, config.FormatTOML)
	require.NoError(p.t, err)
	return p.AddBytes("webrig.toml", data)
}

// Config returns a minimal configuration rooted at the project
func (p *TestProject) Config(entry string, rules ...config.Rule) *config.Config {
	return &config.Config{
		Context:     p.Dir,
		Entry:       entry,
		Parallelism: 4,
		Output: config.Output{
			Path:          p.Path("dist"),
			Filename:      "bundle.js",
			ChunkFilename: "[name].chunk.js",
		},
		Rules:   rules,
		Resolve: config.Resolve{Extensions: []string{".js", ".json"}},
	}
}

// ReadOutput reads a file from the project's dist directory
func (p *TestProject) ReadOutput(name string) string {
	p.t.Helper()

	data, err := os.ReadFile(p.Path("dist/" + name))
	require.NoError(p.t, err)
	return string(data)
}
