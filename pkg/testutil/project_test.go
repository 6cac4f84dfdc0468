package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestProject(t *testing.T) {
	p := NewTestProjectWithFiles(t, map[string]string{
		"src/index.js": "require('./a')",
		"src/a.js":     "",
	})
	p.AddPackage("lib", map[string]interface{}{"main": "lib.js"}, map[string]string{"lib.js": ""})

	AssertFileExists(t, p.Path("src/index.js"))
	AssertFileContains(t, p.Path("node_modules/lib/package.json"), `"main": "lib.js"`)
	AssertNoFile(t, p.Path("dist"))
	assert.Equal(t, []string{
		"node_modules/lib/lib.js",
		"node_modules/lib/package.json",
		"src/a.js",
		"src/index.js",
	}, ListFiles(t, p.Dir))

	cfg := p.Config("./src/index.js")
	assert.Equal(t, p.Path("dist"), cfg.Output.Path)
}
