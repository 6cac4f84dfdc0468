package emit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanName(t *testing.T) {
	for in, want := range map[string]string{
		"bundle.js":          "bundle.js",
		"fonts/icons.woff":   "fonts/icons.woff",
		"./a/../b/c.js":      "b/c.js",
		"deep/nested/x.html": "deep/nested/x.html",
	} {
		got, err := CleanName(filepath.FromSlash(in))
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "../x.js", "/etc/passwd", "a/../../x"} {
		_, err := CleanName(bad)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), bad)
	}
}

func TestDirWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewDirWriter(dir)

	require.NoError(t, w.Write("bundle.js", []byte("abc")))
	require.NoError(t, w.Write("fonts/a.woff", []byte("12345")))
	require.NoError(t, w.Write("bundle.js", []byte("abcd")))

	data, err := os.ReadFile(filepath.Join(dir, "fonts", "a.woff"))
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	assert.Equal(t, []File{{Name: "bundle.js", Size: 4}, {Name: "fonts/a.woff", Size: 5}}, w.Files())

	err = w.Write("../outside.js", []byte("x"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	_, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "outside.js"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStagedWriter_Flush(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dist")
	w := NewStagedWriter(dir)

	require.NoError(t, w.Write("bundle.js", []byte("abc")))
	require.NoError(t, w.Write("index.html", []byte("<html>")))
	assert.Equal(t, 2, w.Pending())

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "nothing is written before Flush")

	require.NoError(t, w.Flush())
	assert.Equal(t, 0, w.Pending())
	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
	assert.Len(t, w.Files(), 2)
}

func TestStagedWriter_Discard(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dist")
	w := NewStagedWriter(dir)

	require.NoError(t, w.Write("bundle.js", []byte("abc")))
	w.Discard()
	require.NoError(t, w.Flush())

	_, err := os.Stat(filepath.Join(dir, "bundle.js"))
	assert.True(t, os.IsNotExist(err))
}

func TestStagedWriter_FlushRollsBack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dist")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "index.html"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html", "keep"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bundle.js"), []byte("old"), 0644))

	w := NewStagedWriter(dir)
	require.NoError(t, w.Write("bundle.js", []byte("new")))
	require.NoError(t, w.Write("assets/logo.png", []byte("png")))
	require.NoError(t, w.Write("index.html", []byte("<html>")))

	err := w.Flush()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileWrite))

	data, err := os.ReadFile(filepath.Join(dir, "bundle.js"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data), "overwritten files are restored")

	_, err = os.Stat(filepath.Join(dir, "assets"))
	assert.True(t, os.IsNotExist(err), "created directories are removed")

	info, err := os.Stat(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, 3, w.Pending(), "a failed flush keeps the stage")
}
