package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertFileExists checks that path is a regular file
func AssertFileExists(t *testing.T, path string, msgAndArgs ...interface{}) bool {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		return assert.Fail(t, "file does not exist: "+path, msgAndArgs...)
	}
	return assert.True(t, info.Mode().IsRegular(), append([]interface{}{"not a regular file: " + path}, msgAndArgs...)...)
}

// AssertNoFile checks that nothing exists at path
func AssertNoFile(t *testing.T, path string, msgAndArgs ...interface{}) bool {
	t.Helper()

	_, err := os.Stat(path)
	return assert.True(t, os.IsNotExist(err), append([]interface{}{"expected no file at " + path}, msgAndArgs...)...)
}

// AssertFileContains checks that the file at path contains substr
func AssertFileContains(t *testing.T, path, substr string, msgAndArgs ...interface{}) bool {
	t.Helper()

	data, err := os.ReadFile(path)
	if !assert.NoError(t, err, msgAndArgs...) {
		return false
	}
	return assert.Contains(t, string(data), substr, msgAndArgs...)
}

// ListFiles returns every regular file under dir as sorted slash paths
func ListFiles(t *testing.T, dir string) []string {
	t.Helper()

	var files []string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(dir, path)
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(files)
	return files
}
