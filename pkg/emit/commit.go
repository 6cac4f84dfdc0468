package emit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/logging"
)

// target is one staged file with its absolute destination
type target struct {
	path    string
	content []byte
}

// commit runs one write operation per target through a synthfs pipeline
// with rollback enabled
func commit(targets []target) error {
	logger := logging.GetLogger("emit")

	osfs := filesystem.NewOSFileSystem("/")
	fsys := synthfs.NewPathAwareFileSystem(osfs, "/").WithAbsolutePaths()
	sfs := synthfs.New()

	ops := make([]synthfs.Operation, 0, len(targets))
	for i, t := range targets {
		t := t
		id := fmt.Sprintf("emit_%d_%s", i, filepath.Base(t.path))
		ops = append(ops, sfs.CustomOperationWithID(id, func(ctx context.Context, fs filesystem.FileSystem) error {
			if err := fs.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
				return err
			}
			return fs.WriteFile(t.path, t.content, 0644)
		}))
	}

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = true

	logger.Debug().Int("files", len(ops)).Msg("Flushing staged output")
	if _, err := synthfs.RunWithOptions(context.Background(), fsys, options, ops...); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write staged output")
	}
	return nil
}

// snapshot records what a flush may change: files it creates, files it
// overwrites and directories it creates
type snapshot struct {
	created  []string
	previous map[string][]byte
	dirs     []string
}

func takeSnapshot(targets []target) *snapshot {
	s := &snapshot{previous: make(map[string][]byte)}
	seen := make(map[string]bool)
	for _, t := range targets {
		if data, err := os.ReadFile(t.path); err == nil {
			s.previous[t.path] = data
		} else if _, err := os.Lstat(t.path); os.IsNotExist(err) {
			s.created = append(s.created, t.path)
		}

		for dir := filepath.Dir(t.path); !seen[dir]; dir = filepath.Dir(dir) {
			seen[dir] = true
			if _, err := os.Stat(dir); err == nil {
				break
			}
			s.dirs = append(s.dirs, dir)
		}
	}
	// deepest first
	sort.Slice(s.dirs, func(i, j int) bool { return len(s.dirs[i]) > len(s.dirs[j]) })
	return s
}

// restore undoes a partially applied flush
func (s *snapshot) restore() {
	logger := logging.GetLogger("emit")

	for path, data := range s.previous {
		if err := os.WriteFile(path, data, 0644); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Failed to restore output file")
		}
	}
	for _, path := range s.created {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", path).Msg("Failed to remove partial output")
		}
	}
	for _, dir := range s.dirs {
		// fails harmlessly when something else now lives there
		_ = os.Remove(dir)
	}
}
