// Package emit writes build outputs under the output directory.
//
// DirWriter writes each file as soon as it is emitted. StagedWriter keeps
// everything in memory until Flush, so a failed build leaves the output
// directory untouched. Both reject names that would land outside the
// output directory.
package emit

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arthur-debert/webrig/pkg/errors"
)

// File describes one emitted output
type File struct {
	// Name is relative to the output directory, with forward slashes
	Name string
	Size int64
}

// Writer receives build outputs
type Writer interface {
	Write(name string, content []byte) error
	// Files lists emitted files in emit order; a name emitted twice keeps
	// its first position
	Files() []File
}

// CleanName validates an output name and returns it with forward slashes
func CleanName(name string) (string, error) {
	slash := filepath.ToSlash(name)
	native := filepath.FromSlash(slash)
	if name == "" || !filepath.IsLocal(native) || strings.HasPrefix(slash, "/") {
		return "", errors.Newf(errors.ErrInvalidInput, "output name %q escapes the output directory", name).
			WithDetail("name", name)
	}
	return filepath.ToSlash(filepath.Clean(native)), nil
}

type ledger struct {
	mu    sync.Mutex
	files []File
	index map[string]int
}

func (l *ledger) record(name string, size int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.index == nil {
		l.index = make(map[string]int)
	}
	if i, ok := l.index[name]; ok {
		l.files[i].Size = size
		return
	}
	l.index[name] = len(l.files)
	l.files = append(l.files, File{Name: name, Size: size})
}

func (l *ledger) list() []File {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]File, len(l.files))
	copy(out, l.files)
	return out
}

// DirWriter writes files immediately
type DirWriter struct {
	dir string
	ledger
}

// NewDirWriter returns a writer rooted at dir
func NewDirWriter(dir string) *DirWriter {
	return &DirWriter{dir: dir}
}

// Write writes content to name under the output directory
func (w *DirWriter) Write(name string, content []byte) error {
	clean, err := CleanName(name)
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(w.dir, filepath.FromSlash(clean)), content); err != nil {
		return err
	}
	w.record(clean, int64(len(content)))
	return nil
}

// Files lists written files
func (w *DirWriter) Files() []File {
	return w.list()
}

// StagedWriter buffers files until Flush
type StagedWriter struct {
	dir string
	ledger

	mu      sync.Mutex
	pending map[string][]byte
}

// NewStagedWriter returns a buffering writer rooted at dir
func NewStagedWriter(dir string) *StagedWriter {
	return &StagedWriter{dir: dir, pending: make(map[string][]byte)}
}

// Write stages content under name
func (w *StagedWriter) Write(name string, content []byte) error {
	clean, err := CleanName(name)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.pending[clean] = content
	w.mu.Unlock()
	w.record(clean, int64(len(content)))
	return nil
}

// Files lists staged files
func (w *StagedWriter) Files() []File {
	return w.list()
}

// Flush writes every staged file in emit order as one synthfs pipeline and
// clears the stage. When a write fails the output directory is put back as
// it was and the stage is kept.
func (w *StagedWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var targets []target
	for _, f := range w.list() {
		content, ok := w.pending[f.Name]
		if !ok {
			continue
		}
		targets = append(targets, target{
			path:    filepath.Join(w.dir, filepath.FromSlash(f.Name)),
			content: content,
		})
	}
	if len(targets) == 0 {
		return nil
	}

	snap := takeSnapshot(targets)
	if err := commit(targets); err != nil {
		snap.restore()
		return err
	}
	w.pending = make(map[string][]byte)
	return nil
}

// Discard drops every staged file
func (w *StagedWriter) Discard() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = make(map[string][]byte)
}

// Pending returns the number of staged files not yet flushed
func (w *StagedWriter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create directory for %s", path).
			WithDetail("path", path)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path).
			WithDetail("path", path)
	}
	return nil
}
