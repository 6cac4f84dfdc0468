package transforms

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Kind tells raw file bytes from script source
type Kind int

const (
	KindRaw Kind = iota
	KindScript
)

func (k Kind) String() string {
	if k == KindScript {
		return "script"
	}
	return "raw"
}

// Asset is the unit flowing through a chain
type Asset struct {
	// Path is the absolute source path
	Path string
	// Query is the resource query without the leading "?"
	Query   string
	Content []byte
	Kind    Kind
}

// Ext returns the source extension including the dot
func (a Asset) Ext() string {
	return filepath.Ext(a.Path)
}

// Step is one transform of a chain
type Step interface {
	Name() string
	Transform(ctx context.Context, env *Env, in Asset) (Asset, error)
}

// Factory constructs a step from its options
type Factory func(options map[string]interface{}) (Step, error)

// EmittedAsset is an extra output file produced while transforming a module
type EmittedAsset struct {
	// Name is relative to the output directory, with forward slashes
	Name    string
	Content []byte
}

// Env is what a step sees of the build around it. One Env is used per
// module; it collects the assets the module's steps emit.
type Env struct {
	// Context is the project directory
	Context    string
	PublicPath string
	Logger     zerolog.Logger

	mu      sync.Mutex
	emitted []EmittedAsset
}

// NewEnv returns an Env for one module
func NewEnv(projectDir, publicPath string, logger zerolog.Logger) *Env {
	return &Env{Context: projectDir, PublicPath: publicPath, Logger: logger}
}

// Emit records an output file
func (e *Env) Emit(name string, content []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitted = append(e.emitted, EmittedAsset{Name: name, Content: content})
}

// Emitted returns the recorded output files in emit order
func (e *Env) Emitted() []EmittedAsset {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]EmittedAsset, len(e.emitted))
	copy(out, e.emitted)
	return out
}

// Rel returns path relative to the project directory with forward slashes
func (e *Env) Rel(path string) string {
	rel, err := filepath.Rel(e.Context, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
