// Package plugins extends a build beyond bundling.
//
// Plugins are constructed once from configuration and run in declaration
// order. A plugin takes part in a build by implementing any of the optional
// interfaces:
//
//   - Configurer adjusts build options before the run
//   - AssetEmitter emits extra outputs once the chunks are written
//   - Reporter observes a build that completed
package plugins

import (
	"context"
	"sync"

	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/arthur-debert/webrig/pkg/emit"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/registry"
)

// Plugin is a constructed build plugin
type Plugin interface {
	Name() string
}

// Options are the build options a Configurer may change
type Options struct {
	// Staged holds every output in memory until the build succeeds
	Staged bool
}

// Configurer adjusts build options
type Configurer interface {
	Configure(opts *Options)
}

// AssetEmitter emits additional outputs
type AssetEmitter interface {
	EmitAssets(ctx context.Context, c *Compilation) error
}

// Reporter is told about every completed build
type Reporter interface {
	Done(c *Compilation)
}

// ModuleInfo identifies a module version
type ModuleInfo struct {
	Path     string
	Checksum uint64
}

// Asset is an emitted output with its content
type Asset struct {
	Name    string
	Content []byte
}

// Compilation is one build as plugins see it
type Compilation struct {
	Hash       string
	PublicPath string
	MainFile   string
	ChunkFiles []string
	Modules    []ModuleInfo

	writer emit.Writer
	mu     sync.Mutex
	assets []Asset
}

// NewCompilation returns a compilation emitting through w
func NewCompilation(w emit.Writer) *Compilation {
	return &Compilation{writer: w}
}

// Emit writes an output and records it
func (c *Compilation) Emit(name string, content []byte) error {
	clean, err := emit.CleanName(name)
	if err != nil {
		return err
	}
	if err := c.writer.Write(clean, content); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets = append(c.assets, Asset{Name: clean, Content: content})
	return nil
}

// Assets returns every output emitted so far in emit order
func (c *Compilation) Assets() []Asset {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

// Files lists the written outputs
func (c *Compilation) Files() []emit.File {
	return c.writer.Files()
}

// Env is what plugin factories may use
type Env struct {
	// Context is the project directory
	Context string
}

// Factory constructs a plugin from its options
type Factory func(options map[string]interface{}, env Env) (Plugin, error)

var builtins = newBuiltins()

func newBuiltins() registry.Registry[Factory] {
	reg := registry.New[Factory]()
	registry.MustRegister(reg, "html", newHTML, "html-webpack-plugin", "HtmlWebpackPlugin")
	registry.MustRegister(reg, "no-emit-on-errors", newNoEmitOnErrors, "NoEmitOnErrorsPlugin", "NoErrorsPlugin")
	registry.MustRegister(reg, "hot-module-replacement", newHotModuleReplacement, "HotModuleReplacementPlugin")
	registry.MustRegister(reg, "compression", newCompression, "compression-webpack-plugin", "CompressionPlugin")
	return reg
}

// Names lists the built-in plugin names
func Names() []string {
	return builtins.List()
}

// New constructs one plugin
func New(p config.Plugin, env Env) (Plugin, error) {
	factory, err := builtins.Get(p.Name)
	if err != nil {
		return nil, errors.Newf(errors.ErrUnknownPlugin, "unknown plugin %q", p.Name).
			WithDetail("plugin", p.Name)
	}
	plugin, err := factory(p.Options, env)
	if err != nil {
		return nil, errors.Wrapf(err, errors.GetErrorCode(err), "plugin %s", p.Name).
			WithDetail("plugin", p.Name)
	}
	return plugin, nil
}

// Build constructs every configured plugin in declaration order
func Build(list []config.Plugin, env Env) ([]Plugin, error) {
	out := make([]Plugin, 0, len(list))
	for _, p := range list {
		plugin, err := New(p, env)
		if err != nil {
			return nil, err
		}
		out = append(out, plugin)
	}
	return out, nil
}
