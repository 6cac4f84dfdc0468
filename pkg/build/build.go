// Package build runs complete builds.
//
// A Compiler is created once from a validated configuration: rules,
// transform chains and plugins are compiled up front, so every
// configuration error surfaces from New before any file is read. Run may
// then be called any number of times; watch mode reuses one Compiler so the
// transform cache and plugin state carry over between rebuilds.
package build

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/webrig/pkg/bundle"
	"github.com/arthur-debert/webrig/pkg/chain"
	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/arthur-debert/webrig/pkg/emit"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/graph"
	"github.com/arthur-debert/webrig/pkg/logging"
	"github.com/arthur-debert/webrig/pkg/plugins"
	"github.com/arthur-debert/webrig/pkg/resolve"
	"github.com/arthur-debert/webrig/pkg/rules"
	"github.com/arthur-debert/webrig/pkg/transforms"
	"github.com/rs/zerolog"
)

// DefaultChunkFilename names async chunks when output.chunk_filename is unset
const DefaultChunkFilename = "[id].chunk.js"

// Result summarises one build
type Result struct {
	Hash     string
	Modules  int
	Chunks   []*bundle.Chunk
	Files    []emit.File
	Duration time.Duration
	// CacheHits counts modules whose transform output was reused
	CacheHits int
}

// Option customises a Compiler
type Option func(*Compiler)

// WithTransforms replaces the built-in transform registry
func WithTransforms(reg *transforms.Registry) Option {
	return func(c *Compiler) { c.transforms = reg }
}

// WithCacheSize sets the number of transform results kept between builds;
// zero disables the cache
func WithCacheSize(size int) Option {
	return func(c *Compiler) { c.cacheSize = size }
}

// WithStaged forces staged output whatever the plugins ask for
func WithStaged() Option {
	return func(c *Compiler) { c.opts.Staged = true }
}

// Compiler holds everything compiled from a configuration
type Compiler struct {
	cfg        *config.Config
	outputDir  string
	transforms *transforms.Registry
	cacheSize  int

	table    *rules.Table
	chains   []*chain.Chain
	resolver *resolve.Resolver
	cache    *graph.Cache
	plugins  []plugins.Plugin
	opts     plugins.Options

	mu     sync.Mutex
	logger zerolog.Logger
}

// New validates cfg and compiles rules, chains and plugins
func New(cfg *config.Config, options ...Option) (*Compiler, error) {
	c := &Compiler{
		cfg:       cfg,
		cacheSize: graph.DefaultCacheSize,
		logger:    logging.GetLogger("build"),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.transforms == nil {
		c.transforms = transforms.Builtins()
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	c.outputDir = cfg.Output.Path
	if !filepath.IsAbs(c.outputDir) {
		c.outputDir = filepath.Join(cfg.Context, c.outputDir)
	}

	table, err := rules.Compile(cfg.Rules)
	if err != nil {
		return nil, err
	}
	c.table = table

	for i := 0; i < table.Len(); i++ {
		ch, err := chain.Compile(c.transforms, table.Steps(i))
		if err != nil {
			return nil, errors.Wrapf(err, errors.GetErrorCode(err), "rules[%d]", i).
				WithDetail("rule", i)
		}
		c.chains = append(c.chains, ch)
	}

	c.plugins, err = plugins.Build(cfg.Plugins, plugins.Env{Context: cfg.Context})
	if err != nil {
		return nil, err
	}
	for _, p := range c.plugins {
		if configurer, ok := p.(plugins.Configurer); ok {
			configurer.Configure(&c.opts)
		}
	}

	c.resolver = resolve.New(cfg.Resolve.Extensions, cfg.Externals)

	if c.cacheSize > 0 {
		c.cache, err = graph.NewCache(c.cacheSize)
		if err != nil {
			return nil, err
		}
	}

	if devtool := strings.TrimSpace(cfg.Devtool); devtool != "" && devtool != "false" {
		c.logger.Warn().Str("devtool", devtool).Msg("Source maps are not supported, ignoring devtool")
	}

	c.logger.Debug().
		Str("config", cfg.String()).
		Int("plugins", len(c.plugins)).
		Bool("staged", c.opts.Staged).
		Msg("Compiler ready")
	return c, nil
}

// Config returns the configuration the compiler was built from
func (c *Compiler) Config() *config.Config { return c.cfg }

// Rules returns the compiled rule table
func (c *Compiler) Rules() *rules.Table { return c.table }

// Chain returns the transform chain of rule i
func (c *Compiler) Chain(i int) *chain.Chain { return c.chains[i] }

// Resolver returns the module resolver
func (c *Compiler) Resolver() *resolve.Resolver { return c.resolver }

// Plugins returns the constructed plugins in declaration order
func (c *Compiler) Plugins() []plugins.Plugin { return c.plugins }

// OutputDir returns the absolute output directory
func (c *Compiler) OutputDir() string { return c.outputDir }

// Staged reports whether output is held until the build succeeds
func (c *Compiler) Staged() bool { return c.opts.Staged }

// Run performs one build. Runs are serialised.
func (c *Compiler) Run(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	done := logging.LogOperationStart(c.logger, "build")
	defer done()

	walker := graph.NewWalker(c.table, c.chains, c.resolver, c.cache, graph.Options{
		Context:     c.cfg.Context,
		PublicPath:  c.cfg.Output.PublicPath,
		Parallelism: c.parallelism(),
	})
	g, err := walker.Walk(ctx, c.cfg.Entry)
	if err != nil {
		return nil, err
	}

	b, err := bundle.Assemble(g, bundle.Options{
		Filename:      c.cfg.Output.Filename,
		ChunkFilename: c.chunkFilename(),
		PublicPath:    c.cfg.Output.PublicPath,
	})
	if err != nil {
		return nil, err
	}

	var writer emit.Writer
	var staged *emit.StagedWriter
	if c.opts.Staged {
		staged = emit.NewStagedWriter(c.outputDir)
		writer = staged
	} else {
		writer = emit.NewDirWriter(c.outputDir)
	}

	comp := c.compilation(writer, g, b)
	if err := c.emit(ctx, comp, g, b); err != nil {
		if staged != nil {
			c.logger.Info().Int("files", staged.Pending()).Msg("Build failed, discarding staged output")
			staged.Discard()
		}
		return nil, err
	}
	if staged != nil {
		if err := staged.Flush(); err != nil {
			return nil, err
		}
	}

	for _, p := range c.plugins {
		if reporter, ok := p.(plugins.Reporter); ok {
			reporter.Done(comp)
		}
	}

	result := &Result{
		Hash:     b.Hash,
		Modules:  len(g.Modules),
		Chunks:   b.Chunks,
		Files:    writer.Files(),
		Duration: time.Since(start),
	}
	for _, m := range g.Modules {
		if m.Cached {
			result.CacheHits++
		}
	}

	c.logger.Info().
		Str("hash", result.Hash).
		Int("modules", result.Modules).
		Int("chunks", len(result.Chunks)).
		Int("files", len(result.Files)).
		Int("cached", result.CacheHits).
		Dur("duration", result.Duration).
		Msg("Build complete")
	return result, nil
}

func (c *Compiler) parallelism() int {
	if c.cfg.Parallelism > 0 {
		return c.cfg.Parallelism
	}
	return runtime.NumCPU()
}

func (c *Compiler) chunkFilename() string {
	if c.cfg.Output.ChunkFilename != "" {
		return c.cfg.Output.ChunkFilename
	}
	return DefaultChunkFilename
}

func (c *Compiler) compilation(w emit.Writer, g *graph.Graph, b *bundle.Bundle) *plugins.Compilation {
	comp := plugins.NewCompilation(w)
	comp.Hash = b.Hash
	comp.PublicPath = c.cfg.Output.PublicPath
	comp.MainFile = b.Main().File
	for _, ch := range b.Chunks[1:] {
		comp.ChunkFiles = append(comp.ChunkFiles, ch.File)
	}
	for _, m := range g.Modules {
		comp.Modules = append(comp.Modules, plugins.ModuleInfo{Path: m.Rel, Checksum: m.Checksum})
	}
	return comp
}

// emit writes the chunks, then the module assets, then whatever the plugins
// add
func (c *Compiler) emit(ctx context.Context, comp *plugins.Compilation, g *graph.Graph, b *bundle.Bundle) error {
	for _, ch := range b.Chunks {
		if err := comp.Emit(ch.File, ch.Content); err != nil {
			return err
		}
	}

	for _, m := range g.Modules {
		for _, a := range m.Assets {
			if err := comp.Emit(a.Name, a.Content); err != nil {
				return errors.Wrapf(err, errors.GetErrorCode(err), "asset of %s", m.Rel).
					WithDetail("path", m.Path)
			}
		}
	}

	for _, p := range c.plugins {
		emitter, ok := p.(plugins.AssetEmitter)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emitter.EmitAssets(ctx, comp); err != nil {
			return errors.Wrapf(err, errors.GetErrorCode(err), "plugin %s", p.Name()).
				WithDetail("plugin", p.Name())
		}
	}
	return nil
}
