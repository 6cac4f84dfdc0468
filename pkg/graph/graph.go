// Package graph walks the module graph from an entry file.
//
// The walk is breadth-first. All modules of one level are read, dispatched
// and transformed in parallel; ids are then assigned to the newly found
// dependencies in discovery order, so the same project always yields the
// same ids whatever the scheduling.
package graph

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/webrig/pkg/chain"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/logging"
	"github.com/arthur-debert/webrig/pkg/naming"
	"github.com/arthur-debert/webrig/pkg/resolve"
	"github.com/arthur-debert/webrig/pkg/rules"
	"github.com/arthur-debert/webrig/pkg/transforms"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// NoRule is the rule index of modules no rule matched
const NoRule = -1

// Dependency is one require() or import() of a module
type Dependency struct {
	Specifier string
	Dynamic   bool
	// Target is the id of the required module
	Target int
}

// Module is one node of the graph
type Module struct {
	ID  int
	Key string
	// Path is the absolute source path, empty for externals
	Path  string
	Query string
	// Rel is Path relative to the project, or the external's description
	Rel  string
	Rule int
	// Source is the transformed CommonJS source
	Source   string
	External string
	Deps     []Dependency
	Assets   []transforms.EmittedAsset
	// Checksum covers the file content, or the global name of an external
	Checksum uint64
	Cached   bool

	resolutions []resolve.Resolution
}

// Graph is the result of a walk; Modules are indexed by id and the entry is
// module 0
type Graph struct {
	Modules []*Module
}

// Entry returns the entry module
func (g *Graph) Entry() *Module {
	return g.Modules[0]
}

// Module returns the module with id
func (g *Graph) Module(id int) *Module {
	return g.Modules[id]
}

// Options configures a walk
type Options struct {
	// Context is the project directory; the entry is resolved against it
	Context     string
	PublicPath  string
	Parallelism int
}

// Walker builds graphs. Chains are indexed by rule index.
type Walker struct {
	table    *rules.Table
	chains   []*chain.Chain
	resolver *resolve.Resolver
	cache    *Cache
	opts     Options
	logger   zerolog.Logger
}

// NewWalker creates a walker; cache may be nil
func NewWalker(table *rules.Table, chains []*chain.Chain, resolver *resolve.Resolver, cache *Cache, opts Options) *Walker {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	return &Walker{
		table:    table,
		chains:   chains,
		resolver: resolver,
		cache:    cache,
		opts:     opts,
		logger:   logging.GetLogger("graph"),
	}
}

// Walk builds the graph reachable from entry
func (w *Walker) Walk(ctx context.Context, entry string) (*Graph, error) {
	root, err := w.resolver.Resolve(w.opts.Context, entry)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrResolve, "cannot resolve entry %s", entry).
			WithDetail("path", entry)
	}
	if root.IsExternal() {
		return nil, errors.Newf(errors.ErrConfigInvalid, "entry %s is bound to an external", entry)
	}

	g := &Graph{}
	index := make(map[string]int)
	add := func(res resolve.Resolution) *Module {
		m := w.newModule(len(g.Modules), res)
		index[m.Key] = m.ID
		g.Modules = append(g.Modules, m)
		return m
	}

	level := []*Module{add(root)}
	depth := 0
	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		eg, egctx := errgroup.WithContext(ctx)
		eg.SetLimit(w.opts.Parallelism)
		for _, m := range level {
			if m.External != "" {
				continue
			}
			eg.Go(func() error {
				return w.process(egctx, m)
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}

		var next []*Module
		for _, m := range level {
			for i, res := range m.resolutions {
				id, seen := index[res.Key()]
				if !seen {
					nm := add(res)
					next = append(next, nm)
					id = nm.ID
				}
				m.Deps[i].Target = id
			}
			m.resolutions = nil
		}

		w.logger.Debug().
			Int("depth", depth).
			Int("modules", len(level)).
			Int("discovered", len(next)).
			Msg("Processed graph level")
		level = next
		depth++
	}

	return g, nil
}

func (w *Walker) newModule(id int, res resolve.Resolution) *Module {
	m := &Module{ID: id, Key: res.Key(), Path: res.Path, Query: res.Query, Rule: NoRule}
	if res.IsExternal() {
		m.External = res.External
		m.Rel = "external " + res.External
		m.Source = "module.exports = globalThis[" + quote(res.External) + "];\n"
		m.Checksum = naming.Checksum([]byte(res.External))
		return m
	}
	m.Rel = w.rel(res.Path)
	return m
}

func (w *Walker) process(ctx context.Context, m *Module) error {
	content, err := os.ReadFile(m.Path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", m.Rel).
			WithDetail("path", m.Path)
	}
	m.Checksum = naming.Checksum(content, []byte(m.Query))

	match, err := w.table.MustResolve(m.Path)
	switch {
	case err == nil:
		m.Rule = match.Index
		if err := w.transform(ctx, m, content); err != nil {
			return err
		}
	case errors.IsErrorCode(err, errors.ErrNoMatch):
		if err := w.native(m, content); err != nil {
			return err
		}
	default:
		return err
	}

	for _, req := range Scan(m.Source) {
		res, err := w.resolver.Resolve(filepath.Dir(m.Path), req.Specifier)
		if err != nil {
			return errors.Wrapf(err, errors.ErrResolve, "in %s", m.Rel).
				WithDetail("path", m.Path).
				WithDetail("specifier", req.Specifier)
		}
		m.Deps = append(m.Deps, Dependency{Specifier: req.Specifier, Dynamic: req.Dynamic})
		m.resolutions = append(m.resolutions, res)
	}

	w.logger.Trace().
		Int("id", m.ID).
		Str("path", m.Rel).
		Int("rule", m.Rule).
		Bool("cached", m.Cached).
		Int("deps", len(m.Deps)).
		Msg("Processed module")
	return nil
}

func (w *Walker) transform(ctx context.Context, m *Module, content []byte) error {
	key := CacheKey{Path: m.Path, Query: m.Query, Rule: m.Rule, Checksum: m.Checksum}
	if w.cache != nil {
		if entry, ok := w.cache.Get(key); ok {
			m.Source = entry.Source
			m.Assets = entry.Assets
			m.Cached = true
			return nil
		}
	}

	env := transforms.NewEnv(w.opts.Context, w.opts.PublicPath, w.logger)
	out, err := w.chains[m.Rule].Apply(ctx, env, transforms.Asset{
		Path:    m.Path,
		Query:   m.Query,
		Content: content,
		Kind:    transforms.KindRaw,
	})
	if err != nil {
		return err
	}
	if out.Kind != transforms.KindScript {
		return errors.Newf(errors.ErrTransform,
			"rule %d left %s as raw content; its first loader must produce a module", m.Rule, m.Rel).
			WithDetail("path", m.Path)
	}

	m.Source = string(out.Content)
	m.Assets = env.Emitted()
	if w.cache != nil {
		w.cache.Put(key, CacheEntry{Source: m.Source, Assets: m.Assets})
	}
	return nil
}

// native handles files no rule matched: scripts are used as they are and
// JSON is wrapped
func (w *Walker) native(m *Module, content []byte) error {
	switch strings.ToLower(filepath.Ext(m.Path)) {
	case ".js", ".mjs", ".cjs":
		m.Source = string(content)
		return nil
	case ".json":
		src, err := transforms.WrapJSON(content)
		if err != nil {
			return errors.Wrapf(err, errors.ErrTransform, "in %s", m.Rel).WithDetail("path", m.Path)
		}
		m.Source = string(src)
		return nil
	}
	return errors.Newf(errors.ErrNoMatch, "no rule matches %s", m.Rel).
		WithDetail("path", m.Path)
}

func (w *Walker) rel(path string) string {
	rel, err := filepath.Rel(w.opts.Context, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
