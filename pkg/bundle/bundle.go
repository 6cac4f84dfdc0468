// Package bundle assembles a module graph into chunk files.
//
// The main chunk holds every module statically reachable from the entry,
// with the runtime. Each import() target outside the main chunk roots an
// async chunk holding the modules statically reachable from it that are not
// in the main chunk. A module shared by two async chunks is copied into both;
// the runtime keeps the first registration.
package bundle

import (
	"path"
	"strconv"
	"strings"

	"github.com/arthur-debert/webrig/pkg/graph"
	"github.com/arthur-debert/webrig/pkg/logging"
	"github.com/arthur-debert/webrig/pkg/naming"
)

// MainChunkName is the [name] of the entry chunk
const MainChunkName = "main"

// Options controls chunk naming
type Options struct {
	Filename      string
	ChunkFilename string
	PublicPath    string
}

// Chunk is one output script
type Chunk struct {
	ID   int
	Name string
	// File is the output name relative to the output directory
	File string
	// Root is the module id the chunk was built from
	Root    int
	Modules []int
	Content []byte
	Hash    string
	Entry   bool
}

// Bundle is the assembled output; Chunks[0] is the main chunk
type Bundle struct {
	Hash   string
	Chunks []*Chunk
}

// Main returns the entry chunk
func (b *Bundle) Main() *Chunk {
	return b.Chunks[0]
}

// Assemble splits g into chunks and renders them
func Assemble(g *graph.Graph, opts Options) (*Bundle, error) {
	logger := logging.GetLogger("bundle")

	mainIDs := closure(g, g.Entry().ID, nil)
	inMain := make(map[int]bool, len(mainIDs))
	for _, id := range mainIDs {
		inMain[id] = true
	}

	// chunkOf maps an import() target to its chunk id; -1 when the target
	// is already in the main chunk
	chunkOf := make(map[int]int)
	var async []*Chunk
	for _, m := range g.Modules {
		for _, dep := range m.Deps {
			if !dep.Dynamic {
				continue
			}
			if _, done := chunkOf[dep.Target]; done {
				continue
			}
			if inMain[dep.Target] {
				chunkOf[dep.Target] = -1
				continue
			}
			c := &Chunk{
				ID:      len(async) + 1,
				Root:    dep.Target,
				Modules: closure(g, dep.Target, inMain),
			}
			chunkOf[dep.Target] = c.ID
			async = append(async, c)
		}
	}

	names := map[string]bool{MainChunkName: true}
	chunkFiles := make(map[int]string, len(async))
	for _, c := range async {
		c.Name = uniqueName(names, chunkName(g.Module(c.Root)), c.ID)

		content, err := render("chunk", chunkData{
			Global:  RegisterGlobal,
			Modules: renderModules(g, c.Modules, chunkOf),
		})
		if err != nil {
			return nil, err
		}
		c.Content = content
		c.Hash = naming.ContentHash(content)
		c.File = naming.Render(opts.ChunkFilename, naming.Data{Name: c.Name, Ext: "js", ID: c.ID, Hash: c.Hash})
		chunkFiles[c.ID] = c.File
	}

	content, err := render("main", mainData{
		ChunkFiles: chunkFiles,
		PublicPath: opts.PublicPath,
		Global:     RegisterGlobal,
		Entry:      g.Entry().ID,
		Modules:    renderModules(g, mainIDs, chunkOf),
	})
	if err != nil {
		return nil, err
	}
	entry := &Chunk{
		ID:      0,
		Name:    MainChunkName,
		Root:    g.Entry().ID,
		Modules: mainIDs,
		Content: content,
		Hash:    naming.ContentHash(content),
		Entry:   true,
	}
	entry.File = naming.Render(opts.Filename, naming.Data{Name: entry.Name, Ext: "js", ID: 0, Hash: entry.Hash})

	b := &Bundle{Chunks: append([]*Chunk{entry}, async...)}
	hashes := make([][]byte, 0, len(b.Chunks))
	for _, c := range b.Chunks {
		hashes = append(hashes, []byte(c.Hash))
	}
	b.Hash = naming.ContentHash(hashes...)

	logger.Debug().
		Int("chunks", len(b.Chunks)).
		Int("mainModules", len(mainIDs)).
		Str("hash", b.Hash).
		Msg("Assembled bundle")
	return b, nil
}

// closure lists the modules statically reachable from root in breadth-first
// order, skipping those in exclude
func closure(g *graph.Graph, root int, exclude map[int]bool) []int {
	seen := map[int]bool{root: true}
	order := []int{root}
	for i := 0; i < len(order); i++ {
		for _, dep := range g.Module(order[i]).Deps {
			if dep.Dynamic || seen[dep.Target] || exclude[dep.Target] {
				continue
			}
			seen[dep.Target] = true
			order = append(order, dep.Target)
		}
	}
	return order
}

func renderModules(g *graph.Graph, ids []int, chunkOf map[int]int) []renderModule {
	out := make([]renderModule, 0, len(ids))
	for _, id := range ids {
		m := g.Module(id)
		out = append(out, renderModule{ID: id, Rel: m.Rel, Source: rewrite(m, chunkOf)})
	}
	return out
}

// rewrite replaces specifiers with module ids. Scan yields the calls in the
// same order the walker recorded them as dependencies.
func rewrite(m *graph.Module, chunkOf map[int]int) string {
	i := 0
	return graph.Rewrite(m.Source, func(graph.Request) string {
		if i >= len(m.Deps) {
			return ""
		}
		dep := m.Deps[i]
		i++
		if dep.Dynamic {
			return "__webrig_require__.load(" + strconv.Itoa(chunkOf[dep.Target]) + ", " + strconv.Itoa(dep.Target) + ")"
		}
		return "require(" + strconv.Itoa(dep.Target) + ")"
	})
}

func chunkName(root *graph.Module) string {
	if root.External != "" {
		return sanitize(root.External)
	}
	base := path.Base(root.Rel)
	return sanitize(strings.TrimSuffix(base, path.Ext(base)))
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, s)
	if s == "" {
		return "chunk"
	}
	return s
}

func uniqueName(taken map[string]bool, name string, id int) string {
	if taken[name] {
		name = name + "-" + strconv.Itoa(id)
	}
	taken[name] = true
	return name
}
