package plugins

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/arthur-debert/webrig/pkg/errors"
)

// HotUpdateFile is the manifest written after every build
const HotUpdateFile = "hot-update.json"

// HotUpdate describes what changed since the previous build
type HotUpdate struct {
	Hash         string   `json:"hash"`
	PreviousHash string   `json:"previousHash"`
	Changed      []string `json:"changed"`
}

// HotModuleReplacement tracks module checksums across rebuilds and writes
// a hot update manifest. State only advances once a build completes.
type HotModuleReplacement struct {
	mu       sync.Mutex
	hash     string
	modules  map[string]uint64
	pending  map[string]uint64
	nextHash string
}

func newHotModuleReplacement(map[string]interface{}, Env) (Plugin, error) {
	return &HotModuleReplacement{}, nil
}

func (p *HotModuleReplacement) Name() string { return "hot-module-replacement" }

func (p *HotModuleReplacement) EmitAssets(_ context.Context, c *Compilation) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := make(map[string]uint64, len(c.Modules))
	update := HotUpdate{Hash: c.Hash, PreviousHash: p.hash, Changed: []string{}}
	for _, m := range c.Modules {
		current[m.Path] = m.Checksum
		if prev, ok := p.modules[m.Path]; !ok || prev != m.Checksum {
			update.Changed = append(update.Changed, m.Path)
		}
	}
	sort.Strings(update.Changed)

	content, err := json.MarshalIndent(update, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode hot update")
	}
	if err := c.Emit(HotUpdateFile, append(content, '\n')); err != nil {
		return err
	}
	p.pending = current
	p.nextHash = c.Hash
	return nil
}

func (p *HotModuleReplacement) Done(*Compilation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return
	}
	p.modules = p.pending
	p.hash = p.nextHash
	p.pending = nil
}

// Hash returns the hash of the last completed build
func (p *HotModuleReplacement) Hash() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hash
}
