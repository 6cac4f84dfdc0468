// Package resolve turns import specifiers into files.
//
// Resolution order for a specifier:
//
//  1. an externals key: bound to a global, never bundled
//  2. relative or absolute: the exact file, then each configured extension
//     appended in order, then <dir>/index<ext>
//  3. bare: node_modules directories from the importer up to the root; a
//     package root uses package.json browser, module or main, then index<ext>
package resolve

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/logging"
	"github.com/rs/zerolog"
)

// Resolution is the outcome of resolving one specifier
type Resolution struct {
	// Path is the absolute file path; empty for externals
	Path string
	// Query is the resource query without the leading "?"
	Query string
	// External is the global name the specifier is bound to
	External string
}

// IsExternal reports whether the specifier is bound to a global
func (r Resolution) IsExternal() bool {
	return r.External != ""
}

// Key identifies the resolved module
func (r Resolution) Key() string {
	if r.IsExternal() {
		return "external:" + r.External
	}
	if r.Query != "" {
		return r.Path + "?" + r.Query
	}
	return r.Path
}

// Resolver resolves specifiers. It reads the filesystem on every call.
type Resolver struct {
	extensions []string
	externals  map[string]string
	logger     zerolog.Logger
}

// New creates a resolver
func New(extensions []string, externals map[string]string) *Resolver {
	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		if e != "" {
			exts = append(exts, e)
		}
	}
	return &Resolver{
		extensions: exts,
		externals:  externals,
		logger:     logging.GetLogger("resolve"),
	}
}

// Resolve resolves specifier as imported from a file in importerDir
func (r *Resolver) Resolve(importerDir, specifier string) (Resolution, error) {
	if global, ok := r.externals[specifier]; ok {
		return Resolution{External: global}, nil
	}

	request, query, _ := strings.Cut(specifier, "?")
	if request == "" {
		return Resolution{}, r.notFound(importerDir, specifier)
	}

	var path string
	var ok bool
	if isPathRequest(request) {
		target := request
		if !filepath.IsAbs(target) {
			target = filepath.Join(importerDir, filepath.FromSlash(request))
		}
		path, ok = r.resolveFileOrDir(target)
	} else {
		path, ok = r.resolvePackage(importerDir, request)
	}
	if !ok {
		return Resolution{}, r.notFound(importerDir, specifier)
	}

	r.logger.Trace().Str("specifier", specifier).Str("path", path).Msg("Resolved")
	return Resolution{Path: path, Query: query}, nil
}

func (r *Resolver) notFound(importerDir, specifier string) error {
	return errors.Newf(errors.ErrResolve, "cannot resolve %q from %s", specifier, importerDir).
		WithDetail("specifier", specifier).
		WithDetail("importer", importerDir)
}

func isPathRequest(request string) bool {
	return request == "." || request == ".." ||
		strings.HasPrefix(request, "./") || strings.HasPrefix(request, "../") ||
		filepath.IsAbs(request) || strings.HasPrefix(request, "/")
}

func (r *Resolver) resolveFileOrDir(target string) (string, bool) {
	if p, ok := r.resolveFile(target); ok {
		return p, true
	}
	return r.resolveIndex(target)
}

func (r *Resolver) resolveFile(target string) (string, bool) {
	if isFile(target) {
		return target, true
	}
	for _, ext := range r.extensions {
		if isFile(target + ext) {
			return target + ext, true
		}
	}
	return "", false
}

func (r *Resolver) resolveIndex(dir string) (string, bool) {
	if !isDir(dir) {
		return "", false
	}
	for _, ext := range r.extensions {
		p := filepath.Join(dir, "index"+ext)
		if isFile(p) {
			return p, true
		}
	}
	return "", false
}

func (r *Resolver) resolvePackage(importerDir, request string) (string, bool) {
	name, sub := splitPackage(request)

	for dir := importerDir; ; dir = filepath.Dir(dir) {
		pkgDir := filepath.Join(dir, "node_modules", filepath.FromSlash(name))
		if isDir(pkgDir) {
			if sub != "" {
				if p, ok := r.resolveFileOrDir(filepath.Join(pkgDir, filepath.FromSlash(sub))); ok {
					return p, true
				}
			} else if p, ok := r.resolvePackageRoot(pkgDir); ok {
				return p, true
			}
		}
		if parent := filepath.Dir(dir); parent == dir {
			return "", false
		}
	}
}

type packageJSON struct {
	Browser json.RawMessage `json:"browser"`
	Module  string          `json:"module"`
	Main    string          `json:"main"`
}

func (r *Resolver) resolvePackageRoot(pkgDir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(pkgDir, "package.json"))
	if err == nil {
		var pkg packageJSON
		if err := json.Unmarshal(data, &pkg); err != nil {
			r.logger.Warn().Err(err).Str("package", pkgDir).Msg("Ignoring malformed package.json")
		} else {
			var browser string
			// browser may also be an object of replacements, which is not supported
			_ = json.Unmarshal(pkg.Browser, &browser)
			for _, field := range []string{browser, pkg.Module, pkg.Main} {
				if field == "" {
					continue
				}
				if p, ok := r.resolveFileOrDir(filepath.Join(pkgDir, filepath.FromSlash(field))); ok {
					return p, true
				}
			}
		}
	}
	return r.resolveIndex(pkgDir)
}

// splitPackage splits "@scope/name/sub/path" into "@scope/name" and "sub/path"
func splitPackage(request string) (string, string) {
	parts := strings.SplitN(request, "/", 3)
	if strings.HasPrefix(request, "@") && len(parts) >= 2 {
		name := parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			return name, parts[2]
		}
		return name, ""
	}
	name, sub, _ := strings.Cut(request, "/")
	return name, sub
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
