// Package naming renders output file name templates.
//
// A template is plain text with bracketed placeholders:
//
//	[name]          chunk or asset base name, without extension
//	[ext]           extension without the leading dot
//	[id]            numeric chunk id
//	[hash]          build or content hash
//	[contenthash]   content hash
//	[hash:N]        the first N characters of the hash
//	[path]          directory of the source relative to the context, with a trailing slash
//
// Text outside brackets is copied verbatim.
package naming

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
)

// Data holds the values substituted into a template
type Data struct {
	Name string
	Ext  string
	ID   int
	Hash string
	Path string
}

var placeholderRe = regexp.MustCompile(`\[([a-z]+)(?::([0-9]+))?\]`)

var known = map[string]bool{
	"name":        true,
	"ext":         true,
	"id":          true,
	"hash":        true,
	"contenthash": true,
	"path":        true,
}

// Render substitutes every placeholder in template. Unknown placeholders are
// left untouched; use Validate to reject them up front.
func Render(template string, d Data) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(token string) string {
		m := placeholderRe.FindStringSubmatch(token)
		switch m[1] {
		case "name":
			return d.Name
		case "ext":
			return strings.TrimPrefix(d.Ext, ".")
		case "id":
			return strconv.Itoa(d.ID)
		case "hash", "contenthash":
			return truncate(d.Hash, m[2])
		case "path":
			if d.Path == "" || d.Path == "." {
				return ""
			}
			p := strings.TrimPrefix(strings.ReplaceAll(d.Path, "\\", "/"), "./")
			if !strings.HasSuffix(p, "/") {
				p += "/"
			}
			return p
		}
		return token
	})
}

// Validate reports unknown placeholders, unbalanced brackets and length
// suffixes on placeholders other than the hashes.
func Validate(template string) error {
	rest := template
	for {
		open := strings.IndexByte(rest, '[')
		closing := strings.IndexByte(rest, ']')
		if open < 0 {
			if closing >= 0 {
				return errors.Newf(errors.ErrConfigInvalid, "unbalanced ']' in name template %q", template)
			}
			return nil
		}
		if closing < 0 || closing < open {
			return errors.Newf(errors.ErrConfigInvalid, "unbalanced '[' in name template %q", template)
		}
		token := rest[open : closing+1]
		m := placeholderRe.FindStringSubmatch(token)
		if m == nil || m[0] != token || !known[m[1]] {
			return errors.Newf(errors.ErrConfigInvalid, "unknown placeholder %s in name template %q", token, template).
				WithDetail("placeholder", token)
		}
		if m[2] != "" && m[1] != "hash" && m[1] != "contenthash" {
			return errors.Newf(errors.ErrConfigInvalid, "placeholder %s does not take a length", token).
				WithDetail("placeholder", token)
		}
		if m[2] != "" {
			if n, _ := strconv.Atoi(m[2]); n == 0 {
				return errors.Newf(errors.ErrConfigInvalid, "placeholder %s has a zero length", token)
			}
		}
		rest = rest[closing+1:]
	}
}

// HasHash reports whether the template depends on a hash
func HasHash(template string) bool {
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if m[1] == "hash" || m[1] == "contenthash" {
			return true
		}
	}
	return false
}

func truncate(hash, length string) string {
	if length == "" {
		return hash
	}
	n, err := strconv.Atoi(length)
	if err != nil || n >= len(hash) {
		return hash
	}
	return hash[:n]
}
