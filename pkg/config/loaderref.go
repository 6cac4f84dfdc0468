package config

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ParseLoaderRef parses a loader reference of the form "name",
// "name?key=value&flag" or "name?{key: value, nested: {a: 1}}".
func ParseLoaderRef(ref string) (Step, error) {
	ref = strings.TrimSpace(ref)
	name, query, hasQuery := strings.Cut(ref, "?")
	name = strings.TrimSpace(name)
	if name == "" {
		return Step{}, errors.Newf(errors.ErrConfigInvalid, "loader reference %q has no loader name", ref)
	}

	step := Step{Loader: name}
	if !hasQuery || strings.TrimSpace(query) == "" {
		return step, nil
	}

	var (
		opts map[string]interface{}
		err  error
	)
	if q := strings.TrimSpace(query); strings.HasPrefix(q, "{") {
		opts, err = parseObjectOptions(q)
	} else {
		opts, err = parseQueryOptions(q)
	}
	if err != nil {
		return Step{}, errors.Wrapf(err, errors.ErrConfigParse, "invalid options in loader reference %q", ref)
	}
	step.Options = opts
	return step, nil
}

// parseObjectOptions reads a relaxed object literal. Keys may be unquoted
// and "key:value" pairs need no space after the colon.
func parseObjectOptions(literal string) (map[string]interface{}, error) {
	var opts map[string]interface{}
	if err := yaml.Unmarshal([]byte(spaceAfterColons(literal)), &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// spaceAfterColons inserts a space after every colon outside quoted strings
// so that a flow mapping like {a:1} reads as {a: 1}.
func spaceAfterColons(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	var quote rune
	escaped := false
	for _, r := range s {
		b.WriteRune(r)
		switch {
		case quote != 0:
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == ':':
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func parseQueryOptions(query string) (map[string]interface{}, error) {
	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := make(map[string]interface{}, len(values))
	for _, k := range keys {
		vs := values[k]
		if len(vs) == 1 {
			opts[k] = coerce(vs[0])
			continue
		}
		list := make([]interface{}, len(vs))
		for i, v := range vs {
			list[i] = coerce(v)
		}
		opts[k] = list
	}
	return opts, nil
}

// coerce turns query values into bools and numbers where they look like one.
// A bare key ("?minimize") means true.
func coerce(v string) interface{} {
	switch v {
	case "", "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// mergeOptions returns base overlaid with override. Neither map is modified.
func mergeOptions(base, override map[string]interface{}) map[string]interface{} {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	merged := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
