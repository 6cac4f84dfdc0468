package transforms

import (
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/registry"
)

const loaderSuffix = "-loader"

// Registry holds step factories by loader name
type Registry struct {
	factories registry.Registry[Factory]
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: registry.New[Factory]()}
}

// Builtins returns a registry with every built-in loader
func Builtins() *Registry {
	r := NewRegistry()
	registry.MustRegister(r.factories, "awesome-typescript-loader", newScriptStep, "ts-loader", "esbuild-loader", "babel-loader")
	registry.MustRegister(r.factories, "css-loader", newCSSStep)
	registry.MustRegister(r.factories, "style-loader", newStyleStep)
	registry.MustRegister(r.factories, "html-loader", newHTMLStep)
	registry.MustRegister(r.factories, "file-loader", newFileStep)
	registry.MustRegister(r.factories, "url-loader", r.newURLStep)
	registry.MustRegister(r.factories, "image-webpack-loader", newImageStep)
	registry.MustRegister(r.factories, "json-loader", newJSONStep)
	registry.MustRegister(r.factories, "raw-loader", newRawStep)
	return r
}

// Register adds a factory under name and aliases
func (r *Registry) Register(name string, f Factory, aliases ...string) error {
	return r.factories.Register(name, f, aliases...)
}

// Lookup finds a factory by name, with or without the "-loader" suffix. It
// returns the canonical name.
func (r *Registry) Lookup(name string) (Factory, string, error) {
	for _, candidate := range candidates(name) {
		if canonical, ok := r.factories.Canonical(candidate); ok {
			f, err := r.factories.Get(canonical)
			if err != nil {
				return nil, "", err
			}
			return f, canonical, nil
		}
	}
	return nil, "", errors.Newf(errors.ErrUnknownTransform, "unknown loader %q", name).
		WithDetail("loader", name)
}

// New constructs the step for name with options
func (r *Registry) New(name string, options map[string]interface{}) (Step, error) {
	f, canonical, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	step, err := f(options)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "invalid options for %s", canonical).
			WithDetail("loader", canonical)
	}
	return step, nil
}

// Names lists canonical loader names
func (r *Registry) Names() []string {
	return r.factories.List()
}

func candidates(name string) []string {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, loaderSuffix) {
		return []string{name, strings.TrimSuffix(name, loaderSuffix)}
	}
	return []string{name, name + loaderSuffix}
}
