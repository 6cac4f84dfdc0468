package config

// Config is the decoded build configuration. It is created once at startup
// and never mutated during a build.
type Config struct {
	// Context is the project directory every relative path is resolved against
	Context     string            `koanf:"context" toml:"context,omitempty" yaml:"context,omitempty"`
	Entry       string            `koanf:"entry" toml:"entry" yaml:"entry"`
	Devtool     string            `koanf:"devtool" toml:"devtool,omitempty" yaml:"devtool,omitempty"`
	Parallelism int               `koanf:"parallelism" toml:"parallelism,omitempty" yaml:"parallelism,omitempty"`
	Output      Output            `koanf:"output" toml:"output" yaml:"output"`
	Rules       []Rule            `koanf:"rules" toml:"rules" yaml:"rules"`
	Plugins     []Plugin          `koanf:"plugins" toml:"plugins,omitempty" yaml:"plugins,omitempty"`
	Resolve     Resolve           `koanf:"resolve" toml:"resolve" yaml:"resolve"`
	Externals   map[string]string `koanf:"externals" toml:"externals,omitempty" yaml:"externals,omitempty"`

	// File is the project file the configuration was read from, if any
	File string `koanf:"-" toml:"-" yaml:"-"`
}

// Output describes where and how bundles are written
type Output struct {
	Path          string `koanf:"path" toml:"path" yaml:"path"`
	Filename      string `koanf:"filename" toml:"filename" yaml:"filename"`
	ChunkFilename string `koanf:"chunk_filename" toml:"chunk_filename" yaml:"chunk_filename"`
	PublicPath    string `koanf:"public_path" toml:"public_path,omitempty" yaml:"public_path,omitempty"`
}

// Rule maps a file pattern to an ordered transform chain. Use lists loaders
// in declaration order; they run last-to-first.
type Rule struct {
	Test    string  `koanf:"test" toml:"test" yaml:"test"`
	Exclude string  `koanf:"exclude" toml:"exclude,omitempty" yaml:"exclude,omitempty"`
	Use     UseList `koanf:"use" toml:"use,omitempty" yaml:"use,omitempty"`

	// Loader is the single-loader shorthand, equivalent to Use = [Loader]
	Loader  string                 `koanf:"loader" toml:"loader,omitempty" yaml:"loader,omitempty"`
	Options map[string]interface{} `koanf:"options" toml:"options,omitempty" yaml:"options,omitempty"`
}

// Steps returns the rule's transform steps in declaration order
func (r Rule) Steps() ([]Step, error) {
	if len(r.Use) > 0 {
		return r.Use, nil
	}
	if r.Loader == "" {
		return nil, nil
	}
	step, err := ParseLoaderRef(r.Loader)
	if err != nil {
		return nil, err
	}
	step.Options = mergeOptions(step.Options, r.Options)
	return []Step{step}, nil
}

// Step identifies a transform by name with its options
type Step struct {
	Loader  string                 `koanf:"loader" toml:"loader" yaml:"loader"`
	Options map[string]interface{} `koanf:"options" toml:"options,omitempty" yaml:"options,omitempty"`
}

// UseList is an ordered list of steps. It decodes from a single loader
// reference, a list of references or a list of step tables.
type UseList []Step

// Plugin names a build plugin and its options
type Plugin struct {
	Name    string                 `koanf:"name" toml:"name" yaml:"name"`
	Options map[string]interface{} `koanf:"options" toml:"options,omitempty" yaml:"options,omitempty"`
}

// Resolve holds module resolution settings
type Resolve struct {
	// Extensions are tried in order when an import omits one
	Extensions []string `koanf:"extensions" toml:"extensions" yaml:"extensions"`
}
