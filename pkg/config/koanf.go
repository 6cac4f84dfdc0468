package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "WEBRIG_"

// ProjectFiles are searched, in order, when no config file is given
var ProjectFiles = []string{"webrig.toml", ".webrig.toml", "webrig.yaml", "webrig.yml"}

// flagKeys maps command-line flag names to configuration keys. Flags not
// listed here never reach the configuration.
var flagKeys = map[string]string{
	"entry":       "entry",
	"output-path": "output.path",
	"public-path": "output.public_path",
	"parallelism": "parallelism",
	"devtool":     "devtool",
	"context":     "context",
}

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// ConfigFile is an explicit project file; when empty ProjectFiles are searched in Dir
	ConfigFile string
	// Dir is the directory searched for project files, defaults to the working directory
	Dir string
	// Flags are the parsed command-line flags; only changed flags are applied
	Flags *pflag.FlagSet
}

// Load reads and decodes the layered configuration
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")

	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to determine working directory")
		}
		dir = wd
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Project file
	path, err := findProjectFile(opts.ConfigFile, dir)
	if err != nil {
		return nil, err
	}
	projectDir := dir
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
		projectDir = filepath.Dir(path)
		logger.Debug().Str("file", path).Msg("Loaded project config")
	}

	// 3. .env next to the project file
	dotenv := filepath.Join(projectDir, ".env")
	if _, err := os.Stat(dotenv); err == nil {
		vars, err := godotenv.Read(dotenv)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to read %s", dotenv)
		}
		values := make(map[string]interface{})
		for name, value := range vars {
			if key := envKey(name); key != "" {
				values[key] = value
			}
		}
		if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to apply %s", dotenv)
		}
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 5. Flags that were explicitly set
	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, known := flagKeys[f.Name]
			if !known || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load flags")
		}
	}

	cfg, err := decode(k)
	if err != nil {
		return nil, err
	}
	cfg.File = path
	cfg.normalize(projectDir)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("context", cfg.Context).
		Str("entry", cfg.Entry).
		Int("rules", len(cfg.Rules)).
		Int("plugins", len(cfg.Plugins)).
		Msg("Configuration loaded")
	return cfg, nil
}

// envKey maps WEBRIG_OUTPUT__PUBLIC_PATH to output.public_path. Names
// without the prefix map to the empty key and are skipped.
func envKey(name string) string {
	if !strings.HasPrefix(name, EnvPrefix) {
		return ""
	}
	key := strings.TrimPrefix(name, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(key, "__", "."))
}

func findProjectFile(explicit, dir string) (string, error) {
	if explicit != "" {
		if !filepath.IsAbs(explicit) {
			explicit = filepath.Join(dir, explicit)
		}
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", explicit)
		}
		return explicit, nil
	}
	for _, name := range ProjectFiles {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigLoad, "unsupported config format %q", filepath.Ext(path))
	}
}

func decode(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				useListHook(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "unable to decode config")
	}
	return &cfg, nil
}

// normalize resolves the context and output directories to absolute paths
func (c *Config) normalize(projectDir string) {
	switch {
	case c.Context == "":
		c.Context = projectDir
	case !filepath.IsAbs(c.Context):
		c.Context = filepath.Join(projectDir, c.Context)
	}
	if abs, err := filepath.Abs(c.Context); err == nil {
		c.Context = abs
	}

	if c.Output.Path != "" && !filepath.IsAbs(c.Output.Path) {
		c.Output.Path = filepath.Join(c.Context, c.Output.Path)
	}

	if c.Parallelism <= 0 {
		c.Parallelism = runtime.NumCPU()
	}
}

// String summarises the configuration for log lines
func (c *Config) String() string {
	return fmt.Sprintf("entry=%s output=%s rules=%d", c.Entry, filepath.Join(c.Output.Path, c.Output.Filename), len(c.Rules))
}
