package config

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/naming"
)

// Validate checks the structural validity of a configuration. Pattern
// compilation and loader lookup happen when the rule table and chains are
// compiled, which is still before any build work starts.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Entry) == "" {
		return errors.New(errors.ErrConfigInvalid, "entry must not be empty")
	}
	if cfg.Output.Path == "" {
		return errors.New(errors.ErrConfigInvalid, "output.path must not be empty")
	}
	if cfg.Output.Filename == "" {
		return errors.New(errors.ErrConfigInvalid, "output.filename must not be empty")
	}
	if err := naming.Validate(cfg.Output.Filename); err != nil {
		return errors.Wrap(err, errors.ErrConfigInvalid, "output.filename")
	}
	if cfg.Output.ChunkFilename != "" {
		if err := naming.Validate(cfg.Output.ChunkFilename); err != nil {
			return errors.Wrap(err, errors.ErrConfigInvalid, "output.chunk_filename")
		}
	}

	for i, rule := range cfg.Rules {
		if err := validateRule(rule); err != nil {
			return errors.Wrapf(err, errors.ErrConfigInvalid, "rules[%d]", i)
		}
	}

	for i, plugin := range cfg.Plugins {
		if strings.TrimSpace(plugin.Name) == "" {
			return errors.Newf(errors.ErrConfigInvalid, "plugins[%d] has no name", i)
		}
	}

	for _, ext := range cfg.Resolve.Extensions {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			return errors.Newf(errors.ErrConfigInvalid, "resolve.extensions entry %q must start with a dot", ext)
		}
	}

	for name, global := range cfg.Externals {
		if name == "" || global == "" {
			return errors.Newf(errors.ErrConfigInvalid, "externals entry %q -> %q is incomplete", name, global)
		}
	}
	return nil
}

func validateRule(rule Rule) error {
	if strings.TrimSpace(rule.Test) == "" {
		return fmt.Errorf("test pattern must not be empty")
	}
	if len(rule.Use) > 0 && rule.Loader != "" {
		return fmt.Errorf("use and loader are mutually exclusive")
	}
	steps, err := rule.Steps()
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("rule %q has no loaders", rule.Test)
	}
	for j, step := range steps {
		if strings.TrimSpace(step.Loader) == "" {
			return fmt.Errorf("use[%d] has no loader name", j)
		}
	}
	return nil
}
