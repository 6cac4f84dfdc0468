package rules

import (
	"strings"

	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/logging"
	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog"
)

// Match is the outcome of dispatching a path
type Match struct {
	// Index is the position of the winning rule in declaration order
	Index int
	Rule  config.Rule
	// Steps are the rule's loaders in declaration order
	Steps []config.Step
}

type compiledRule struct {
	rule    config.Rule
	steps   []config.Step
	test    *regexp2.Regexp
	exclude *regexp2.Regexp
}

// Table is a compiled, ordered rule list
type Table struct {
	rules  []compiledRule
	logger zerolog.Logger
}

// Compile compiles every pattern and loader reference. Errors name the
// offending rule index.
func Compile(ruleList []config.Rule) (*Table, error) {
	t := &Table{
		rules:  make([]compiledRule, 0, len(ruleList)),
		logger: logging.GetLogger("rules"),
	}

	for i, rule := range ruleList {
		test, err := CompilePattern(rule.Test)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrPatternInvalid, "rules[%d].test", i).
				WithDetail("rule", i)
		}

		var exclude *regexp2.Regexp
		if rule.Exclude != "" {
			exclude, err = CompilePattern(rule.Exclude)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrPatternInvalid, "rules[%d].exclude", i).
					WithDetail("rule", i)
			}
		}

		steps, err := rule.Steps()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "rules[%d].use", i)
		}

		t.rules = append(t.rules, compiledRule{
			rule:    rule,
			steps:   steps,
			test:    test,
			exclude: exclude,
		})
	}

	t.logger.Debug().Int("ruleCount", len(t.rules)).Msg("Compiled rule table")
	return t, nil
}

// Len returns the number of rules
func (t *Table) Len() int {
	return len(t.rules)
}

// Rules returns the source rules in declaration order
func (t *Table) Rules() []config.Rule {
	out := make([]config.Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.rule
	}
	return out
}

// Steps returns the compiled loader steps of rule i
func (t *Table) Steps(i int) []config.Step {
	return t.rules[i].steps
}

// Resolve returns the first rule matching path. A pattern that fails to
// evaluate counts as not matching.
func (t *Table) Resolve(path string) (Match, bool) {
	m, ok, err := t.dispatch(path)
	if err != nil {
		t.logger.Warn().Err(err).Str("path", path).Msg("Pattern evaluation failed")
		return Match{}, false
	}
	return m, ok
}

// MustResolve is Resolve with an ErrNoMatch error when no rule applies
func (t *Table) MustResolve(path string) (Match, error) {
	m, ok, err := t.dispatch(path)
	if err != nil {
		return Match{}, err
	}
	if !ok {
		return Match{}, errors.Newf(errors.ErrNoMatch, "no rule matches %s", path).
			WithDetail("path", path)
	}
	return m, nil
}

func (t *Table) dispatch(path string) (Match, bool, error) {
	subject := strings.ReplaceAll(path, "\\", "/")

	for i, r := range t.rules {
		hit, err := r.test.MatchString(subject)
		if err != nil {
			return Match{}, false, errors.Wrapf(err, errors.ErrPatternInvalid,
				"rules[%d].test failed on %s", i, path)
		}
		if !hit {
			continue
		}

		if r.exclude != nil {
			excluded, err := r.exclude.MatchString(subject)
			if err != nil {
				return Match{}, false, errors.Wrapf(err, errors.ErrPatternInvalid,
					"rules[%d].exclude failed on %s", i, path)
			}
			if excluded {
				t.logger.Trace().Str("path", path).Int("rule", i).Msg("Excluded by rule")
				continue
			}
		}

		t.logger.Trace().
			Str("path", path).
			Int("rule", i).
			Str("test", r.rule.Test).
			Msg("File matched rule")
		return Match{Index: i, Rule: r.rule, Steps: r.steps}, true, nil // First match wins
	}
	return Match{}, false, nil
}
