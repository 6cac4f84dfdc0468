package rules

import (
	"strings"
	"time"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/dlclark/regexp2"
)

// MatchTimeout bounds a single pattern evaluation
const MatchTimeout = time.Second

// CompilePattern compiles a rule pattern written either bare or as a
// JavaScript regex literal.
func CompilePattern(pattern string) (*regexp2.Regexp, error) {
	body, flags := splitLiteral(pattern)

	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'g', 'u', 'y':
		default:
			return nil, errors.Newf(errors.ErrPatternInvalid, "unsupported regex flag %q in %s", f, pattern).
				WithDetail("pattern", pattern)
		}
	}
	// ECMAScript mode only combines with IgnoreCase and Multiline
	if opts&regexp2.Singleline != 0 {
		opts &^= regexp2.ECMAScript
	}

	re, err := regexp2.Compile(body, opts)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPatternInvalid, "invalid pattern %s", pattern).
			WithDetail("pattern", pattern)
	}
	re.MatchTimeout = MatchTimeout
	return re, nil
}

// splitLiteral recognises /body/flags. Anything else is returned as a bare
// pattern with no flags.
func splitLiteral(pattern string) (string, string) {
	if len(pattern) < 2 || pattern[0] != '/' {
		return pattern, ""
	}
	end := strings.LastIndexByte(pattern, '/')
	if end == 0 {
		return pattern, ""
	}
	flags := pattern[end+1:]
	if strings.Trim(flags, "gimsuy") != "" {
		return pattern, ""
	}
	return pattern[1:end], flags
}
