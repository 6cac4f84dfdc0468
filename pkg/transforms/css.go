package transforms

import (
	"context"
	"regexp"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/evanw/esbuild/pkg/api"
)

var cssURLRe = regexp.MustCompile(`url\(\s*(?:"([^"]*)"|'([^']*)'|([^)'"\s]*))\s*\)`)

type cssOptions struct {
	URL    *bool `mapstructure:"url"`
	Minify bool  `mapstructure:"minify"`
}

type cssStep struct {
	urls   bool
	minify bool
}

func newCSSStep(options map[string]interface{}) (Step, error) {
	var opts cssOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	return &cssStep{urls: opts.URL == nil || *opts.URL, minify: opts.Minify}, nil
}

func (s *cssStep) Name() string { return "css-loader" }

func (s *cssStep) Transform(_ context.Context, env *Env, in Asset) (Asset, error) {
	if in.Kind == KindScript {
		return Asset{}, errors.Newf(errors.ErrTransform, "css-loader expects stylesheet input, got %s", in.Kind)
	}

	result := api.Transform(string(in.Content), api.TransformOptions{
		Loader:           api.LoaderCSS,
		Sourcefile:       env.Rel(in.Path),
		MinifyWhitespace: s.minify,
		MinifySyntax:     s.minify,
		LogLevel:         api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return Asset{}, esbuildError(result.Errors)
	}

	css := string(result.Code)
	var pieces []piece
	if s.urls {
		pieces = splitCSSURLs(css)
	} else {
		pieces = []piece{{text: css}}
	}

	out := in
	out.Content = exportsValue(concat(pieces))
	out.Kind = KindScript
	return out, nil
}

// splitCSSURLs cuts css around local url() references
func splitCSSURLs(css string) []piece {
	var pieces []piece
	last := 0
	for _, loc := range cssURLRe.FindAllStringSubmatchIndex(css, -1) {
		ref := ""
		for g := 1; g <= 3; g++ {
			if loc[2*g] >= 0 {
				ref = css[loc[2*g]:loc[2*g+1]]
				break
			}
		}
		if !isLocalRef(ref) {
			continue
		}
		pieces = append(pieces,
			piece{text: css[last:loc[0]] + "url("},
			piece{request: asRequest(ref)},
			piece{text: ")"})
		last = loc[1]
	}
	return append(pieces, piece{text: css[last:]})
}
