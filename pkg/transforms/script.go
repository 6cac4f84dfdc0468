package transforms

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/evanw/esbuild/pkg/api"
)

type scriptOptions struct {
	Target string `mapstructure:"target"`
	JSX    string `mapstructure:"jsx"`
	Minify bool   `mapstructure:"minify"`
}

type scriptStep struct {
	target api.Target
	jsx    api.JSX
	minify bool
}

var targets = map[string]api.Target{
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es6":    api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

var scriptLoaders = map[string]api.Loader{
	".ts":  api.LoaderTS,
	".mts": api.LoaderTS,
	".cts": api.LoaderTS,
	".tsx": api.LoaderTSX,
	".jsx": api.LoaderJSX,
	".js":  api.LoaderJS,
	".mjs": api.LoaderJS,
	".cjs": api.LoaderJS,
}

func newScriptStep(options map[string]interface{}) (Step, error) {
	opts := scriptOptions{Target: "es2017", JSX: "classic"}
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}

	target, ok := targets[strings.ToLower(opts.Target)]
	if !ok {
		return nil, errors.Newf(errors.ErrConfigInvalid, "unknown target %q", opts.Target)
	}

	var jsx api.JSX
	switch opts.JSX {
	case "classic", "transform", "":
		jsx = api.JSXTransform
	case "automatic":
		jsx = api.JSXAutomatic
	case "preserve":
		jsx = api.JSXPreserve
	default:
		return nil, errors.Newf(errors.ErrConfigInvalid, "unknown jsx mode %q", opts.JSX)
	}

	return &scriptStep{target: target, jsx: jsx, minify: opts.Minify}, nil
}

func (s *scriptStep) Name() string { return "awesome-typescript-loader" }

func (s *scriptStep) Transform(_ context.Context, env *Env, in Asset) (Asset, error) {
	loader, ok := scriptLoaders[strings.ToLower(in.Ext())]
	if !ok || in.Kind == KindScript {
		loader = api.LoaderJS
	}

	result := api.Transform(string(in.Content), api.TransformOptions{
		Loader:            loader,
		Format:            api.FormatCommonJS,
		Target:            s.target,
		JSX:               s.jsx,
		Sourcefile:        env.Rel(in.Path),
		MinifyWhitespace:  s.minify,
		MinifyIdentifiers: s.minify,
		MinifySyntax:      s.minify,
		// keep import() so it stays a split point
		Supported: map[string]bool{"dynamic-import": true},
		LogLevel:  api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		return Asset{}, esbuildError(result.Errors)
	}
	for _, w := range result.Warnings {
		env.Logger.Debug().Str("file", env.Rel(in.Path)).Msg(w.Text)
	}

	out := in
	out.Content = result.Code
	out.Kind = KindScript
	return out, nil
}

// esbuildError formats messages as file:line:col: text
func esbuildError(msgs []api.Message) error {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Location != nil {
			lines = append(lines, fmt.Sprintf("%s:%d:%d: %s",
				m.Location.File, m.Location.Line, m.Location.Column, m.Text))
			continue
		}
		lines = append(lines, m.Text)
	}
	err := errors.New(errors.ErrTransform, strings.Join(lines, "\n"))
	if first := msgs[0].Location; first != nil {
		err.WithDetail("line", first.Line).WithDetail("column", first.Column)
	}
	return err
}
