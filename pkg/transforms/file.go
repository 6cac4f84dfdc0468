package transforms

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/naming"
)

const defaultAssetName = "[contenthash].[ext]"

type fileOptions struct {
	Name       string  `mapstructure:"name"`
	OutputPath string  `mapstructure:"outputPath"`
	PublicPath *string `mapstructure:"publicPath"`
	EmitFile   *bool   `mapstructure:"emitFile"`
}

type fileStep struct {
	name       string
	outputPath string
	publicPath *string
	emit       bool
}

func newFileStep(options map[string]interface{}) (Step, error) {
	opts := fileOptions{Name: defaultAssetName}
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if err := naming.Validate(opts.Name); err != nil {
		return nil, err
	}
	if opts.OutputPath != "" && !filepath.IsLocal(filepath.FromSlash(opts.OutputPath)) {
		return nil, errors.Newf(errors.ErrConfigInvalid, "outputPath %q must stay inside the output directory", opts.OutputPath)
	}
	return &fileStep{
		name:       opts.Name,
		outputPath: opts.OutputPath,
		publicPath: opts.PublicPath,
		emit:       opts.EmitFile == nil || *opts.EmitFile,
	}, nil
}

func (s *fileStep) Name() string { return "file-loader" }

func (s *fileStep) Transform(_ context.Context, env *Env, in Asset) (Asset, error) {
	rel := env.Rel(in.Path)
	ext := path.Ext(rel)
	dir := path.Dir(rel)
	if strings.HasPrefix(dir, "..") {
		dir = ""
	}

	name := naming.Render(s.name, naming.Data{
		Name: strings.TrimSuffix(path.Base(rel), ext),
		Ext:  ext,
		Hash: naming.ContentHash(in.Content),
		Path: dir,
	})
	if s.outputPath != "" {
		name = path.Join(s.outputPath, name)
	}

	public := env.PublicPath
	if s.publicPath != nil {
		public = *s.publicPath
	}
	url := joinURL(public, name)

	if s.emit {
		env.Emit(name, in.Content)
	}
	env.Logger.Trace().Str("file", rel).Str("asset", name).Msg("Emitting file")

	out := in
	out.Content = exportsValue(jsString(url))
	out.Kind = KindScript
	return out, nil
}

func joinURL(public, name string) string {
	if public == "" {
		return name
	}
	if strings.HasSuffix(public, "/") {
		return public + name
	}
	return public + "/" + name
}
