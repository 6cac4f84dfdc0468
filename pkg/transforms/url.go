package transforms

import (
	"context"
	"encoding/base64"
	"mime"
	"net/http"
	"strings"

	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/arthur-debert/webrig/pkg/errors"
)

type urlOptions struct {
	Limit    int    `mapstructure:"limit"`
	Mimetype string `mapstructure:"mimetype"`
	Fallback string `mapstructure:"fallback"`
}

type urlStep struct {
	limit    int
	mimetype string
	fallback Step
}

func (r *Registry) newURLStep(options map[string]interface{}) (Step, error) {
	opts := urlOptions{Fallback: "file-loader"}
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if opts.Limit < 0 {
		return nil, errors.Newf(errors.ErrConfigInvalid, "limit must not be negative, got %d", opts.Limit)
	}

	ref, err := config.ParseLoaderRef(opts.Fallback)
	if err != nil {
		return nil, err
	}
	if _, canonical, err := r.Lookup(ref.Loader); err == nil && canonical == "url-loader" {
		return nil, errors.New(errors.ErrConfigInvalid, "url-loader cannot fall back to itself")
	}

	shared := make(map[string]interface{}, len(options))
	for k, v := range options {
		switch k {
		case "limit", "mimetype", "fallback":
		default:
			shared[k] = v
		}
	}
	for k, v := range ref.Options {
		shared[k] = v
	}

	fallback, err := r.New(ref.Loader, shared)
	if err != nil {
		return nil, err
	}
	return &urlStep{limit: opts.Limit, mimetype: opts.Mimetype, fallback: fallback}, nil
}

func (s *urlStep) Name() string { return "url-loader" }

func (s *urlStep) Transform(ctx context.Context, env *Env, in Asset) (Asset, error) {
	if s.limit > 0 && len(in.Content) >= s.limit {
		env.Logger.Trace().
			Str("file", env.Rel(in.Path)).
			Int("size", len(in.Content)).
			Str("fallback", s.fallback.Name()).
			Msg("Asset above inline limit")
		return s.fallback.Transform(ctx, env, in)
	}

	out := in
	out.Content = exportsValue(jsString(dataURL(s.mimeFor(in), in.Content)))
	out.Kind = KindScript
	return out, nil
}

func (s *urlStep) mimeFor(in Asset) string {
	if s.mimetype != "" {
		return s.mimetype
	}
	if t := mime.TypeByExtension(strings.ToLower(in.Ext())); t != "" {
		return t
	}
	return http.DetectContentType(in.Content)
}

func dataURL(mimetype string, content []byte) string {
	return "data:" + mimetype + ";base64," + base64.StdEncoding.EncodeToString(content)
}
