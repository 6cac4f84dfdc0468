package transforms

import (
	"bytes"
	"context"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strconv"
	"strings"

	"github.com/arthur-debert/webrig/pkg/errors"
)

type pngquantOptions struct {
	Quality string `mapstructure:"quality"`
	Speed   int    `mapstructure:"speed"`
}

type imageOptions struct {
	Disable           bool             `mapstructure:"disable"`
	Progressive       bool             `mapstructure:"progressive"`
	Interlaced        bool             `mapstructure:"interlaced"`
	OptimizationLevel int              `mapstructure:"optimizationLevel"`
	Pngquant          *pngquantOptions `mapstructure:"pngquant"`
}

type imageStep struct {
	disable bool
	level   int
}

func newImageStep(options map[string]interface{}) (Step, error) {
	var opts imageOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if opts.OptimizationLevel < 0 || opts.OptimizationLevel > 7 {
		return nil, errors.Newf(errors.ErrConfigInvalid, "optimizationLevel must be between 0 and 7, got %d", opts.OptimizationLevel)
	}
	if q := opts.Pngquant; q != nil {
		if q.Quality != "" {
			if err := validateQuality(q.Quality); err != nil {
				return nil, err
			}
		}
		if q.Speed != 0 && (q.Speed < 1 || q.Speed > 11) {
			return nil, errors.Newf(errors.ErrConfigInvalid, "pngquant.speed must be between 1 and 11, got %d", q.Speed)
		}
	}
	return &imageStep{disable: opts.Disable, level: opts.OptimizationLevel}, nil
}

// validateQuality accepts "min-max" with 0 <= min <= max <= 100
func validateQuality(q string) error {
	bad := errors.Newf(errors.ErrConfigInvalid, "pngquant.quality must be \"min-max\" within 0-100, got %q", q)
	lo, hi, ok := strings.Cut(q, "-")
	if !ok {
		return bad
	}
	from, err1 := strconv.Atoi(strings.TrimSpace(lo))
	to, err2 := strconv.Atoi(strings.TrimSpace(hi))
	if err1 != nil || err2 != nil || from < 0 || to > 100 || from > to {
		return bad
	}
	return nil
}

func (s *imageStep) Name() string { return "image-webpack-loader" }

func (s *imageStep) Transform(_ context.Context, env *Env, in Asset) (Asset, error) {
	if in.Kind == KindScript {
		return Asset{}, errors.Newf(errors.ErrTransform, "image-webpack-loader expects image input, got %s", in.Kind)
	}
	if s.disable {
		return in, nil
	}

	switch strings.ToLower(in.Ext()) {
	case ".png":
		img, err := png.Decode(bytes.NewReader(in.Content))
		if err != nil {
			return Asset{}, errors.Wrap(err, errors.ErrTransform, "invalid PNG image")
		}
		if s.level == 0 {
			return in, nil
		}
		var buf bytes.Buffer
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return Asset{}, errors.Wrap(err, errors.ErrTransform, "failed to re-encode PNG image")
		}
		if buf.Len() >= len(in.Content) {
			return in, nil
		}
		env.Logger.Debug().
			Str("file", env.Rel(in.Path)).
			Int("before", len(in.Content)).
			Int("after", buf.Len()).
			Msg("Recompressed PNG")
		out := in
		out.Content = buf.Bytes()
		return out, nil
	case ".jpg", ".jpeg":
		if _, err := jpeg.DecodeConfig(bytes.NewReader(in.Content)); err != nil {
			return Asset{}, errors.Wrap(err, errors.ErrTransform, "invalid JPEG image")
		}
	case ".gif":
		if _, err := gif.DecodeAll(bytes.NewReader(in.Content)); err != nil {
			return Asset{}, errors.Wrap(err, errors.ErrTransform, "invalid GIF image")
		}
	case ".svg":
		doc, err := parseSVG(in.Content)
		if err != nil {
			return Asset{}, err
		}
		if s.level == 0 {
			return in, nil
		}
		content, err := minifySVG(doc)
		if err != nil {
			return Asset{}, err
		}
		if len(content) >= len(in.Content) {
			return in, nil
		}
		out := in
		out.Content = content
		return out, nil
	default:
		// svgz and fonts pass through
	}
	return in, nil
}
