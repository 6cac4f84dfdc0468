package plugins

import (
	"bytes"
	"context"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/logging"
	"github.com/arthur-debert/webrig/pkg/rules"
	"github.com/dlclark/regexp2"
	"github.com/klauspost/compress/gzip"
)

const (
	defaultCompressTest = `\.(js|css|html)$`
	defaultMinRatio     = 0.8
)

type compressionOptions struct {
	Test      string   `mapstructure:"test"`
	Threshold int      `mapstructure:"threshold"`
	MinRatio  *float64 `mapstructure:"minRatio"`
}

// Compression writes gzip copies of matching outputs
type Compression struct {
	test      *regexp2.Regexp
	threshold int
	minRatio  float64
}

func newCompression(options map[string]interface{}, _ Env) (Plugin, error) {
	var opts compressionOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if opts.Test == "" {
		opts.Test = defaultCompressTest
	}
	test, err := rules.CompilePattern(opts.Test)
	if err != nil {
		return nil, err
	}
	if opts.Threshold < 0 {
		return nil, errors.Newf(errors.ErrConfigInvalid, "threshold must not be negative, got %d", opts.Threshold)
	}
	p := &Compression{test: test, threshold: opts.Threshold, minRatio: defaultMinRatio}
	if opts.MinRatio != nil {
		if *opts.MinRatio <= 0 {
			return nil, errors.Newf(errors.ErrConfigInvalid, "minRatio must be positive, got %v", *opts.MinRatio)
		}
		p.minRatio = *opts.MinRatio
	}
	return p, nil
}

func (p *Compression) Name() string { return "compression" }

// EmitAssets compresses every asset emitted before it
func (p *Compression) EmitAssets(ctx context.Context, c *Compilation) error {
	logger := logging.GetLogger("plugins.compression")
	for _, asset := range c.Assets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(asset.Content) < p.threshold {
			continue
		}
		ok, err := p.test.MatchString(asset.Name)
		if err != nil {
			return errors.Wrapf(err, errors.ErrPatternInvalid, "compression test failed on %s", asset.Name)
		}
		if !ok {
			continue
		}

		compressed, err := gzipBytes(asset.Content)
		if err != nil {
			return err
		}
		ratio := float64(len(compressed)) / float64(max(len(asset.Content), 1))
		if ratio >= p.minRatio {
			logger.Debug().Str("file", asset.Name).Float64("ratio", ratio).Msg("Skipping poorly compressed asset")
			continue
		}
		if err := c.Emit(asset.Name+".gz", compressed); err != nil {
			return err
		}
	}
	return nil
}

func gzipBytes(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create gzip writer")
	}
	if _, err := w.Write(content); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to compress")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to compress")
	}
	return buf.Bytes(), nil
}
