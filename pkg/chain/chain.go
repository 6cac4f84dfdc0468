// Package chain runs a rule's transform steps against an asset.
//
// Steps are listed in declaration order and run last-to-first, the webpack
// convention: for use = [a, b, c] the asset goes through c, then b, then a.
package chain

import (
	"context"

	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/transforms"
)

// Chain is a compiled list of steps
type Chain struct {
	steps []transforms.Step
	names []string
}

// Compile resolves every step's factory and constructs the steps. Unknown
// loaders fail with ErrUnknownTransform, bad options with ErrConfigInvalid.
func Compile(reg *transforms.Registry, steps []config.Step) (*Chain, error) {
	c := &Chain{
		steps: make([]transforms.Step, 0, len(steps)),
		names: make([]string, 0, len(steps)),
	}
	for i, s := range steps {
		step, err := reg.New(s.Loader, s.Options)
		if err != nil {
			return nil, errors.Wrapf(err, errors.GetErrorCode(err), "use[%d] %s", i, s.Loader).
				WithDetail("loader", s.Loader)
		}
		c.steps = append(c.steps, step)
		c.names = append(c.names, s.Loader)
	}
	return c, nil
}

// Len returns the number of steps
func (c *Chain) Len() int {
	return len(c.steps)
}

// Names returns the loader names in declaration order
func (c *Chain) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Apply runs the chain. The output of step i is the input of step i-1.
func (c *Chain) Apply(ctx context.Context, env *transforms.Env, in transforms.Asset) (transforms.Asset, error) {
	asset := in
	for i := len(c.steps) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return transforms.Asset{}, err
		}
		out, err := c.steps[i].Transform(ctx, env, asset)
		if err != nil {
			return transforms.Asset{}, errors.Wrapf(err, errors.ErrTransform,
				"%s failed on %s", c.names[i], env.Rel(in.Path)).
				WithDetail("loader", c.names[i]).
				WithDetail("path", in.Path)
		}
		asset = out
	}
	return asset, nil
}
