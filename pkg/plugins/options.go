package plugins

import (
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
)

func decodeOptions(options map[string]interface{}, out interface{}) error {
	if len(options) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create options decoder")
	}
	if err := dec.Decode(options); err != nil {
		return errors.Wrap(err, errors.ErrConfigInvalid, "invalid plugin options")
	}
	return nil
}
