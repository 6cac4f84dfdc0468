package transforms

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/arthur-debert/webrig/pkg/errors"
)

type jsonStep struct{}

func newJSONStep(map[string]interface{}) (Step, error) {
	return jsonStep{}, nil
}

func (jsonStep) Name() string { return "json-loader" }

func (jsonStep) Transform(_ context.Context, _ *Env, in Asset) (Asset, error) {
	if in.Kind == KindScript {
		return Asset{}, errors.Newf(errors.ErrTransform, "json-loader expects JSON input, got %s", in.Kind)
	}
	src, err := WrapJSON(in.Content)
	if err != nil {
		return Asset{}, err
	}
	out := in
	out.Content = src
	out.Kind = KindScript
	return out, nil
}

// WrapJSON validates and compacts JSON and returns a module exporting it
func WrapJSON(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))); err != nil {
		return nil, errors.Wrap(err, errors.ErrTransform, "malformed JSON")
	}
	return exportsValue(buf.String()), nil
}

type rawStep struct{}

func newRawStep(map[string]interface{}) (Step, error) {
	return rawStep{}, nil
}

func (rawStep) Name() string { return "raw-loader" }

func (rawStep) Transform(_ context.Context, _ *Env, in Asset) (Asset, error) {
	out := in
	out.Content = exportsValue(jsString(string(in.Content)))
	out.Kind = KindScript
	return out, nil
}
