package transforms

import (
	"testing"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lookup(t *testing.T) {
	reg := Builtins()

	tests := map[string]string{
		"image-webpack":             "image-webpack-loader",
		"image-webpack-loader":      "image-webpack-loader",
		"ts-loader":                 "awesome-typescript-loader",
		"ts":                        "awesome-typescript-loader",
		"babel-loader":              "awesome-typescript-loader",
		"awesome-typescript-loader": "awesome-typescript-loader",
		"file":                      "file-loader",
		" json-loader ":             "json-loader",
	}
	for name, want := range tests {
		_, canonical, err := reg.Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, canonical, name)
	}

	_, _, err := reg.Lookup("sass-loader")
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownTransform))
}

func TestRegistry_Names(t *testing.T) {
	assert.Equal(t, []string{
		"awesome-typescript-loader",
		"css-loader",
		"file-loader",
		"html-loader",
		"image-webpack-loader",
		"json-loader",
		"raw-loader",
		"style-loader",
		"url-loader",
	}, Builtins().Names())
}

func TestRegistry_NewInvalidOptions(t *testing.T) {
	reg := Builtins()

	_, err := reg.New("ts-loader", map[string]interface{}{"target": "es1999"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))

	_, err = reg.New("image-webpack", map[string]interface{}{"optimizationLevel": 9})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))

	_, err = reg.New("url-loader", map[string]interface{}{"fallback": "url-loader"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))

	_, err = reg.New("url-loader", map[string]interface{}{"fallback": "nope-loader"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownTransform))

	_, err = reg.New("file-loader", map[string]interface{}{"name": "[nope]"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))

	_, err = reg.New("file-loader", map[string]interface{}{"outputPath": "../outside"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
}

func TestRegistry_RegisterCustom(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("raw-loader", newRawStep, "text"))
	assert.Error(t, reg.Register("raw-loader", newRawStep))

	_, canonical, err := reg.Lookup("text")
	require.NoError(t, err)
	assert.Equal(t, "raw-loader", canonical)
}
