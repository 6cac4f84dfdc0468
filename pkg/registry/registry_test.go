package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID int
}

func TestRegister(t *testing.T) {
	reg := New[testItem]()

	t.Run("valid item with aliases", func(t *testing.T) {
		require.NoError(t, reg.Register("file-loader", testItem{ID: 1}, "file"))
		assert.Equal(t, 1, reg.Count())
		assert.True(t, reg.Has("file"))
	})

	t.Run("empty name", func(t *testing.T) {
		err := reg.Register("", testItem{})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})

	t.Run("duplicate name", func(t *testing.T) {
		err := reg.Register("file-loader", testItem{ID: 2})
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
	})

	t.Run("name colliding with alias", func(t *testing.T) {
		err := reg.Register("file", testItem{ID: 3})
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
	})

	t.Run("alias colliding with name", func(t *testing.T) {
		err := reg.Register("url-loader", testItem{ID: 4}, "file-loader")
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
		assert.False(t, reg.Has("url-loader"), "failed registration must not leave partial state")
	})

	t.Run("empty alias", func(t *testing.T) {
		err := reg.Register("json-loader", testItem{ID: 5}, "")
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestGetAndCanonical(t *testing.T) {
	reg := New[testItem]()
	require.NoError(t, reg.Register("image-webpack-loader", testItem{ID: 7}, "image-webpack"))

	got, err := reg.Get("image-webpack")
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)

	name, ok := reg.Canonical("image-webpack")
	assert.True(t, ok)
	assert.Equal(t, "image-webpack-loader", name)

	_, err = reg.Get("missing")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	_, ok = reg.Canonical("missing")
	assert.False(t, ok)
}

func TestList(t *testing.T) {
	reg := New[testItem]()
	for _, name := range []string{"url-loader", "css-loader", "json-loader"} {
		require.NoError(t, reg.Register(name, testItem{}, name+"-alias"))
	}
	assert.Equal(t, []string{"css-loader", "json-loader", "url-loader"}, reg.List())
}

func TestMustRegister(t *testing.T) {
	reg := New[testItem]()
	assert.NotPanics(t, func() { MustRegister(reg, "raw-loader", testItem{}) })
	assert.Panics(t, func() { MustRegister(reg, "raw-loader", testItem{}) })
}

func TestConcurrentAccess(t *testing.T) {
	reg := New[testItem]()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("loader-%d", i)
			_ = reg.Register(name, testItem{ID: i})
			_, _ = reg.Get(name)
			_ = reg.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, reg.Count())
}
