package cache

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestGetLoadsOnce(t *testing.T) {
	is := is.New(t)
	c := New[int](4)
	loads := 0
	load := func(key string) (int, error) {
		loads++
		return len(key), nil
	}
	v, err := c.Get("abc", load)
	is.NoErr(err)
	is.Equal(v, 3)
	v, err = c.Get("abc", load)
	is.NoErr(err)
	is.Equal(v, 3)
	is.Equal(loads, 1)
	hits, misses := c.Stats()
	is.Equal(hits, uint64(1))
	is.Equal(misses, uint64(1))
}

func TestLoadErrorNotCached(t *testing.T) {
	is := is.New(t)
	c := New[string](4)
	boom := errors.New("boom")
	_, err := c.Get("k", func(string) (string, error) { return "", boom })
	is.Equal(err, boom)
	is.Equal(c.Len(), 0)
}

func TestEviction(t *testing.T) {
	is := is.New(t)
	c := New[int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	// touch a so b is the oldest.
	_, err := c.Get("a", nil)
	is.NoErr(err)
	c.Put("c", 3)
	is.Equal(c.Len(), 2)

	loaded := false
	v, _ := c.Get("b", func(string) (int, error) {
		loaded = true
		return 20, nil
	})
	is.True(loaded)
	is.Equal(v, 20)
}
