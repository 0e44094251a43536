package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/m-mizutani/goerr/v2"
)

// ErrMiss is returned by Get when the key has no stored value.
var ErrMiss = goerr.New("cache miss")

// Cache is a durable key-value mirror of client state, one JSON file per
// client. It is a mirror, not an authority: the in-memory stores win on
// conflict and re-persist their own state. A missing or corrupt file yields
// an empty cache; cache damage never propagates to the user.
type Cache struct {
	mu     sync.Mutex
	path   string
	values map[string]json.RawMessage
}

// Open loads the cache file at path, creating parent directories as needed.
// Unparseable content is discarded and logged, not returned as an error.
func Open(ctx context.Context, path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to create cache directory", goerr.V("path", path))
	}

	c := &Cache{
		path:   path,
		values: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, goerr.Wrap(err, "failed to read cache file", goerr.V("path", path))
	}

	if err := json.Unmarshal(data, &c.values); err != nil {
		errs.HandleRecovered(ctx, goerr.Wrap(err, "discarding malformed cache",
			goerr.T(errs.TagMalformedCache), goerr.V("path", path)))
		c.values = make(map[string]json.RawMessage)
	}

	return c, nil
}

// Get unmarshals the value stored under key into v. A malformed stored value
// behaves like a miss so that a damaged entry never crashes startup.
func (c *Cache) Get(key string, v any) error {
	c.mu.Lock()
	raw, ok := c.values[key]
	c.mu.Unlock()

	if !ok {
		return goerr.Wrap(ErrMiss, "no cached value", goerr.V("key", key))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return goerr.Wrap(ErrMiss, "malformed cached value",
			goerr.T(errs.TagMalformedCache), goerr.V("key", key))
	}
	return nil
}

// Set stores the value under key and flushes the file. The write is atomic
// (temp file + rename) so a crash never leaves a half-written cache.
func (c *Cache) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal cache value", goerr.V("key", key))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = raw
	return c.flush()
}

// Delete removes the key and flushes. Deleting an absent key is a no-op.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; !ok {
		return nil
	}
	delete(c.values, key)
	return c.flush()
}

// Keys returns all stored keys, for pruning derived entries such as
// per-notice comment lists.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}

func (c *Cache) flush() error {
	data, err := json.Marshal(c.values)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal cache")
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write cache file", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return goerr.Wrap(err, "failed to replace cache file", goerr.V("path", c.path))
	}
	return nil
}
