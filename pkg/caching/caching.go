// Package caching is a file-backed page cache keyed by URL, so repeated
// offline ingests of the same page skip the network.
package caching

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache stores one file per URL and treats files older than ttl as misses.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewCache creates dir if needed. A ttl of zero disables expiry.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (c *Cache) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".html")
}

// Get returns the cached body for url if present and fresh.
func (c *Cache) Get(url string) ([]byte, bool) {
	p := c.path(url)
	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(info.ModTime()) > c.ttl {
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set writes data for url through a temp file so readers never see a
// partial body.
func (c *Cache) Set(url string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, "page-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(url)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
