package caching

import (
	"os"
	"testing"
	"time"
)

func TestCache(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("https://example.com/a"); ok {
		t.Fatal("Get() on empty cache hit")
	}
	if err := c.Set("https://example.com/a", []byte("<html>a</html>")); err != nil {
		t.Fatal(err)
	}
	data, ok := c.Get("https://example.com/a")
	if !ok || string(data) != "<html>a</html>" {
		t.Errorf("Get() = %q, %v", data, ok)
	}
	if _, ok := c.Get("https://example.com/b"); ok {
		t.Error("Get() hit for a different url")
	}

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, ok := c.Get("https://example.com/a"); ok {
		t.Error("Get() returned an expired entry")
	}

	entries, _ := os.ReadDir(c.dir)
	if len(entries) != 1 {
		t.Errorf("cache dir has %d entries, want 1 (no temp files left)", len(entries))
	}
}

func TestCacheWithoutExpiry(t *testing.T) {
	c, err := NewCache(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	c.Set("u", []byte("x"))
	c.now = func() time.Time { return time.Now().Add(1000 * time.Hour) }
	if _, ok := c.Get("u"); !ok {
		t.Error("zero ttl should never expire")
	}
}
