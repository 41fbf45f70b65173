package cache_test

import (
	"testing"
	"time"

	"github.com/sharpline/sharpline-alerts/internal/cache"
)

func TestCacheSetGet(t *testing.T) {
	c := cache.New(true)

	etag := c.Set("k", []byte(`{"a":1}`), time.Minute)
	if etag == "" {
		t.Fatal("Set returned empty etag")
	}

	data, gotEtag, ok := c.Get("k")
	if !ok {
		t.Fatal("Get miss for freshly set key")
	}
	if string(data) != `{"a":1}` {
		t.Errorf("data = %s", data)
	}
	if gotEtag != etag {
		t.Errorf("etag = %q, want %q", gotEtag, etag)
	}
}

func TestCacheDisabledIsNoOp(t *testing.T) {
	c := cache.New(false)
	c.Set("k", []byte("v"), time.Minute)
	if _, _, ok := c.Get("k"); ok {
		t.Error("disabled cache returned a hit")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := cache.New(true)
	c.Set("k", []byte("v"), -time.Second) // already expired
	if _, _, ok := c.Get("k"); ok {
		t.Error("expired entry returned")
	}
}

func TestInvalidateUser(t *testing.T) {
	c := cache.New(true)
	c.Set(cache.UserKey("u1", "alerts"), []byte("a"), time.Minute)
	c.Set(cache.UserKey("u1", "unread"), []byte("b"), time.Minute)
	c.Set(cache.UserKey("u2", "alerts"), []byte("c"), time.Minute)

	c.InvalidateUser("u1")

	if _, _, ok := c.Get(cache.UserKey("u1", "alerts")); ok {
		t.Error("u1 alerts survived invalidation")
	}
	if _, _, ok := c.Get(cache.UserKey("u1", "unread")); ok {
		t.Error("u1 unread survived invalidation")
	}
	if _, _, ok := c.Get(cache.UserKey("u2", "alerts")); !ok {
		t.Error("u2 entry was wrongly invalidated")
	}
}

func TestETagMatching(t *testing.T) {
	etag := cache.ComputeETag([]byte("payload"))
	if !cache.CheckETagMatch(etag, etag) {
		t.Error("identical etags should match")
	}
	if !cache.CheckETagMatch("*", etag) {
		t.Error("wildcard should match")
	}
	if cache.CheckETagMatch("", etag) {
		t.Error("empty If-None-Match should not match")
	}
	if cache.ComputeETag([]byte("a")) == cache.ComputeETag([]byte("b")) {
		t.Error("different payloads produced identical etags")
	}
}
