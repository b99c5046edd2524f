package cache

import (
	"testing"
	"time"
)

func TestKey_DistinguishesContainers(t *testing.T) {
	a := Key("claims", "OP-05")
	b := Key("claims_status", "OP-05")
	c := Key("claims", "OP-05")

	if a == b {
		t.Error("same ID in different containers must not collide")
	}
	if a != c {
		t.Error("key must be deterministic")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	key := Key("claims", "OP-05")

	if _, found := c.Get(key); found {
		t.Fatal("unexpected hit on empty cache")
	}

	if err := c.Set(key, []byte(`{"claimId":"OP-05"}`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	val, found := c.Get(key)
	if !found || string(val) != `{"claimId":"OP-05"}` {
		t.Errorf("Get = %q (found=%v)", val, found)
	}

	_ = c.Delete(key)
	if _, found := c.Get(key); found {
		t.Error("value survived Delete")
	}
}

func TestDiskCache_ExpiresEntries(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := Key("claims", "IP-02")

	if err := c.Set(key, []byte("record"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get(key); found {
		t.Error("expired entry must not be returned")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)
	key := Key("policies", "POL-1")

	if err := c.Set(key, []byte("policy"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Drop the memory layer; the disk copy must still answer.
	_ = c.memory.Clear()

	val, found := c.Get(key)
	if !found || string(val) != "policy" {
		t.Fatalf("disk layer miss: %q (found=%v)", val, found)
	}

	// The hit should now be promoted back into memory.
	if _, found := c.memory.Get(key); !found {
		t.Error("disk hit was not promoted to memory")
	}
}
