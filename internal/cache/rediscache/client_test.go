package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

// creates a client connected to miniredis for testing
func newMini(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)

	rc, err := New(ctx, mr.Addr())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestGetSet_HappyPathAndMiss(t *testing.T) {
	rc, _ := newMini(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := rc.Set(ctx, "soils:ssurgo:aoi=abc", []byte(`{"count":1}`), 5*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	val, ok, err := rc.Get(ctx, "soils:ssurgo:aoi=abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || string(val) != `{"count":1}` {
		t.Fatalf("got ok=%v val=%q", ok, val)
	}

	_, ok, err = rc.Get(ctx, "soils:ssurgo:aoi=missing")
	if err != nil {
		t.Fatalf("Get miss: %v", err)
	}
	if ok {
		t.Fatalf("miss must report ok=false, not an error")
	}
}

func TestDelPrefix_RemovesOnlyMatchingKeys(t *testing.T) {
	rc, mr := newMini(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	keep := "flood:memo:x"
	for _, k := range []string{"soils:ssurgo:aoi=1", "soils:ssurgo:aoi=2", keep} {
		if err := rc.Set(ctx, k, []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	if err := rc.DelPrefix(ctx, "soils:ssurgo:"); err != nil {
		t.Fatalf("DelPrefix: %v", err)
	}

	if _, ok, _ := rc.Get(ctx, "soils:ssurgo:aoi=1"); ok {
		t.Fatalf("prefixed key survived DelPrefix")
	}
	if _, ok, _ := rc.Get(ctx, keep); !ok {
		t.Fatalf("unrelated key was deleted")
	}
	if mr.Exists("soils:ssurgo:aoi=2") {
		t.Fatalf("prefixed key survived DelPrefix")
	}
}

func TestTTL_IsApplied(t *testing.T) {
	rc, mr := newMini(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := rc.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, _ := rc.Get(ctx, "k"); ok {
		t.Fatalf("key should have expired")
	}
}

func TestContextCancellation_SurfacesError(t *testing.T) {
	rc, _ := newMini(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := rc.Set(ctx, "k", []byte("v"), time.Second); err == nil {
		t.Fatalf("expected error on Set with canceled context")
	}
	if _, _, err := rc.Get(ctx, "k"); err == nil {
		t.Fatalf("expected error on Get with canceled context")
	}
}
