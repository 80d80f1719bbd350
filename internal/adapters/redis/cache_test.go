package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "appraiser_directory/internal/adapters/redis"
	"appraiser_directory/internal/domain"
)

func TestCache_RoundTripAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var miss domain.Appraiser
	if ok, err := c.Get(ctx, "appraiser:x", &miss); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	rating := 4.5
	in := domain.Appraiser{ID: "x", Slug: "x", Name: "X", Business: domain.Business{Rating: &rating}}
	if err := c.Set(ctx, "appraiser:x", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists(redisad.Prefix + "appraiser:x") {
		t.Fatalf("key not namespaced")
	}

	var out domain.Appraiser
	ok, err := c.Get(ctx, "appraiser:x", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out.Name != "X" || out.Business.Rating == nil || *out.Business.Rating != 4.5 {
		t.Fatalf("unexpected value: %+v", out)
	}

	mr.FastForward(61 * time.Second)
	if ok, _ := c.Get(ctx, "appraiser:x", &out); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCache_DelAndCorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	if err := mr.Set(redisad.Prefix+"location:columbus", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var l domain.Location
	if ok, err := c.Get(ctx, "location:columbus", &l); ok || err == nil {
		t.Fatalf("corrupt entry should be a miss with an error, got ok=%v err=%v", ok, err)
	}

	if err := c.Del(ctx, "location:columbus"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if mr.Exists(redisad.Prefix + "location:columbus") {
		t.Fatalf("key still present after Del")
	}
}
