package store

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisKVRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	kv := RedisKV(client, "aprova:")
	ctx := context.Background()

	if _, err := kv.Get(ctx, "user_performance"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: err = %v, want ErrNotFound", err)
	}

	if err := kv.Put(ctx, "user_performance", []byte(`{"totalAnswered":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("aprova:user_performance") {
		t.Fatal("expected prefixed redis key to be set")
	}

	got, err := kv.Get(ctx, "user_performance")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"totalAnswered":1}` {
		t.Errorf("value = %s", got)
	}

	if err := kv.Delete(ctx, "user_performance"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("aprova:user_performance") {
		t.Fatal("expected redis key to be removed")
	}
}
