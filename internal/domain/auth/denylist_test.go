package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestMemoryDenylist(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewMemoryDenylist()
	d.now = func() time.Time { return now }

	if err := d.Revoke(ctx, "jti-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := d.Revoke(ctx, "jti-expired", now.Add(-time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if revoked, _ := d.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatal("expected jti-1 revoked")
	}
	if revoked, _ := d.IsRevoked(ctx, "jti-expired"); revoked {
		t.Fatal("already expired tokens need no entry")
	}
	if revoked, _ := d.IsRevoked(ctx, "unknown"); revoked {
		t.Fatal("unknown token must not be revoked")
	}

	now = now.Add(2 * time.Hour)
	if revoked, _ := d.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatal("entry should lapse with the token")
	}
}

func TestRedisDenylistIntegration(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	d := NewRedisDenylist(client)
	jti := uuid.NewString()
	if err := d.Revoke(ctx, jti, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := d.IsRevoked(ctx, jti)
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v %v", revoked, err)
	}
	ttl, err := client.TTL(ctx, d.prefix+jti).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %s %v", ttl, err)
	}
}
