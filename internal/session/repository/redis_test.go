package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"psychaid/backend/internal/session/domain"
)

func newRedisStore(t *testing.T) (*RedisRevocationStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRevocationStore(client), mr
}

func TestRedisRevocationStore_RevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	revoked, err := store.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("IsRevoked before revoke = %v, %v", revoked, err)
	}

	r := &domain.Revocation{JTI: "jti-1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour), RevokedAt: time.Now()}
	if err := store.Revoke(ctx, r); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revoked, err = store.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("IsRevoked after revoke = %v, %v", revoked, err)
	}
	if ttl := mr.TTL(revokedKeyPrefix + "jti-1"); ttl <= 59*time.Minute || ttl > time.Hour {
		t.Errorf("key ttl = %v, want ~1h", ttl)
	}

	mr.FastForward(time.Hour + time.Second)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("IsRevoked after expiry = %v, %v", revoked, err)
	}
}

func TestRedisRevocationStore_SkipsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	r := &domain.Revocation{JTI: "old", UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)}
	if err := store.Revoke(ctx, r); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if mr.Exists(revokedKeyPrefix + "old") {
		t.Error("expired token should not be stored")
	}
}

func TestRedisRevocationStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	mr.Close()
	if _, err := store.IsRevoked(ctx, "jti-1"); err == nil {
		t.Fatal("IsRevoked should fail when redis is down")
	}
	if err := store.Ping(ctx); err == nil {
		t.Fatal("Ping should fail when redis is down")
	}
}
