package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"
)

// newTestRedis connects to REDIS_ADDR, skipping the test when it is unset
func newTestRedis(t *testing.T) *RedisPersistence {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rp, err := NewRedisPersistence(ctx, addr, time.Minute, nil)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { rp.Close() })
	return rp
}

func TestRedisPersistence(t *testing.T) {
	rp := newTestRedis(t)
	id := fmt.Sprintf("t%d", time.Now().UnixNano()%100000)
	t.Cleanup(func() { rp.Delete(id) })

	session := newTestSession(t, id, createTestConfig())
	session.Engine.Draw()

	if err := rp.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if !rp.Exists(id) {
		t.Fatal("Session should exist after save")
	}

	ttl, err := rp.client.TTL(context.Background(), rp.key(id)).Result()
	if err != nil {
		t.Fatalf("Failed to read TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("Expected a TTL of at most a minute, got %v", ttl)
	}

	loaded, err := rp.Load(id)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if savedJSON(t, loaded) != savedJSON(t, session) {
		t.Error("State and history should round-trip")
	}

	ids, err := rp.ListAll()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	found := false
	for _, got := range ids {
		found = found || got == id
	}
	if !found {
		t.Errorf("Expected %s in %v", id, ids)
	}

	if err := rp.Delete(id); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := rp.Load(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := rp.Delete(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestNewRedisPersistenceUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if _, err := NewRedisPersistence(ctx, "127.0.0.1:1", 0, nil); err == nil {
		t.Error("Expected an error connecting to a closed port")
	}
}
