package redis

import (
	"context"
	"testing"
	"time"
)

func TestTryLockIsExclusiveUntilReleased(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.LockKey("profile_save", "summer")

	first, ok, err := TryLock(ctx, client, key, time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first claim to succeed, ok=%v err=%v", ok, err)
	}
	if _, ok, err := TryLock(ctx, client, key, time.Minute); err != nil || ok {
		t.Fatalf("expected second claim to fail while held, ok=%v err=%v", ok, err)
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("second release should be a no-op: %v", err)
	}
	if _, ok, err := TryLock(ctx, client, key, time.Minute); err != nil || !ok {
		t.Fatalf("expected claim after release to succeed, ok=%v err=%v", ok, err)
	}
}

func TestReleaseLeavesForeignOwnerAlone(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	held, ok, err := TryLock(ctx, client, "k", time.Minute)
	if err != nil || !ok {
		t.Fatalf("claim: ok=%v err=%v", ok, err)
	}
	// Simulate expiry followed by another owner claiming the key.
	if err := client.Set(ctx, "k", "someone-else", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := held.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got, err := client.Get(ctx, "k"); err != nil || got != "someone-else" {
		t.Fatalf("foreign owner must keep the key, got %q err=%v", got, err)
	}
}

func TestTryLockValidates(t *testing.T) {
	ctx := context.Background()
	if _, _, err := TryLock(ctx, nil, "k", time.Second); err == nil {
		t.Fatal("expected nil store to fail")
	}
	client := &Client{store: newMockCmdable()}
	if _, _, err := TryLock(ctx, client, "", time.Second); err == nil {
		t.Fatal("expected empty key to fail")
	}
	if _, ok, err := TryLock(ctx, client, "k", 0); err != nil || !ok {
		t.Fatalf("expected default ttl claim to succeed, ok=%v err=%v", ok, err)
	}
}
