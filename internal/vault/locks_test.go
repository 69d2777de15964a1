package vault

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAliasLocksExclusive(t *testing.T) {
	l := newAliasLocks()
	release, err := l.acquire(context.Background(), AliasSeeds)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.acquire(ctx, AliasSeeds); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected second acquire to block, got %v", err)
	}

	release()
	release2, err := l.acquire(context.Background(), AliasSeeds)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestAliasLocksIndependentAliases(t *testing.T) {
	l := newAliasLocks()
	release, _ := l.acquire(context.Background(), AliasSeeds)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	other, err := l.acquire(ctx, AliasAuthKey)
	if err != nil {
		t.Fatalf("expected authKey free while seeds held: %v", err)
	}
	other()
}

func TestAliasLocksPartialAcquireReleased(t *testing.T) {
	l := newAliasLocks()
	holdSeeds, _ := l.acquire(context.Background(), AliasSeeds)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.acquire(ctx, AliasSeeds, AliasAuthKey); err == nil {
		t.Fatal("expected multi-alias acquire to time out")
	}
	holdSeeds()

	// authKey was taken first (sorted order) and must have been given back.
	release, err := l.acquire(context.Background(), AliasAuthKey, AliasAuthKey)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	release()
	release()
}
