package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingRemover struct {
	mu      sync.Mutex
	removed []string
}

func (r *recordingRemover) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, name)
	return nil
}

func (r *recordingRemover) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.removed...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestDispatcher_RemovesLocalFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &recordingRemover{}
	d := NewDispatcher(2, store, "http://localhost:8080/api/files/product", zerolog.Nop())
	d.Start(ctx)

	d.EnqueueRemoval("p1", []string{
		"http://localhost:8080/api/files/product/old1.jpg",
		"http://localhost:8080/api/files/product/old2.jpg",
	})

	waitFor(t, func() bool { return len(store.snapshot()) == 2 })
	got := store.snapshot()
	if got[0] != "old1.jpg" || got[1] != "old2.jpg" {
		t.Fatalf("unexpected removals: %v", got)
	}
}

func TestDispatcher_SkipsExternalURLs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &recordingRemover{}
	d := NewDispatcher(1, store, "http://localhost:8080/api/files/product", zerolog.Nop())
	d.Start(ctx)

	d.EnqueueRemoval("p1", []string{"https://cdn.example.com/keep.jpg"})
	d.EnqueueRemoval("p1", []string{"http://localhost:8080/api/files/product/gone.jpg"})

	waitFor(t, func() bool { return len(store.snapshot()) == 1 })
	if got := store.snapshot(); got[0] != "gone.jpg" {
		t.Fatalf("unexpected removals: %v", got)
	}
}

func TestDispatcher_BareNamesPassThrough(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &recordingRemover{}
	d := NewDispatcher(1, store, "http://localhost:8080/api/files/product", zerolog.Nop())
	d.Start(ctx)

	d.EnqueueRemoval("p1", []string{"1740176-00-A_0_2000.jpg"})

	waitFor(t, func() bool { return len(store.snapshot()) == 1 })
}

func TestDispatcher_ShardIsDeterministic(t *testing.T) {
	d := NewDispatcher(4, &recordingRemover{}, "", zerolog.Nop())
	first := d.shardIndex("product-42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("product-42") != first {
			t.Fatalf("shard index not deterministic")
		}
	}
}
