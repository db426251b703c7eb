package board

import (
	"sync"
	"testing"
	"time"

	"github.com/preston-bernstein/city-dashboard/internal/testutil"
)

func TestBoardSetAndGet(t *testing.T) {
	b := New([]string{"totalEvents", "failedEvents"})
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	b.now = testutil.NowAt(at)

	b.SetText("totalEvents", "8")

	got, ok := b.Get("totalEvents")
	if !ok || got.Value != "8" || !got.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected slot %+v (ok=%v)", got, ok)
	}
	if _, ok := b.Get("failedEvents"); ok {
		t.Fatalf("expected unwritten slot to be absent")
	}
}

func TestBoardIgnoresUnknownSlots(t *testing.T) {
	b := New([]string{"totalEvents"})
	b.SetText("nope", "value")

	if _, ok := b.Get("nope"); ok {
		t.Fatalf("expected unknown slot write to be dropped")
	}
	if b.Has("nope") || !b.Has("totalEvents") {
		t.Fatalf("unexpected slot registration")
	}
	if len(b.Snapshot()) != 0 {
		t.Fatalf("expected empty snapshot")
	}
}

func TestBoardLastWriteWins(t *testing.T) {
	b := New([]string{"tempEvents"})
	b.SetText("tempEvents", "1")
	b.SetText("tempEvents", "Error")

	if got, _ := b.Get("tempEvents"); got.Value != "Error" {
		t.Fatalf("expected last write, got %q", got.Value)
	}
}

func TestBoardSnapshotReturnsCopy(t *testing.T) {
	b := New([]string{"a"})
	b.SetText("a", "original")

	snap := b.Snapshot()
	snap["a"] = Slot{Value: "mutated"}

	if got, _ := b.Get("a"); got.Value != "original" {
		t.Fatalf("expected board to be unaffected by snapshot mutation, got %q", got.Value)
	}
}

func TestBoardConcurrentWrites(t *testing.T) {
	b := New([]string{"a", "b"})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); b.SetText("a", "x") }()
		go func() { defer wg.Done(); _ = b.Snapshot() }()
	}
	wg.Wait()
	if got, _ := b.Get("a"); got.Value != "x" {
		t.Fatalf("expected value after concurrent writes")
	}
}
