package monitor

import (
	"testing"

	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

func TestRegistryStageCommit(t *testing.T) {
	reg := NewRegistry()
	ctx := &ItemContext{ClientHandle: 7}

	h := reg.Stage(ctx)
	if h == 0 {
		t.Fatal("Stage returned the zero handle")
	}
	if reg.Len() != 0 {
		t.Errorf("staged context counted: Len = %d, want 0", reg.Len())
	}
	key := ItemKey{Sub: 1, Item: 42}
	if _, ok := reg.Find(key); ok {
		t.Error("staged context findable by key before commit")
	}

	if !reg.Commit(h, key) {
		t.Fatal("Commit returned false for a staged handle")
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
	got, ok := reg.Find(key)
	if !ok || got != ctx {
		t.Error("committed context not findable by key")
	}
	gotCtx, gotKey, ok := reg.FindHandle(h)
	if !ok || gotCtx != ctx || gotKey != key {
		t.Errorf("FindHandle = (%p, %v, %v), want (%p, %v, true)", gotCtx, gotKey, ok, ctx, key)
	}
}

func TestRegistryCommitUnknownHandle(t *testing.T) {
	reg := NewRegistry()
	if reg.Commit(99, ItemKey{Sub: 1, Item: 1}) {
		t.Error("Commit succeeded for a handle that was never staged")
	}
}

func TestRegistryAbandon(t *testing.T) {
	reg := NewRegistry()
	h := reg.Stage(&ItemContext{})

	if !reg.Abandon(h) {
		t.Fatal("Abandon returned false for a staged handle")
	}
	if reg.Abandon(h) {
		t.Error("second Abandon returned true")
	}
	if reg.Commit(h, ItemKey{Sub: 1, Item: 1}) {
		t.Error("Commit succeeded after Abandon")
	}
	if _, _, ok := reg.FindHandle(h); ok {
		t.Error("abandoned handle still resolves")
	}
}

func TestRegistryInsertReplace(t *testing.T) {
	reg := NewRegistry()
	key := ItemKey{Sub: 2, Item: 5}
	first := &ItemContext{ClientHandle: 1}
	second := &ItemContext{ClientHandle: 2}

	h1 := reg.Insert(key, first)
	h2 := reg.Insert(key, second)
	if h1 == h2 {
		t.Fatal("replacement reused the old handle")
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d after replacement, want 1", reg.Len())
	}
	if _, _, ok := reg.FindHandle(h1); ok {
		t.Error("stale handle still resolves after replacement")
	}
	got, _, ok := reg.FindHandle(h2)
	if !ok || got != second {
		t.Error("new handle does not resolve to the replacement context")
	}
	found, _ := reg.Find(key)
	if found != second {
		t.Error("key lookup returned the replaced context")
	}
}

func TestRegistryEraseIdempotent(t *testing.T) {
	reg := NewRegistry()
	key := ItemKey{Sub: 1, Item: 9}
	h := reg.Insert(key, &ItemContext{})

	if !reg.Erase(key) {
		t.Fatal("Erase returned false for a registered key")
	}
	if reg.Erase(key) {
		t.Error("second Erase returned true")
	}
	if _, ok := reg.Find(key); ok {
		t.Error("erased key still findable")
	}
	if _, _, ok := reg.FindHandle(h); ok {
		t.Error("erased handle still resolves")
	}
}

func TestRegistryEraseSubscription(t *testing.T) {
	reg := NewRegistry()
	reg.Insert(ItemKey{Sub: 1, Item: 10}, &ItemContext{})
	reg.Insert(ItemKey{Sub: 1, Item: 11}, &ItemContext{})
	reg.Insert(ItemKey{Sub: 2, Item: 10}, &ItemContext{})

	if n := reg.EraseSubscription(1); n != 2 {
		t.Errorf("EraseSubscription(1) = %d, want 2", n)
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
	if _, ok := reg.Find(ItemKey{Sub: 2, Item: 10}); !ok {
		t.Error("item of an unrelated subscription was erased")
	}
	if n := reg.EraseSubscription(1); n != 0 {
		t.Errorf("repeat EraseSubscription(1) = %d, want 0", n)
	}
}

func TestRegistryClear(t *testing.T) {
	reg := NewRegistry()
	reg.Insert(ItemKey{Sub: 1, Item: 1}, &ItemContext{})
	staged := reg.Stage(&ItemContext{})

	reg.Clear()
	if reg.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", reg.Len())
	}
	if reg.Commit(staged, ItemKey{Sub: 1, Item: 2}) {
		t.Error("Commit succeeded for a handle staged before Clear")
	}
}

func TestRegistryItemIDs(t *testing.T) {
	reg := NewRegistry()
	reg.Insert(ItemKey{Sub: 1, Item: 30}, &ItemContext{})
	reg.Insert(ItemKey{Sub: 1, Item: 10}, &ItemContext{})
	reg.Insert(ItemKey{Sub: 1, Item: 20}, &ItemContext{})
	reg.Insert(ItemKey{Sub: 2, Item: 5}, &ItemContext{})

	ids := reg.ItemIDs(1)
	want := []ua.MonitoredItemID{10, 20, 30}
	if len(ids) != len(want) {
		t.Fatalf("ItemIDs(1) = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ItemIDs(1)[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
	if got := reg.ItemIDs(3); len(got) != 0 {
		t.Errorf("ItemIDs(3) = %v, want empty", got)
	}
}

func TestRegistryKeys(t *testing.T) {
	reg := NewRegistry()
	reg.Insert(ItemKey{Sub: 2, Item: 1}, &ItemContext{})
	reg.Insert(ItemKey{Sub: 1, Item: 2}, &ItemContext{})
	reg.Insert(ItemKey{Sub: 1, Item: 1}, &ItemContext{})

	keys := reg.Keys()
	want := []ItemKey{{Sub: 1, Item: 1}, {Sub: 1, Item: 2}, {Sub: 2, Item: 1}}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys[%d] = %v, want %v", i, keys[i], want[i])
		}
	}
}

func TestRegistryHandlesUnique(t *testing.T) {
	reg := NewRegistry()
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		h := reg.Stage(&ItemContext{})
		if h == 0 {
			t.Fatal("zero handle issued")
		}
		if seen[uint64(h)] {
			t.Fatalf("handle %d issued twice", h)
		}
		seen[uint64(h)] = true
	}
}
