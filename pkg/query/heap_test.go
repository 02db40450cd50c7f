package query

import (
	"math/rand/v2"
	"testing"

	"bookworm/pkg/graph"
)

// checkHeap verifies heap order and the inverse index.
func checkHeap(t *testing.T, h *IndexedMinHeap) {
	t.Helper()
	for slot, idx := range h.slots {
		if h.inverse[idx] != int32(slot) {
			t.Fatalf("inverse[%d] = %d, want %d", idx, h.inverse[idx], slot)
		}
		if slot > 0 {
			parent := h.slots[(slot-1)/2]
			if h.keys[parent] > h.keys[idx] {
				t.Fatalf("heap order broken at slot %d: parent key %d > key %d", slot, h.keys[parent], h.keys[idx])
			}
		}
	}
	present := 0
	for _, slot := range h.inverse {
		if slot >= 0 {
			present++
		}
	}
	if present != h.Len() {
		t.Fatalf("inverse has %d present entries, heap has %d", present, h.Len())
	}
}

func TestIndexedMinHeap(t *testing.T) {
	h := NewIndexedMinHeap(4)

	h.Insert(1, 30)
	h.Insert(2, 10)
	h.Insert(3, 20)

	if h.Key(2) != 10 {
		t.Errorf("Key(2) = %d, want 10", h.Key(2))
	}
	if h.Contains(0) {
		t.Error("Contains(0) = true before insert")
	}

	idx, key := h.RemoveMin()
	if idx != 2 || key != 10 {
		t.Errorf("RemoveMin = {%d, %d}, want {2, 10}", idx, key)
	}
	if h.Contains(2) {
		t.Error("Contains(2) = true after removal")
	}

	h.DecreaseKey(1, 5)
	idx, key = h.RemoveMin()
	if idx != 1 || key != 5 {
		t.Errorf("RemoveMin = {%d, %d}, want {1, 5}", idx, key)
	}

	idx, key = h.RemoveMin()
	if idx != 3 || key != 20 {
		t.Errorf("RemoveMin = {%d, %d}, want {3, 20}", idx, key)
	}

	if !h.IsEmpty() || h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
}

func TestIndexedMinHeapRoundTrip(t *testing.T) {
	const n = 1000
	rng := rand.New(rand.NewPCG(1, 2))
	h := NewIndexedMinHeap(n)

	for _, i := range rng.Perm(n) {
		h.Insert(graph.NodeIndex(i), rng.Uint32N(50))
	}
	checkHeap(t, h)

	last := uint32(0)
	count := 0
	for !h.IsEmpty() {
		_, key := h.RemoveMin()
		if key < last {
			t.Fatalf("RemoveMin key %d after %d", key, last)
		}
		last = key
		count++
	}
	if count != n {
		t.Errorf("removed %d, want %d", count, n)
	}
}

func TestDecreaseKeyUnchangedIsNoop(t *testing.T) {
	const n = 64
	rng := rand.New(rand.NewPCG(3, 4))
	h := NewIndexedMinHeap(n)
	for i := range n {
		h.Insert(graph.NodeIndex(i), rng.Uint32N(10))
	}

	before := append([]graph.NodeIndex(nil), h.slots...)
	for i := range n {
		idx := graph.NodeIndex(i)
		h.DecreaseKey(idx, h.Key(idx))
	}
	checkHeap(t, h)
	for slot := range before {
		if h.slots[slot] != before[slot] {
			t.Fatalf("slot %d moved from %d to %d", slot, before[slot], h.slots[slot])
		}
	}
}

func TestDecreaseKeyRandom(t *testing.T) {
	const n = 200
	rng := rand.New(rand.NewPCG(5, 6))
	h := NewIndexedMinHeap(n)
	want := make([]uint32, n)
	for i := range n {
		want[i] = 1000 + rng.Uint32N(1000)
		h.Insert(graph.NodeIndex(i), want[i])
	}
	for range 500 {
		i := rng.IntN(n)
		want[i] -= rng.Uint32N(want[i]/2 + 1)
		h.DecreaseKey(graph.NodeIndex(i), want[i])
		checkHeap(t, h)
	}
	for !h.IsEmpty() {
		idx, key := h.RemoveMin()
		if key != want[idx] {
			t.Fatalf("key of %d = %d, want %d", idx, key, want[idx])
		}
	}
}

func TestDecreaseKeyInsertsAbsent(t *testing.T) {
	h := NewIndexedMinHeap(3)
	h.DecreaseKey(2, 7)
	if !h.Contains(2) || h.Key(2) != 7 {
		t.Errorf("DecreaseKey on absent node did not insert")
	}
}

func TestHeapReset(t *testing.T) {
	h := NewIndexedMinHeap(5)
	for i := range 5 {
		h.Insert(graph.NodeIndex(i), uint32(i))
	}
	h.Reset()
	if h.Len() != 0 {
		t.Errorf("Len = %d after Reset", h.Len())
	}
	for i := range 5 {
		if h.Contains(graph.NodeIndex(i)) {
			t.Errorf("Contains(%d) after Reset", i)
		}
	}
	h.Insert(4, 1)
	checkHeap(t, h)
}

func TestHeapPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(h *IndexedMinHeap)
	}{
		{"remove from empty", func(h *IndexedMinHeap) { h.RemoveMin() }},
		{"duplicate insert", func(h *IndexedMinHeap) { h.Insert(0, 1); h.Insert(0, 2) }},
		{"out of range", func(h *IndexedMinHeap) { h.Insert(9, 1) }},
		{"raise key", func(h *IndexedMinHeap) { h.Insert(1, 1); h.DecreaseKey(1, 2) }},
		{"key of absent", func(h *IndexedMinHeap) { h.Key(0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn(NewIndexedMinHeap(3))
		})
	}
}

func TestFIFO(t *testing.T) {
	q := NewFIFO(3)
	q.Enqueue(1)
	q.Enqueue(2)
	if got := q.Dequeue(); got != 1 {
		t.Errorf("Dequeue = %d, want 1", got)
	}
	q.Enqueue(3)
	q.Enqueue(4) // wraps
	if q.Len() != 3 {
		t.Errorf("Len = %d, want 3", q.Len())
	}
	for _, want := range []graph.NodeIndex{2, 3, 4} {
		if got := q.Dequeue(); got != want {
			t.Errorf("Dequeue = %d, want %d", got, want)
		}
	}
	if !q.IsEmpty() {
		t.Error("queue should be empty")
	}
	q.Enqueue(5)
	q.Reset()
	if !q.IsEmpty() {
		t.Error("queue should be empty after Reset")
	}
}

func TestFIFOPanics(t *testing.T) {
	t.Run("overflow", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		q := NewFIFO(1)
		q.Enqueue(0)
		q.Enqueue(0)
	})
	t.Run("empty", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		NewFIFO(1).Dequeue()
	})
}
