package query

import (
	"fmt"

	"bookworm/pkg/graph"
)

// IndexedMinHeap is a binary min-heap over node indices with an inverse
// position index, so DecreaseKey runs in O(log n) without a scan.
// Concrete-typed to avoid the interface boxing of container/heap.
//
// The heap owns its keys. Capacity equals the node count it was built for;
// every index must be below that count.
type IndexedMinHeap struct {
	slots   []graph.NodeIndex // heap order, len == size
	inverse []int32           // node -> slot, -1 when absent
	keys    []uint32          // node -> key, valid while present
}

// NewIndexedMinHeap creates an empty heap for node indices in [0, n).
func NewIndexedMinHeap(n int) *IndexedMinHeap {
	inverse := make([]int32, n)
	for i := range inverse {
		inverse[i] = -1
	}
	return &IndexedMinHeap{
		slots:   make([]graph.NodeIndex, 0, n),
		inverse: inverse,
		keys:    make([]uint32, n),
	}
}

// Len returns the number of queued nodes.
func (h *IndexedMinHeap) Len() int { return len(h.slots) }

// IsEmpty reports whether no node is queued.
func (h *IndexedMinHeap) IsEmpty() bool { return len(h.slots) == 0 }

// Contains reports whether idx is queued.
func (h *IndexedMinHeap) Contains(idx graph.NodeIndex) bool {
	return h.inverse[h.check(idx)] >= 0
}

// Key returns the key of a queued node.
func (h *IndexedMinHeap) Key(idx graph.NodeIndex) uint32 {
	if !h.Contains(idx) {
		panic(fmt.Sprintf("query: heap key of absent node %d", idx))
	}
	return h.keys[idx]
}

// Insert queues idx with key. Inserting a node that is already queued panics.
func (h *IndexedMinHeap) Insert(idx graph.NodeIndex, key uint32) {
	if h.inverse[h.check(idx)] >= 0 {
		panic(fmt.Sprintf("query: duplicate heap insert of node %d", idx))
	}
	h.keys[idx] = key
	h.slots = append(h.slots, idx)
	h.siftUp(len(h.slots)-1, idx)
}

// DecreaseKey lowers the key of idx, inserting it when absent. Raising the
// key of a queued node panics; passing the current key leaves the heap as is.
func (h *IndexedMinHeap) DecreaseKey(idx graph.NodeIndex, key uint32) {
	slot := h.inverse[h.check(idx)]
	if slot < 0 {
		h.Insert(idx, key)
		return
	}
	if key > h.keys[idx] {
		panic(fmt.Sprintf("query: DecreaseKey raised node %d from %d to %d", idx, h.keys[idx], key))
	}
	h.keys[idx] = key
	h.siftUp(int(slot), idx)
}

// RemoveMin pops the node with the smallest key.
func (h *IndexedMinHeap) RemoveMin() (graph.NodeIndex, uint32) {
	n := len(h.slots)
	if n == 0 {
		panic("query: RemoveMin on empty heap")
	}
	top := h.slots[0]
	key := h.keys[top]
	h.inverse[top] = -1

	last := h.slots[n-1]
	h.slots = h.slots[:n-1]
	if n > 1 {
		h.siftDown(0, last)
	}
	return top, key
}

// Reset empties the heap, keeping its allocations.
func (h *IndexedMinHeap) Reset() {
	for _, idx := range h.slots {
		h.inverse[idx] = -1
	}
	h.slots = h.slots[:0]
}

// siftUp moves idx from slot toward the root. Parents with an equal key
// stay above it.
func (h *IndexedMinHeap) siftUp(slot int, idx graph.NodeIndex) {
	key := h.keys[idx]
	for slot > 0 {
		parent := (slot - 1) / 2
		p := h.slots[parent]
		if key >= h.keys[p] {
			break
		}
		h.slots[slot] = p
		h.inverse[p] = int32(slot)
		slot = parent
	}
	h.slots[slot] = idx
	h.inverse[idx] = int32(slot)
}

// siftDown places idx at slot and moves it toward the leaves, following the
// smaller child (left on ties).
func (h *IndexedMinHeap) siftDown(slot int, idx graph.NodeIndex) {
	n := len(h.slots)
	key := h.keys[idx]
	for {
		child := 2*slot + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.keys[h.slots[right]] < h.keys[h.slots[child]] {
			child = right
		}
		c := h.slots[child]
		if key <= h.keys[c] {
			break
		}
		h.slots[slot] = c
		h.inverse[c] = int32(slot)
		slot = child
	}
	h.slots[slot] = idx
	h.inverse[idx] = int32(slot)
}

func (h *IndexedMinHeap) check(idx graph.NodeIndex) graph.NodeIndex {
	if int(idx) >= len(h.inverse) {
		panic(fmt.Sprintf("query: heap index %d out of range [0, %d)", idx, len(h.inverse)))
	}
	return idx
}
