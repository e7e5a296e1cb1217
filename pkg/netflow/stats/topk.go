// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package stats

import (
	"container/heap"
	"sort"
)

// Entry is a keyed value retained by TopK.
type Entry struct {
	Key   string
	Value float64
}

// TopK keeps the k entries with the largest values seen so far.
// Ties on value are broken on key so the selection is deterministic.
type TopK struct {
	k       int
	entries entryHeap
}

// NewTopK returns a TopK retaining k entries. k must be positive.
func NewTopK(k int) *TopK {
	if k <= 0 {
		panic("stats: TopK size must be positive")
	}
	return &TopK{
		k:       k,
		entries: make(entryHeap, 0, k),
	}
}

// Push offers an entry, evicting the smallest retained one when full.
func (t *TopK) Push(key string, value float64) {
	e := Entry{Key: key, Value: value}
	if len(t.entries) < t.k {
		heap.Push(&t.entries, e)
		return
	}
	if less(t.entries[0], e) {
		t.entries[0] = e
		heap.Fix(&t.entries, 0)
	}
}

// Len returns the number of retained entries.
func (t *TopK) Len() int {
	return len(t.entries)
}

// Entries returns the retained entries, largest first.
func (t *TopK) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	sort.Slice(out, func(i, j int) bool {
		return less(out[j], out[i])
	})
	return out
}

func less(a, b Entry) bool {
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return a.Key < b.Key
}

type entryHeap []Entry

func (h entryHeap) Len() int {
	return len(h)
}

func (h entryHeap) Less(i, j int) bool {
	return less(h[i], h[j])
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(Entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
