package bitset

import "testing"

func TestZero(t *testing.T) {
	var s Set
	if n := s.Len(); n != 0 {
		t.Fatalf("Set{}.Len:\nhave %d\nwant 0", n)
	}
	if n := s.Done(); n != 0 {
		t.Fatalf("Set{}.Done:\nhave %d\nwant 0", n)
	}
}

func TestGrow(t *testing.T) {
	var s Set
	if i := s.Grow(0); i != 0 {
		t.Fatalf("Set.Grow(0):\nhave %d\nwant 0", i)
	}
	if n := s.Len(); n != 0 {
		t.Fatalf("Set.Grow(0): Len:\nhave %d\nwant 0", n)
	}

	if i := s.Grow(2); i != 0 {
		t.Fatalf("Set.Grow(2):\nhave %d\nwant 0", i)
	}
	if n := s.Len(); n != 128 {
		t.Fatalf("Set.Grow(2): Len:\nhave %d\nwant 128", n)
	}
	if n := s.Done(); n != 128 {
		t.Fatalf("Set.Grow(2): Done:\nhave %d\nwant 128", n)
	}

	if i := s.Grow(1); i != 128 {
		t.Fatalf("Set.Grow(1):\nhave %d\nwant 128", i)
	}
	if n := s.Len(); n != 192 {
		t.Fatalf("Set.Grow(1): Len:\nhave %d\nwant 192", n)
	}
}

// TestWorkerPoolLifecycle mirrors how render.Renderer drives the set:
// Grow reserves whole 64-slot words covering every worker (slots past
// the last worker stay counted as done), every worker's slot is marked
// live at pool start, and the pool is Finished only once every worker
// has marked its own slot done.
func TestWorkerPoolLifecycle(t *testing.T) {
	const numWorkers = 5
	var s Set
	s.Grow((numWorkers + 63) / 64)

	for i := 0; i < numWorkers; i++ {
		s.MarkLive(i)
	}
	if n := s.Done(); n != s.Len()-numWorkers {
		t.Fatalf("after MarkLive all: Done:\nhave %d\nwant %d", n, s.Len()-numWorkers)
	}
	if finished := s.Done() == s.Len(); finished {
		t.Fatalf("after MarkLive all: finished:\nhave %v\nwant false", finished)
	}

	for i := 0; i < numWorkers-1; i++ {
		s.MarkDone(i)
	}
	if n := s.Done(); n != s.Len()-1 {
		t.Fatalf("after MarkDone %d workers: Done:\nhave %d\nwant %d", numWorkers-1, n, s.Len()-1)
	}
	if finished := s.Done() == s.Len(); finished {
		t.Fatalf("with one worker still live: finished:\nhave %v\nwant false", finished)
	}

	s.MarkDone(numWorkers - 1)
	if finished := s.Done() == s.Len(); !finished {
		t.Fatalf("after all workers MarkDone: finished:\nhave %v\nwant true", finished)
	}
}

func TestMarkIdempotent(t *testing.T) {
	var s Set
	s.Grow(1)
	s.MarkLive(3)
	s.MarkLive(3)
	if n := s.Done(); n != 63 {
		t.Fatalf("double MarkLive: Done:\nhave %d\nwant 63", n)
	}
	s.MarkDone(3)
	s.MarkDone(3)
	if n := s.Done(); n != 64 {
		t.Fatalf("double MarkDone: Done:\nhave %d\nwant 64", n)
	}
}

func TestMarkSpansWords(t *testing.T) {
	var s Set
	s.Grow(2)
	s.MarkLive(0)
	s.MarkLive(64)
	s.MarkLive(127)
	if n := s.Done(); n != 128-3 {
		t.Fatalf("MarkLive across words: Done:\nhave %d\nwant %d", n, 128-3)
	}
	s.MarkDone(64)
	if n := s.Done(); n != 128-2 {
		t.Fatalf("MarkDone across words: Done:\nhave %d\nwant %d", n, 128-2)
	}
}
