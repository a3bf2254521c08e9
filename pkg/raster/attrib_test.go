package raster

import "testing"

func TestVertexCacheHitsOnRepeatedIndex(t *testing.T) {
	c := newVertexCache()
	if got := c.lookup(5); got != -1 {
		t.Fatalf("lookup on empty cache = %v, want -1", got)
	}

	c.set(5, 42)
	if got := c.lookup(5); got != 42 {
		t.Errorf("lookup(5) = %v, want 42", got)
	}

	// A collision at the same slot (5 and 21 both map to slot 5) evicts
	// unconditionally.
	c.set(21, 7)
	if got := c.lookup(5); got != -1 {
		t.Errorf("lookup(5) after collision = %v, want -1 (evicted)", got)
	}
	if got := c.lookup(21); got != 7 {
		t.Errorf("lookup(21) = %v, want 7", got)
	}
}

func TestVertexCacheClear(t *testing.T) {
	c := newVertexCache()
	c.set(3, 9)
	c.clear()
	if got := c.lookup(3); got != -1 {
		t.Errorf("lookup(3) after clear = %v, want -1", got)
	}
}

func TestAttribTableBindOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic binding an out-of-range attrib slot")
		}
	}()
	var table attribTable
	table.bind(MaxAttribs, 0, nil)
}
