package raster

import "unsafe"

// attribStream is one bound vertex attribute: a raw strided buffer the
// vertex program knows how to interpret.
type attribStream struct {
	buffer unsafe.Pointer
	stride int
	bound  bool
}

// attribTable holds the MaxAttribs bound streams for the current draw.
type attribTable struct {
	streams [MaxAttribs]attribStream
}

// bind installs a strided buffer at slot. Panics if slot is out of range,
// matching spec.md's "attribute slot out of range fails fatally at bind time."
func (t *attribTable) bind(slot, stride int, buffer unsafe.Pointer) {
	if slot < 0 || slot >= MaxAttribs {
		panic("raster: vertex attrib slot out of range")
	}
	t.streams[slot] = attribStream{buffer: buffer, stride: stride, bound: true}
}

// pointers computes the per-element pointer for each of the first n bound
// attributes at the given element index, for handoff to a VertexProgram.
func (t *attribTable) pointers(n, index int) [MaxAttribs]unsafe.Pointer {
	var in [MaxAttribs]unsafe.Pointer
	for k := 0; k < n; k++ {
		s := t.streams[k]
		in[k] = unsafe.Add(s.buffer, s.stride*index)
	}
	return in
}

// vertexCache is a 16-entry direct-mapped cache from input index to emitted
// vertex index, keyed by input_index mod vertexCacheSize. Collisions evict
// unconditionally.
type vertexCache struct {
	inIdx  [vertexCacheSize]int32
	outIdx [vertexCacheSize]int32
}

func newVertexCache() *vertexCache {
	c := &vertexCache{}
	c.clear()
	return c
}

func (c *vertexCache) clear() {
	for i := range c.inIdx {
		c.inIdx[i] = -1
	}
}

// lookup returns the emitted index for inIdx, or -1 on a miss.
func (c *vertexCache) lookup(inIdx int32) int32 {
	slot := int(inIdx) % vertexCacheSize
	if slot < 0 {
		slot += vertexCacheSize
	}
	if c.inIdx[slot] == inIdx {
		return c.outIdx[slot]
	}
	return -1
}

// set records that inIdx emitted outIdx, evicting whatever previously
// occupied the slot.
func (c *vertexCache) set(inIdx, outIdx int32) {
	slot := int(inIdx) % vertexCacheSize
	if slot < 0 {
		slot += vertexCacheSize
	}
	c.inIdx[slot] = inIdx
	c.outIdx[slot] = outIdx
}
