package ecs

import "unsafe"

// chunkCapacity is the fixed number of slots per chunk.
const chunkCapacity = 1024

// HiveIndex is a stable 32-bit slot identifier packing a chunk ordinal
// (low 16 bits) and a slot ordinal within that chunk (high 16 bits). It
// remains valid for the life of the slot's owning hive: chunks are appended,
// never relocated, so an index handed out by Allocate never moves.
type HiveIndex uint32

func makeHiveIndex(chunk, slot uint16) HiveIndex {
	return HiveIndex(uint32(slot)<<16 | uint32(chunk))
}

func (h HiveIndex) chunk() uint16 {
	return uint16(h & 0xFFFF)
}

func (h HiveIndex) slot() uint16 {
	return uint16(h >> 16)
}

// freeLinkSize is the number of bytes used to thread the free list through a
// freed slot's payload. A chunk's stride is always at least this wide so a
// freed slot can always hold the link.
const freeLinkSize = 4

const noFree uint32 = 0xFFFFFFFF

type hiveChunk struct {
	data     []byte
	live     []bool // per-slot liveness bitmap (Open Question resolution b)
	size     int    // number of slots ever touched (allocated at least once)
	capacity int
}

func newHiveChunk(stride uintptr, capacity int) *hiveChunk {
	return &hiveChunk{
		data:     make([]byte, stride*uintptr(capacity)),
		live:     make([]bool, capacity),
		capacity: capacity,
	}
}

func (c *hiveChunk) slotBytes(stride uintptr, slot int) []byte {
	off := stride * uintptr(slot)
	return c.data[off : off+stride]
}

// Hive is a chunked, fixed-stride slot allocator with a single LIFO free
// list threaded through freed slots' payload bytes. It hands out HiveIndex
// values that remain valid (stable) for the life of the hive: growth always
// appends a new chunk, never reallocates or moves existing chunks.
type Hive struct {
	stride uintptr
	chunks []*hiveChunk
	free   uint32 // encoded HiveIndex of free-list head, or noFree
}

// NewHive constructs a hive whose slots are stride bytes wide. The actual
// per-slot allocation is max(stride, freeLinkSize) so a freed slot can
// always encode the next-free link.
func NewHive(stride uintptr) *Hive {
	if stride < freeLinkSize {
		stride = freeLinkSize
	}
	return &Hive{stride: stride, free: noFree}
}

// Stride returns the byte width of one slot.
func (h *Hive) Stride() uintptr {
	return h.stride
}

// Allocate returns a HiveIndex for a fresh slot and the byte span backing
// it. If the free list is non-empty its head is reused; otherwise the last
// chunk is grown into, appending a new chunk first if the last one is full.
// The REDESIGN FLAG in the reference implementation (hard-abort at the
// 1025th allocation within a chunk) is fixed here: a new chunk is appended
// and allocation continues.
func (h *Hive) Allocate() (HiveIndex, []byte) {
	if h.free != noFree {
		idx := HiveIndex(h.free)
		c := h.chunks[idx.chunk()]
		slot := int(idx.slot())
		row := c.slotBytes(h.stride, slot)
		h.free = decodeFreeLink(row)
		c.live[slot] = true
		return idx, row
	}

	if len(h.chunks) == 0 || h.chunks[len(h.chunks)-1].size == chunkCapacity {
		h.chunks = append(h.chunks, newHiveChunk(h.stride, chunkCapacity))
	}
	c := h.chunks[len(h.chunks)-1]
	slot := c.size
	c.size++
	c.live[slot] = true
	idx := makeHiveIndex(uint16(len(h.chunks)-1), uint16(slot))
	return idx, c.slotBytes(h.stride, slot)
}

// Get resolves idx to the byte span of its slot. Panics if idx is out of
// range or refers to a freed slot.
func (h *Hive) Get(idx HiveIndex) []byte {
	c, slot := h.resolve(idx)
	if !c.live[slot] {
		panic("ecs: InvalidHandle: hive index refers to a freed slot")
	}
	return c.slotBytes(h.stride, slot)
}

// Free returns idx's slot to the free list, overwriting its first bytes
// with the encoded previous free-list head. Freeing an already-freed index
// panics (best-effort DoubleFree detection via the liveness bitmap).
func (h *Hive) Free(idx HiveIndex) {
	c, slot := h.resolve(idx)
	if !c.live[slot] {
		panic("ecs: DoubleFree: hive index already freed")
	}
	c.live[slot] = false
	row := c.slotBytes(h.stride, slot)
	encodeFreeLink(row, h.free)
	h.free = uint32(idx)
}

func (h *Hive) resolve(idx HiveIndex) (*hiveChunk, int) {
	ci, slot := int(idx.chunk()), int(idx.slot())
	if ci < 0 || ci >= len(h.chunks) {
		panic("ecs: InvalidHandle: hive index chunk out of range")
	}
	c := h.chunks[ci]
	if slot < 0 || slot >= c.size {
		panic("ecs: InvalidHandle: hive index slot out of range")
	}
	return c, slot
}

// ChunkCount returns the number of chunks this hive has grown to.
func (h *Hive) ChunkCount() int {
	return len(h.chunks)
}

// LiveCount returns the number of currently-live (allocated, not freed)
// slots across every chunk.
func (h *Hive) LiveCount() int {
	n := 0
	for _, c := range h.chunks {
		for _, live := range c.live {
			if live {
				n++
			}
		}
	}
	return n
}

// Iterate walks every live slot in chunk-then-slot order, skipping freed
// slots. This is the chosen resolution to the "hive iteration past
// deletions" open question: a per-chunk liveness bitmap is consulted
// unconditionally, whether or not any removal has occurred.
func (h *Hive) Iterate(yield func(HiveIndex, []byte) bool) {
	for ci, c := range h.chunks {
		for slot := 0; slot < c.size; slot++ {
			if !c.live[slot] {
				continue
			}
			idx := makeHiveIndex(uint16(ci), uint16(slot))
			if !yield(idx, c.slotBytes(h.stride, slot)) {
				return
			}
		}
	}
}

func encodeFreeLink(row []byte, next uint32) {
	*(*uint32)(unsafe.Pointer(&row[0])) = next
}

func decodeFreeLink(row []byte) uint32 {
	return *(*uint32)(unsafe.Pointer(&row[0]))
}
