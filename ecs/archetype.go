package ecs

// Archetype is a storage partition holding every entity that carries
// exactly one specific component-set mask. Rows are opaque byte blocks of
// width Stride, laid out by the world in canonical ascending-ordinal order;
// the archetype itself only knows the mask, for comparison by the world and
// query engine, and the stride, for hive sizing.
type Archetype struct {
	ordinal int
	mask    Mask
	stride  uintptr
	hive    *Hive
}

func newArchetype(ordinal int, mask Mask, stride uintptr) *Archetype {
	return &Archetype{
		ordinal: ordinal,
		mask:    mask,
		stride:  stride,
		hive:    NewHive(stride),
	}
}

// Ordinal returns this archetype's position in the world's archetype list.
func (a *Archetype) Ordinal() int { return a.ordinal }

// Mask returns the component-set this archetype stores.
func (a *Archetype) Mask() Mask { return a.mask }

// Stride returns the row width in bytes.
func (a *Archetype) Stride() uintptr { return a.stride }

// LiveCount returns the number of currently-live rows in this archetype.
func (a *Archetype) LiveCount() int { return a.hive.LiveCount() }

// ChunkCount returns the number of hive chunks this archetype has grown to.
func (a *Archetype) ChunkCount() int { return a.hive.ChunkCount() }

// Insert copies row (which must be exactly Stride bytes) into a freshly
// allocated hive slot and returns its stable index.
func (a *Archetype) Insert(row []byte) HiveIndex {
	if uintptr(len(row)) != a.stride {
		panic("ecs: row width does not match archetype stride")
	}
	idx, dst := a.hive.Allocate()
	copy(dst[:a.stride], row)
	return idx
}

// At returns the Stride-byte span for the row at idx.
func (a *Archetype) At(idx HiveIndex) []byte {
	return a.hive.Get(idx)[:a.stride]
}

// Free releases the row at idx back to the archetype's hive.
func (a *Archetype) Free(idx HiveIndex) {
	a.hive.Free(idx)
}

// Iterate walks every live row in this archetype, in hive chunk-then-slot
// order.
func (a *Archetype) Iterate(yield func(HiveIndex, []byte) bool) {
	stride := a.stride
	a.hive.Iterate(func(idx HiveIndex, row []byte) bool {
		return yield(idx, row[:stride])
	})
}
