package landscape

// HeightField stores absolute vertex heights in VHGT units. The on-disk form
// is a float32 offset plus row-cumulative signed byte deltas; decoding to
// absolutes up front keeps comparison and merging free of storage artifacts.
type HeightField struct {
	// Heights[row][col], row-major, absolute values.
	Heights [GridSize][GridSize]int32

	// Offset is the on-disk base value. Reused verbatim when re-encoding an
	// untouched cell so the bytes round-trip.
	Offset float32

	// Trailer holds the three bytes that pad the VHGT subrecord. Their
	// content is not meaningful but must survive a round trip.
	Trailer [3]byte
}

// NormalField stores per-vertex surface normals as signed byte vectors.
type NormalField [GridSize][GridSize][3]int8

// ColorField stores per-vertex RGB vertex colors.
type ColorField [GridSize][GridSize][3]uint8

// IndexField stores per-patch texture indices. Values are global texture ids
// in the 1-based convention: 0 is the default ground texture, k > 0 refers to
// the global table entry with id k.
type IndexField [TextureGridSize][TextureGridSize]uint16

// MapField stores the 9x9 overworld map tile bytes.
type MapField [WorldMapSize][WorldMapSize]uint8

// VertexMask marks vertex positions in a GridSize x GridSize layer.
type VertexMask [GridSize][GridSize]bool

// TextureMask marks positions in a texture index grid.
type TextureMask [TextureGridSize][TextureGridSize]bool

// WorldMapMask marks positions in a world map grid.
type WorldMapMask [WorldMapSize][WorldMapSize]bool

// Any reports whether at least one position is marked.
func (m *VertexMask) Any() bool {
	for i := range m {
		for j := range m[i] {
			if m[i][j] {
				return true
			}
		}
	}
	return false
}

// Any reports whether at least one position is marked.
func (m *TextureMask) Any() bool {
	for i := range m {
		for j := range m[i] {
			if m[i][j] {
				return true
			}
		}
	}
	return false
}

// Any reports whether at least one position is marked.
func (m *WorldMapMask) Any() bool {
	for i := range m {
		for j := range m[i] {
			if m[i][j] {
				return true
			}
		}
	}
	return false
}

// DecodeHeights reconstructs absolute heights from the storage convention:
// a running value starts at the offset, accumulates the first column
// downward, and each row then accumulates rightward from its first column.
func DecodeHeights(offset float32, deltas *[GridSize][GridSize]int8, trailer [3]byte) *HeightField {
	f := &HeightField{Offset: offset, Trailer: trailer}
	col := int32(offset)
	for i := 0; i < GridSize; i++ {
		col += int32(deltas[i][0])
		row := col
		f.Heights[i][0] = row
		for j := 1; j < GridSize; j++ {
			row += int32(deltas[i][j])
			f.Heights[i][j] = row
		}
	}
	return f
}

// EncodeHeights derives the storage-convention deltas for the field's
// absolute heights against its Offset. Deltas that do not fit a signed byte
// are clamped; clamped reports whether any were.
func (f *HeightField) EncodeHeights() (deltas [GridSize][GridSize]int8, clamped bool) {
	prev := int32(f.Offset)
	for i := 0; i < GridSize; i++ {
		d, c := clampDelta(f.Heights[i][0] - prev)
		deltas[i][0] = d
		clamped = clamped || c
		prev = f.Heights[i][0]
		row := f.Heights[i][0]
		for j := 1; j < GridSize; j++ {
			d, c := clampDelta(f.Heights[i][j] - row)
			deltas[i][j] = d
			clamped = clamped || c
			row = f.Heights[i][j]
		}
	}
	return deltas, clamped
}

// Rebase sets the offset to the height of vertex (0,0) so an edited cell
// encodes from a clean base.
func (f *HeightField) Rebase() {
	f.Offset = float32(f.Heights[0][0])
}

func clampDelta(d int32) (int8, bool) {
	if d > 127 {
		return 127, true
	}
	if d < -128 {
		return -128, true
	}
	return int8(d), false
}
