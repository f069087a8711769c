package landscape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHeights_CumulativeConvention(t *testing.T) {
	t.Parallel()

	var deltas [GridSize][GridSize]int8
	deltas[0][0] = 2  // first vertex sits at offset+2
	deltas[0][1] = 3  // row accumulates rightward
	deltas[1][0] = -1 // first column accumulates downward

	f := DecodeHeights(10, &deltas, [3]byte{})

	assert.Equal(t, int32(12), f.Heights[0][0])
	assert.Equal(t, int32(15), f.Heights[0][1])
	assert.Equal(t, int32(15), f.Heights[0][2], "zero delta carries the running value")
	assert.Equal(t, int32(11), f.Heights[1][0])
	assert.Equal(t, int32(11), f.Heights[1][1])
}

func TestEncodeHeights_RoundTrip(t *testing.T) {
	t.Parallel()

	var deltas [GridSize][GridSize]int8
	v := int8(-13)
	for i := range deltas {
		for j := range deltas[i] {
			deltas[i][j] = v
			v += 7 // wraps; any int8 pattern must survive
		}
	}

	f := DecodeHeights(-42.0, &deltas, [3]byte{1, 2, 3})
	got, clamped := f.EncodeHeights()

	assert.False(t, clamped)
	assert.Equal(t, deltas, got)
}

func TestEncodeHeights_ClampsOversizedSteps(t *testing.T) {
	t.Parallel()

	f := &HeightField{}
	f.Heights[0][1] = 500 // one vertex spikes past what an int8 step can hold

	deltas, clamped := f.EncodeHeights()

	assert.True(t, clamped)
	assert.Equal(t, int8(127), deltas[0][1])
}

func TestHeightFieldRebase(t *testing.T) {
	t.Parallel()

	f := &HeightField{Offset: 99}
	f.Heights[0][0] = -7
	f.Rebase()

	assert.Equal(t, float32(-7), f.Offset)

	deltas, clamped := f.EncodeHeights()
	require.False(t, clamped)
	assert.Equal(t, int8(0), deltas[0][0], "rebased cells encode from a clean base")
}

func TestLandscapeClone_IsDeep(t *testing.T) {
	t.Parallel()

	orig := &Landscape{Coord: CellCoord{X: 1, Y: 2}, SourcePlugin: "a"}
	orig.Height = &HeightField{}
	orig.Height.Heights[3][4] = 10
	orig.Colors = &ColorField{}
	orig.Colors[0][0] = [3]uint8{1, 2, 3}

	clone := orig.Clone()
	clone.Height.Heights[3][4] = 99
	clone.Colors[0][0] = [3]uint8{9, 9, 9}

	assert.Equal(t, int32(10), orig.Height.Heights[3][4])
	assert.Equal(t, [3]uint8{1, 2, 3}, orig.Colors[0][0])
	assert.Nil(t, clone.Textures, "absent layers stay absent")
}

func TestVertexMaskAny(t *testing.T) {
	t.Parallel()

	var m VertexMask
	assert.False(t, m.Any())
	m[64][64] = true
	assert.True(t, m.Any())
}
