package landscape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureTable_InternDeduplicates(t *testing.T) {
	t.Parallel()

	table := NewTextureTable()

	id1, err := table.Intern(NewTextureKey("Textures\\Sand.dds", ""), "sand", "Textures\\Sand.dds")
	require.NoError(t, err)
	id2, err := table.Intern(NewTextureKey("textures\\sand.DDS", ""), "sand_again", "textures\\sand.DDS")
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "case-insensitive filename dedup")
	assert.Equal(t, 1, table.Len())

	entry, ok := table.Lookup(id1)
	require.True(t, ok)
	assert.Equal(t, "sand", entry.EditorID, "first declaration wins")
}

func TestTextureTable_FormIDSeparatesSameFilename(t *testing.T) {
	t.Parallel()

	table := NewTextureTable()

	id1, err := table.Intern(NewTextureKey("rock.dds", "Morrowind"), "rock_a", "rock.dds")
	require.NoError(t, err)
	id2, err := table.Intern(NewTextureKey("rock.dds", "Tribunal"), "rock_b", "rock.dds")
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, table.Len())
}

func TestTextureTable_RejectsWritesAfterFreeze(t *testing.T) {
	t.Parallel()

	table := NewTextureTable()
	existing, err := table.Intern(NewTextureKey("grass.dds", ""), "grass", "grass.dds")
	require.NoError(t, err)

	table.Freeze()

	_, err = table.Intern(NewTextureKey("new.dds", ""), "new", "new.dds")
	assert.Error(t, err)

	// Lookups of existing keys still work after freeze.
	again, err := table.Intern(NewTextureKey("grass.dds", ""), "grass", "grass.dds")
	require.NoError(t, err)
	assert.Equal(t, existing, again)
}

func TestTextureTable_LookupZeroIsDefault(t *testing.T) {
	t.Parallel()

	table := NewTextureTable()
	_, ok := table.Lookup(0)
	assert.False(t, ok, "id 0 is the implicit default texture")
}

func TestLandmass_CoordsAreStable(t *testing.T) {
	t.Parallel()

	m := NewLandmass(NewTextureTable())
	for _, c := range []CellCoord{{X: 1, Y: 1}, {X: -2, Y: 0}, {X: 0, Y: -5}, {X: 3, Y: 0}} {
		m.Put(&Landscape{Coord: c})
	}

	want := []CellCoord{{X: 0, Y: -5}, {X: -2, Y: 0}, {X: 3, Y: 0}, {X: 1, Y: 1}}
	assert.Equal(t, want, m.Coords())
}

func TestLandmass_CloneSharesTable(t *testing.T) {
	t.Parallel()

	table := NewTextureTable()
	m := NewLandmass(table)
	cell := &Landscape{Coord: CellCoord{X: 0, Y: 0}, Height: &HeightField{}}
	cell.Height.Heights[5][5] = 7
	m.Put(cell)

	clone := m.Clone()
	clone.Get(CellCoord{X: 0, Y: 0}).Height.Heights[5][5] = 100

	assert.Equal(t, int32(7), m.Get(CellCoord{X: 0, Y: 0}).Height.Heights[5][5])
	assert.Same(t, table, clone.Textures)
}
