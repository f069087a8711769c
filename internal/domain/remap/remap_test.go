package remap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

func TestIngest_SharesGlobalIDsAcrossPlugins(t *testing.T) {
	t.Parallel()

	table := landscape.NewTextureTable()
	r := New(table)

	a, err := r.Ingest([]LocalTexture{
		{LocalID: 0, EditorID: "sand", Filename: "tx_sand.dds"},
		{LocalID: 1, EditorID: "rock", Filename: "tx_rock.dds"},
	})
	require.NoError(t, err)

	// Second plugin declares the same textures under different local ids.
	b, err := r.Ingest([]LocalTexture{
		{LocalID: 5, EditorID: "rock2", Filename: "TX_ROCK.DDS"},
		{LocalID: 6, EditorID: "grass", Filename: "tx_grass.dds"},
	})
	require.NoError(t, err)

	assert.Equal(t, a[1], b[5], "same filename resolves to the same global id")
	assert.Equal(t, 3, table.Len())
}

func TestTranslate_ConvertsOneBasedLocals(t *testing.T) {
	t.Parallel()

	table := landscape.NewTextureTable()
	r := New(table)
	mapping, err := r.Ingest([]LocalTexture{
		{LocalID: 0, EditorID: "sand", Filename: "tx_sand.dds"},
	})
	require.NoError(t, err)

	var raw [landscape.TextureGridSize][landscape.TextureGridSize]uint16
	raw[0][0] = 1 // local id 0 in the 1-based on-disk form
	raw[0][1] = 0 // default texture
	raw[0][2] = 9 // undeclared local id

	grid := mapping.Translate(&raw)

	assert.Equal(t, uint16(mapping[0]), grid[0][0])
	assert.Equal(t, uint16(0), grid[0][1])
	assert.Equal(t, uint16(0), grid[0][2], "undeclared locals fall back to the default texture")
}
