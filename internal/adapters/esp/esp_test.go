package esp

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

func fullCell(coord landscape.CellCoord) *landscape.Landscape {
	cell := &landscape.Landscape{Coord: coord, SourcePlugin: "test"}

	cell.Height = &landscape.HeightField{Offset: 16, Trailer: [3]byte{0xAA, 0xBB, 0xCC}}
	v := int32(16)
	for i := 0; i < landscape.GridSize; i++ {
		for j := 0; j < landscape.GridSize; j++ {
			cell.Height.Heights[i][j] = v + int32((i*3+j*5)%40)
		}
	}

	cell.Normals = &landscape.NormalField{}
	cell.Colors = &landscape.ColorField{}
	cell.WorldMap = &landscape.MapField{}
	cell.Textures = &landscape.IndexField{}
	for i := 0; i < landscape.GridSize; i++ {
		for j := 0; j < landscape.GridSize; j++ {
			cell.Normals[i][j] = [3]int8{0, 0, 127}
			cell.Colors[i][j] = [3]uint8{uint8(i), uint8(j), 128}
		}
	}
	for i := 0; i < landscape.TextureGridSize; i++ {
		for j := 0; j < landscape.TextureGridSize; j++ {
			cell.Textures[i][j] = uint16((i + j) % 3)
		}
	}
	for i := 0; i < landscape.WorldMapSize; i++ {
		for j := 0; j < landscape.WorldMapSize; j++ {
			cell.WorldMap[i][j] = uint8(i*9 + j)
		}
	}
	return cell
}

func testLandmass(t *testing.T) *landscape.Landmass {
	t.Helper()

	table := landscape.NewTextureTable()
	_, err := table.Intern(landscape.NewTextureKey("tx_sand.dds", ""), "sand", "tx_sand.dds")
	require.NoError(t, err)
	_, err = table.Intern(landscape.NewTextureKey("tx_rock.dds", ""), "rock", "tx_rock.dds")
	require.NoError(t, err)

	m := landscape.NewLandmass(table)
	m.Put(fullCell(landscape.CellCoord{X: -1, Y: 2}))
	m.Put(fullCell(landscape.CellCoord{X: 0, Y: 0}))
	return m
}

func TestSerializeParse_RoundTrip(t *testing.T) {
	t.Parallel()

	m := testLandmass(t)
	meta := OutputMeta{
		Author:      "merged-lands",
		Description: "two cells",
		Masters:     []Master{{Name: "Morrowind.esm", Size: 12345}},
	}

	data, warnings := Serialize(m, meta)
	require.Empty(t, warnings)

	plugin, parseWarnings, err := Parse("Merged Lands", data)
	require.NoError(t, err)
	require.Empty(t, parseWarnings)

	assert.Equal(t, "merged-lands", plugin.Author)
	assert.Equal(t, "two cells", plugin.Description)
	assert.Equal(t, []string{"Morrowind.esm"}, plugin.Masters)
	require.Len(t, plugin.LandTextures, 2)
	assert.Equal(t, uint32(0), plugin.LandTextures[0].LocalID)
	assert.Equal(t, "tx_sand.dds", plugin.LandTextures[0].Filename)
	require.Len(t, plugin.Landscapes, 2)

	// Parse back into a landmass and re-serialize: bytes must be identical.
	table := landscape.NewTextureTable()
	for _, lt := range plugin.LandTextures {
		_, err := table.Intern(landscape.NewTextureKey(lt.Filename, ""), lt.EditorID, lt.Filename)
		require.NoError(t, err)
	}
	m2 := landscape.NewLandmass(table)
	for i := range plugin.Landscapes {
		rec := &plugin.Landscapes[i]
		cell := &landscape.Landscape{
			Coord:    rec.Coord,
			Height:   rec.Heights,
			Normals:  rec.Normals,
			Colors:   rec.Colors,
			WorldMap: rec.WorldMap,
		}
		tex := landscape.IndexField(*rec.RawTextures)
		cell.Textures = &tex
		m2.Put(cell)
	}

	data2, warnings2 := Serialize(m2, meta)
	require.Empty(t, warnings2)
	assert.True(t, bytes.Equal(data, data2), "unedited round trip must be byte-identical")
}

func TestParse_ReconstructsHeights(t *testing.T) {
	t.Parallel()

	m := testLandmass(t)
	orig := m.Get(landscape.CellCoord{X: 0, Y: 0})
	data, _ := Serialize(m, OutputMeta{})

	plugin, _, err := Parse("p", data)
	require.NoError(t, err)

	var got *LandRecord
	for i := range plugin.Landscapes {
		if plugin.Landscapes[i].Coord == orig.Coord {
			got = &plugin.Landscapes[i]
		}
	}
	require.NotNil(t, got)
	require.NotNil(t, got.Heights)
	assert.Equal(t, orig.Height.Heights, got.Heights.Heights)
	assert.Equal(t, orig.Height.Trailer, got.Heights.Trailer)
}

func TestParse_TruncatedRecordFailsPlugin(t *testing.T) {
	t.Parallel()

	m := testLandmass(t)
	data, _ := Serialize(m, OutputMeta{})

	_, _, err := Parse("broken", data[:len(data)-10])
	require.Error(t, err)

	var ue *landscape.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, landscape.ErrCodePluginMalformed, ue.Code)
}

func TestParse_WrongLayerSizeSkipsLayerOnly(t *testing.T) {
	t.Parallel()

	// A LAND record with a valid INTV but a short VCLR subrecord.
	var body bytes.Buffer
	var intv [8]byte
	binary.LittleEndian.PutUint32(intv[0:4], uint32(3))
	binary.LittleEndian.PutUint32(intv[4:8], uint32(4))
	writeSubrecord(&body, subINTV, intv[:])
	writeSubrecord(&body, subVCLR, make([]byte, 100))

	var file bytes.Buffer
	writeRecord(&file, tagLAND, body.Bytes())

	plugin, warnings, err := Parse("p", file.Bytes())
	require.NoError(t, err)
	require.Len(t, plugin.Landscapes, 1)
	assert.Nil(t, plugin.Landscapes[0].Colors)
	assert.Equal(t, landscape.CellCoord{X: 3, Y: 4}, plugin.Landscapes[0].Coord)

	require.Len(t, warnings, 1)
	assert.Equal(t, landscape.ErrCodeLayerShape, warnings[0].Code)
}

func TestParse_SkipsUnknownRecords(t *testing.T) {
	t.Parallel()

	var file bytes.Buffer
	writeRecord(&file, "NPC_", []byte{1, 2, 3})
	writeRecord(&file, "GLOB", nil)

	plugin, warnings, err := Parse("p", file.Bytes())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 2, plugin.SkippedRecords)
}

func TestStemAndIsMaster(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Clean Roads", Stem("Clean Roads.esp"))
	assert.True(t, IsMaster("Morrowind.ESM"))
	assert.False(t, IsMaster("Mod.esp"))
}
