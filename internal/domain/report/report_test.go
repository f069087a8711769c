package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
	"github.com/DavidVonDerau/merged-lands/internal/domain/merge"
)

func TestSeverityColor_Palette(t *testing.T) {
	t.Parallel()

	assert.Equal(t, [4]byte{0, 200, 0, 255}, SeverityColor(merge.SeverityNone))
	assert.Equal(t, [4]byte{230, 200, 0, 255}, SeverityColor(merge.SeverityMinor))
	assert.Equal(t, [4]byte{220, 0, 0, 255}, SeverityColor(merge.SeverityMajor))
}

func TestBuild_EmitsOnlyOwnedLayers(t *testing.T) {
	t.Parallel()

	coord := landscape.CellCoord{X: 1, Y: 2}
	prov := make(merge.Provenance)
	cp := prov.Cell(coord)
	cp.Heights[3][4] = merge.Origin{Plugin: "mod_a", Severity: merge.SeverityMinor}
	cp.Textures[0][0] = merge.Origin{Plugin: "mod_b", Severity: merge.SeverityMajor}

	images := Build(prov, []string{"mod_a", "mod_b"})
	require.Len(t, images, 2)

	assert.Equal(t, "mod_a", images[0].Plugin)
	assert.Equal(t, "height_map", images[0].Layer)
	assert.Equal(t, coord, images[0].Coord)
	assert.Equal(t, landscape.GridSize, images[0].Image.Width)

	assert.Equal(t, "mod_b", images[1].Plugin)
	assert.Equal(t, "texture_indices", images[1].Layer)
	assert.Equal(t, landscape.TextureGridSize, images[1].Image.Width)
}

func TestBuild_PixelEncoding(t *testing.T) {
	t.Parallel()

	coord := landscape.CellCoord{X: 0, Y: 0}
	prov := make(merge.Provenance)
	cp := prov.Cell(coord)
	cp.Heights[0][0] = merge.Origin{Plugin: "mod_a", Severity: merge.SeverityMajor}

	images := Build(prov, []string{"mod_a"})
	require.Len(t, images, 1)
	img := images[0].Image

	// Row 0 of the grid is the southern edge; it renders at the bottom.
	bottomLeft := ((landscape.GridSize - 1) * landscape.GridSize) * 4
	assert.Equal(t, []byte{220, 0, 0, 255}, img.Pixels[bottomLeft:bottomLeft+4])

	// Untouched vertices stay transparent.
	assert.Equal(t, []byte{0, 0, 0, 0}, img.Pixels[0:4])
}

func TestMerged_OneImagePerCell(t *testing.T) {
	t.Parallel()

	m := landscape.NewLandmass(landscape.NewTextureTable())
	cell := &landscape.Landscape{Coord: landscape.CellCoord{X: 0, Y: 0}, Height: &landscape.HeightField{}}
	m.Put(cell)
	m.Put(&landscape.Landscape{Coord: landscape.CellCoord{X: 1, Y: 0}})

	images := Merged(m)
	require.Len(t, images, 2)
	assert.Equal(t, MergedLayer, images[0].Layer)
	assert.Empty(t, images[0].Plugin)
	assert.Len(t, images[0].Image.Pixels, landscape.GridSize*landscape.GridSize*4)
}

func TestDebugColors_PaintsTouchedVertices(t *testing.T) {
	t.Parallel()

	coord := landscape.CellCoord{X: 0, Y: 0}
	m := landscape.NewLandmass(landscape.NewTextureTable())
	cell := &landscape.Landscape{Coord: coord}
	m.Put(cell)

	prov := make(merge.Provenance)
	prov.Cell(coord).Heights[5][6] = merge.Origin{Plugin: "mod_a", Severity: merge.SeverityMinor}

	DebugColors(m, prov)

	require.NotNil(t, cell.Colors)
	assert.Equal(t, [3]uint8{230, 200, 0}, cell.Colors[5][6])
	assert.Equal(t, [3]uint8{0, 0, 0}, cell.Colors[0][0], "untouched vertices keep their color")
}
