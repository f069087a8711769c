// Package diff computes per-layer masked deltas of a plugin's landscape
// records against the reference landmass. Heights compare as reconstructed
// absolutes so the storage convention cannot manufacture spurious diffs;
// every other layer compares element-wise on raw values.
package diff

import (
	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

// Delta is one plugin's changes to one cell. A nil layer means the plugin
// either did not provide it or provided it identical to the reference.
type Delta struct {
	Plugin string
	Coord  landscape.CellCoord
	// NewCell marks a cell with no reference counterpart; every provided
	// layer is fully masked.
	NewCell bool
	// Source is the plugin's materialized cell. The merger adopts it
	// wholesale for new cells and reads encoding metadata from it.
	Source *landscape.Landscape

	Heights  *HeightDelta
	Normals  *NormalDelta
	Colors   *ColorDelta
	Textures *TextureDelta
	WorldMap *MapDelta
}

// HeightDelta holds absolute height values at masked positions.
type HeightDelta struct {
	Values [landscape.GridSize][landscape.GridSize]int32
	Mask   landscape.VertexMask
}

// NormalDelta holds raw normal bytes at masked positions.
type NormalDelta struct {
	Values [landscape.GridSize][landscape.GridSize][3]int8
	Mask   landscape.VertexMask
}

// ColorDelta holds RGB values at masked positions.
type ColorDelta struct {
	Values [landscape.GridSize][landscape.GridSize][3]uint8
	Mask   landscape.VertexMask
}

// TextureDelta holds global texture ids at masked positions.
type TextureDelta struct {
	Values [landscape.TextureGridSize][landscape.TextureGridSize]uint16
	Mask   landscape.TextureMask
}

// MapDelta holds world-map bytes at masked positions.
type MapDelta struct {
	Values [landscape.WorldMapSize][landscape.WorldMapSize]uint8
	Mask   landscape.WorldMapMask
}

// Empty reports whether the delta carries no changed layer at all.
func (d *Delta) Empty() bool {
	return d.Heights == nil && d.Normals == nil && d.Colors == nil &&
		d.Textures == nil && d.WorldMap == nil
}

// Compute diffs one materialized plugin cell against the reference. It
// returns nil when nothing differs; a plugin layer whose every entry matches
// the reference is treated as not touched.
func Compute(plugin string, ref *landscape.Landmass, cell *landscape.Landscape) *Delta {
	d := &Delta{Plugin: plugin, Coord: cell.Coord, Source: cell}

	refCell := ref.Get(cell.Coord)
	if refCell == nil {
		d.NewCell = true
		refCell = &landscape.Landscape{Coord: cell.Coord}
	}

	if cell.Height != nil {
		d.Heights = diffHeights(cell.Height, refCell.Height)
	}
	if cell.Normals != nil {
		d.Normals = diffNormals(cell.Normals, refCell.Normals)
	}
	if cell.Colors != nil {
		d.Colors = diffColors(cell.Colors, refCell.Colors)
	}
	if cell.Textures != nil {
		d.Textures = diffTextures(cell.Textures, refCell.Textures)
	}
	if cell.WorldMap != nil {
		d.WorldMap = diffWorldMap(cell.WorldMap, refCell.WorldMap)
	}

	if d.Empty() {
		return nil
	}
	return d
}

func diffHeights(have, ref *landscape.HeightField) *HeightDelta {
	d := &HeightDelta{}
	any := false
	for i := 0; i < landscape.GridSize; i++ {
		for j := 0; j < landscape.GridSize; j++ {
			v := have.Heights[i][j]
			if ref == nil || ref.Heights[i][j] != v {
				d.Values[i][j] = v
				d.Mask[i][j] = true
				any = true
			}
		}
	}
	if !any {
		return nil
	}
	return d
}

func diffNormals(have, ref *landscape.NormalField) *NormalDelta {
	d := &NormalDelta{}
	any := false
	for i := 0; i < landscape.GridSize; i++ {
		for j := 0; j < landscape.GridSize; j++ {
			if ref == nil || ref[i][j] != have[i][j] {
				d.Values[i][j] = have[i][j]
				d.Mask[i][j] = true
				any = true
			}
		}
	}
	if !any {
		return nil
	}
	return d
}

func diffColors(have, ref *landscape.ColorField) *ColorDelta {
	d := &ColorDelta{}
	any := false
	for i := 0; i < landscape.GridSize; i++ {
		for j := 0; j < landscape.GridSize; j++ {
			if ref == nil || ref[i][j] != have[i][j] {
				d.Values[i][j] = have[i][j]
				d.Mask[i][j] = true
				any = true
			}
		}
	}
	if !any {
		return nil
	}
	return d
}

func diffTextures(have, ref *landscape.IndexField) *TextureDelta {
	d := &TextureDelta{}
	any := false
	for i := 0; i < landscape.TextureGridSize; i++ {
		for j := 0; j < landscape.TextureGridSize; j++ {
			if ref == nil || ref[i][j] != have[i][j] {
				d.Values[i][j] = have[i][j]
				d.Mask[i][j] = true
				any = true
			}
		}
	}
	if !any {
		return nil
	}
	return d
}

func diffWorldMap(have, ref *landscape.MapField) *MapDelta {
	d := &MapDelta{}
	any := false
	for i := 0; i < landscape.WorldMapSize; i++ {
		for j := 0; j < landscape.WorldMapSize; j++ {
			if ref == nil || ref[i][j] != have[i][j] {
				d.Values[i][j] = have[i][j]
				d.Mask[i][j] = true
				any = true
			}
		}
	}
	if !any {
		return nil
	}
	return d
}
