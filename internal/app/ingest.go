package app

import (
	"sort"

	"github.com/DavidVonDerau/merged-lands/internal/adapters/esp"
	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
	"github.com/DavidVonDerau/merged-lands/internal/domain/remap"
)

// localTextures lifts a plugin's LTEX declarations into the remapper's input
// form. TES3 land textures carry no form id of their own, so FormID is left
// empty and textures are keyed by filename alone: same-named textures from
// different plugins share one global id.
func localTextures(p *esp.Plugin) []remap.LocalTexture {
	out := make([]remap.LocalTexture, 0, len(p.LandTextures))
	for _, t := range p.LandTextures {
		out = append(out, remap.LocalTexture{
			LocalID:  t.LocalID,
			EditorID: t.EditorID,
			Filename: t.Filename,
		})
	}
	return out
}

// materialize converts a plugin's LAND records into landscapes with texture
// grids translated to global ids, sorted by cell coordinate. A later record
// for the same coordinate within one plugin wins, mirroring how the game
// resolves duplicates.
func materialize(p *esp.Plugin, mapping remap.Mapping) []*landscape.Landscape {
	byCoord := make(map[landscape.CellCoord]*landscape.Landscape, len(p.Landscapes))
	for i := range p.Landscapes {
		rec := &p.Landscapes[i]
		cell := &landscape.Landscape{
			Coord:        rec.Coord,
			SourcePlugin: p.Name,
			Height:       rec.Heights,
			Normals:      rec.Normals,
			Colors:       rec.Colors,
			WorldMap:     rec.WorldMap,
		}
		if rec.RawTextures != nil {
			cell.Textures = mapping.Translate(rec.RawTextures)
		}
		byCoord[rec.Coord] = cell
	}

	out := make([]*landscape.Landscape, 0, len(byCoord))
	for _, cell := range byCoord {
		out = append(out, cell)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Coord.Less(out[j].Coord) })
	return out
}
