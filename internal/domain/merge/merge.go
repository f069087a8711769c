package merge

import (
	"github.com/DavidVonDerau/merged-lands/internal/domain/diff"
	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
	"github.com/DavidVonDerau/merged-lands/internal/domain/patch"
)

// DefaultHeightThreshold separates minor from major height disagreements, in
// height-field units.
const DefaultHeightThreshold int32 = 8

// Options tunes the automatic conflict rules.
type Options struct {
	// HeightThreshold is the divergence between two competing height edits
	// above which the conflict is classified major. Zero means the default.
	HeightThreshold int32
}

// Merger owns the merged landmass while deltas are folded in. Deltas must
// arrive in load order; within one delta, vertices are visited row-major.
type Merger struct {
	ref       *landscape.Landmass
	merged    *landscape.Landmass
	prov      Provenance
	policies  *patch.Resolver
	threshold int32
}

// New creates a merger whose merged landmass starts as a deep copy of the
// reference.
func New(ref *landscape.Landmass, policies *patch.Resolver, opts Options) *Merger {
	threshold := opts.HeightThreshold
	if threshold <= 0 {
		threshold = DefaultHeightThreshold
	}
	return &Merger{
		ref:       ref,
		merged:    ref.Clone(),
		prov:      make(Provenance),
		policies:  policies,
		threshold: threshold,
	}
}

// Apply folds one plugin delta into the merged landmass.
func (m *Merger) Apply(d *diff.Delta) {
	cell := m.merged.Get(d.Coord)
	if cell == nil {
		// First plugin to introduce a cell absent from the reference.
		cell = &landscape.Landscape{Coord: d.Coord, SourcePlugin: d.Plugin}
		m.merged.Put(cell)
	}
	refCell := m.ref.Get(d.Coord)
	cp := m.prov.Cell(d.Coord)

	if d.Heights != nil {
		if p := m.policies.Policy(d.Plugin, patch.LayerHeightMap); p.Included {
			m.applyHeights(d, cell, refCell, cp, p.Strategy)
		}
	}
	if d.Normals != nil {
		// Normals carry no policy of their own; the merger only tracks who
		// touched them. Values are recomputed from the heightmap later.
		m.applyNormals(d, cell, cp)
	}
	if d.Colors != nil {
		if p := m.policies.Policy(d.Plugin, patch.LayerVertexColors); p.Included {
			m.applyColors(d, cell, refCell, cp, p.Strategy)
		}
	}
	if d.Textures != nil {
		if p := m.policies.Policy(d.Plugin, patch.LayerTextureIndices); p.Included {
			m.applyTextures(d, cell, cp, p.Strategy)
		}
	}
	if d.WorldMap != nil {
		if p := m.policies.Policy(d.Plugin, patch.LayerWorldMapData); p.Included {
			m.applyWorldMap(d, cell, cp, p.Strategy)
		}
	}
}

// Result hands over the merged landmass and the accumulated provenance.
func (m *Merger) Result() (*landscape.Landmass, Provenance) {
	return m.merged, m.prov
}

func (m *Merger) applyHeights(d *diff.Delta, cell *landscape.Landscape, refCell *landscape.Landscape, cp *CellProvenance, strategy patch.Strategy) {
	if cell.Height == nil {
		// The reference never had this layer here, so the delta mask is
		// full: adopt the plugin's field wholesale.
		h := *d.Source.Height
		cell.Height = &h
		cp.HeightsChanged = true
		for i := 0; i < landscape.GridSize; i++ {
			for j := 0; j < landscape.GridSize; j++ {
				if d.Heights.Mask[i][j] {
					cp.Heights[i][j].take(d.Plugin, SeverityNone)
				}
			}
		}
		return
	}

	for i := 0; i < landscape.GridSize; i++ {
		for j := 0; j < landscape.GridSize; j++ {
			if !d.Heights.Mask[i][j] {
				continue
			}
			incoming := d.Heights.Values[i][j]
			current := cell.Height.Heights[i][j]
			o := &cp.Heights[i][j]

			if !o.Set() {
				cell.Height.Heights[i][j] = incoming
				cp.HeightsChanged = true
				o.take(d.Plugin, SeverityNone)
				continue
			}

			switch strategy {
			case patch.StrategyOverwrite:
				cell.Height.Heights[i][j] = incoming
				cp.HeightsChanged = true
				o.take(d.Plugin, SeverityMinor)
			case patch.StrategyIgnore:
				o.escalate(SeverityMinor)
			case patch.StrategyKeep:
				// Keep the current value and leave provenance untouched.
			default: // auto
				var ref int32
				if refCell != nil && refCell.Height != nil {
					ref = refCell.Height.Heights[i][j]
				}
				sev := SeverityMinor
				if abs32(incoming-current) > m.threshold {
					sev = SeverityMajor
				}
				// The edit that moved further from the reference is the
				// more deliberate one; preserve it.
				if abs32(incoming-ref) <= abs32(current-ref) {
					o.escalate(sev)
				} else {
					cell.Height.Heights[i][j] = incoming
					cp.HeightsChanged = true
					o.take(d.Plugin, sev)
				}
			}
		}
	}
}

func (m *Merger) applyNormals(d *diff.Delta, cell *landscape.Landscape, cp *CellProvenance) {
	if cell.Normals == nil {
		n := *d.Source.Normals
		cell.Normals = &n
		for i := 0; i < landscape.GridSize; i++ {
			for j := 0; j < landscape.GridSize; j++ {
				if d.Normals.Mask[i][j] {
					cp.Normals[i][j].take(d.Plugin, SeverityNone)
				}
			}
		}
		return
	}
	for i := 0; i < landscape.GridSize; i++ {
		for j := 0; j < landscape.GridSize; j++ {
			if !d.Normals.Mask[i][j] {
				continue
			}
			o := &cp.Normals[i][j]
			if !o.Set() {
				cell.Normals[i][j] = d.Normals.Values[i][j]
				o.take(d.Plugin, SeverityNone)
				continue
			}
			cell.Normals[i][j] = d.Normals.Values[i][j]
			o.take(d.Plugin, SeverityMinor)
		}
	}
}

func (m *Merger) applyColors(d *diff.Delta, cell *landscape.Landscape, refCell *landscape.Landscape, cp *CellProvenance, strategy patch.Strategy) {
	if cell.Colors == nil {
		c := *d.Source.Colors
		cell.Colors = &c
		for i := 0; i < landscape.GridSize; i++ {
			for j := 0; j < landscape.GridSize; j++ {
				if d.Colors.Mask[i][j] {
					cp.Colors[i][j].take(d.Plugin, SeverityNone)
				}
			}
		}
		return
	}

	for i := 0; i < landscape.GridSize; i++ {
		for j := 0; j < landscape.GridSize; j++ {
			if !d.Colors.Mask[i][j] {
				continue
			}
			incoming := d.Colors.Values[i][j]
			current := cell.Colors[i][j]
			o := &cp.Colors[i][j]

			if !o.Set() {
				cell.Colors[i][j] = incoming
				o.take(d.Plugin, SeverityNone)
				continue
			}

			switch strategy {
			case patch.StrategyOverwrite:
				cell.Colors[i][j] = incoming
				o.take(d.Plugin, SeverityMinor)
			case patch.StrategyIgnore:
				o.escalate(SeverityMinor)
			case patch.StrategyKeep:
			default: // auto
				var ref [3]uint8
				if refCell != nil && refCell.Colors != nil {
					ref = refCell.Colors[i][j]
				}
				if smallColorEdit(current, ref) && smallColorEdit(incoming, ref) {
					cell.Colors[i][j] = averageColor(current, incoming)
					o.take(d.Plugin, SeverityMinor)
				} else {
					cell.Colors[i][j] = incoming
					o.take(d.Plugin, SeverityMajor)
				}
			}
		}
	}
}

func (m *Merger) applyTextures(d *diff.Delta, cell *landscape.Landscape, cp *CellProvenance, strategy patch.Strategy) {
	if cell.Textures == nil {
		t := *d.Source.Textures
		cell.Textures = &t
		for i := 0; i < landscape.TextureGridSize; i++ {
			for j := 0; j < landscape.TextureGridSize; j++ {
				if d.Textures.Mask[i][j] {
					cp.Textures[i][j].take(d.Plugin, SeverityNone)
				}
			}
		}
		return
	}

	for i := 0; i < landscape.TextureGridSize; i++ {
		for j := 0; j < landscape.TextureGridSize; j++ {
			if !d.Textures.Mask[i][j] {
				continue
			}
			incoming := d.Textures.Values[i][j]
			current := cell.Textures[i][j]
			o := &cp.Textures[i][j]

			if !o.Set() {
				cell.Textures[i][j] = incoming
				o.take(d.Plugin, SeverityNone)
				continue
			}

			switch strategy {
			case patch.StrategyOverwrite:
				cell.Textures[i][j] = incoming
				o.take(d.Plugin, SeverityMinor)
			case patch.StrategyIgnore:
				o.escalate(SeverityMinor)
			case patch.StrategyKeep:
			default: // auto
				// Indices are categorical; the later plugin wins outright.
				sev := SeverityNone
				if current != incoming {
					sev = SeverityMajor
				}
				cell.Textures[i][j] = incoming
				o.take(d.Plugin, sev)
			}
		}
	}
}

func (m *Merger) applyWorldMap(d *diff.Delta, cell *landscape.Landscape, cp *CellProvenance, strategy patch.Strategy) {
	if cell.WorldMap == nil {
		w := *d.Source.WorldMap
		cell.WorldMap = &w
		for i := 0; i < landscape.WorldMapSize; i++ {
			for j := 0; j < landscape.WorldMapSize; j++ {
				if d.WorldMap.Mask[i][j] {
					cp.WorldMap[i][j].take(d.Plugin, SeverityNone)
				}
			}
		}
		return
	}

	for i := 0; i < landscape.WorldMapSize; i++ {
		for j := 0; j < landscape.WorldMapSize; j++ {
			if !d.WorldMap.Mask[i][j] {
				continue
			}
			o := &cp.WorldMap[i][j]
			if !o.Set() {
				cell.WorldMap[i][j] = d.WorldMap.Values[i][j]
				o.take(d.Plugin, SeverityNone)
				continue
			}
			switch strategy {
			case patch.StrategyIgnore:
				o.escalate(SeverityMinor)
			case patch.StrategyKeep:
			default: // auto and overwrite both take the later value
				cell.WorldMap[i][j] = d.WorldMap.Values[i][j]
				o.take(d.Plugin, SeverityMinor)
			}
		}
	}
}

func smallColorEdit(v, ref [3]uint8) bool {
	for k := 0; k < 3; k++ {
		d := int(v[k]) - int(ref[k])
		if d < 0 {
			d = -d
		}
		if d > 32 {
			return false
		}
	}
	return true
}

func averageColor(a, b [3]uint8) [3]uint8 {
	var out [3]uint8
	for k := 0; k < 3; k++ {
		out[k] = uint8((int(a[k]) + int(b[k]) + 1) / 2)
	}
	return out
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
