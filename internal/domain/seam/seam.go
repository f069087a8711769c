// Package seam restores geometric continuity along the shared edges of
// adjacent cells after all merges. It snaps heights and colors to the mean,
// settles categorical texture disagreements by provenance, and recomputes
// normals from the reconciled heightmap. It runs exactly once per run.
package seam

import (
	"math"
	"sort"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
	"github.com/DavidVonDerau/merged-lands/internal/domain/merge"
)

const (
	// vertexSpacing is the world-unit distance between adjacent vertices.
	vertexSpacing = 128.0
	// heightScale converts height-field units to world units.
	heightScale = 8.0
	// normalScale maps a unit component to the signed byte range.
	normalScale = 127.0
)

// Reconciler carries the state of one reconciliation pass.
type Reconciler struct {
	m     *landscape.Landmass
	prov  merge.Provenance
	order map[string]int
}

// New creates a reconciler for the merged landmass. The load order feeds the
// categorical tie-breaks; provenance severities feed the texture rule.
func New(m *landscape.Landmass, prov merge.Provenance, loadOrder []string) *Reconciler {
	order := make(map[string]int, len(loadOrder))
	for i, p := range loadOrder {
		order[p] = i
	}
	return &Reconciler{m: m, prov: prov, order: order}
}

// Reconcile runs the full pass: edge snapping, corner settlement, then a
// global normal recomputation over every cell whose heights moved.
func (r *Reconciler) Reconcile() []*landscape.UserError {
	var warnings []*landscape.UserError

	coords := r.m.Coords()
	for _, c := range coords {
		r.reconcileEastEdge(c)
		r.reconcileNorthEdge(c)
	}
	for _, key := range r.cornerKeys(coords) {
		warnings = append(warnings, r.reconcileCorner(key)...)
	}
	r.recomputeNormals()
	r.rebaseChanged()

	return warnings
}

// reconcileEastEdge equalizes the interior of the shared column between a
// cell and its eastern neighbor. Endpoints belong to the corner pass.
func (r *Reconciler) reconcileEastEdge(c landscape.CellCoord) {
	a := r.m.Get(c)
	b := r.m.Get(c.East())
	if a == nil || b == nil {
		return
	}

	if a.Height != nil && b.Height != nil {
		for row := 1; row < landscape.GridSize-1; row++ {
			va := a.Height.Heights[row][landscape.GridSize-1]
			vb := b.Height.Heights[row][0]
			if va == vb {
				continue
			}
			mean := roundMean(va, vb)
			a.Height.Heights[row][landscape.GridSize-1] = mean
			b.Height.Heights[row][0] = mean
			r.markHeightsChanged(c, va != mean)
			r.markHeightsChanged(c.East(), vb != mean)
		}
	}

	if a.Colors != nil && b.Colors != nil {
		for row := 1; row < landscape.GridSize-1; row++ {
			va := a.Colors[row][landscape.GridSize-1]
			vb := b.Colors[row][0]
			if va == vb {
				continue
			}
			mean := meanColor(va, vb)
			a.Colors[row][landscape.GridSize-1] = mean
			b.Colors[row][0] = mean
		}
	}

	if a.Textures != nil && b.Textures != nil {
		for row := 0; row < landscape.TextureGridSize; row++ {
			r.settleTexturePair(
				c, a, row, landscape.TextureGridSize-1,
				c.East(), b, row, 0,
			)
		}
	}
}

// reconcileNorthEdge equalizes the interior of the shared row between a cell
// and its northern neighbor.
func (r *Reconciler) reconcileNorthEdge(c landscape.CellCoord) {
	a := r.m.Get(c)
	b := r.m.Get(c.North())
	if a == nil || b == nil {
		return
	}

	if a.Height != nil && b.Height != nil {
		for col := 1; col < landscape.GridSize-1; col++ {
			va := a.Height.Heights[landscape.GridSize-1][col]
			vb := b.Height.Heights[0][col]
			if va == vb {
				continue
			}
			mean := roundMean(va, vb)
			a.Height.Heights[landscape.GridSize-1][col] = mean
			b.Height.Heights[0][col] = mean
			r.markHeightsChanged(c, va != mean)
			r.markHeightsChanged(c.North(), vb != mean)
		}
	}

	if a.Colors != nil && b.Colors != nil {
		for col := 1; col < landscape.GridSize-1; col++ {
			va := a.Colors[landscape.GridSize-1][col]
			vb := b.Colors[0][col]
			if va == vb {
				continue
			}
			mean := meanColor(va, vb)
			a.Colors[landscape.GridSize-1][col] = mean
			b.Colors[0][col] = mean
		}
	}

	if a.Textures != nil && b.Textures != nil {
		for col := 0; col < landscape.TextureGridSize; col++ {
			r.settleTexturePair(
				c, a, landscape.TextureGridSize-1, col,
				c.North(), b, 0, col,
			)
		}
	}
}

// cornerSite is one cell's view of a four-corner meeting point.
type cornerSite struct {
	coord landscape.CellCoord
	cell  *landscape.Landscape
	row   int
	col   int
}

// cornerKeys enumerates every distinct corner meeting point incident to the
// landmass, keyed by the coordinate of the point's south-west cell. Every
// cell contributes all four of its grid corners, so seam endpoints are
// covered even when the key cell itself is absent.
func (r *Reconciler) cornerKeys(coords []landscape.CellCoord) []landscape.CellCoord {
	seen := make(map[landscape.CellCoord]bool, len(coords)*4)
	for _, c := range coords {
		seen[c] = true
		seen[landscape.CellCoord{X: c.X - 1, Y: c.Y}] = true
		seen[landscape.CellCoord{X: c.X, Y: c.Y - 1}] = true
		seen[landscape.CellCoord{X: c.X - 1, Y: c.Y - 1}] = true
	}
	keys := make([]landscape.CellCoord, 0, len(seen))
	for c := range seen {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// reconcileCorner settles the meeting point north-east of the key cell
// across every present neighbor.
func (r *Reconciler) reconcileCorner(c landscape.CellCoord) []*landscape.UserError {
	last := landscape.GridSize - 1
	sites := make([]cornerSite, 0, 4)
	for _, s := range []cornerSite{
		{coord: c, row: last, col: last},
		{coord: c.East(), row: last, col: 0},
		{coord: c.North(), row: 0, col: last},
		{coord: c.NorthEast(), row: 0, col: 0},
	} {
		if cell := r.m.Get(s.coord); cell != nil {
			s.cell = cell
			sites = append(sites, s)
		}
	}
	if len(sites) < 2 {
		return nil
	}

	r.settleCornerHeights(sites)
	settleCornerColors(sites)
	return r.settleCornerTextures(sites)
}

func (r *Reconciler) settleCornerHeights(sites []cornerSite) {
	var sum int64
	n := 0
	for _, s := range sites {
		if s.cell.Height != nil {
			sum += int64(s.cell.Height.Heights[s.row][s.col])
			n++
		}
	}
	if n < 2 {
		return
	}
	mean := int32(math.Round(float64(sum) / float64(n)))
	for _, s := range sites {
		if s.cell.Height == nil {
			continue
		}
		if s.cell.Height.Heights[s.row][s.col] != mean {
			s.cell.Height.Heights[s.row][s.col] = mean
			r.markHeightsChanged(s.coord, true)
		}
	}
}

func settleCornerColors(sites []cornerSite) {
	var sum [3]int
	n := 0
	for _, s := range sites {
		if s.cell.Colors != nil {
			for k := 0; k < 3; k++ {
				sum[k] += int(s.cell.Colors[s.row][s.col][k])
			}
			n++
		}
	}
	if n < 2 {
		return
	}
	var mean [3]uint8
	for k := 0; k < 3; k++ {
		mean[k] = uint8(math.Round(float64(sum[k]) / float64(n)))
	}
	for _, s := range sites {
		if s.cell.Colors != nil {
			s.cell.Colors[s.row][s.col] = mean
		}
	}
}

// settleCornerTextures applies majority-else-later-plugin to the texture
// patches meeting at a grid corner.
func (r *Reconciler) settleCornerTextures(sites []cornerSite) []*landscape.UserError {
	tLast := landscape.TextureGridSize - 1
	present := make([]cornerSite, 0, 4)
	for _, s := range sites {
		if s.cell.Textures == nil {
			continue
		}
		// Map the vertex-grid corner onto the texture grid corner.
		ts := s
		if s.row == 0 {
			ts.row = 0
		} else {
			ts.row = tLast
		}
		if s.col == 0 {
			ts.col = 0
		} else {
			ts.col = tLast
		}
		present = append(present, ts)
	}
	if len(present) < 2 {
		return nil
	}

	counts := make(map[uint16]int, len(present))
	for _, s := range present {
		counts[s.cell.Textures[s.row][s.col]]++
	}
	if len(counts) == 1 {
		return nil
	}

	best, tie := majority(counts)
	if tie {
		var warnings []*landscape.UserError
		best, warnings = r.laterOwnedTexture(present)
		for _, s := range present {
			s.cell.Textures[s.row][s.col] = best
		}
		return warnings
	}
	for _, s := range present {
		s.cell.Textures[s.row][s.col] = best
	}
	return nil
}

// settleTexturePair equalizes two adjoining texture entries across a seam.
// A side whose provenance is clean wins; otherwise the side owned by the
// later plugin does.
func (r *Reconciler) settleTexturePair(
	ca landscape.CellCoord, a *landscape.Landscape, ra, cola int,
	cb landscape.CellCoord, b *landscape.Landscape, rb, colb int,
) {
	va := a.Textures[ra][cola]
	vb := b.Textures[rb][colb]
	if va == vb {
		return
	}

	oa := r.textureOrigin(ca, ra, cola)
	ob := r.textureOrigin(cb, rb, colb)

	var winner uint16
	switch {
	case oa.Severity == merge.SeverityNone && ob.Severity != merge.SeverityNone:
		winner = va
	case ob.Severity == merge.SeverityNone && oa.Severity != merge.SeverityNone:
		winner = vb
	default:
		ia, ib := r.pluginIndex(oa.Plugin), r.pluginIndex(ob.Plugin)
		if ia > ib {
			winner = va
		} else {
			// Includes the unresolvable case of equal positions; the
			// greater-coordinate side stands in for "later".
			winner = vb
		}
	}
	a.Textures[ra][cola] = winner
	b.Textures[rb][colb] = winner
}

func (r *Reconciler) textureOrigin(c landscape.CellCoord, row, col int) merge.Origin {
	cp, ok := r.prov[c]
	if !ok {
		return merge.Origin{}
	}
	return cp.Textures[row][col]
}

// laterOwnedTexture picks the value owned by the latest plugin among tied
// corner sites, warning when no order can separate them.
func (r *Reconciler) laterOwnedTexture(present []cornerSite) (uint16, []*landscape.UserError) {
	tLast := landscape.TextureGridSize - 1
	bestIdx := -2
	var best uint16
	ambiguous := false
	var at landscape.CellCoord
	for _, s := range present {
		row, col := 0, 0
		if s.row == tLast {
			row = tLast
		}
		if s.col == tLast {
			col = tLast
		}
		idx := r.pluginIndex(r.textureOrigin(s.coord, row, col).Plugin)
		switch {
		case idx > bestIdx:
			bestIdx = idx
			best = s.cell.Textures[s.row][s.col]
			ambiguous = false
			at = s.coord
		case idx == bestIdx && s.cell.Textures[s.row][s.col] != best:
			ambiguous = true
			best = s.cell.Textures[s.row][s.col]
			at = s.coord
		}
	}
	if !ambiguous {
		return best, nil
	}
	return best, []*landscape.UserError{{
		Code:    landscape.ErrCodeSeamUnresolved,
		Message: "texture corner could not be settled by provenance; keeping the later side",
		Context: at.String(),
	}}
}

// roundMean averages two heights, rounding to the nearest unit.
func roundMean(a, b int32) int32 {
	return int32(math.Round(float64(a+b) / 2))
}

// meanColor averages two colors component-wise, rounded.
func meanColor(a, b [3]uint8) [3]uint8 {
	var out [3]uint8
	for k := 0; k < 3; k++ {
		out[k] = uint8(math.Round(float64(int(a[k])+int(b[k])) / 2))
	}
	return out
}

// majority returns the most common value and whether the top count is tied.
func majority(counts map[uint16]int) (uint16, bool) {
	var best uint16
	bestCount := -1
	tie := false
	// Deterministic scan: pick the smallest value among equal counts before
	// deciding the tie, so map order never leaks into output.
	for v, n := range counts {
		switch {
		case n > bestCount:
			best, bestCount, tie = v, n, false
		case n == bestCount:
			tie = true
			if v < best {
				best = v
			}
		}
	}
	return best, tie
}

func (r *Reconciler) pluginIndex(plugin string) int {
	if plugin == "" {
		return -1
	}
	idx, ok := r.order[plugin]
	if !ok {
		return -1
	}
	return idx
}

func (r *Reconciler) markHeightsChanged(c landscape.CellCoord, changed bool) {
	if changed {
		r.prov.Cell(c).HeightsChanged = true
	}
}

// rebaseChanged re-anchors the storage offset of every cell whose heights
// moved, so deltas re-derive from a clean base. Untouched cells keep their
// original offset and round-trip byte for byte.
func (r *Reconciler) rebaseChanged() {
	for c, cp := range r.prov {
		if !cp.HeightsChanged {
			continue
		}
		cell := r.m.Get(c)
		if cell != nil && cell.Height != nil {
			cell.Height.Rebase()
		}
	}
}
