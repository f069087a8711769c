package seam

import (
	"math"
	"sort"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

// recomputeNormals rebuilds vertex normals from the reconciled heightmap for
// every cell whose heights moved, plus its four neighbors so edge lighting
// stays continuous. Gradients sample across cell borders where a neighbor
// exists, which makes the two sides of a seam compute identical normals.
func (r *Reconciler) recomputeNormals() {
	targets := make(map[landscape.CellCoord]bool)
	for c, cp := range r.prov {
		if !cp.HeightsChanged {
			continue
		}
		targets[c] = true
		targets[c.East()] = true
		targets[c.North()] = true
		targets[landscape.CellCoord{X: c.X - 1, Y: c.Y}] = true
		targets[landscape.CellCoord{X: c.X, Y: c.Y - 1}] = true
	}

	coords := make([]landscape.CellCoord, 0, len(targets))
	for c := range targets {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })

	for _, c := range coords {
		cell := r.m.Get(c)
		if cell == nil || cell.Height == nil {
			continue
		}
		normals := new(landscape.NormalField)
		for row := 0; row < landscape.GridSize; row++ {
			for col := 0; col < landscape.GridSize; col++ {
				normals[row][col] = r.vertexNormal(c, cell, row, col)
			}
		}
		cell.Normals = normals
	}
}

// vertexNormal derives the surface normal at one vertex by finite
// differences of the surrounding heights.
func (r *Reconciler) vertexNormal(c landscape.CellCoord, cell *landscape.Landscape, row, col int) [3]int8 {
	h := cell.Height.Heights[row][col]

	sx := r.slope(c, cell, h, row, col, 0, 1)
	sy := r.slope(c, cell, h, row, col, 1, 0)

	// Surface normal of z = f(x, y): proportional to (-dz/dx, -dz/dy, 1).
	nx, ny, nz := -sx, -sy, 1.0
	length := math.Sqrt(nx*nx + ny*ny + nz*nz)

	return [3]int8{
		int8(math.Round(nx / length * normalScale)),
		int8(math.Round(ny / length * normalScale)),
		int8(math.Round(nz / length * normalScale)),
	}
}

// slope returns dz/d(axis) in world units, central where both neighbors are
// reachable and one-sided at landmass borders.
func (r *Reconciler) slope(c landscape.CellCoord, cell *landscape.Landscape, h int32, row, col, dRow, dCol int) float64 {
	fwd, fok := r.sampleHeight(c, cell, row+dRow, col+dCol)
	back, bok := r.sampleHeight(c, cell, row-dRow, col-dCol)

	switch {
	case fok && bok:
		return float64(fwd-back) * heightScale / (2 * vertexSpacing)
	case fok:
		return float64(fwd-h) * heightScale / vertexSpacing
	case bok:
		return float64(h-back) * heightScale / vertexSpacing
	default:
		return 0
	}
}

// sampleHeight reads a height at grid position (row, col) relative to a
// cell, crossing into the adjacent cell when the position falls outside.
// Shared-edge indices overlap, so stepping one past the edge lands on the
// neighbor's second row or column.
func (r *Reconciler) sampleHeight(c landscape.CellCoord, cell *landscape.Landscape, row, col int) (int32, bool) {
	target := c
	if col >= landscape.GridSize {
		target.X++
		col -= landscape.GridSize - 1
	} else if col < 0 {
		target.X--
		col += landscape.GridSize - 1
	}
	if row >= landscape.GridSize {
		target.Y++
		row -= landscape.GridSize - 1
	} else if row < 0 {
		target.Y--
		row += landscape.GridSize - 1
	}

	if target == c {
		return cell.Height.Heights[row][col], true
	}
	neighbor := r.m.Get(target)
	if neighbor == nil || neighbor.Height == nil {
		return 0, false
	}
	return neighbor.Height.Heights[row][col], true
}
