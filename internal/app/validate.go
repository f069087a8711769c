package app

import (
	"fmt"
	"math"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
	"github.com/DavidVonDerau/merged-lands/internal/domain/merge"
)

// Unit-length tolerance for recomputed normals, scaled to signed bytes.
const (
	normalMin = 0.98 * 127
	normalMax = 1.02 * 127
)

// validate checks the output invariants that must hold before
// serialization. A failure here is an internal bug and aborts the run.
func validate(m *landscape.Landmass, prov merge.Provenance) error {
	for _, c := range m.Coords() {
		cell := m.Get(c)

		if cell.Textures != nil {
			for i := range cell.Textures {
				for j := range cell.Textures[i] {
					id := cell.Textures[i][j]
					if id != 0 {
						if _, ok := m.Textures.Lookup(uint32(id)); !ok {
							return landscape.NewInvariantError(
								fmt.Sprintf("texture index %d has no table entry", id), c.String())
						}
					}
				}
			}
		}

		cp, touched := prov[c]
		if !touched || !cp.HeightsChanged || cell.Normals == nil {
			continue
		}
		for i := range cell.Normals {
			for j := range cell.Normals[i] {
				n := cell.Normals[i][j]
				length := math.Sqrt(float64(int(n[0])*int(n[0]) + int(n[1])*int(n[1]) + int(n[2])*int(n[2])))
				if length < normalMin || length > normalMax {
					return landscape.NewInvariantError(
						fmt.Sprintf("normal at (%d, %d) has length %.3f", i, j, length/127), c.String())
				}
			}
		}
	}
	return nil
}
