// Package reference reconstructs the pre-mod baseline landmass by replaying
// master plugins in load order. Later masters overwrite earlier ones cell by
// cell, matching the game's own last-master-wins rule.
package reference

import (
	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

// Builder accumulates master landscapes and seals them into the reference
// landmass.
type Builder struct {
	landmass *landscape.Landmass
	sealed   bool
}

// NewBuilder creates a builder over an empty landmass sharing the global
// texture table.
func NewBuilder(table *landscape.TextureTable) *Builder {
	return &Builder{landmass: landscape.NewLandmass(table)}
}

// Add replays one master's landscape records. Cells already present from an
// earlier master are overwritten wholesale.
func (b *Builder) Add(cells []*landscape.Landscape) error {
	if b.sealed {
		return landscape.NewInvariantError("reference landmass modified after build", "")
	}
	for _, c := range cells {
		b.landmass.Put(c)
	}
	return nil
}

// Build seals the builder and returns the reference landmass. The result is
// read-only by contract; nothing in the pipeline mutates it afterwards.
func (b *Builder) Build() *landscape.Landmass {
	b.sealed = true
	return b.landmass
}
