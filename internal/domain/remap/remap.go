// Package remap translates plugin-local texture ids into global canonical
// ids. Every texture grid entering the pipeline goes through a plugin's
// mapping first, which is what makes texture indices comparable across
// plugins.
package remap

import (
	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

// LocalTexture is one land-texture declaration from a plugin, as handed over
// by the codec.
type LocalTexture struct {
	LocalID  uint32
	EditorID string
	Filename string
	// FormID is the originating master's form id when the codec can supply
	// one. It keeps identically named textures from different masters apart.
	FormID string
}

// Mapping translates one plugin's local texture ids to global ids.
type Mapping map[uint32]uint32

// Remapper interns plugin texture declarations into the shared global table.
type Remapper struct {
	table *landscape.TextureTable
}

// New creates a remapper over the given table.
func New(table *landscape.TextureTable) *Remapper {
	return &Remapper{table: table}
}

// Ingest declares a plugin's local texture table and returns the local to
// global mapping for its grids.
func (r *Remapper) Ingest(textures []LocalTexture) (Mapping, error) {
	m := make(Mapping, len(textures))
	for _, t := range textures {
		key := landscape.NewTextureKey(t.Filename, t.FormID)
		global, err := r.table.Intern(key, t.EditorID, t.Filename)
		if err != nil {
			return nil, err
		}
		m[t.LocalID] = global
	}
	return m, nil
}

// Translate converts a raw on-disk texture grid to global ids. Raw values
// are 1-based local ids with 0 meaning the default texture; a local id with
// no declared entry falls back to the default.
func (m Mapping) Translate(raw *[landscape.TextureGridSize][landscape.TextureGridSize]uint16) *landscape.IndexField {
	out := new(landscape.IndexField)
	for i := range raw {
		for j := range raw[i] {
			v := raw[i][j]
			if v == 0 {
				continue
			}
			global, ok := m[uint32(v-1)]
			if !ok {
				continue
			}
			out[i][j] = uint16(global)
		}
	}
	return out
}
