// Package merge folds per-plugin deltas into the merged landmass in load
// order, resolving overlapping edits with per-layer conflict strategies and
// recording provenance for every write.
package merge

import (
	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

// Severity classifies how contentious a vertex write was.
type Severity int

const (
	// SeverityNone marks an uncontested write.
	SeverityNone Severity = iota
	// SeverityMinor marks a conflict the strategy resolved quietly.
	SeverityMinor
	// SeverityMajor marks a sharp disagreement worth a look.
	SeverityMajor
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityMinor:
		return "minor"
	case SeverityMajor:
		return "major"
	default:
		return "unknown"
	}
}

// Origin records, for one vertex, which plugin the value came from and the
// worst conflict severity seen there. The zero Origin means no plugin has
// touched the vertex since the reference.
type Origin struct {
	Plugin   string
	Severity Severity
}

// Set reports whether any plugin has written this vertex.
func (o *Origin) Set() bool {
	return o.Plugin != ""
}

// take assigns the origin to a plugin, escalating but never downgrading the
// recorded severity.
func (o *Origin) take(plugin string, sev Severity) {
	o.Plugin = plugin
	if sev > o.Severity {
		o.Severity = sev
	}
}

// escalate raises the severity without changing the owning plugin.
func (o *Origin) escalate(sev Severity) {
	if sev > o.Severity {
		o.Severity = sev
	}
}

// CellProvenance holds one grid of origins per layer of a merged cell.
type CellProvenance struct {
	Heights  [landscape.GridSize][landscape.GridSize]Origin
	Normals  [landscape.GridSize][landscape.GridSize]Origin
	Colors   [landscape.GridSize][landscape.GridSize]Origin
	Textures [landscape.TextureGridSize][landscape.TextureGridSize]Origin
	WorldMap [landscape.WorldMapSize][landscape.WorldMapSize]Origin

	// HeightsChanged marks cells whose height values no longer match the
	// reference bytes; only those are rebased before encoding.
	HeightsChanged bool
}

// Provenance maps merged cells to their per-vertex origins. It is a parallel
// structure so serialized grids stay compact and reporting can be stripped.
type Provenance map[landscape.CellCoord]*CellProvenance

// Cell returns the provenance grids for a coordinate, creating them on first
// use.
func (p Provenance) Cell(c landscape.CellCoord) *CellProvenance {
	cp, ok := p[c]
	if !ok {
		cp = &CellProvenance{}
		p[c] = cp
	}
	return cp
}
