// Package esp reads and writes TES3 plugin files. It exposes parsed plugin
// objects to the pipeline and serializes the merged landmass back to disk.
// Only the record types the land merge consumes are materialized; anything
// else in a plugin is counted and skipped.
package esp

import (
	"path/filepath"
	"strings"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

// Plugin is a parsed plugin file reduced to the records the pipeline needs.
type Plugin struct {
	// Name is the file stem, e.g. "Clean Roads" for "Clean Roads.esp".
	Name string
	// Masters lists the declared master files in header order.
	Masters []string
	// Author and Description come from the file header.
	Author      string
	Description string

	// LandTextures are the plugin's local land-texture declarations.
	LandTextures []LandTextureRecord
	// Landscapes are the plugin's LAND records with raw (local) texture
	// indices; the remapper translates them before the pipeline sees them.
	Landscapes []LandRecord
	// Cells are exterior cell records, consumed for metadata only.
	Cells []CellRecord

	// SkippedRecords counts record types the merge does not consume.
	SkippedRecords int
}

// IsMaster reports whether the plugin is a master file by extension.
func IsMaster(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".esm")
}

// Stem returns the plugin name for a path: the base name without extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LandTextureRecord is one LTEX declaration.
type LandTextureRecord struct {
	// LocalID is the plugin-local index (the on-disk INTV value).
	LocalID uint32
	// EditorID is the record name.
	EditorID string
	// Filename is the texture path as written in the plugin.
	Filename string
}

// LandRecord is one LAND record. Texture indices are raw on-disk values:
// 1-based local ids, 0 meaning the default ground texture.
type LandRecord struct {
	Coord landscape.CellCoord
	// Flags is the DATA presence mask from the record.
	Flags uint32

	Heights     *landscape.HeightField
	Normals     *landscape.NormalField
	Colors      *landscape.ColorField
	WorldMap    *landscape.MapField
	RawTextures *[landscape.TextureGridSize][landscape.TextureGridSize]uint16
}

// CellRecord is one exterior CELL record, metadata only.
type CellRecord struct {
	Name  string
	Flags uint32
	X     int32
	Y     int32
}
