package patch

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

// descriptorVersion is the only descriptor format version understood.
const descriptorVersion = "0"

// descriptorMetaType is the required meta_type value.
const descriptorMetaType = "Patch"

// Descriptor is one plugin's patch file. Unknown keys are rejected so a
// typoed layer name fails loudly instead of silently applying defaults.
type Descriptor struct {
	Version  string `toml:"version"`
	MetaType string `toml:"meta_type"`

	HeightMap      *LayerPolicy `toml:"height_map,omitempty"`
	VertexColors   *LayerPolicy `toml:"vertex_colors,omitempty"`
	TextureIndices *LayerPolicy `toml:"texture_indices,omitempty"`
	WorldMapData   *LayerPolicy `toml:"world_map_data,omitempty"`
}

// LayerPolicy is the per-layer fragment of a descriptor. A nil Included
// means the default (true); an empty strategy means auto.
type LayerPolicy struct {
	Included         *bool  `toml:"included,omitempty"`
	ConflictStrategy string `toml:"conflict_strategy,omitempty"`
}

func (d *Descriptor) layer(l Layer) *LayerPolicy {
	switch l {
	case LayerHeightMap:
		return d.HeightMap
	case LayerVertexColors:
		return d.VertexColors
	case LayerTextureIndices:
		return d.TextureIndices
	case LayerWorldMapData:
		return d.WorldMapData
	default:
		return nil
	}
}

// Parse decodes and validates a descriptor. Any failure means the plugin is
// processed with defaults; the caller turns the error into a warning.
func Parse(plugin string, data []byte) (*Descriptor, error) {
	var d Descriptor
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, invalidDescriptor(plugin, err)
	}

	if d.Version != descriptorVersion {
		return nil, invalidDescriptor(plugin, fmt.Errorf("version %q is not supported (want %q)", d.Version, descriptorVersion))
	}
	if d.MetaType != descriptorMetaType {
		return nil, invalidDescriptor(plugin, fmt.Errorf("meta_type %q is not %q", d.MetaType, descriptorMetaType))
	}

	for _, lp := range []*LayerPolicy{d.HeightMap, d.VertexColors, d.TextureIndices, d.WorldMapData} {
		if lp == nil || lp.ConflictStrategy == "" {
			continue
		}
		if _, err := ParseStrategy(lp.ConflictStrategy); err != nil {
			return nil, invalidDescriptor(plugin, err)
		}
	}

	return &d, nil
}

func invalidDescriptor(plugin string, err error) error {
	return &landscape.UserError{
		Code:       landscape.ErrCodePatchInvalid,
		Message:    "patch descriptor is invalid; plugin will be merged with defaults",
		Context:    plugin,
		Suggestion: "fix the descriptor: recognized layers are height_map, vertex_colors, texture_indices and world_map_data",
		Underlying: err,
	}
}
