// Package patch reads per-plugin patch descriptors and answers the merger's
// per-layer policy questions. A descriptor selects, per layer, whether the
// layer participates at all and which conflict strategy applies when it
// collides with earlier edits.
package patch

import (
	"fmt"
	"strings"
)

// Strategy selects how a conflicting write is resolved.
type Strategy string

const (
	// StrategyAuto applies the per-layer automatic rule.
	StrategyAuto Strategy = "auto"
	// StrategyOverwrite takes the incoming value.
	StrategyOverwrite Strategy = "overwrite"
	// StrategyIgnore keeps the current value and flags the conflict.
	StrategyIgnore Strategy = "ignore"
	// StrategyKeep keeps the current value without touching provenance.
	StrategyKeep Strategy = "keep"
)

// ParseStrategy parses a descriptor strategy string, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(s)) {
	case StrategyAuto:
		return StrategyAuto, nil
	case StrategyOverwrite:
		return StrategyOverwrite, nil
	case StrategyIgnore:
		return StrategyIgnore, nil
	case StrategyKeep:
		return StrategyKeep, nil
	default:
		return "", fmt.Errorf("unknown conflict strategy %q (want auto, overwrite, ignore or keep)", s)
	}
}

// Layer names the layers a descriptor can address. Normals carry no policy;
// they are derived from the heightmap.
type Layer string

const (
	LayerHeightMap      Layer = "height_map"
	LayerVertexColors   Layer = "vertex_colors"
	LayerTextureIndices Layer = "texture_indices"
	LayerWorldMapData   Layer = "world_map_data"
)

// Policy is the resolved answer for one (plugin, layer) pair.
type Policy struct {
	Included bool
	Strategy Strategy
}

// DefaultPolicy is what applies when no descriptor exists.
var DefaultPolicy = Policy{Included: true, Strategy: StrategyAuto}

// Resolver holds the loaded descriptors and answers policy lookups.
type Resolver struct {
	byPlugin map[string]*Descriptor
}

// NewResolver creates an empty resolver; every lookup answers the defaults
// until descriptors are registered.
func NewResolver() *Resolver {
	return &Resolver{byPlugin: make(map[string]*Descriptor)}
}

// Register attaches a descriptor to a plugin name.
func (r *Resolver) Register(plugin string, d *Descriptor) {
	r.byPlugin[plugin] = d
}

// Policy answers the effective policy for a plugin and layer.
func (r *Resolver) Policy(plugin string, layer Layer) Policy {
	d, ok := r.byPlugin[plugin]
	if !ok {
		return DefaultPolicy
	}
	lp := d.layer(layer)
	if lp == nil {
		return DefaultPolicy
	}
	p := DefaultPolicy
	if lp.Included != nil {
		p.Included = *lp.Included
	}
	if lp.ConflictStrategy != "" {
		// Validated at parse time; Parse rejects descriptors with bad
		// strategy strings before they reach the resolver.
		p.Strategy = Strategy(strings.ToLower(lp.ConflictStrategy))
	}
	return p
}
