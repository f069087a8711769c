// Package loadorder reads the game's declared plugin order from
// Morrowind.ini. The [Game Files] section lists plugins as GameFile0,
// GameFile1, ... and that numbering, not file enumeration order, defines the
// load order.
package loadorder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/DavidVonDerau/merged-lands/internal/adapters/esp"
)

const gameFilesSection = "Game Files"

// LoadOrder is the ordered plugin list partitioned into masters and mods.
type LoadOrder struct {
	// Masters are .esm files in declared order.
	Masters []string
	// Mods are .esp files in declared order.
	Mods []string
}

// All returns masters followed by mods, preserving order.
func (lo LoadOrder) All() []string {
	out := make([]string, 0, len(lo.Masters)+len(lo.Mods))
	out = append(out, lo.Masters...)
	out = append(out, lo.Mods...)
	return out
}

// Parse reads a Morrowind.ini and returns the declared load order.
func Parse(data []byte) (LoadOrder, error) {
	var lo LoadOrder

	cfg, err := ini.Load(data)
	if err != nil {
		return lo, fmt.Errorf("failed to parse ini: %w", err)
	}
	section := cfg.Section(gameFilesSection)

	type entry struct {
		index int
		file  string
	}
	var entries []entry
	for _, key := range section.Keys() {
		name := key.Name()
		if !strings.HasPrefix(name, "GameFile") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(name, "GameFile"))
		if err != nil {
			return lo, fmt.Errorf("malformed game file key %q", name)
		}
		entries = append(entries, entry{index: idx, file: key.String()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	for _, e := range entries {
		if esp.IsMaster(e.file) {
			lo.Masters = append(lo.Masters, e.file)
		} else {
			lo.Mods = append(lo.Mods, e.file)
		}
	}
	return lo, nil
}
