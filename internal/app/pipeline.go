package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/DavidVonDerau/merged-lands/internal/adapters/esp"
	"github.com/DavidVonDerau/merged-lands/internal/adapters/loadorder"
	"github.com/DavidVonDerau/merged-lands/internal/domain/diff"
	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
	"github.com/DavidVonDerau/merged-lands/internal/domain/merge"
	"github.com/DavidVonDerau/merged-lands/internal/domain/patch"
	"github.com/DavidVonDerau/merged-lands/internal/domain/reference"
	"github.com/DavidVonDerau/merged-lands/internal/domain/remap"
	"github.com/DavidVonDerau/merged-lands/internal/domain/report"
	"github.com/DavidVonDerau/merged-lands/internal/domain/seam"
	"github.com/DavidVonDerau/merged-lands/internal/ports"
)

// Service runs the land-merge pipeline against a filesystem.
type Service struct {
	fs  ports.FileSystem
	log ports.Logger
}

// NewService creates the pipeline service.
func NewService(fs ports.FileSystem, log ports.Logger) *Service {
	return &Service{fs: fs, log: log}
}

// RunResult is everything one run produces.
type RunResult struct {
	// OutputBytes is the serialized merged plugin.
	OutputBytes []byte
	// Images are the conflict report and composed cell images.
	Images []report.CellImage
	// Warnings collects every non-fatal problem in occurrence order.
	Warnings []*landscape.UserError
	// SkippedPlugins lists plugins dropped as malformed.
	SkippedPlugins []string
	// MergedCells is the cell count of the merged landmass.
	MergedCells int
	// PluginCount is the number of plugins that contributed.
	PluginCount int
}

// Counts aggregates warnings per error code for the summary.
func (r *RunResult) Counts() map[string]int {
	out := make(map[string]int)
	for _, w := range r.Warnings {
		out[w.Code]++
	}
	return out
}

// Run executes the full pipeline: reference reconstruction, per-plugin diff
// and merge, seam reconciliation, reporting and serialization. Warnings
// accumulate in the result; only invariant violations and unusable
// configuration abort.
func (s *Service) Run(ctx context.Context, cfg *Config) (*RunResult, error) {
	res := &RunResult{}

	order, err := s.loadOrder(cfg)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "resolved load order",
		ports.F("masters", len(order.Masters)), ports.F("mods", len(order.Mods)))

	table := landscape.NewTextureTable()
	remapper := remap.New(table)
	resolver := s.loadDescriptors(ctx, cfg, order, res)

	masters, refLandmass := s.buildReference(ctx, cfg, order, remapper, table, res)

	merger := merge.New(refLandmass, resolver, merge.Options{HeightThreshold: cfg.HeightThreshold})
	s.mergeMods(ctx, cfg, order, remapper, refLandmass, merger, res)

	merged, prov := merger.Result()
	res.MergedCells = merged.Len()

	warnings := seam.New(merged, prov, pluginNames(order.All())).Reconcile()
	res.Warnings = append(res.Warnings, warnings...)

	if cfg.DebugColors {
		report.DebugColors(merged, prov)
	}

	table.Freeze()
	if err := validate(merged, prov); err != nil {
		return nil, err
	}

	res.Images = append(report.Build(prov, pluginNames(order.Mods)), report.Merged(merged)...)

	output, serializeWarnings := esp.Serialize(merged, esp.OutputMeta{
		Author:      cfg.Author,
		Description: fmt.Sprintf("Merged landscape: %d cells from %d plugins.", merged.Len(), res.PluginCount),
		Masters:     masters,
	})
	res.Warnings = append(res.Warnings, serializeWarnings...)
	res.OutputBytes = output

	return res, nil
}

func (s *Service) loadOrder(cfg *Config) (loadorder.LoadOrder, error) {
	if cfg.IniFile != "" {
		data, err := s.fs.ReadFile(cfg.IniFile)
		if err != nil {
			return loadorder.LoadOrder{}, fmt.Errorf("failed to read %s: %w", cfg.IniFile, err)
		}
		lo, err := loadorder.Parse(data)
		if err != nil {
			return loadorder.LoadOrder{}, fmt.Errorf("failed to parse %s: %w", cfg.IniFile, err)
		}
		return lo, nil
	}

	var lo loadorder.LoadOrder
	for _, p := range cfg.Plugins {
		if esp.IsMaster(p) {
			lo.Masters = append(lo.Masters, p)
		} else {
			lo.Mods = append(lo.Mods, p)
		}
	}
	return lo, nil
}

// loadDescriptors reads each plugin's optional patch descriptor. An invalid
// descriptor demotes that plugin to defaults with a warning.
func (s *Service) loadDescriptors(ctx context.Context, cfg *Config, order loadorder.LoadOrder, res *RunResult) *patch.Resolver {
	resolver := patch.NewResolver()
	for _, file := range order.All() {
		name := esp.Stem(file)
		path := filepath.Join(cfg.DataDir, name+".patch.toml")
		if !s.fs.Exists(path) {
			continue
		}
		data, err := s.fs.ReadFile(path)
		if err != nil {
			res.Warnings = append(res.Warnings, &landscape.UserError{
				Code:       landscape.ErrCodePatchInvalid,
				Message:    "patch descriptor could not be read; plugin will be merged with defaults",
				Context:    path,
				Underlying: err,
			})
			continue
		}
		d, err := patch.Parse(name, data)
		if err != nil {
			var ue *landscape.UserError
			if errors.As(err, &ue) {
				res.Warnings = append(res.Warnings, ue)
			}
			s.log.Warn(ctx, "invalid patch descriptor", ports.F("plugin", name), ports.F("error", err))
			continue
		}
		resolver.Register(name, d)
		s.log.Debug(ctx, "loaded patch descriptor", ports.F("plugin", name))
	}
	return resolver
}

// buildReference replays the masters and returns their header entries plus
// the sealed reference landmass.
func (s *Service) buildReference(ctx context.Context, cfg *Config, order loadorder.LoadOrder, remapper *remap.Remapper, table *landscape.TextureTable, res *RunResult) ([]esp.Master, *landscape.Landmass) {
	builder := reference.NewBuilder(table)
	var masters []esp.Master

	for _, file := range order.Masters {
		plugin, data := s.parsePlugin(ctx, cfg, file, res)
		if plugin == nil {
			continue
		}
		masters = append(masters, esp.Master{Name: file, Size: uint64(len(data))})

		mapping, err := remapper.Ingest(localTextures(plugin))
		if err != nil {
			res.Warnings = append(res.Warnings, &landscape.UserError{
				Code:       landscape.ErrCodePluginMalformed,
				Message:    "texture table rejected the plugin's declarations; plugin skipped",
				Context:    plugin.Name,
				Underlying: err,
			})
			res.SkippedPlugins = append(res.SkippedPlugins, plugin.Name)
			continue
		}
		if err := builder.Add(materialize(plugin, mapping)); err != nil {
			// Only reachable through a sequencing bug; treat as fatal-free
			// because the builder has not been sealed yet on this path.
			s.log.Error(ctx, "reference builder rejected master", ports.F("plugin", plugin.Name), ports.F("error", err))
			continue
		}
		res.PluginCount++
		s.log.Info(ctx, "replayed master",
			ports.F("plugin", plugin.Name), ports.F("cells", len(plugin.Landscapes)))
	}

	return masters, builder.Build()
}

// mergeMods diffs and folds every mod in load order.
func (s *Service) mergeMods(ctx context.Context, cfg *Config, order loadorder.LoadOrder, remapper *remap.Remapper, ref *landscape.Landmass, merger *merge.Merger, res *RunResult) {
	known := make(map[string]bool, len(order.Masters))
	for _, m := range order.Masters {
		known[m] = true
	}

	for _, file := range order.Mods {
		plugin, _ := s.parsePlugin(ctx, cfg, file, res)
		if plugin == nil {
			continue
		}

		for _, declared := range plugin.Masters {
			if !known[declared] {
				res.Warnings = append(res.Warnings, &landscape.UserError{
					Code:       landscape.ErrCodeMasterUnknown,
					Message:    fmt.Sprintf("declared master %q is not in the load order; diffs use the reference as it stands", declared),
					Context:    plugin.Name,
					Suggestion: "add the master to the load order if its landscape matters here",
				})
			}
		}

		mapping, err := remapper.Ingest(localTextures(plugin))
		if err != nil {
			res.Warnings = append(res.Warnings, &landscape.UserError{
				Code:       landscape.ErrCodePluginMalformed,
				Message:    "texture table rejected the plugin's declarations; plugin skipped",
				Context:    plugin.Name,
				Underlying: err,
			})
			res.SkippedPlugins = append(res.SkippedPlugins, plugin.Name)
			continue
		}

		applied := 0
		for _, cell := range materialize(plugin, mapping) {
			if d := diff.Compute(plugin.Name, ref, cell); d != nil {
				merger.Apply(d)
				applied++
			}
		}
		res.PluginCount++
		s.log.Info(ctx, "merged mod",
			ports.F("plugin", plugin.Name), ports.F("changed_cells", applied))
	}
}

// parsePlugin reads and decodes one plugin file. Malformed plugins are
// skipped with a warning per the error model.
func (s *Service) parsePlugin(ctx context.Context, cfg *Config, file string, res *RunResult) (*esp.Plugin, []byte) {
	path := filepath.Join(cfg.DataDir, file)
	data, err := s.fs.ReadFile(path)
	if err != nil {
		res.Warnings = append(res.Warnings, &landscape.UserError{
			Code:       landscape.ErrCodePluginMalformed,
			Message:    "plugin file could not be read; plugin skipped",
			Context:    path,
			Underlying: err,
		})
		res.SkippedPlugins = append(res.SkippedPlugins, file)
		return nil, nil
	}

	plugin, warnings, err := esp.Parse(esp.Stem(file), data)
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		var ue *landscape.UserError
		if errors.As(err, &ue) {
			res.Warnings = append(res.Warnings, ue)
		}
		res.SkippedPlugins = append(res.SkippedPlugins, file)
		s.log.Warn(ctx, "skipping malformed plugin", ports.F("plugin", file), ports.F("error", err))
		return nil, nil
	}
	return plugin, data
}

func pluginNames(files []string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = esp.Stem(f)
	}
	return out
}
