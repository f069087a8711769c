// Package app wires the collaborators around the land-merge pipeline and
// runs it end to end: load order in, merged plugin and report images out.
package app

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file leaves fields unset.
const (
	DefaultOutput    = "Merged Lands.esp"
	DefaultReportDir = "reports"
	DefaultAuthor    = "merged-lands"
)

// Config is the tool configuration, normally read from mergedlands.yaml.
// Unknown keys are rejected.
type Config struct {
	// DataDir is the directory holding the plugin files.
	DataDir string `yaml:"data_dir"`
	// IniFile points at a Morrowind.ini whose [Game Files] section defines
	// the load order. Mutually exclusive with Plugins.
	IniFile string `yaml:"ini_file,omitempty"`
	// Plugins is an explicit ordered plugin list, used when no ini is
	// given. Masters and mods are told apart by extension.
	Plugins []string `yaml:"plugins,omitempty"`

	// Output is the merged plugin filename, relative to DataDir unless
	// absolute.
	Output string `yaml:"output,omitempty"`
	// ReportDir receives the conflict images. When unset it defaults to
	// DefaultReportDir; the images are built on every run either way.
	ReportDir string `yaml:"report_dir,omitempty"`

	// DebugColors paints conflict severities into the merged vertex
	// colors.
	DebugColors bool `yaml:"debug_colors,omitempty"`
	// HeightThreshold overrides the minor/major height conflict boundary.
	HeightThreshold int32 `yaml:"height_threshold,omitempty"`
	// ImageScale is the report image upscaling factor.
	ImageScale int `yaml:"image_scale,omitempty"`
	// Author is written into the output plugin header.
	Author string `yaml:"author,omitempty"`
}

// ParseConfig decodes and validates a config file.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	if c.IniFile != "" && len(c.Plugins) > 0 {
		return fmt.Errorf("config: ini_file and plugins are mutually exclusive")
	}
	if c.IniFile == "" && len(c.Plugins) == 0 {
		return fmt.Errorf("config: either ini_file or plugins must be set")
	}
	if c.HeightThreshold < 0 {
		return fmt.Errorf("config: height_threshold must be positive")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.ReportDir == "" {
		c.ReportDir = DefaultReportDir
	}
	if c.Author == "" {
		c.Author = DefaultAuthor
	}
}
