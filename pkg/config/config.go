package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/hwameistor/layout-planner/pkg/inventory"
	"github.com/hwameistor/layout-planner/pkg/layout"
)

// DefaultConfigFilename is the layout file looked up when none is given
const DefaultConfigFilename = "layout.yaml"

// Config is a requested storage layout
type Config struct {
	// Partitions maps a disk device to its requested partitions
	Partitions map[string][]layout.PartitionSpec `yaml:"partitions,omitempty" json:"partitions,omitempty"`
	// PVs maps a volume group to the device paths it is built from
	PVs     map[string][]string `yaml:"pvs,omitempty" json:"pvs,omitempty"`
	Volumes []layout.VolumeSpec `yaml:"volumes,omitempty" json:"volumes,omitempty"`

	Defaults Defaults `yaml:"defaults,omitempty" json:"defaults,omitempty"`
}

// Defaults tune planning of the whole layout
type Defaults struct {
	// Label is the partition table created on blank disks
	Label     string `yaml:"label,omitempty" json:"label,omitempty"`
	AllowGaps bool   `yaml:"allowGaps,omitempty" json:"allowGaps,omitempty"`
}

// Load reads and validates a layout file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a layout document, YAML or JSON
func LoadFromBytes(data []byte) (*Config, error) {
	cfg, err := parseConfig(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("layout validation failed: %w", err)
	}
	return cfg, nil
}

func parseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Defaults.Label == "" {
		c.Defaults.Label = layout.DefaultTable
	}
}

// Validate checks the whole layout: partitions of every disk, physical
// volume paths and the requested volumes
func (c *Config) Validate() error {
	if !layout.IsSupportedTable(c.Defaults.Label) {
		return schemaError(field.NotSupported(field.NewPath("defaults", "label"), c.Defaults.Label, nil))
	}

	if err := layout.ValidatePartitionsInput(c.Partitions, c.Defaults.AllowGaps); err != nil {
		return err
	}

	pvsPath := field.NewPath("pvs")
	for _, vg := range c.VGs() {
		if vg == "" {
			return schemaError(field.Required(pvsPath, "volume group name must not be empty"))
		}
		for i, path := range c.PVs[vg] {
			if !filepath.IsAbs(path) {
				return schemaError(field.Invalid(pvsPath.Key(vg).Index(i), path, "physical volume must be an absolute device path"))
			}
		}
	}

	volumes, err := layout.NewVolumeInput(c.Volumes)
	if err != nil {
		return err
	}
	return volumes.Validate()
}

func schemaError(err *field.Error) error {
	return fmt.Errorf("%w: %s", layout.ErrSchema, err.Error())
}

// Disks returns the devices with requested partitions, sorted
func (c *Config) Disks() []string {
	disks := make([]string, 0, len(c.Partitions))
	for dev := range c.Partitions {
		disks = append(disks, dev)
	}
	sort.Strings(disks)
	return disks
}

// VGs returns the volume groups with requested physical volumes, sorted
func (c *Config) VGs() []string {
	vgs := make([]string, 0, len(c.PVs))
	for vg := range c.PVs {
		vgs = append(vgs, vg)
	}
	sort.Strings(vgs)
	return vgs
}

// VolumePaths returns the device paths of the requested volumes
func (c *Config) VolumePaths() []string {
	paths := make([]string, 0, len(c.Volumes))
	for _, spec := range c.Volumes {
		lv, err := layout.NewLogicalVolume(spec)
		if err != nil || lv.Path() == "" {
			continue
		}
		paths = append(paths, lv.Path())
	}
	return paths
}

// LoadSnapshot reads an observed state snapshot, YAML or JSON
func LoadSnapshot(path string) (*inventory.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	snapshot := &inventory.Snapshot{}
	if err := yaml.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snapshot, nil
}
