package manager

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/hwameistor/layout-planner/pkg/config"
	"github.com/hwameistor/layout-planner/pkg/inventory"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/cmdparser/definitions"
	"github.com/hwameistor/layout-planner/pkg/metrics"
	"github.com/hwameistor/layout-planner/pkg/planner"
)

// Collector gathers the observed state of a node
type Collector interface {
	Collect(ctx context.Context, disks []string, devices []string) (*inventory.Snapshot, error)
}

// NewCollector builds the collector used when no snapshot file is given
var NewCollector = func() Collector {
	return inventory.NewLocal()
}

// Recorder is shared by every plan run of this process
var Recorder = metrics.NewPlanRecorder()

// NewPlanner returns a planner recording into Recorder
func NewPlanner() *planner.Planner {
	return planner.New(Recorder)
}

// LoadLayout reads the layout file named by --config
func LoadLayout() (*config.Config, error) {
	return config.Load(definitions.ConfigPath)
}

// LoadObserved returns the snapshot named by --observed, or collects the
// disks and devices cfg refers to from the local node
func LoadObserved(ctx context.Context, cfg *config.Config) (*inventory.Snapshot, error) {
	if definitions.ObservedPath != "" {
		log.WithField("path", definitions.ObservedPath).Debug("Loading observed snapshot")
		return config.LoadSnapshot(definitions.ObservedPath)
	}

	ctx, cancel := context.WithTimeout(ctx, definitions.Timeout)
	defer cancel()
	return NewCollector().Collect(ctx, cfg.Disks(), devicePaths(cfg))
}

func devicePaths(cfg *config.Config) []string {
	var paths []string
	for _, vg := range cfg.VGs() {
		paths = append(paths, cfg.PVs[vg]...)
	}
	return append(paths, cfg.VolumePaths()...)
}
