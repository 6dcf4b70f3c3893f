package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/hwameistor/layout-planner/pkg/config"
	"github.com/hwameistor/layout-planner/pkg/inventory"
	"github.com/hwameistor/layout-planner/pkg/layout"
	"github.com/hwameistor/layout-planner/pkg/metrics"
)

// DiskPlan is the partition plan of one disk
type DiskPlan struct {
	Disk  string                 `json:"disk"`
	Plans []layout.PartitionPlan `json:"plans"`
}

// GroupPlan is the physical volume plan of one volume group
type GroupPlan struct {
	VG    string          `json:"vg"`
	Plans []layout.PVPlan `json:"plans"`
}

// PartitionOptions narrow down a partition plan
type PartitionOptions struct {
	// DeviceGlob selects the disks to plan, all disks when empty
	DeviceGlob      string
	RequireExisting bool
}

// Planner plans a whole layout file against an observed snapshot
type Planner struct {
	recorder *metrics.PlanRecorder
	logger   *log.Entry
}

// New creates a planner, recorder may be nil
func New(recorder *metrics.PlanRecorder) *Planner {
	return &Planner{
		recorder: recorder,
		logger:   log.WithField("Module", "Planner"),
	}
}

// Partitions plans the partitions of every selected disk. Disks are planned
// concurrently, the result keeps the sorted disk order.
func (p *Planner) Partitions(ctx context.Context, cfg *config.Config, snapshot *inventory.Snapshot, opts PartitionOptions) ([]DiskPlan, error) {
	disks, err := selectDisks(cfg.Disks(), opts.DeviceGlob)
	if err != nil {
		return nil, err
	}

	logger := p.logger.WithFields(log.Fields{"run": uuid.New().String(), "disks": len(disks)})
	logger.Debug("Planning partitions")

	results := make([]DiskPlan, len(disks))
	g, ctx := errgroup.WithContext(ctx)
	for i, dev := range disks {
		i, dev := i, dev
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plans, err := layout.ValidatePartitions(snapshot.Disk(dev), cfg.Partitions[dev], cfg.Defaults.Label, cfg.Defaults.AllowGaps, opts.RequireExisting)
			p.recordPartitions(plans, err)
			if err != nil {
				logger.WithField("disk", dev).WithError(err).Debug("Failed to plan disk")
				return err
			}
			results[i] = DiskPlan{Disk: dev, Plans: plans}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// PVs plans the physical volumes of every volume group in the layout
func (p *Planner) PVs(cfg *config.Config, snapshot *inventory.Snapshot) ([]GroupPlan, error) {
	logger := p.logger.WithField("run", uuid.New().String())
	logger.Debug("Planning physical volumes")

	results := make([]GroupPlan, 0, len(cfg.PVs))
	for _, vg := range cfg.VGs() {
		plans, err := layout.ValidatePVs(&snapshot.LVM, cfg.PVs[vg], vg)
		p.recordPVs(plans, err)
		if err != nil {
			logger.WithField("vg", vg).WithError(err).Debug("Failed to plan volume group")
			return nil, err
		}
		results = append(results, GroupPlan{VG: vg, Plans: plans})
	}
	return results, nil
}

// Volumes plans the logical volumes of the layout
func (p *Planner) Volumes(cfg *config.Config, snapshot *inventory.Snapshot) ([]layout.VolumePlan, error) {
	logger := p.logger.WithFields(log.Fields{"run": uuid.New().String(), "volumes": len(cfg.Volumes)})
	logger.Debug("Planning logical volumes")

	if len(cfg.Volumes) == 0 {
		return []layout.VolumePlan{}, nil
	}
	plans, err := layout.ValidateVolumes(cfg.Volumes, &snapshot.LVM, snapshot.Devices)
	p.recordVolumes(plans, err)
	if err != nil {
		logger.WithError(err).Debug("Failed to plan volumes")
		return nil, err
	}
	return plans, nil
}

// Groups reports the observed state of every volume group the layout
// refers to, sorted by name
func (p *Planner) Groups(cfg *config.Config, snapshot *inventory.Snapshot) ([]layout.GroupSummary, error) {
	names := sets.NewString(cfg.VGs()...)
	for _, spec := range cfg.Volumes {
		if vg := strings.TrimSpace(spec.VG); vg != "" {
			names.Insert(vg)
		}
	}

	results := make([]layout.GroupSummary, 0, names.Len())
	for _, name := range names.List() {
		group, err := layout.NewVolumeGroup(name, &snapshot.LVM)
		if err != nil {
			return nil, err
		}
		results = append(results, group.Summary())
	}
	return results, nil
}

// Check runs the read-only filters over the layout: every requested partition
// exists, every physical volume path is usable by LVM and every mounted
// volume is mounted where requested. It returns one message per violation.
func (p *Planner) Check(cfg *config.Config, snapshot *inventory.Snapshot) []string {
	var problems []string
	for _, dev := range cfg.Disks() {
		if err := layout.ValidatePartitionsExist(snapshot.Disk(dev), cfg.Partitions[dev], cfg.Defaults.AllowGaps); err != nil {
			problems = append(problems, err.Error())
		}
	}
	for _, vg := range cfg.VGs() {
		if err := layout.ValidateVG(vg, &snapshot.LVM); err != nil {
			problems = append(problems, err.Error())
		}
		for _, path := range cfg.PVs[vg] {
			if err := layout.ValidateLVMPartition(path, snapshot.Device(path)); err != nil {
				problems = append(problems, err.Error())
			}
		}
	}
	for _, spec := range cfg.Volumes {
		if spec.Mountpoint == "" {
			continue
		}
		lv, err := layout.NewLogicalVolume(spec)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		mounted, err := layout.ValidateMount(spec, snapshot.Device(lv.Path()))
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if !mounted {
			problems = append(problems, fmt.Sprintf("volume %s is not mounted at %s", lv.Path(), spec.Mountpoint))
		}
	}
	return problems
}

func (p *Planner) recordPartitions(plans []layout.PartitionPlan, err error) {
	if p.recorder != nil {
		p.recorder.RecordPartitions(plans, err)
	}
}

func (p *Planner) recordPVs(plans []layout.PVPlan, err error) {
	if p.recorder != nil {
		p.recorder.RecordPVs(plans, err)
	}
}

func (p *Planner) recordVolumes(plans []layout.VolumePlan, err error) {
	if p.recorder != nil {
		p.recorder.RecordVolumes(plans, err)
	}
}

func selectDisks(disks []string, pattern string) ([]string, error) {
	if pattern == "" {
		return disks, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid device pattern %q: %w", pattern, err)
	}

	selected := make([]string, 0, len(disks))
	for _, dev := range disks {
		if g.Match(dev) {
			selected = append(selected, dev)
		}
	}
	return selected, nil
}
