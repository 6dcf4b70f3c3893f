package inventory

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
	"k8s.io/mount-utils"

	"github.com/hwameistor/layout-planner/pkg/exechelper"
	"github.com/hwameistor/layout-planner/pkg/exechelper/basicexecutor"
	"github.com/hwameistor/layout-planner/pkg/layout"
)

const (
	partedUnknownLabel = "unknown"
	blockFileType      = "b"
)

// Collector gathers the observed state of disks, LVM and devices. It only
// runs read-only commands.
type Collector struct {
	cmdExec exechelper.Executor
	mounter mount.Interface
	// pathExists stats a device path
	pathExists func(path string) (bool, error)
	logger     *log.Entry
}

// New creates a collector running commands through cmdExec
func New(cmdExec exechelper.Executor, mounter mount.Interface) *Collector {
	return &Collector{
		cmdExec:    cmdExec,
		mounter:    mounter,
		pathExists: mount.PathExists,
		logger:     log.WithField("Module", "InventoryCollector"),
	}
}

// NewLocal creates a collector for the local node
func NewLocal() *Collector {
	return New(basicexecutor.New(), mount.New(""))
}

func (c *Collector) run(name string, args ...string) (gjson.Result, exechelper.ExecResult, error) {
	params := exechelper.ExecParams{CmdName: name, CmdArgs: args}
	res := c.cmdExec.RunCommand(params)

	out := string(res.Stdout())
	if !gjson.Valid(out) || strings.TrimSpace(out) == "" {
		if err := res.Err(params); err != nil {
			return gjson.Result{}, res, err
		}
		return gjson.Result{}, res, fmt.Errorf("%w: %s printed no JSON", ErrInvalidOutput, params)
	}
	return gjson.Parse(out), res, nil
}

// Disk reads the partition table of dev with parted. A disk without a
// partition table has no partitions and no label.
func (c *Collector) Disk(dev string) (layout.DiskInventory, error) {
	logCtx := c.logger.WithField("disk", dev)

	result, res, err := c.run("parted", "-j", "-s", dev, "unit", "MiB", "print")
	if err != nil {
		if strings.Contains(res.Stderr(), "No such file or directory") || strings.Contains(res.Stderr(), "Could not stat device") {
			return layout.DiskInventory{}, fmt.Errorf("%w: %s", ErrDiskNotFound, dev)
		}
		logCtx.WithError(err).Error("Failed to read partition table")
		return layout.DiskInventory{}, err
	}

	disk := result.Get("disk")
	if !disk.Exists() {
		return layout.DiskInventory{}, fmt.Errorf("%w: no disk in parted output for %s", ErrInvalidOutput, dev)
	}

	inv := layout.DiskInventory{
		Disk:       layout.DiskInfo{Dev: dev, Unit: "mib"},
		Partitions: []layout.PartitionSpec{},
	}
	if path := disk.Get("path").String(); path != "" {
		inv.Disk.Dev = path
	}
	if label := disk.Get("label").String(); label != partedUnknownLabel {
		inv.Disk.Table = label
	}
	if size := disk.Get("size"); size.Exists() {
		if inv.Disk.Size, err = layout.ParseHumanMiB(size.String()); err != nil {
			return layout.DiskInventory{}, err
		}
	}

	for _, part := range disk.Get("partitions").Array() {
		spec := layout.PartitionSpec{Num: int(part.Get("number").Int()), Unit: "mib"}
		for name, target := range map[string]*interface{}{"start": &spec.Begin, "end": &spec.End, "size": &spec.Size} {
			value := part.Get(name)
			if !value.Exists() {
				continue
			}
			mib, err := layout.ParseHumanMiB(value.String())
			if err != nil {
				return layout.DiskInventory{}, fmt.Errorf("partition %d of %s: %w", spec.Num, dev, err)
			}
			*target = mib
		}
		inv.Partitions = append(inv.Partitions, spec)
	}

	logCtx.WithFields(log.Fields{"table": inv.Disk.Table, "partitions": len(inv.Partitions)}).Debug("Collected disk")
	return inv, nil
}

// Disks collects several disks concurrently. The result follows the order
// of devs.
func (c *Collector) Disks(ctx context.Context, devs []string) ([]layout.DiskInventory, error) {
	result := make([]layout.DiskInventory, len(devs))

	g, ctx := errgroup.WithContext(ctx)
	for i, dev := range devs {
		i, dev := i, dev
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			inv, err := c.Disk(dev)
			if err != nil {
				return err
			}
			result[i] = inv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// LVM reads the LVM report of physical volumes, groups and logical volumes
func (c *Collector) LVM() (layout.LVMInventory, error) {
	inv := layout.LVMInventory{VG: []layout.VGRecord{}, PV: []layout.PVRecord{}, LV: []layout.LVRecord{}}

	pvs, _, err := c.run("pvs", "--reportformat", "json", "--units", "m", "-o", "pv_name,vg_name,pv_attr,pv_size,pv_free")
	if err != nil {
		c.logger.WithError(err).Error("Failed to discover PVs")
		return inv, err
	}
	for _, rec := range pvs.Get("report.0.pv").Array() {
		inv.PV = append(inv.PV, layout.PVRecord{
			Name:   rec.Get("pv_name").String(),
			VGName: rec.Get("vg_name").String(),
			Attr:   rec.Get("pv_attr").String(),
			Size:   rec.Get("pv_size").String(),
			Free:   rec.Get("pv_free").String(),
		})
	}

	vgs, _, err := c.run("vgs", "--reportformat", "json", "--units", "m", "-o", "vg_name,pv_count,lv_count,vg_size,vg_free")
	if err != nil {
		c.logger.WithError(err).Error("Failed to discover VGs")
		return inv, err
	}
	for _, rec := range vgs.Get("report.0.vg").Array() {
		inv.VG = append(inv.VG, layout.VGRecord{
			Name:    rec.Get("vg_name").String(),
			Free:    rec.Get("vg_free").String(),
			Size:    rec.Get("vg_size").String(),
			PVCount: rec.Get("pv_count").String(),
			LVCount: rec.Get("lv_count").String(),
		})
	}

	lvs, _, err := c.run("lvs", "--reportformat", "json", "--units", "m", "-o", "lv_name,vg_name,lv_size,lv_attr")
	if err != nil {
		c.logger.WithError(err).Error("Failed to discover LVs")
		return inv, err
	}
	for _, rec := range lvs.Get("report.0.lv").Array() {
		inv.LV = append(inv.LV, layout.LVRecord{
			Name:   rec.Get("lv_name").String(),
			VGName: rec.Get("vg_name").String(),
			Size:   rec.Get("lv_size").String(),
			Attr:   rec.Get("lv_attr").String(),
		})
	}

	c.logger.WithFields(log.Fields{"vgs": len(inv.VG), "pvs": len(inv.PV), "lvs": len(inv.LV)}).Debug("Collected LVM")
	return inv, nil
}

// Device probes a device path with lsblk and looks up its mounts. A path
// lsblk does not know is reported as missing.
func (c *Collector) Device(path string) (*layout.DeviceInfo, error) {
	info := &layout.DeviceInfo{}

	if _, err := c.pathExists(path); err != nil {
		info.Stat = &layout.StatInfo{Error: err.Error()}
	}

	result, _, err := c.run("lsblk", "-J", "-b", "-o", "PATH,TYPE,FSTYPE", path)
	if err != nil {
		c.logger.WithField("device", path).WithError(err).Debug("Device not found by lsblk")
		return info, nil
	}
	devices := result.Get("blockdevices").Array()
	if len(devices) == 0 {
		return info, nil
	}

	info.IsExists = true
	info.FileType = blockFileType
	if fsType := devices[0].Get("fstype").String(); fsType != "" {
		info.Blkid = &layout.BlkidInfo{Type: fsType}
	}

	mounts, err := c.mounter.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list mounts: %w", err)
	}
	resolved := resolve(path)
	for _, mp := range mounts {
		if mp.Device == path || resolve(mp.Device) == resolved {
			info.Mount = append(info.Mount, layout.MountInfo{Target: mp.Path})
		}
	}
	return info, nil
}

// Devices probes every path
func (c *Collector) Devices(paths []string) (map[string]*layout.DeviceInfo, error) {
	result := make(map[string]*layout.DeviceInfo, len(paths))
	for _, path := range paths {
		info, err := c.Device(path)
		if err != nil {
			return nil, err
		}
		result[path] = info
	}
	return result, nil
}

// Collect gathers a full snapshot for the given disks and device paths
func (c *Collector) Collect(ctx context.Context, disks []string, devices []string) (*Snapshot, error) {
	snapshot := &Snapshot{Disks: map[string]layout.DiskInventory{}}

	invs, err := c.Disks(ctx, disks)
	if err != nil {
		return nil, err
	}
	for i, inv := range invs {
		snapshot.Disks[disks[i]] = inv
	}

	if snapshot.LVM, err = c.LVM(); err != nil {
		return nil, err
	}
	if snapshot.Devices, err = c.Devices(devices); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func resolve(path string) string {
	if target, err := filepath.EvalSymlinks(path); err == nil {
		return target
	}
	return path
}
