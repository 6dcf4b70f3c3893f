package layout

import (
	"strings"
)

// ValidatePartitions plans the requested partitions of one disk against its
// observed inventory. defaultLabel is used when the disk has no partition
// table yet. allowGaps permits holes in the requested partition numbers.
func ValidatePartitions(observed DiskInventory, specs []PartitionSpec, defaultLabel string, allowGaps, requireExisting bool) ([]PartitionPlan, error) {
	desired, err := newAttachedDisk(observed, specs, allowGaps)
	if err != nil {
		return nil, err
	}
	if defaultLabel != "" {
		desired.SetTable(defaultLabel)
	}
	return desired.Plan(requireExisting)
}

// ValidatePartitionsExist checks that every requested partition exists
func ValidatePartitionsExist(observed DiskInventory, specs []PartitionSpec, allowGaps bool) error {
	desired, err := newAttachedDisk(observed, specs, allowGaps)
	if err != nil {
		return err
	}
	_, err = desired.Plan(true)
	return err
}

func newAttachedDisk(observed DiskInventory, specs []PartitionSpec, allowGaps bool) (*Disk, error) {
	state, err := NewDiskFromInventory(observed)
	if err != nil {
		return nil, err
	}
	desired, err := NewDisk(state.Device, specs, DiskOptions{AllowGaps: allowGaps})
	if err != nil {
		return nil, err
	}
	if err := desired.AttachObserved(state); err != nil {
		return nil, err
	}
	return desired, nil
}

// ValidatePartitionsInput validates the requested partitions of all disks
func ValidatePartitionsInput(partitions map[string][]PartitionSpec, allowGaps bool) error {
	_, err := NewPartitionInput(partitions, allowGaps)
	return err
}

// PartitionPathsDisk returns the device paths of the partitions of one disk
func PartitionPathsDisk(disk string, specs []PartitionSpec, allowGaps bool) ([]string, error) {
	d, err := NewDisk(disk, specs, DiskOptions{AllowGaps: allowGaps})
	if err != nil {
		return nil, err
	}
	return d.Paths(), nil
}

// PartitionPathsSystem returns the partition paths of all disks joined with
// commas, disks in device order
func PartitionPathsSystem(partitions map[string][]PartitionSpec, allowGaps bool) (string, error) {
	in, err := NewPartitionInput(partitions, allowGaps)
	if err != nil {
		return "", err
	}
	return strings.Join(in.Paths(), ","), nil
}

// ValidatePVs plans paths as physical volumes of group vg
func ValidatePVs(inv *LVMInventory, paths []string, vg string) ([]PVPlan, error) {
	group, err := NewVolumeGroup(vg, inv)
	if err != nil {
		return nil, err
	}
	return group.PlanPVs(paths)
}

// ValidateLVMPartition checks that the device at path can become a PV
func ValidateLVMPartition(path string, info *DeviceInfo) error {
	dev, err := NewDevice(path, info)
	if err != nil {
		return err
	}
	return dev.ValidateLVM()
}

// ValidateVG checks that group vg exists in the inventory
func ValidateVG(vg string, inv *LVMInventory) error {
	group, err := NewVolumeGroup(vg, inv)
	if err != nil {
		return err
	}
	return group.Validate()
}

// ValidateVolume plans one logical volume against the LVM inventory and the
// observed device at its path
func ValidateVolume(spec VolumeSpec, inv *LVMInventory, info *DeviceInfo) (VolumePlan, error) {
	lv, err := newAttachedVolume(spec, info)
	if err != nil {
		return VolumePlan{}, err
	}
	group, err := NewVolumeGroup(lv.VG, inv)
	if err != nil {
		return VolumePlan{}, err
	}
	return group.PlanVolume(lv)
}

func newAttachedVolume(spec VolumeSpec, info *DeviceInfo) (*LogicalVolume, error) {
	lv, err := NewLogicalVolume(spec)
	if err != nil {
		return nil, err
	}
	if err := lv.Validate(); err != nil {
		return nil, err
	}
	dev, err := NewDevice(lv.Path(), info)
	if err != nil {
		return nil, err
	}
	if err := lv.AttachDevice(dev); err != nil {
		return nil, err
	}
	return lv, nil
}

// ValidateVolumes plans all volumes of one group. devices maps volume paths
// to their observed records; a missing entry means the device does not exist.
// Volumes planned for creation consume the group free space in order.
func ValidateVolumes(specs []VolumeSpec, inv *LVMInventory, devices map[string]*DeviceInfo) ([]VolumePlan, error) {
	in, err := NewVolumeInput(specs)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if len(in.Volumes()) == 0 {
		return []VolumePlan{}, nil
	}

	group, err := NewVolumeGroup(in.VG(), inv)
	if err != nil {
		return nil, err
	}
	if err := group.Validate(); err != nil {
		return nil, err
	}

	result := make([]VolumePlan, 0, len(in.Volumes()))
	for _, lv := range in.Volumes() {
		dev, err := NewDevice(lv.Path(), devices[lv.Path()])
		if err != nil {
			return nil, err
		}
		if err := lv.AttachDevice(dev); err != nil {
			return nil, err
		}
		observed := group.HasVolume(lv.Name)
		plan, err := group.PlanVolume(lv)
		if err != nil {
			return nil, err
		}
		if !observed {
			group.observed.free -= *lv.Size
		}
		result = append(result, plan)
	}
	return result, nil
}

// ValidateMount reports whether the volume is mounted at its mountpoint
func ValidateMount(spec VolumeSpec, info *DeviceInfo) (bool, error) {
	if info == nil || !info.IsExists {
		return false, nil
	}
	lv, err := newAttachedVolume(spec, info)
	if err != nil {
		return false, err
	}
	return lv.device.ValidateMount(lv.Mountpoint), nil
}
