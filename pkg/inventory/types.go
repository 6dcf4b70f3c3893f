package inventory

import (
	"errors"

	"github.com/hwameistor/layout-planner/pkg/layout"
)

var (
	// ErrInvalidOutput is returned when a command prints unparsable output
	ErrInvalidOutput = errors.New("invalid command output")
	// ErrDiskNotFound is returned when parted cannot open the disk
	ErrDiskNotFound = errors.New("disk not found")
)

// Snapshot is the observed state the planner compares a layout with. It is
// what the collector gathers on a node, and the format of offline snapshot
// files.
type Snapshot struct {
	Disks   map[string]layout.DiskInventory `json:"disks,omitempty" yaml:"disks,omitempty"`
	LVM     layout.LVMInventory             `json:"lvm" yaml:"lvm"`
	Devices map[string]*layout.DeviceInfo   `json:"devices,omitempty" yaml:"devices,omitempty"`
}

// Disk returns the observed inventory of dev, or an empty disk when the
// snapshot does not know it
func (s *Snapshot) Disk(dev string) layout.DiskInventory {
	if inv, ok := s.Disks[dev]; ok {
		if inv.Disk.Dev == "" {
			inv.Disk.Dev = dev
		}
		return inv
	}
	return layout.DiskInventory{Disk: layout.DiskInfo{Dev: dev}}
}

// Device returns the observed record of path, nil when unknown
func (s *Snapshot) Device(path string) *layout.DeviceInfo {
	return s.Devices[path]
}
