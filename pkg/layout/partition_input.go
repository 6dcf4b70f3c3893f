package layout

import (
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// PartitionInput validates the requested partitions of every disk
type PartitionInput struct {
	disks []*Disk
}

// NewPartitionInput builds and validates one Disk per device. Disks are kept
// in device order.
func NewPartitionInput(partitions map[string][]PartitionSpec, allowGaps bool) (*PartitionInput, error) {
	devices := make([]string, 0, len(partitions))
	for dev := range partitions {
		devices = append(devices, dev)
	}
	sort.Strings(devices)

	fldPath := field.NewPath("partitions")
	in := &PartitionInput{}
	for _, dev := range devices {
		if !strings.HasPrefix(dev, "/dev/") {
			return nil, fieldError(dev, field.ErrorList{
				field.Invalid(fldPath.Key(dev), dev, "disk must be a device path under /dev"),
			})
		}
		d, err := NewDisk(dev, partitions[dev], DiskOptions{AllowGaps: allowGaps})
		if err != nil {
			return nil, err
		}
		in.disks = append(in.disks, d)
	}
	return in, nil
}

// Disks returns the validated disks in device order
func (in *PartitionInput) Disks() []*Disk {
	return in.disks
}

// Paths returns the partition device paths of all disks
func (in *PartitionInput) Paths() []string {
	var paths []string
	for _, d := range in.disks {
		paths = append(paths, d.Paths()...)
	}
	return paths
}
