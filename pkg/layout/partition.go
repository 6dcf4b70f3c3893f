package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"k8s.io/utils/pointer"
)

const noPartition = -1

// Partition is one partition of a Disk. Neighbours are addressed by their
// index in the owning disk's partition slice.
type Partition struct {
	Number int
	Unit   string
	Size   *float64
	Begin  *float64
	End    *float64

	raw   PartitionSpec
	disk  string
	index int

	prev int
	next int

	// observed counterpart, read only
	state *Partition
}

func newPartition(spec PartitionSpec, index int, disk string) (*Partition, error) {
	p := &Partition{
		Unit:  spec.Unit,
		raw:   spec,
		disk:  disk,
		index: index,
		prev:  noPartition,
		next:  noPartition,
	}

	num, err := parseNumber(spec.Num)
	if err != nil {
		return nil, newError(ErrSchema, p.key(), "%s%s%s", err.Error(), p.msgIn(), p.msgDisk())
	}
	p.Number = num

	if p.Size, err = p.convert("size", spec.Size); err != nil {
		return nil, err
	}
	if p.Begin, err = p.convert("begin", spec.Begin); err != nil {
		return nil, err
	}
	if p.End, err = p.convert("end", spec.End); err != nil {
		return nil, err
	}
	return p, nil
}

func parseNumber(raw interface{}) (int, error) {
	if raw == nil {
		return 0, fmt.Errorf("missing 'num' field")
	}

	var num int
	switch v := raw.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("'num' must be an integer, got: %q", v)
		}
		num = n
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, fmt.Errorf("'num' must be an integer, got: %s", v.String())
		}
		num = n
	default:
		f, ok := numberToFloat(raw)
		if !ok || f != math.Trunc(f) {
			return 0, fmt.Errorf("'num' must be an integer, got: %v", raw)
		}
		num = int(f)
	}

	if num <= 0 {
		return 0, fmt.Errorf("'num' must be a positive integer, got: %d", num)
	}
	return num, nil
}

func (p *Partition) convert(name string, raw interface{}) (*float64, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := ToMiBWithUnit(raw, p.Unit)
	if err != nil {
		return nil, newError(ErrSchema, p.key(), "unable to convert '%s' field to MiB%s%s. Got: %v%s (%v)",
			name, p.msgFor(), p.msgDisk(), raw, p.msgUnit(), err)
	}
	return &value, nil
}

func (p *Partition) key() string {
	if path := p.Path(""); path != "" {
		return path
	}
	if p.disk != "" {
		return p.disk
	}
	return fmt.Sprintf("#%d", p.index+1)
}

func (p *Partition) msgIn() string {
	if p.index < 0 {
		return ""
	}
	return fmt.Sprintf(" in partition #%d", p.index+1)
}

func (p *Partition) msgFor() string {
	if p.Number > 0 {
		return fmt.Sprintf(" for partition %d", p.Number)
	}
	if p.index < 0 {
		return ""
	}
	return fmt.Sprintf(" for partition #%d", p.index+1)
}

func (p *Partition) msgDisk() string {
	if p.disk == "" {
		return ""
	}
	return fmt.Sprintf(" on disk '%s'", p.disk)
}

func (p *Partition) msgUnit() string {
	if p.Unit == "" {
		return ""
	}
	return fmt.Sprintf(" in '%s'", p.Unit)
}

// IsLast reports whether no partition follows this one on its disk
func (p *Partition) IsLast() bool {
	return p.next == noPartition
}

// State returns the observed partition linked to this one, if any
func (p *Partition) State() *Partition {
	return p.state
}

// Path returns the device path of the partition on disk, or on the disk the
// partition was built for when disk is empty or not a /dev path.
//
//	/dev/sda, 1     => /dev/sda1
//	/dev/nvme0n1, 1 => /dev/nvme0n1p1
func (p *Partition) Path(disk string) string {
	if disk == "" || !strings.HasPrefix(disk, "/dev/") {
		disk = p.disk
	}
	return PartitionPath(disk, p.Number)
}

// PartitionPath joins a disk device path and a partition number. Devices
// whose name ends with a digit (nvme, mmcblk, loop) get a "p" separator.
func PartitionPath(disk string, number int) string {
	if disk == "" || number <= 0 {
		return ""
	}
	last := disk[len(disk)-1]
	if strings.HasPrefix(disk, "/dev/nvme") || (last >= '0' && last <= '9') {
		return fmt.Sprintf("%sp%d", disk, number)
	}
	return fmt.Sprintf("%s%d", disk, number)
}

func (p *Partition) validate(isLast bool) error {
	return p.assertSize("size", p.raw.Size, p.Size, !isLast, false)
}

// validateExtent checks the optional begin, end and size of an observed partition
func (p *Partition) validateExtent() error {
	if err := p.assertSize("begin", p.raw.Begin, p.Begin, false, true); err != nil {
		return err
	}
	if err := p.assertSize("end", p.raw.End, p.End, false, false); err != nil {
		return err
	}
	return p.assertSize("size", p.raw.Size, p.Size, false, false)
}

func (p *Partition) assertSize(name string, raw interface{}, value *float64, required bool, allowZero bool) error {
	if raw == nil {
		if required {
			return newError(ErrSchema, p.key(), "missing '%s' field%s%s", name, p.msgFor(), p.msgDisk())
		}
		return nil
	}
	if value == nil {
		return newError(ErrSchema, p.key(), "unable to convert '%s' field to MiB%s%s. Got: %v%s",
			name, p.msgFor(), p.msgDisk(), raw, p.msgUnit())
	}
	if *value < 0 || (*value == 0 && !allowZero) {
		return newError(ErrSchema, p.key(), "expected positive '%s' field in 'MiB'%s%s. Got: %v%s",
			name, p.msgFor(), p.msgDisk(), raw, p.msgUnit())
	}
	return nil
}

func (p *Partition) copy() *Partition {
	c := &Partition{
		Number: p.Number,
		Unit:   p.Unit,
		Size:   copyFloat(p.Size),
		Begin:  copyFloat(p.Begin),
		End:    copyFloat(p.End),
		raw:    p.raw,
		disk:   p.disk,
		index:  p.index,
		prev:   noPartition,
		next:   noPartition,
	}
	return c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return pointer.Float64(*v)
}
