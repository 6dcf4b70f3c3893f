package layout

import (
	"math"
	"sort"

	log "github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/utils/pointer"
)

// DiskOptions tunes the validation of a partition list
type DiskOptions struct {
	AllowGaps  bool
	AllowEmpty bool
}

// Disk is the ordered set of partitions of one device
type Disk struct {
	Device string
	Unit   string
	Size   *float64
	// Table is the label used for planned partitions
	Table string

	parts     []*Partition
	tracked   sets.Int
	duplicate int

	rawSize interface{}
	// table reported by the observed disk, never overridden by a default
	knownTable string

	observed *Disk
	logger   *log.Entry
}

// NewDisk builds a disk from a partition list. Partitions are ordered by
// number; entries without a valid number sort last and fail validation.
func NewDisk(device string, specs []PartitionSpec, opts DiskOptions) (*Disk, error) {
	d := newEmptyDisk(device)

	for idx, spec := range sortSpecs(specs) {
		p, err := newPartition(spec, idx, device)
		if err != nil {
			return nil, err
		}
		d.addPart(p)
	}

	if err := d.Validate(opts.AllowGaps, opts.AllowEmpty); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDiskFromInventory builds the observed disk from an inventory snapshot.
// Gaps and an empty partition table are allowed there.
func NewDiskFromInventory(inv DiskInventory) (*Disk, error) {
	if inv.Disk.Dev == "" {
		return nil, newError(ErrSchema, "", "observed disk is missing the 'dev' field")
	}
	d, err := NewDisk(inv.Disk.Dev, inv.Partitions, DiskOptions{AllowGaps: true, AllowEmpty: true})
	if err != nil {
		return nil, err
	}
	if err := d.setMetadata(inv.Disk); err != nil {
		return nil, err
	}
	return d, nil
}

func newEmptyDisk(device string) *Disk {
	return &Disk{
		Device:  device,
		Table:   DefaultTable,
		tracked: sets.NewInt(),
		logger:  log.WithFields(log.Fields{"Module": "LayoutPlanner/Disk", "disk": device}),
	}
}

type specKey struct {
	num   int
	valid bool
}

func sortSpecs(specs []PartitionSpec) []PartitionSpec {
	keys := make([]specKey, len(specs))
	for i, spec := range specs {
		num, err := parseNumber(spec.Num)
		keys[i] = specKey{num: num, valid: err == nil}
	}

	order := make([]int, len(specs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := keys[order[a]], keys[order[b]]
		if ka.valid != kb.valid {
			return ka.valid
		}
		return ka.num < kb.num
	})

	sorted := make([]PartitionSpec, 0, len(specs))
	for _, i := range order {
		sorted = append(sorted, specs[i])
	}
	return sorted
}

func (d *Disk) setMetadata(info DiskInfo) error {
	d.Unit = info.Unit
	d.rawSize = info.Size
	if info.Size != nil {
		size, err := ToMiBWithUnit(info.Size, info.Unit)
		if err != nil {
			return newError(ErrSchema, d.Device, "unable to convert 'size' field to MiB for disk '%s'. Got: %v (%v)",
				d.Device, info.Size, err)
		}
		d.Size = pointer.Float64(size)
	}
	d.setTable(info.Table)
	if d.knownTable == "" {
		d.Table = DefaultTable
	}
	return nil
}

func (d *Disk) setTable(table string) {
	if supportedTables[table] {
		d.knownTable = table
		d.Table = table
	}
}

// SetTable sets the default partition table label. A label already known
// from the observed disk is kept.
func (d *Disk) SetTable(table string) {
	if d.knownTable != "" {
		return
	}
	d.setTable(table)
}

func (d *Disk) addPart(p *Partition) {
	d.parts = append(d.parts, p)

	if d.tracked.Has(p.Number) {
		if d.duplicate == 0 {
			d.duplicate = p.Number
		}
	} else {
		d.tracked.Insert(p.Number)
	}
	d.relink()
}

// relink orders the partitions by number and recomputes the neighbour indexes
func (d *Disk) relink() {
	sort.SliceStable(d.parts, func(i, j int) bool {
		return d.parts[i].Number < d.parts[j].Number
	})
	for i, p := range d.parts {
		p.prev, p.next = noPartition, noPartition
		if i > 0 {
			p.prev = i - 1
		}
		if i < len(d.parts)-1 {
			p.next = i + 1
		}
	}
}

// Partitions returns the partitions ordered by number
func (d *Disk) Partitions() []*Partition {
	parts := make([]*Partition, len(d.parts))
	copy(parts, d.parts)
	return parts
}

// Partition returns the partition with the given number
func (d *Disk) Partition(num int) *Partition {
	for _, p := range d.parts {
		if p.Number == num {
			return p
		}
	}
	return nil
}

// Prev returns the partition preceding p on this disk
func (d *Disk) Prev(p *Partition) *Partition {
	if p.prev == noPartition {
		return nil
	}
	return d.parts[p.prev]
}

// Next returns the partition following p on this disk
func (d *Disk) Next(p *Partition) *Partition {
	if p.next == noPartition {
		return nil
	}
	return d.parts[p.next]
}

// Observed returns the attached observed disk
func (d *Disk) Observed() *Disk {
	return d.observed
}

// Validate checks that partition numbers are unique and, unless allowed,
// contiguous, and that every partition but the last one declares a size.
func (d *Disk) Validate(allowGaps, allowEmpty bool) error {
	if !allowEmpty && d.tracked.Len() == 0 {
		return newError(ErrSchema, d.Device, "expected at least one partition to be provided for device '%s'", d.Device)
	}

	for _, p := range d.parts {
		if err := p.validate(p.IsLast()); err != nil {
			return err
		}
	}

	if d.duplicate != 0 {
		return newError(ErrDuplicate, d.Device, "duplicate partition number %d detected on disk '%s'", d.duplicate, d.Device)
	}

	if !allowGaps && d.tracked.Len() > 0 {
		nums := d.tracked.List()
		if len(nums) <= nums[len(nums)-1]-nums[0] {
			return newError(ErrStructural, d.Device, "partition numbers on disk '%s' contain gaps: %v", d.Device, nums)
		}
	}
	return nil
}

func (d *Disk) validateSize() error {
	if d.rawSize == nil || d.Size == nil {
		return newError(ErrSchema, d.Device, "missing 'size' field for disk '%s'", d.Device)
	}
	if *d.Size <= 0 {
		return newError(ErrSchema, d.Device, "expected positive 'size' field in 'MiB' for disk '%s'. Got: %v", d.Device, d.rawSize)
	}
	return nil
}

// AttachObserved links the disk to its observed state. The observed disk is
// copied, then each requested partition is linked to the observed partition
// with the same number.
func (d *Disk) AttachObserved(state *Disk) error {
	if state == nil {
		return newError(ErrSchema, d.Device, "no observed state given for disk '%s'", d.Device)
	}
	if d.Device != "" && state.Device != "" && d.Device != state.Device {
		return newError(ErrSchema, d.Device, "observed state of disk '%s' given for disk '%s'", state.Device, d.Device)
	}

	observed := state.clone()
	if err := observed.validateSize(); err != nil {
		return err
	}
	for _, p := range observed.parts {
		if err := p.validateExtent(); err != nil {
			return err
		}
	}

	d.observed = observed
	if observed.knownTable != "" {
		d.knownTable = observed.knownTable
		d.Table = observed.knownTable
	}
	for _, p := range d.parts {
		p.state = observed.Partition(p.Number)
	}
	return nil
}

func (d *Disk) clone() *Disk {
	c := newEmptyDisk(d.Device)
	c.Unit = d.Unit
	c.Size = copyFloat(d.Size)
	c.Table = d.Table
	c.rawSize = d.rawSize
	c.knownTable = d.knownTable
	for _, p := range d.parts {
		c.addPart(p.copy())
	}
	return c
}

// PrevNextLookup returns the nearest partitions below and above num
func (d *Disk) PrevNextLookup(num int) (prev *Partition, next *Partition) {
	for _, p := range d.parts {
		if p.Number < num {
			prev = p
		} else if p.Number > num && (next == nil || p.Number < next.Number) {
			next = p
		}
	}
	return prev, next
}

// Paths returns the device paths of all partitions
func (d *Disk) Paths() []string {
	paths := make([]string, 0, len(d.parts))
	for _, p := range d.parts {
		if path := p.Path(d.Device); path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

func (d *Disk) planTemplate(p *Partition) PartitionPlan {
	plan := PartitionPlan{
		Num:       p.Number,
		Status:    PlanStatusOK,
		Action:    ActionSkip,
		DiskLabel: d.Table,
	}
	if p.state != nil {
		if p.state.Begin != nil {
			plan.PartStart = FormatMiB(*p.state.Begin, 0)
		}
		if p.state.End != nil {
			plan.PartEnd = FormatMiB(*p.state.End, 0)
		}
	}
	return plan
}

// Plan computes the actions that bring the observed disk to the requested
// layout. Partitions planned for creation are added to a working copy of the
// observed disk so later partitions of the same call see the claimed space.
// With requireExisting every requested partition must already exist.
func (d *Disk) Plan(requireExisting bool) ([]PartitionPlan, error) {
	if d.observed == nil {
		return nil, newError(ErrSchema, d.Device, "no observed state attached to disk '%s'", d.Device)
	}

	work := d.observed.clone()
	result := make([]PartitionPlan, 0, len(d.parts))

	for _, p := range d.parts {
		if p.state != nil {
			plan, err := d.planExisting(p)
			if err != nil {
				return nil, err
			}
			result = append(result, plan)
			continue
		}

		if requireExisting {
			return nil, newError(ErrNotFound, p.key(),
				"partition %s not found, expected partition %d on disk '%s' to exist at this point (require existing is set)",
				p.Path(d.Device), p.Number, d.Device)
		}

		plan, created, err := d.planCreate(work, p)
		if err != nil {
			return nil, err
		}
		result = append(result, plan)
		work.addPart(created)
	}

	return result, nil
}

func (d *Disk) planExisting(p *Partition) (PartitionPlan, error) {
	if err := p.validate(p.IsLast()); err != nil {
		return PartitionPlan{}, err
	}

	plan := d.planTemplate(p)
	if p.Size == nil {
		if !p.state.IsLast() {
			return PartitionPlan{}, newError(ErrOrdering, p.Path(d.Device),
				"partition %d already exists on disk '%s', but no 'size' is specified and it is not the last partition",
				p.Number, d.Device)
		}
	} else if p.state.Size == nil || math.RoundToEven(*p.Size) != math.RoundToEven(*p.state.Size) {
		plan.Warning = WarningSizeMismatch
	}

	d.logger.WithFields(log.Fields{"partition": p.Number, "warning": plan.Warning}).Debug("Partition exists")
	return plan, nil
}

func (d *Disk) planCreate(work *Disk, p *Partition) (PartitionPlan, *Partition, error) {
	prev, next := work.PrevNextLookup(p.Number)

	nextBegin := *work.Size
	if next != nil {
		if next.Begin == nil {
			return PartitionPlan{}, nil, newError(ErrSchema, next.Path(d.Device),
				"missing 'begin' field for partition %d on disk '%s'", next.Number, d.Device)
		}
		nextBegin = *next.Begin
	}
	prevEnd := 0.0
	if prev != nil {
		if prev.End == nil {
			return PartitionPlan{}, nil, newError(ErrSchema, prev.Path(d.Device),
				"missing 'end' field for partition %d on disk '%s'", prev.Number, d.Device)
		}
		prevEnd = *prev.End
	}
	available := nextBegin - prevEnd

	plan := d.planTemplate(p)
	plan.Action = ActionCreate
	plan.PartStart = FormatMiB(prevEnd, 1)

	var end, size float64
	if p.Size == nil {
		if next != nil {
			return PartitionPlan{}, nil, newError(ErrOrdering, p.Path(d.Device),
				"partition %d on disk '%s': no 'size' specified and another partition %d follows",
				p.Number, d.Device, next.Number)
		}
		plan.PartEnd = SizeRemaining
		end, size = nextBegin, available
	} else {
		size = *p.Size
		if available < size {
			return PartitionPlan{}, nil, newError(ErrCapacity, p.Path(d.Device),
				"partition %d on disk '%s': requested size %.2f MiB exceeds available space (%.2f MiB)",
				p.Number, d.Device, size, available)
		}
		if next != nil && next.Number == p.Number+1 {
			// keep the 1 MiB alignment gap parted leaves before the next partition
			end = nextBegin - 1
		} else {
			end = prevEnd + size
		}
		plan.PartEnd = FormatMiB(end, 0)
	}

	d.logger.WithFields(log.Fields{
		"partition": p.Number,
		"start":     plan.PartStart,
		"end":       plan.PartEnd,
		"available": available,
	}).Debug("Partition planned for creation")

	return plan, newPlannedPartition(d.Device, p.Number, prevEnd+1, end, size), nil
}

func newPlannedPartition(disk string, num int, begin, end, size float64) *Partition {
	return &Partition{
		Number: num,
		Unit:   unitMiB,
		Begin:  pointer.Float64(begin),
		End:    pointer.Float64(end),
		Size:   pointer.Float64(size),
		raw:    PartitionSpec{Num: num, Begin: begin, End: end, Size: size, Unit: unitMiB},
		disk:   disk,
		index:  noPartition,
		prev:   noPartition,
		next:   noPartition,
	}
}
