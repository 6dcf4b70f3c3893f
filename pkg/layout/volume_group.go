package layout

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/sets"
)

// VolumeGroup plans physical and logical volumes of one named group against
// the observed LVM inventory
type VolumeGroup struct {
	Name string

	inv      *LVMInventory
	observed *groupState
	logger   *log.Entry
}

// groupState is the observed side of a volume group
type groupState struct {
	free  float64
	size  float64
	pvs   sets.String
	lvs   sets.String
	sizes map[string]float64
}

// NewVolumeGroup builds the group named name and attaches its observed state
// when the inventory reports it
func NewVolumeGroup(name string, inv *LVMInventory) (*VolumeGroup, error) {
	vg := &VolumeGroup{
		Name:   strings.TrimSpace(name),
		inv:    inv,
		logger: log.WithFields(log.Fields{"Module": "LayoutPlanner/VolumeGroup", "vg": name}),
	}
	if inv == nil {
		vg.inv = &LVMInventory{}
	}

	state, err := newGroupState(vg.Name, vg.inv)
	if err != nil {
		return nil, err
	}
	vg.observed = state
	return vg, nil
}

func newGroupState(name string, inv *LVMInventory) (*groupState, error) {
	if name == "" {
		return nil, nil
	}

	var state *groupState
	for _, rec := range inv.VG {
		if rec.Name != name {
			continue
		}
		state = &groupState{pvs: sets.NewString(), lvs: sets.NewString(), sizes: map[string]float64{}}
		if rec.Free != nil {
			free, err := lvmSizeToMiB(rec.Free)
			if err != nil {
				return nil, newError(ErrSchema, name, "invalid free space %v of volume group '%s': %v", rec.Free, name, err)
			}
			state.free = free
		}
		if rec.Size != nil {
			size, err := lvmSizeToMiB(rec.Size)
			if err != nil {
				return nil, newError(ErrSchema, name, "invalid size %v of volume group '%s': %v", rec.Size, name, err)
			}
			state.size = size
		}
		break
	}
	if state == nil {
		return nil, nil
	}

	for _, rec := range inv.PV {
		if rec.VGName == name {
			state.pvs.Insert(rec.Name)
		}
	}
	for _, rec := range inv.LV {
		if rec.VGName != name {
			continue
		}
		state.lvs.Insert(rec.Name)
		if rec.Size != nil {
			size, err := lvmSizeToMiB(rec.Size)
			if err != nil {
				return nil, newError(ErrSchema, name+"/"+rec.Name, "invalid size %v of volume '%s' in group '%s': %v",
					rec.Size, rec.Name, name, err)
			}
			state.sizes[rec.Name] = size
		}
	}
	return state, nil
}

// lvmSizeToMiB accepts LVM report sizes, which may be prefixed with '<'
// when rounded down, e.g. "<1.82t"
func lvmSizeToMiB(value interface{}) (float64, error) {
	if s, ok := value.(string); ok {
		value = strings.TrimPrefix(strings.TrimSpace(s), "<")
	}
	return ToMiB(value)
}

// Exists reports whether the group is present in the observed inventory
func (vg *VolumeGroup) Exists() bool {
	return vg.observed != nil
}

// Free returns the observed free space in MiB
func (vg *VolumeGroup) Free() float64 {
	if vg.observed == nil {
		return 0
	}
	return vg.observed.free
}

// Size returns the observed size in MiB
func (vg *VolumeGroup) Size() float64 {
	if vg.observed == nil {
		return 0
	}
	return vg.observed.size
}

// PVs returns the observed member PV paths, sorted
func (vg *VolumeGroup) PVs() []string {
	if vg.observed == nil {
		return nil
	}
	return vg.observed.pvs.List()
}

// LVs returns the observed logical volume names, sorted
func (vg *VolumeGroup) LVs() []string {
	if vg.observed == nil {
		return nil
	}
	return vg.observed.lvs.List()
}

// HasVolume reports whether the observed group holds the named volume
func (vg *VolumeGroup) HasVolume(name string) bool {
	return vg.observed != nil && vg.observed.lvs.Has(name)
}

// VolumeSize returns the observed size of the named volume in MiB
func (vg *VolumeGroup) VolumeSize(name string) (float64, bool) {
	if vg.observed == nil {
		return 0, false
	}
	size, ok := vg.observed.sizes[name]
	return size, ok
}

// GroupSummary is the observed state of one volume group, sizes in MiB
type GroupSummary struct {
	VG      string          `json:"vg"`
	Exists  bool            `json:"exists"`
	Size    float64         `json:"size"`
	Free    float64         `json:"free"`
	PVs     []string        `json:"pvs"`
	Volumes []VolumeSummary `json:"volumes"`
}

// VolumeSummary is one observed logical volume of a group
type VolumeSummary struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
}

// Summary reports the observed members and space of the group
func (vg *VolumeGroup) Summary() GroupSummary {
	summary := GroupSummary{
		VG:      vg.Name,
		Exists:  vg.Exists(),
		Size:    vg.Size(),
		Free:    vg.Free(),
		PVs:     vg.PVs(),
		Volumes: []VolumeSummary{},
	}
	for _, name := range vg.LVs() {
		size, _ := vg.VolumeSize(name)
		summary.Volumes = append(summary.Volumes, VolumeSummary{Name: name, Size: size})
	}
	return summary
}

// Validate checks that the group is named and observed
func (vg *VolumeGroup) Validate() error {
	if vg.Name == "" {
		return newError(ErrSchema, vg.Name, "volume group name must be specified")
	}
	if !vg.Exists() {
		return newError(ErrNotFound, vg.Name, "volume group '%s' not found", vg.Name)
	}
	return nil
}

// PlanVolume plans lv inside the group. A volume missing from the group must
// fit in the free space.
func (vg *VolumeGroup) PlanVolume(lv *LogicalVolume) (VolumePlan, error) {
	if err := vg.Validate(); err != nil {
		return VolumePlan{}, err
	}
	if lv.VG != vg.Name {
		return VolumePlan{}, newError(ErrSchema, lv.key(),
			"volume '%s' belongs to volume group '%s', not '%s'", lv.Name, lv.VG, vg.Name)
	}

	if vg.HasVolume(lv.Name) {
		return lv.Plan()
	}

	if lv.Size == nil {
		return VolumePlan{}, newError(ErrSchema, lv.key(), "size must be specified for volume '%s'", lv.Name)
	}
	if *lv.Size > vg.observed.free {
		return VolumePlan{}, newError(ErrCapacity, lv.key(),
			"volume '%s': requested size %.2f MiB exceeds free space of volume group '%s' (%.2f MiB)",
			lv.Name, *lv.Size, vg.Name, vg.observed.free)
	}

	vg.logger.WithFields(log.Fields{"volume": lv.Name, "size": *lv.Size, "free": vg.observed.free}).Debug("Volume planned for creation")
	return VolumePlan{Name: lv.Name, Path: lv.Path(), Action: ActionCreate}, nil
}

// PlanPVs plans every path as a member of this group, preserving the order
// of paths. The group itself may not exist yet.
func (vg *VolumeGroup) PlanPVs(paths []string) ([]PVPlan, error) {
	result := make([]PVPlan, 0, len(paths))
	for _, path := range paths {
		pv, err := NewPhysicalVolume(path, vg.inv)
		if err != nil {
			return nil, err
		}
		plan, err := pv.Plan(vg.Name)
		if err != nil {
			return nil, err
		}
		result = append(result, plan)
	}
	return result, nil
}
