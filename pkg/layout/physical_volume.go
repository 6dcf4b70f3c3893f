package layout

import (
	"path/filepath"
)

// PhysicalVolume is the observed membership of one device path
type PhysicalVolume struct {
	Path   string
	Exists bool
	// VGName is empty when the PV belongs to no group
	VGName string
	Attr   string
	Size   string
	Free   string
}

// NewPhysicalVolume looks path up in the LVM inventory
func NewPhysicalVolume(path string, inv *LVMInventory) (*PhysicalVolume, error) {
	if !filepath.IsAbs(path) {
		return nil, newError(ErrSchema, path, "invalid PV path: %q. Must be an absolute path", path)
	}

	pv := &PhysicalVolume{Path: path}
	if inv == nil {
		return pv, nil
	}
	for _, rec := range inv.PV {
		if rec.Name != path {
			continue
		}
		pv.Exists = true
		pv.VGName = rec.VGName
		pv.Attr = rec.Attr
		pv.Size = rec.Size
		pv.Free = rec.Free
		break
	}
	return pv, nil
}

// ValidateGroup reports whether the PV already belongs to vg. A PV that is
// a member of another group is a conflict.
func (pv *PhysicalVolume) ValidateGroup(vg string) (bool, error) {
	if !pv.Exists || pv.VGName == "" {
		return false, nil
	}
	if pv.VGName == vg {
		return true, nil
	}
	return false, newError(ErrConflict, pv.Path,
		"physical volume %s is already part of another volume group: %s", pv.Path, pv.VGName)
}

// Plan returns the action that makes the PV a member of vg
func (pv *PhysicalVolume) Plan(vg string) (PVPlan, error) {
	if vg == "" {
		return PVPlan{}, newError(ErrSchema, pv.Path,
			"volume group name must be specified to determine action for physical volume %s", pv.Path)
	}

	member, err := pv.ValidateGroup(vg)
	if err != nil {
		return PVPlan{}, err
	}

	plan := PVPlan{Path: pv.Path}
	switch {
	case member:
		plan.Action = ActionSkip
	case pv.Exists:
		plan.Action = ActionAdd
	default:
		plan.Action = ActionCreate
	}
	return plan, nil
}
