package layout

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// VolumeInput validates a list of requested logical volumes. All volumes
// belong to one group, names and mountpoints are unique.
type VolumeInput struct {
	volumes []*LogicalVolume
}

// NewVolumeInput builds the volumes of specs in their given order
func NewVolumeInput(specs []VolumeSpec) (*VolumeInput, error) {
	in := &VolumeInput{}
	for _, spec := range specs {
		lv, err := NewLogicalVolume(spec)
		if err != nil {
			return nil, err
		}
		in.volumes = append(in.volumes, lv)
	}
	return in, nil
}

// Volumes returns the requested volumes in input order
func (in *VolumeInput) Volumes() []*LogicalVolume {
	return in.volumes
}

// VG returns the group shared by all volumes, empty when there are none
func (in *VolumeInput) VG() string {
	if len(in.volumes) == 0 {
		return ""
	}
	return in.volumes[0].VG
}

// Validate checks every volume and the constraints across them
func (in *VolumeInput) Validate() error {
	fldPath := field.NewPath("volumes")
	names := sets.NewString()
	mounts := sets.NewString()

	for i, lv := range in.volumes {
		idxPath := fldPath.Index(i)
		if err := fieldError(lv.key(), lv.validateFields(idxPath)); err != nil {
			return err
		}

		if names.Has(lv.Name) {
			return fieldError(lv.key(), field.ErrorList{field.Duplicate(idxPath.Child("name"), lv.Name)})
		}
		names.Insert(lv.Name)

		if lv.Mountpoint != "" {
			if mounts.Has(lv.Mountpoint) {
				return fieldError(lv.key(), field.ErrorList{field.Duplicate(idxPath.Child("mountpoint"), lv.Mountpoint)})
			}
			mounts.Insert(lv.Mountpoint)
		}

		if vg := in.VG(); lv.VG != vg {
			return fieldError(lv.key(), field.ErrorList{field.Invalid(idxPath.Child("vg"), lv.VG,
				fmt.Sprintf("all volumes must belong to the same volume group '%s'", vg))})
		}
	}
	return nil
}
