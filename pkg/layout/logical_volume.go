package layout

import (
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/utils/pointer"
)

// LogicalVolume is a requested logical volume
type LogicalVolume struct {
	Name       string
	VG         string
	Size       *float64
	Filesystem string
	Mountpoint string

	raw    VolumeSpec
	device *Device
}

// NewLogicalVolume builds a volume from its spec. The size is converted but
// not validated, call Validate for that.
func NewLogicalVolume(spec VolumeSpec) (*LogicalVolume, error) {
	lv := &LogicalVolume{
		Name:       strings.TrimSpace(spec.Name),
		VG:         strings.TrimSpace(spec.VG),
		Filesystem: spec.Filesystem,
		Mountpoint: spec.Mountpoint,
		raw:        spec,
	}

	if spec.Size != nil {
		size, err := ToMiB(spec.Size)
		if err != nil {
			return nil, newError(ErrSchema, lv.key(), "unable to convert 'size' field to MiB for volume '%s'. Got: %v (%v)",
				lv.Name, spec.Size, err)
		}
		lv.Size = pointer.Float64(size)
	}
	return lv, nil
}

func (lv *LogicalVolume) key() string {
	if lv.VG != "" && lv.Name != "" {
		return lv.VG + "/" + lv.Name
	}
	return lv.Name
}

// Path returns the device mapper symlink of the volume
func (lv *LogicalVolume) Path() string {
	if lv.VG == "" || lv.Name == "" {
		return ""
	}
	return fmt.Sprintf("/dev/%s/%s", lv.VG, lv.Name)
}

// Validate checks the requested volume attributes
func (lv *LogicalVolume) Validate() error {
	return fieldError(lv.key(), lv.validateFields(field.NewPath("volume")))
}

func (lv *LogicalVolume) validateFields(fldPath *field.Path) field.ErrorList {
	allErrs := field.ErrorList{}

	if lv.Name == "" {
		allErrs = append(allErrs, field.Required(fldPath.Child("name"), "volume name must be specified"))
	} else if strings.Contains(lv.Name, "/") {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("name"), lv.Name, "volume name must not contain '/'"))
	}
	if lv.VG == "" {
		allErrs = append(allErrs, field.Required(fldPath.Child("vg"),
			fmt.Sprintf("volume group must be specified for volume '%s'", lv.Name)))
	}
	if lv.raw.Size == nil {
		allErrs = append(allErrs, field.Required(fldPath.Child("size"),
			fmt.Sprintf("size must be specified for volume '%s'", lv.Name)))
	} else if lv.Size == nil || *lv.Size <= 0 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("size"), lv.raw.Size,
			fmt.Sprintf("expected positive size in 'MiB' for volume '%s'", lv.Name)))
	}
	if lv.Filesystem != "" && !supportedFilesystems[lv.Filesystem] {
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("filesystem"), lv.Filesystem,
			sets.StringKeySet(supportedFilesystems).List()))
	}
	if lv.Mountpoint != "" && !filepath.IsAbs(lv.Mountpoint) {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("mountpoint"), lv.Mountpoint,
			fmt.Sprintf("mountpoint of volume '%s' must be an absolute path", lv.Name)))
	}
	return allErrs
}

// AttachDevice links the observed device found at the volume path
func (lv *LogicalVolume) AttachDevice(dev *Device) error {
	if dev == nil {
		return nil
	}
	if path := lv.Path(); path != "" && dev.Path != path {
		return newError(ErrSchema, lv.key(), "device %s does not belong to volume '%s' (expected %s)", dev.Path, lv.Name, path)
	}
	lv.device = dev
	return nil
}

// Device returns the attached device
func (lv *LogicalVolume) Device() *Device {
	return lv.device
}

// Exists reports whether the attached device exists
func (lv *LogicalVolume) Exists() bool {
	return lv.device != nil && lv.device.Exists
}

// Plan compares the volume with its attached device. A missing device means
// the volume must be created.
func (lv *LogicalVolume) Plan() (VolumePlan, error) {
	plan := VolumePlan{Name: lv.Name, Path: lv.Path(), Action: ActionCreate}
	if !lv.Exists() {
		return plan, nil
	}

	plan.Action = ActionSkip
	if lv.Filesystem == "" {
		return plan, nil
	}

	fsType := lv.device.FSType
	switch {
	case fsType == "":
		plan.Action = ActionFormat
	case fsType != lv.Filesystem:
		return VolumePlan{}, newError(ErrMismatch, lv.key(),
			"volume '%s' at %s has filesystem %s, expected %s", lv.Name, plan.Path, fsType, lv.Filesystem)
	}

	log.WithFields(log.Fields{"Module": "LayoutPlanner/Volume", "volume": lv.key(), "action": plan.Action}).Debug("Volume planned")
	return plan, nil
}
