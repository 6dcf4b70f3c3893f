package layout

import (
	"path/filepath"
)

// Device is the observed state of a block device path
type Device struct {
	Path      string
	Exists    bool
	StatError string
	FileType  string
	FSType    string
	Mounts    []string
}

// NewDevice builds a device from its observed record. A nil record means the
// device is unknown and treated as missing.
func NewDevice(path string, info *DeviceInfo) (*Device, error) {
	if !filepath.IsAbs(path) {
		return nil, newError(ErrSchema, path, "invalid device path: %q. Must be an absolute path", path)
	}

	dev := &Device{Path: path}
	if info == nil {
		return dev, nil
	}

	dev.Exists = info.IsExists
	dev.FileType = info.FileType
	if info.Stat != nil {
		dev.StatError = info.Stat.Error
	}
	if info.Blkid != nil {
		dev.FSType = info.Blkid.Type
	}
	for _, m := range info.Mount {
		dev.Mounts = append(dev.Mounts, m.Target)
	}
	return dev, nil
}

// IsBlockDevice reports whether the device is a block special file
func (d *Device) IsBlockDevice() bool {
	return d.FileType == BlockFileType
}

// HasFilesystem reports whether blkid found a signature on the device
func (d *Device) HasFilesystem() bool {
	return d.FSType != ""
}

// IsLVM2Member reports whether the device is already initialized as a PV
func (d *Device) IsLVM2Member() bool {
	return d.FSType == LVM2MemberFSType
}

// ValidateLVM checks that the device can be used as a physical volume: it
// exists, stats cleanly, is a block device and carries no filesystem other
// than an LVM signature.
func (d *Device) ValidateLVM() error {
	if !d.Exists {
		return newError(ErrNotFound, d.Path, "partition %s does not exist", d.Path)
	}
	if d.StatError != "" {
		return newError(ErrSchema, d.Path, "partition file %s stat error: %s", d.Path, d.StatError)
	}
	if !d.IsBlockDevice() {
		return newError(ErrMismatch, d.Path, "partition %s is not a block device (actual filetype is %q)", d.Path, d.FileType)
	}
	if d.HasFilesystem() && !d.IsLVM2Member() {
		return newError(ErrMismatch, d.Path, "partition %s contains unexpected filesystem: %s", d.Path, d.FSType)
	}
	return nil
}

// ValidateMount reports whether the device exists and is mounted at target
func (d *Device) ValidateMount(target string) bool {
	if !d.Exists || target == "" {
		return false
	}
	for _, m := range d.Mounts {
		if m == target {
			return true
		}
	}
	return false
}
