package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lvmInventory() *LVMInventory {
	return &LVMInventory{
		VG: []VGRecord{
			{Name: "data", Free: 1301344, Size: "1907720.00m"},
			{Name: "other_vg", Free: "<10.00g"},
		},
		PV: []PVRecord{
			{Name: "/dev/sda5", VGName: "data"},
			{Name: "/dev/sdb5", VGName: "other_vg"},
			{Name: "/dev/sdc5"},
		},
		LV: []LVRecord{
			{Name: "data1", VGName: "data", Size: "102400.00m"},
			{Name: "logs", VGName: "other_vg", Size: "1g"},
		},
	}
}

func TestDeviceValidateLVM(t *testing.T) {
	testCases := []struct {
		name    string
		info    *DeviceInfo
		kind    error
		message string
	}{
		{name: "blank block device", info: &DeviceInfo{IsExists: true, FileType: "b"}},
		{name: "existing pv", info: &DeviceInfo{IsExists: true, FileType: "b", Blkid: &BlkidInfo{Type: "LVM2_member"}}},
		{
			name:    "missing",
			info:    &DeviceInfo{IsExists: false},
			kind:    ErrNotFound,
			message: "partition /dev/sda6 does not exist",
		},
		{name: "unknown", info: nil, kind: ErrNotFound},
		{
			name:    "stat error",
			info:    &DeviceInfo{IsExists: true, FileType: "b", Stat: &StatInfo{Error: "permission denied"}},
			kind:    ErrSchema,
			message: "partition file /dev/sda6 stat error: permission denied",
		},
		{
			name: "regular file",
			info: &DeviceInfo{IsExists: true, FileType: "f"},
			kind: ErrMismatch,
		},
		{
			name:    "foreign filesystem",
			info:    &DeviceInfo{IsExists: true, FileType: "b", Blkid: &BlkidInfo{Type: "xfs"}},
			kind:    ErrMismatch,
			message: "partition /dev/sda6 contains unexpected filesystem: xfs",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLVMPartition("/dev/sda6", tc.info)
			if tc.kind == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind), "got %v", err)
			if tc.message != "" {
				assert.Equal(t, tc.message, err.Error())
			}
		})
	}

	assert.True(t, errors.Is(ValidateLVMPartition("sda6", &DeviceInfo{}), ErrSchema))
}

func TestPhysicalVolumePlan(t *testing.T) {
	inv := lvmInventory()

	testCases := []struct {
		name     string
		path     string
		vg       string
		expected Action
		kind     error
		message  string
	}{
		{name: "member of target group", path: "/dev/sda5", vg: "data", expected: ActionSkip},
		{name: "pv without group", path: "/dev/sdc5", vg: "data", expected: ActionAdd},
		{name: "not a pv", path: "/dev/sdd1", vg: "data", expected: ActionCreate},
		{
			name:    "member of another group",
			path:    "/dev/sdb5",
			vg:      "data",
			kind:    ErrConflict,
			message: "physical volume /dev/sdb5 is already part of another volume group: other_vg",
		},
		{name: "no target group", path: "/dev/sda5", vg: "", kind: ErrSchema},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pv, err := NewPhysicalVolume(tc.path, inv)
			require.NoError(t, err)

			plan, err := pv.Plan(tc.vg)
			if tc.kind != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.kind), "got %v", err)
				if tc.message != "" {
					assert.Equal(t, tc.message, err.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, PVPlan{Path: tc.path, Action: tc.expected}, plan)
		})
	}

	_, err := NewPhysicalVolume("sda5", inv)
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestValidatePVs(t *testing.T) {
	plans, err := ValidatePVs(lvmInventory(), []string{"/dev/sdd1", "/dev/sda5", "/dev/sdc5"}, "data")
	require.NoError(t, err)
	assert.Equal(t, []PVPlan{
		{Path: "/dev/sdd1", Action: ActionCreate},
		{Path: "/dev/sda5", Action: ActionSkip},
		{Path: "/dev/sdc5", Action: ActionAdd},
	}, plans)

	plans, err = ValidatePVs(&LVMInventory{}, []string{"/dev/sda5"}, "fresh")
	require.NoError(t, err)
	assert.Equal(t, []PVPlan{{Path: "/dev/sda5", Action: ActionCreate}}, plans)

	_, err = ValidatePVs(lvmInventory(), []string{"/dev/sda5", "/dev/sdb5"}, "data")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "other_vg")
}

func TestLogicalVolumeValidate(t *testing.T) {
	testCases := []struct {
		name    string
		spec    VolumeSpec
		wantErr string
	}{
		{name: "minimal", spec: VolumeSpec{Name: "data1", VG: "data", Size: "100g"}},
		{name: "full", spec: VolumeSpec{Name: "data1", VG: "data", Size: 1024, Filesystem: "xfs", Mountpoint: "/mnt/data1"}},
		{name: "missing name", spec: VolumeSpec{VG: "data", Size: "100g"}, wantErr: "volume.name: Required value"},
		{name: "missing vg", spec: VolumeSpec{Name: "data1", Size: "100g"}, wantErr: "volume.vg: Required value"},
		{name: "missing size", spec: VolumeSpec{Name: "data1", VG: "data"}, wantErr: "volume.size: Required value"},
		{name: "zero size", spec: VolumeSpec{Name: "data1", VG: "data", Size: 0}, wantErr: "volume.size: Invalid value"},
		{name: "unsupported filesystem", spec: VolumeSpec{Name: "data1", VG: "data", Size: "1g", Filesystem: "ntfs"}, wantErr: "volume.filesystem: Unsupported value"},
		{name: "relative mountpoint", spec: VolumeSpec{Name: "data1", VG: "data", Size: "1g", Mountpoint: "mnt/data1"}, wantErr: "volume.mountpoint: Invalid value"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lv, err := NewLogicalVolume(tc.spec)
			require.NoError(t, err)

			err = lv.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchema))
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	_, err := NewLogicalVolume(VolumeSpec{Name: "data1", VG: "data", Size: "100q"})
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestLogicalVolumePlan(t *testing.T) {
	testCases := []struct {
		name       string
		filesystem string
		info       *DeviceInfo
		expected   Action
		kind       error
	}{
		{name: "missing device", filesystem: "xfs", info: nil, expected: ActionCreate},
		{name: "device does not exist", filesystem: "xfs", info: &DeviceInfo{IsExists: false}, expected: ActionCreate},
		{name: "matching filesystem", filesystem: "xfs", info: &DeviceInfo{IsExists: true, Blkid: &BlkidInfo{Type: "xfs"}}, expected: ActionSkip},
		{name: "no filesystem yet", filesystem: "ext4", info: &DeviceInfo{IsExists: true}, expected: ActionFormat},
		{name: "no filesystem requested", filesystem: "", info: &DeviceInfo{IsExists: true, Blkid: &BlkidInfo{Type: "ext4"}}, expected: ActionSkip},
		{name: "different filesystem", filesystem: "xfs", info: &DeviceInfo{IsExists: true, Blkid: &BlkidInfo{Type: "ext4"}}, kind: ErrMismatch},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lv, err := NewLogicalVolume(VolumeSpec{Name: "data1", VG: "data", Size: "100g", Filesystem: tc.filesystem})
			require.NoError(t, err)
			dev, err := NewDevice(lv.Path(), tc.info)
			require.NoError(t, err)
			require.NoError(t, lv.AttachDevice(dev))

			plan, err := lv.Plan()
			if tc.kind != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.kind))
				assert.Contains(t, err.Error(), "data1")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, VolumePlan{Name: "data1", Path: "/dev/data/data1", Action: tc.expected}, plan)
		})
	}
}

func TestLogicalVolumeAttachDevice(t *testing.T) {
	lv, err := NewLogicalVolume(VolumeSpec{Name: "data1", VG: "data", Size: "1g"})
	require.NoError(t, err)

	dev, err := NewDevice("/dev/data/data2", &DeviceInfo{IsExists: true})
	require.NoError(t, err)
	assert.True(t, errors.Is(lv.AttachDevice(dev), ErrSchema))
	assert.Nil(t, lv.Device())
}

func TestVolumeGroup(t *testing.T) {
	vg, err := NewVolumeGroup("data", lvmInventory())
	require.NoError(t, err)
	require.NoError(t, vg.Validate())
	assert.True(t, vg.Exists())
	assert.Equal(t, float64(1301344), vg.Free())
	assert.Equal(t, []string{"/dev/sda5"}, vg.PVs())
	assert.Equal(t, []string{"data1"}, vg.LVs())
	size, ok := vg.VolumeSize("data1")
	assert.True(t, ok)
	assert.Equal(t, float64(102400), size)
	_, ok = vg.VolumeSize("logs")
	assert.False(t, ok)
	assert.Equal(t, GroupSummary{
		VG:      "data",
		Exists:  true,
		Size:    1907720,
		Free:    1301344,
		PVs:     []string{"/dev/sda5"},
		Volumes: []VolumeSummary{{Name: "data1", Size: 102400}},
	}, vg.Summary())

	other, err := NewVolumeGroup("other_vg", lvmInventory())
	require.NoError(t, err)
	assert.Equal(t, float64(10240), other.Free())

	missing, err := NewVolumeGroup("missing", lvmInventory())
	require.NoError(t, err)
	err = missing.Validate()
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "volume group 'missing' not found", err.Error())
	assert.Equal(t, GroupSummary{VG: "missing", Volumes: []VolumeSummary{}}, missing.Summary())

	_, err = NewVolumeGroup("broken", &LVMInventory{VG: []VGRecord{{Name: "broken", Free: "lots"}}})
	assert.True(t, errors.Is(err, ErrSchema))

	assert.NoError(t, ValidateVG("data", lvmInventory()))
	assert.True(t, errors.Is(ValidateVG("missing", lvmInventory()), ErrNotFound))
	assert.True(t, errors.Is(ValidateVG("", lvmInventory()), ErrSchema))
}

func TestVolumeGroupPlanVolume(t *testing.T) {
	testCases := []struct {
		name     string
		spec     VolumeSpec
		info     *DeviceInfo
		expected VolumePlan
		kind     error
		message  string
	}{
		{
			name:     "create in free space",
			spec:     VolumeSpec{Name: "data2", VG: "data", Size: "1000g"},
			expected: VolumePlan{Name: "data2", Path: "/dev/data/data2", Action: ActionCreate},
		},
		{
			name:    "exceeds free space",
			spec:    VolumeSpec{Name: "data2", VG: "data", Size: "204800g"},
			kind:    ErrCapacity,
			message: "volume 'data2': requested size 209715200.00 MiB exceeds free space of volume group 'data' (1301344.00 MiB)",
		},
		{
			name:     "existing volume delegates",
			spec:     VolumeSpec{Name: "data1", VG: "data", Size: "100g", Filesystem: "xfs"},
			info:     &DeviceInfo{IsExists: true},
			expected: VolumePlan{Name: "data1", Path: "/dev/data/data1", Action: ActionFormat},
		},
		{
			name:     "existing volume is not checked against free space",
			spec:     VolumeSpec{Name: "data1", VG: "data", Size: "204800g", Filesystem: "xfs"},
			info:     &DeviceInfo{IsExists: true, Blkid: &BlkidInfo{Type: "xfs"}},
			expected: VolumePlan{Name: "data1", Path: "/dev/data/data1", Action: ActionSkip},
		},
		{
			name:    "group not found",
			spec:    VolumeSpec{Name: "data1", VG: "missing", Size: "1g"},
			kind:    ErrNotFound,
			message: "volume group 'missing' not found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := ValidateVolume(tc.spec, lvmInventory(), tc.info)
			if tc.kind != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.kind), "got %v", err)
				assert.Equal(t, tc.message, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, plan)
		})
	}

	vg, err := NewVolumeGroup("data", lvmInventory())
	require.NoError(t, err)
	lv, err := NewLogicalVolume(VolumeSpec{Name: "logs", VG: "other_vg", Size: "1g"})
	require.NoError(t, err)
	_, err = vg.PlanVolume(lv)
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestValidateVolumes(t *testing.T) {
	devices := map[string]*DeviceInfo{
		"/dev/data/data1": {IsExists: true, Blkid: &BlkidInfo{Type: "xfs"}},
	}

	plans, err := ValidateVolumes([]VolumeSpec{
		{Name: "data1", VG: "data", Size: "100g", Filesystem: "xfs"},
		{Name: "data2", VG: "data", Size: "600000m", Filesystem: "xfs"},
	}, lvmInventory(), devices)
	require.NoError(t, err)
	assert.Equal(t, []VolumePlan{
		{Name: "data1", Path: "/dev/data/data1", Action: ActionSkip},
		{Name: "data2", Path: "/dev/data/data2", Action: ActionCreate},
	}, plans)

	_, err = ValidateVolumes([]VolumeSpec{
		{Name: "data2", VG: "data", Size: "700000m"},
		{Name: "data3", VG: "data", Size: "700000m"},
	}, lvmInventory(), devices)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapacity))
	assert.Contains(t, err.Error(), "data3")

	_, err = ValidateVolumes([]VolumeSpec{
		{Name: "data2", VG: "data", Size: "1g"},
		{Name: "data2", VG: "data", Size: "1g"},
	}, lvmInventory(), devices)
	assert.True(t, errors.Is(err, ErrDuplicate))

	plans, err = ValidateVolumes(nil, lvmInventory(), devices)
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestValidateMount(t *testing.T) {
	base := VolumeSpec{Name: "data1", VG: "data", Size: "100g", Filesystem: "xfs", Mountpoint: "/mnt/data1"}

	testCases := []struct {
		name     string
		spec     VolumeSpec
		info     *DeviceInfo
		expected bool
		wantErr  bool
	}{
		{name: "mounted", spec: base, info: &DeviceInfo{IsExists: true, Mount: []MountInfo{{Target: "/mnt/data1"}}}, expected: true},
		{name: "mounted elsewhere", spec: base, info: &DeviceInfo{IsExists: true, Mount: []MountInfo{{Target: "/wrong"}}}},
		{name: "not mounted", spec: base, info: &DeviceInfo{IsExists: true}},
		{name: "not existing", spec: base, info: &DeviceInfo{IsExists: false, Mount: []MountInfo{{Target: "/mnt/data1"}}}},
		{name: "unknown device", spec: base},
		{name: "unknown device without size", spec: VolumeSpec{Name: "data1", VG: "data", Mountpoint: "/mnt/data1"}},
		{
			name: "not existing with unsupported filesystem",
			spec: VolumeSpec{Name: "data1", VG: "data", Filesystem: "ntfs", Mountpoint: "/mnt/data1"},
			info: &DeviceInfo{IsExists: false},
		},
		{
			name:    "relative mountpoint",
			spec:    VolumeSpec{Name: "data1", VG: "data", Size: "100g", Mountpoint: "mnt/data1"},
			info:    &DeviceInfo{IsExists: true, Mount: []MountInfo{{Target: "mnt/data1"}}},
			wantErr: true,
		},
		{
			name:    "unsupported filesystem",
			spec:    VolumeSpec{Name: "data1", VG: "data", Size: "100g", Filesystem: "ntfs", Mountpoint: "/mnt/data1"},
			info:    &DeviceInfo{IsExists: true},
			wantErr: true,
		},
		{name: "missing size", spec: VolumeSpec{Name: "data1", VG: "data"}, info: &DeviceInfo{IsExists: true}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mounted, err := ValidateMount(tc.spec, tc.info)
			if tc.wantErr {
				assert.True(t, errors.Is(err, ErrSchema), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, mounted)
		})
	}
}
