package layout

// Action is the change a plan record asks for
type Action string

// actions
const (
	ActionCreate Action = "create"
	ActionSkip   Action = "skip"
	ActionAdd    Action = "add"
	ActionFormat Action = "format"
)

// PlanStatusOK is the status of every returned partition plan record
const PlanStatusOK = "ok"

// WarningSizeMismatch is set on an existing partition whose size differs from the request
const WarningSizeMismatch = "size mismatch"

// DefaultTable is the partition table used when the disk has none yet
const DefaultTable = "gpt"

// supported partition table labels
var supportedTables = map[string]bool{
	"aix":   true,
	"amiga": true,
	"bsd":   true,
	"dvh":   true,
	"gpt":   true,
	"mac":   true,
	"msdos": true,
	"pc98":  true,
	"sun":   true,
	"atari": true,
	"loop":  true,
}

// supported logical volume filesystems
var supportedFilesystems = map[string]bool{
	"ext4":  true,
	"xfs":   true,
	"btrfs": true,
}

// LVM2MemberFSType is the blkid type of a device already initialized as a PV
const LVM2MemberFSType = "LVM2_member"

// BlockFileType is the filetype of a block device in a device record
const BlockFileType = "b"

// PartitionSpec is one requested or observed partition. Num and the size
// fields are kept raw so malformed input is reported as a schema error.
type PartitionSpec struct {
	Num   interface{} `json:"num,omitempty" yaml:"num,omitempty"`
	Size  interface{} `json:"size,omitempty" yaml:"size,omitempty"`
	Begin interface{} `json:"begin,omitempty" yaml:"begin,omitempty"`
	End   interface{} `json:"end,omitempty" yaml:"end,omitempty"`
	Unit  string      `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// DiskInfo describes an observed disk
type DiskInfo struct {
	Dev   string      `json:"dev" yaml:"dev"`
	Size  interface{} `json:"size,omitempty" yaml:"size,omitempty"`
	Unit  string      `json:"unit,omitempty" yaml:"unit,omitempty"`
	Table string      `json:"table,omitempty" yaml:"table,omitempty"`
}

// DiskInventory is the observed state of one disk
type DiskInventory struct {
	Disk       DiskInfo        `json:"disk" yaml:"disk"`
	Partitions []PartitionSpec `json:"partitions" yaml:"partitions"`
}

// VolumeSpec is a requested logical volume
type VolumeSpec struct {
	Name       string      `json:"name" yaml:"name"`
	VG         string      `json:"vg" yaml:"vg"`
	Size       interface{} `json:"size" yaml:"size"`
	Filesystem string      `json:"filesystem,omitempty" yaml:"filesystem,omitempty"`
	Mountpoint string      `json:"mountpoint,omitempty" yaml:"mountpoint,omitempty"`
}

// VGRecord is a volume group line of the LVM report
type VGRecord struct {
	Name    string      `json:"vg_name" yaml:"vg_name"`
	Free    interface{} `json:"vg_free,omitempty" yaml:"vg_free,omitempty"`
	Size    interface{} `json:"vg_size,omitempty" yaml:"vg_size,omitempty"`
	PVCount string      `json:"pv_count,omitempty" yaml:"pv_count,omitempty"`
	LVCount string      `json:"lv_count,omitempty" yaml:"lv_count,omitempty"`
}

// PVRecord is a physical volume line of the LVM report
type PVRecord struct {
	Name   string `json:"pv_name" yaml:"pv_name"`
	VGName string `json:"vg_name,omitempty" yaml:"vg_name,omitempty"`
	Attr   string `json:"pv_attr,omitempty" yaml:"pv_attr,omitempty"`
	Size   string `json:"pv_size,omitempty" yaml:"pv_size,omitempty"`
	Free   string `json:"pv_free,omitempty" yaml:"pv_free,omitempty"`
}

// LVRecord is a logical volume line of the LVM report
type LVRecord struct {
	Name   string      `json:"lv_name" yaml:"lv_name"`
	VGName string      `json:"vg_name" yaml:"vg_name"`
	Size   interface{} `json:"lv_size,omitempty" yaml:"lv_size,omitempty"`
	Attr   string      `json:"lv_attr,omitempty" yaml:"lv_attr,omitempty"`
}

// LVMInventory is the observed LVM state
type LVMInventory struct {
	VG []VGRecord `json:"vg" yaml:"vg"`
	PV []PVRecord `json:"pv" yaml:"pv"`
	LV []LVRecord `json:"lv" yaml:"lv"`
}

// BlkidInfo holds the probed filesystem type of a device
type BlkidInfo struct {
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// MountInfo is one mount of a device
type MountInfo struct {
	Target string `json:"target" yaml:"target"`
}

// StatInfo carries a stat failure of a device path
type StatInfo struct {
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// DeviceInfo is the observed state of a device path
type DeviceInfo struct {
	IsExists bool        `json:"is_exists" yaml:"is_exists"`
	FileType string      `json:"filetype,omitempty" yaml:"filetype,omitempty"`
	Blkid    *BlkidInfo  `json:"blkid,omitempty" yaml:"blkid,omitempty"`
	Mount    []MountInfo `json:"mount,omitempty" yaml:"mount,omitempty"`
	Stat     *StatInfo   `json:"stat,omitempty" yaml:"stat,omitempty"`
}

// PartitionPlan is the plan record of one partition
type PartitionPlan struct {
	Num       int    `json:"num" yaml:"num"`
	Status    string `json:"status" yaml:"status"`
	Action    Action `json:"action" yaml:"action"`
	Warning   string `json:"warning" yaml:"warning"`
	Error     string `json:"error" yaml:"error"`
	DiskLabel string `json:"disk_label" yaml:"disk_label"`
	PartStart string `json:"part_start" yaml:"part_start"`
	PartEnd   string `json:"part_end" yaml:"part_end"`
}

// PVPlan is the plan record of one physical volume
type PVPlan struct {
	Path   string `json:"path" yaml:"path"`
	Action Action `json:"action" yaml:"action"`
}

// VolumePlan is the plan record of one logical volume
type VolumePlan struct {
	Name   string `json:"name" yaml:"name"`
	Path   string `json:"path" yaml:"path"`
	Action Action `json:"action" yaml:"action"`
}

// IsSupportedTable reports whether label is a partition table parted can create
func IsSupportedTable(label string) bool {
	return supportedTables[label]
}
