package api

import "github.com/hwameistor/layout-planner/pkg/layout"

// PartitionPlanReqBody asks for the partition plan of one disk
type PartitionPlanReqBody struct {
	Observed        layout.DiskInventory   `json:"observed"`
	Partitions      []layout.PartitionSpec `json:"partitions"`
	Label           string                 `json:"label,omitempty"`
	AllowGaps       bool                   `json:"allow_gaps,omitempty"`
	RequireExisting bool                   `json:"require_existing,omitempty"`
}

// PVPlanReqBody asks for the physical volume plan of one volume group
type PVPlanReqBody struct {
	VG    string              `json:"vg"`
	Paths []string            `json:"paths"`
	LVM   layout.LVMInventory `json:"lvm"`
}

// VolumePlanReqBody asks for the plan of the logical volumes of one group.
// Devices maps volume paths to their observed records.
type VolumePlanReqBody struct {
	Volumes []layout.VolumeSpec           `json:"volumes"`
	LVM     layout.LVMInventory           `json:"lvm"`
	Devices map[string]*layout.DeviceInfo `json:"devices,omitempty"`
}

type PartitionPlanRspBody struct {
	Plans []layout.PartitionPlan `json:"plans"`
}

type PVPlanRspBody struct {
	Plans []layout.PVPlan `json:"plans"`
}

type VolumePlanRspBody struct {
	Plans []layout.VolumePlan `json:"plans"`
}

type RspFailBody struct {
	ErrCode int    `json:"errcode"`
	Kind    string `json:"kind,omitempty"`
	Desc    string `json:"description"`
}
