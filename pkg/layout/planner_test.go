package layout_test

import (
	"errors"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hwameistor/layout-planner/pkg/layout"
)

const diskSize = 4096

// apply turns a partition plan into the inventory parted would report once
// the plan has been carried out
func apply(observed layout.DiskInventory, desired []layout.PartitionSpec, plans []layout.PartitionPlan) layout.DiskInventory {
	sizes := map[int]interface{}{}
	for _, spec := range desired {
		num, _ := strconv.Atoi(strings.TrimSpace(toString(spec.Num)))
		sizes[num] = spec.Size
	}

	applied := layout.DiskInventory{Disk: observed.Disk, Partitions: append([]layout.PartitionSpec{}, observed.Partitions...)}
	applied.Disk.Table = plans[0].DiskLabel
	for _, plan := range plans {
		if plan.Action != layout.ActionCreate {
			continue
		}
		begin := mib(plan.PartStart)
		end := float64(diskSize)
		if plan.PartEnd != layout.SizeRemaining {
			end = mib(plan.PartEnd)
		}
		var size interface{} = end - begin + 1
		if sizes[plan.Num] != nil {
			requested, err := layout.ToMiB(sizes[plan.Num])
			Expect(err).NotTo(HaveOccurred())
			size = requested
		}
		applied.Partitions = append(applied.Partitions, layout.PartitionSpec{Num: plan.Num, Begin: begin, End: end, Size: size})
	}
	return applied
}

func toString(v interface{}) string {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case string:
		return n
	}
	return ""
}

func mib(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "MiB"), 64)
	Expect(err).NotTo(HaveOccurred())
	return v
}

func emptyDisk() layout.DiskInventory {
	return layout.DiskInventory{Disk: layout.DiskInfo{Dev: "/dev/sda", Size: diskSize, Unit: "MiB"}}
}

func withFirstPartition() layout.DiskInventory {
	inv := emptyDisk()
	inv.Disk.Table = "gpt"
	inv.Partitions = []layout.PartitionSpec{{Num: 1, Begin: 0, End: 1024, Size: 1024}}
	return inv
}

var _ = Describe("Disk planner", func() {
	requests := map[string][]layout.PartitionSpec{
		"single unbounded":  {{Num: 1}},
		"sized then rest":   {{Num: 1, Size: "1g"}, {Num: 2, Size: "512m"}, {Num: 3}},
		"all sized":         {{Num: 1, Size: 100}, {Num: 2, Size: 200}, {Num: 3, Size: 300}},
		"unordered request": {{Num: 3}, {Num: 2, Size: "1g"}, {Num: 1, Size: "1g"}},
		"fills the disk":    {{Num: 1, Size: "2g"}, {Num: 2, Size: "2g"}},
	}

	Context("on an empty disk", func() {
		for name, desired := range requests {
			name, desired := name, desired

			It("returns every requested number in order for "+name, func() {
				plans, err := layout.ValidatePartitions(emptyDisk(), desired, "", false, false)
				Expect(err).NotTo(HaveOccurred())
				Expect(plans).To(HaveLen(len(desired)))
				for i, plan := range plans {
					Expect(plan.Num).To(Equal(i + 1))
					Expect(plan.Status).To(Equal(layout.PlanStatusOK))
					Expect(plan.DiskLabel).To(Equal(layout.DefaultTable))
				}
			})

			It("keeps created extents inside the disk and apart for "+name, func() {
				plans, err := layout.ValidatePartitions(emptyDisk(), desired, "", false, false)
				Expect(err).NotTo(HaveOccurred())

				lastEnd := 0.0
				for _, plan := range plans {
					Expect(plan.Action).To(Equal(layout.ActionCreate))
					start := mib(plan.PartStart)
					Expect(start).To(BeNumerically(">", lastEnd))
					if plan.PartEnd == layout.SizeRemaining {
						lastEnd = diskSize
						continue
					}
					end := mib(plan.PartEnd)
					Expect(end).To(BeNumerically(">=", start))
					Expect(end).To(BeNumerically("<=", diskSize))
					lastEnd = end
				}
			})

			It("is deterministic and idempotent for "+name, func() {
				first, err := layout.ValidatePartitions(emptyDisk(), desired, "", false, false)
				Expect(err).NotTo(HaveOccurred())
				again, err := layout.ValidatePartitions(emptyDisk(), desired, "", false, false)
				Expect(err).NotTo(HaveOccurred())
				Expect(again).To(Equal(first))

				applied := apply(emptyDisk(), desired, first)
				replanned, err := layout.ValidatePartitions(applied, desired, "", false, false)
				Expect(err).NotTo(HaveOccurred())
				for _, plan := range replanned {
					Expect(plan.Action).To(Equal(layout.ActionSkip))
					Expect(plan.Warning).To(BeEmpty())
				}
			})
		}

		It("does not move lower extents when higher partitions are added", func() {
			short := []layout.PartitionSpec{{Num: 1, Size: "1g"}, {Num: 2, Size: "1g"}}
			long := append(append([]layout.PartitionSpec{}, short...), layout.PartitionSpec{Num: 3, Size: "1g"}, layout.PartitionSpec{Num: 4})

			first, err := layout.ValidatePartitions(emptyDisk(), short, "", false, false)
			Expect(err).NotTo(HaveOccurred())
			second, err := layout.ValidatePartitions(emptyDisk(), long, "", false, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(second[:len(first)]).To(Equal(first))
		})
	})

	Context("next to observed partitions", func() {
		It("creates a sized partition after the first one", func() {
			plans, err := layout.ValidatePartitions(withFirstPartition(), []layout.PartitionSpec{{Num: 2, Size: 1024}}, "", false, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(plans).To(HaveLen(1))
			Expect(plans[0].Action).To(Equal(layout.ActionCreate))
			Expect(plans[0].PartStart).To(Equal("1025MiB"))
			Expect(plans[0].PartEnd).To(Equal("2048MiB"))
		})

		It("creates an unbounded partition after the first one", func() {
			plans, err := layout.ValidatePartitions(withFirstPartition(), []layout.PartitionSpec{{Num: 2}}, "", false, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(plans[0].Action).To(Equal(layout.ActionCreate))
			Expect(plans[0].PartEnd).To(Equal(layout.SizeRemaining))
		})

		It("refuses an unbounded partition before an observed one", func() {
			inv := emptyDisk()
			inv.Partitions = []layout.PartitionSpec{{Num: 2, Begin: 1025, End: 2048, Size: 1024}}

			_, err := layout.ValidatePartitions(inv, []layout.PartitionSpec{{Num: 1}}, "", false, false)
			Expect(errors.Is(err, layout.ErrOrdering)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("partition 2"))
		})

		It("re-plans an applied layout as skip", func() {
			desired := []layout.PartitionSpec{{Num: 1, Size: 1024}, {Num: 2, Size: "1g"}, {Num: 3}}
			plans, err := layout.ValidatePartitions(withFirstPartition(), desired, "", false, false)
			Expect(err).NotTo(HaveOccurred())

			applied := apply(withFirstPartition(), desired, plans)
			Expect(applied.Partitions).To(HaveLen(3))

			replanned, err := layout.ValidatePartitions(applied, desired, "", false, true)
			Expect(err).NotTo(HaveOccurred())
			for _, plan := range replanned {
				Expect(plan.Action).To(Equal(layout.ActionSkip))
				Expect(plan.Warning).To(BeEmpty())
			}
		})
	})
})

var _ = Describe("Volume group planner", func() {
	var inv *layout.LVMInventory

	BeforeEach(func() {
		inv = &layout.LVMInventory{
			VG: []layout.VGRecord{{Name: "data", Free: 1301344}},
			PV: []layout.PVRecord{{Name: "/dev/sda5", VGName: "other_vg"}},
		}
	})

	It("rejects a volume larger than the free space", func() {
		_, err := layout.ValidateVolume(layout.VolumeSpec{Name: "big", VG: "data", Size: "204800g"}, inv, nil)
		Expect(errors.Is(err, layout.ErrCapacity)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("big"))
	})

	It("rejects a physical volume of another group", func() {
		_, err := layout.ValidatePVs(inv, []string{"/dev/sda5"}, "data")
		Expect(errors.Is(err, layout.ErrConflict)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("other_vg"))
	})

	It("treats an empty group name as no group", func() {
		inv.PV = []layout.PVRecord{{Name: "/dev/sda5", VGName: ""}}
		plans, err := layout.ValidatePVs(inv, []string{"/dev/sda5"}, "data")
		Expect(err).NotTo(HaveOccurred())
		Expect(plans).To(Equal([]layout.PVPlan{{Path: "/dev/sda5", Action: layout.ActionAdd}}))
	})
})
