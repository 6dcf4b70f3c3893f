package plan

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hwameistor/layout-planner/pkg/layoutctl/formatter"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/manager"
	"github.com/hwameistor/layout-planner/pkg/planner"
)

var (
	deviceGlob      string
	requireExisting bool
)

var planPartitions = &cobra.Command{
	Use:   "partitions",
	Args:  cobra.ExactArgs(0),
	Short: "Plan the partitions of the layout disks.",
	Long: "You can use 'layoutctl plan partitions' to plan every disk of the layout.\n" +
		"Use '--device' to plan only the disks matching a glob pattern.",
	Example: "layoutctl plan partitions --config layout.yaml\n" +
		"layoutctl plan partitions --device '/dev/nvme*' --output json",
	RunE: planPartitionsRunE,
}

func init() {
	// Plan partitions flags
	planPartitions.Flags().StringVar(&deviceGlob, "device", "", "Filter disks by a glob pattern")
	planPartitions.Flags().BoolVar(&requireExisting, "require-existing", false, "Fail when a requested partition does not exist yet")
}

func planPartitionsRunE(cmd *cobra.Command, _ []string) error {
	cfg, snapshot, err := load(cmd)
	if err != nil {
		return err
	}

	plans, err := manager.NewPlanner().Partitions(cmd.Context(), cfg, snapshot,
		planner.PartitionOptions{DeviceGlob: deviceGlob, RequireExisting: requireExisting})
	if err != nil {
		return err
	}
	if done, err := printJSON(cmd, plans); done {
		return err
	}

	header := table.Row{"#", "Disk", "Num", "Action", "Status", "Label", "Start", "End", "Warning"}
	var rows []table.Row
	index := 0
	for _, disk := range plans {
		for _, p := range disk.Plans {
			index++
			rows = append(rows, table.Row{index, disk.Disk, p.Num, p.Action, p.Status, p.DiskLabel,
				p.PartStart, p.PartEnd, p.Warning})
		}
	}
	formatter.PrintTable(cmd.OutOrStdout(), "Partitions", header, rows)
	return nil
}
