package plan

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hwameistor/layout-planner/pkg/layoutctl/formatter"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/manager"
)

var planVolumes = &cobra.Command{
	Use:     "volumes",
	Args:    cobra.ExactArgs(0),
	Short:   "Plan the logical volumes of the layout.",
	Long:    "Plan the logical volumes of the layout.",
	Example: "layoutctl plan volumes --output json",
	RunE:    planVolumesRunE,
}

func planVolumesRunE(cmd *cobra.Command, _ []string) error {
	cfg, snapshot, err := load(cmd)
	if err != nil {
		return err
	}

	planner := manager.NewPlanner()
	plans, err := planner.Volumes(cfg, snapshot)
	if err != nil {
		return err
	}
	if done, err := printJSON(cmd, plans); done {
		return err
	}

	header := table.Row{"#", "Name", "Path", "Action"}
	rows := make([]table.Row, 0, len(plans))
	for i, p := range plans {
		rows = append(rows, table.Row{i + 1, p.Name, p.Path, p.Action})
	}
	formatter.PrintTable(cmd.OutOrStdout(), "Logical Volumes", header, rows)

	groups, err := planner.Groups(cfg, snapshot)
	if err != nil {
		return err
	}
	header = table.Row{"VG", "Size", "Free", "PVs", "LVs"}
	rows = make([]table.Row, 0, len(groups))
	for _, g := range groups {
		if !g.Exists {
			rows = append(rows, table.Row{g.VG, "-", "-", "-", "-"})
			continue
		}
		lvs := make([]string, 0, len(g.Volumes))
		for _, v := range g.Volumes {
			lvs = append(lvs, v.Name+" ("+formatMiB(v.Size)+")")
		}
		rows = append(rows, table.Row{g.VG, formatMiB(g.Size), formatMiB(g.Free), strings.Join(g.PVs, ","), strings.Join(lvs, ",")})
	}
	formatter.PrintTable(cmd.OutOrStdout(), "Volume Groups", header, rows)
	return nil
}

func formatMiB(mib float64) string {
	return humanize.IBytes(uint64(mib * 1024 * 1024))
}
