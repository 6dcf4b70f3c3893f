package plan

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hwameistor/layout-planner/pkg/layoutctl/formatter"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/manager"
)

var planPVs = &cobra.Command{
	Use:     "pvs",
	Args:    cobra.ExactArgs(0),
	Short:   "Plan the physical volumes of the layout volume groups.",
	Long:    "Plan the physical volumes of the layout volume groups.",
	Example: "layoutctl plan pvs --observed observed.json",
	RunE:    planPVsRunE,
}

func planPVsRunE(cmd *cobra.Command, _ []string) error {
	cfg, snapshot, err := load(cmd)
	if err != nil {
		return err
	}

	plans, err := manager.NewPlanner().PVs(cfg, snapshot)
	if err != nil {
		return err
	}
	if done, err := printJSON(cmd, plans); done {
		return err
	}

	header := table.Row{"#", "VG", "Path", "Action"}
	var rows []table.Row
	index := 0
	for _, group := range plans {
		for _, p := range group.Plans {
			index++
			rows = append(rows, table.Row{index, group.VG, p.Path, p.Action})
		}
	}
	formatter.PrintTable(cmd.OutOrStdout(), "Physical Volumes", header, rows)
	return nil
}
