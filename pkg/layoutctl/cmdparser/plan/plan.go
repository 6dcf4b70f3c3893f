package plan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hwameistor/layout-planner/pkg/config"
	"github.com/hwameistor/layout-planner/pkg/inventory"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/cmdparser/definitions"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/formatter"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/manager"
)

var Plan = &cobra.Command{
	Use:   "plan",
	Args:  cobra.ExactArgs(0),
	Short: "Plan the actions needed to reach the layout.",
	Long:  "Plan the actions needed to reach the layout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Root cmd will show help only
		return cmd.Help()
	},
}

func init() {
	// Plan sub commands
	Plan.AddCommand(planPartitions, planPVs, planVolumes)
}

func load(cmd *cobra.Command) (*config.Config, *inventory.Snapshot, error) {
	cfg, err := manager.LoadLayout()
	if err != nil {
		return nil, nil, err
	}
	snapshot, err := manager.LoadObserved(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, snapshot, nil
}

// printJSON reports whether the plan was printed as JSON
func printJSON(cmd *cobra.Command, v interface{}) (bool, error) {
	switch definitions.Output {
	case definitions.OutputJSON:
		return true, formatter.PrintJSON(cmd.OutOrStdout(), v)
	case definitions.OutputTable, "":
		return false, nil
	}
	return true, fmt.Errorf("unsupported output format %q", definitions.Output)
}
