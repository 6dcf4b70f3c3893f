package paths

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hwameistor/layout-planner/pkg/layout"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/manager"
)

var Paths = &cobra.Command{
	Use:   "paths",
	Args:  cobra.ExactArgs(0),
	Short: "Print the device paths of the layout partitions.",
	Long: "Print the device paths of all requested partitions, comma separated,\n" +
		"disks in device order.",
	Example: "layoutctl paths --config layout.yaml",
	RunE:    pathsRunE,
}

func pathsRunE(cmd *cobra.Command, _ []string) error {
	cfg, err := manager.LoadLayout()
	if err != nil {
		return err
	}
	paths, err := layout.PartitionPathsSystem(cfg.Partitions, cfg.Defaults.AllowGaps)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), paths)
	return nil
}
