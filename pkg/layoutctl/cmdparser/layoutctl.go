package cmdparser

import (
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hwameistor/layout-planner/pkg/config"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/cmdparser/definitions"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/cmdparser/paths"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/cmdparser/plan"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/cmdparser/serve"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/cmdparser/validate"
)

var Layoutctl = &cobra.Command{
	Use:   "layoutctl",
	Args:  cobra.ExactArgs(0),
	Short: "Layoutctl plans the disk partitions and LVM volumes of a node.",
	Long: "Layoutctl compares a declared storage layout with the observed state of a node\n" +
		"and prints the actions needed to reach it. It never changes the node.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !definitions.Debug {
			log.SetOutput(io.Discard)
			return
		}
		log.SetLevel(log.DebugLevel)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Root cmd will show help only
		return cmd.Help()
	},
}

func init() {
	// Layoutctl flags
	definitions.AddFlags(Layoutctl.PersistentFlags(), config.DefaultConfigFilename)

	// Sub commands
	Layoutctl.AddCommand(plan.Plan, validate.Validate, paths.Paths, serve.Serve)
}
