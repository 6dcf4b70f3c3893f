package validate

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hwameistor/layout-planner/pkg/config"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/cmdparser/definitions"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/manager"
)

var (
	checkObserved bool
	watch         bool
)

var Validate = &cobra.Command{
	Use:   "validate",
	Args:  cobra.ExactArgs(0),
	Short: "Validate the layout file.",
	Long: "You can use 'layoutctl validate' to check the layout file alone.\n" +
		"With '--observed-state' it also checks that every partition exists, every\n" +
		"physical volume device can join LVM and every volume is mounted as requested.",
	Example: "layoutctl validate --config layout.yaml\n" +
		"layoutctl validate --watch\n" +
		"layoutctl validate --observed-state --observed observed.json",
	RunE: validateRunE,
}

func init() {
	Validate.Flags().BoolVar(&checkObserved, "observed-state", false, "Check the layout against the observed state")
	Validate.Flags().BoolVar(&watch, "watch", false, "Validate the layout file again on every change")
}

func validateRunE(cmd *cobra.Command, _ []string) error {
	if watch {
		return watchRunE(cmd)
	}

	cfg, err := manager.LoadLayout()
	if err != nil {
		return err
	}
	if !checkObserved {
		fmt.Fprintln(cmd.OutOrStdout(), "layout is valid")
		return nil
	}

	snapshot, err := manager.LoadObserved(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	problems := manager.NewPlanner().Check(cfg, snapshot)
	for _, problem := range problems {
		fmt.Fprintln(cmd.OutOrStdout(), problem)
	}
	if len(problems) > 0 {
		return fmt.Errorf("layout does not match the observed state: %d problem(s)", len(problems))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "layout matches the observed state")
	return nil
}

func watchRunE(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return config.Watch(ctx, definitions.ConfigPath, func(_ *config.Config, err error) {
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), "layout is valid")
	})
}
