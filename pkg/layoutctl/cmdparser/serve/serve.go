package serve

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hwameistor/layout-planner/pkg/apiserver"
	"github.com/hwameistor/layout-planner/pkg/layoutctl/manager"
)

var (
	listenAddr   string
	textfilePath string
)

var Serve = &cobra.Command{
	Use:   "serve",
	Args:  cobra.ExactArgs(0),
	Short: "Serve the planner over HTTP.",
	Long: "Serve the planner over HTTP. Requests carry both the requested and the\n" +
		"observed records, plan counters are exposed on /metrics.",
	Example: "layoutctl serve --listen :8080",
	RunE:    serveRunE,
}

func init() {
	Serve.Flags().StringVar(&listenAddr, "listen", ":8080", "Address to listen on")
	Serve.Flags().StringVar(&textfilePath, "textfile", "", "Write the plan metrics to this node-exporter textfile on exit")
}

func serveRunE(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := apiserver.NewServer(manager.Recorder)
	if err := server.Run(ctx, listenAddr); err != nil {
		return err
	}
	if textfilePath != "" {
		return manager.Recorder.WriteTextfile(textfilePath)
	}
	return nil
}
