package definitions

import (
	"time"

	"github.com/spf13/pflag"
)

// Global settings, read from layoutctl flags
var (
	Debug        bool
	ConfigPath   string
	ObservedPath string
	Output       string
	Timeout      time.Duration
)

// output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// AddFlags registers the global settings on fs
func AddFlags(fs *pflag.FlagSet, defaultConfig string) {
	fs.BoolVar(&Debug, "debug", false, "Enable debug mode")
	fs.StringVar(&ConfigPath, "config", defaultConfig, "Specify the layout file")
	fs.StringVar(&ObservedPath, "observed", "", "Plan against an observed state snapshot file instead of the local node")
	fs.StringVarP(&Output, "output", "o", OutputTable, "Output format, table or json")
	fs.DurationVar(&Timeout, "timeout", 30*time.Second, "Set the inventory collection timeout")
}
