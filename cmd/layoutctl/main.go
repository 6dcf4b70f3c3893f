package main

import (
	"fmt"
	"os"

	"github.com/hwameistor/layout-planner/pkg/layoutctl/cmdparser"
)

func main() {
	err := cmdparser.Layoutctl.Execute()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
