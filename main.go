package main

import (
	"os"

	"github.com/vlaanderen-mow/amsync/cli"
	"github.com/vlaanderen-mow/amsync/common"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		common.Logger.WithField("error", err).Error("pipeline run failed")
		os.Exit(1)
	}
}
