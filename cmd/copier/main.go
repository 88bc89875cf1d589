// Command copier assembles a folder into a single markdown document.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/copier/internal/cli"
	"github.com/temirov/copier/internal/utils"
)

func main() {
	logger, err := utils.NewApplicationLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, utils.LoggerInitializationFailedMessageFormat+"\n", err)
		os.Exit(2)
	}
	if err := cli.Execute(logger); err != nil {
		logger.Error(utils.ApplicationExecutionFailedMessage, zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}
