package main

import (
	"fmt"

	"github.com/temirov/fsmcp/internal/cli"
	"github.com/temirov/fsmcp/internal/utils"
)

// main is the entry point for the fsmcp command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(utils.DefaultLogLevel)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
