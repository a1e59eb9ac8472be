package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title Incident Board API
// @version 1.0
// @description Smart city incident board: incidents, responder units and dispatch.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "incident-board",
		Short:         "Smart city incident board",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newServeCmd(), newQueueCmd())
	return root
}
