package main

import (
	"os"

	"github.com/spf13/cobra"

	"gekko/cmd/gekko/serve"
	"gekko/cmd/gekko/tools"
	"gekko/internal/logger"
)

func main() {
	logger.Init()
	rootCmd := &cobra.Command{
		Use:   "gekko",
		Short: "Gekko is a cryptocurrency market data agent",
	}

	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(tools.Cmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
