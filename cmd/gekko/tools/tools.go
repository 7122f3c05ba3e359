package tools

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gekko/internal/capability"
	"gekko/internal/config"
	"gekko/internal/toolkit"
	"gekko/internal/toolkit/coingecko"
	"gekko/internal/toolkit/evm"
	"gekko/internal/toolkit/web"
)

// Cmd prints the capability set the agent would serve with, after
// sanitization and filtering. Useful for checking what a config exposes.
var Cmd = &cobra.Command{
	Use:   "tools",
	Short: "List the capabilities the agent would register",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		wallet, err := evm.NewPlugin(ctx, evm.Config{
			RPCURL:  cfg.Credentials.RPCURL,
			Address: cfg.Wallet.Address,
		})
		if err != nil {
			return fmt.Errorf("building evm plugin: %w", err)
		}
		defer wallet.Close()

		plugins := []toolkit.Plugin{
			coingecko.NewPlugin(coingecko.Config{APIKey: cfg.Credentials.CoinGeckoAPIKey}),
			wallet,
		}
		if cfg.Services.Brave.APIKey != "" {
			plugins = append(plugins, web.NewPlugin(cfg.Services.Brave.APIKey))
		}

		discovered, err := toolkit.Discover(ctx, plugins...)
		if err != nil {
			return fmt.Errorf("discovering tools: %w", err)
		}

		for _, tool := range toolkit.Exclude(discovered, "get_chain") {
			fmt.Printf("%-40s %s\n", capability.SanitizeName(tool.Name()), tool.Description())
		}
		return nil
	},
}
