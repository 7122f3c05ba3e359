package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gekko/internal/agent"
	"gekko/internal/capability"
	"gekko/internal/channels"
	"gekko/internal/config"
	"gekko/internal/gateway"
	"gekko/internal/llm"
	"gekko/internal/toolkit"
	"gekko/internal/toolkit/coingecko"
	"gekko/internal/toolkit/evm"
	"gekko/internal/toolkit/web"
	"gekko/internal/trace"
)

// chainToolFilter drops chain-identification tools; the agent answers market
// questions, not "which chain am I on".
const chainToolFilter = "get_chain"

var addr string

var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agent and its gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if addr != "" {
			cfg.Gateway.Addr = addr
		}

		if cfg.Trace.Enabled {
			shutdown, err := trace.Init(ctx, trace.Config{
				Endpoint: cfg.Trace.Endpoint,
				URLPath:  cfg.Trace.URLPath,
				APIKey:   cfg.Trace.APIKey,
			})
			if err != nil {
				return fmt.Errorf("initializing tracing: %w", err)
			}
			defer shutdown(context.Background())
		}

		capabilities, cleanup, err := buildCapabilities(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		provider := llm.NewOpenAI(cfg.Model.BaseURL, cfg.Credentials.OpenAIAPIKey, cfg.Model.Name)
		runner := agent.NewReactRunner(provider)
		if err := runner.RegisterCapabilities(capabilities); err != nil {
			return fmt.Errorf("registering capabilities: %w", err)
		}

		chs := channels.Build(cfg.Channels, runner)

		srv := gateway.NewServer(runner, cfg.Credentials.GatewayToken, capabilities, chs...)
		slog.Info("starting gateway", "addr", cfg.Gateway.Addr, "capabilities", len(capabilities), "channels", len(chs))
		return srv.ListenAndServe(ctx, cfg.Gateway.Addr)
	},
}

func init() {
	Cmd.Flags().StringVarP(&addr, "addr", "a", "", "override gateway listen address")
}

// buildCapabilities runs the startup pipeline: plugin construction,
// discovery, filtering, registry population and adaptation.
func buildCapabilities(ctx context.Context, cfg *config.Config) ([]agent.Capability, func(), error) {
	wallet, err := evm.NewPlugin(ctx, evm.Config{
		RPCURL:  cfg.Credentials.RPCURL,
		Address: cfg.Wallet.Address,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("building evm plugin: %w", err)
	}

	plugins := []toolkit.Plugin{
		coingecko.NewPlugin(coingecko.Config{APIKey: cfg.Credentials.CoinGeckoAPIKey}),
		wallet,
	}
	if cfg.Services.Brave.APIKey != "" {
		plugins = append(plugins, web.NewPlugin(cfg.Services.Brave.APIKey))
		slog.Info("web search plugin enabled")
	}

	discovered, err := toolkit.Discover(ctx, plugins...)
	if err != nil {
		wallet.Close()
		return nil, nil, fmt.Errorf("discovering tools: %w", err)
	}
	kept := toolkit.Exclude(discovered, chainToolFilter)

	registry := capability.NewRegistry()
	capabilities := make([]agent.Capability, 0, len(kept))
	for _, tool := range kept {
		registry.Register(tool)
		capabilities = append(capabilities, capability.Adapt(tool, registry))
	}

	return capabilities, wallet.Close, nil
}
