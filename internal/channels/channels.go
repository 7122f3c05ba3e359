package channels

import (
	"log/slog"
	"net/http"

	"gekko/internal/agent"
	"gekko/internal/config"
)

// Channel is a messaging surface that relays user messages to the agent.
// Channels mount their webhook routes on the gateway mux.
type Channel interface {
	Name() string
	RegisterRoutes(mux *http.ServeMux)
}

// Build constructs the enabled channels from config. Unknown channel types
// are skipped with a warning so a typo in the config file does not take the
// gateway down.
func Build(cfgs map[string]*config.ChannelConfig, runner agent.Runner) []Channel {
	var chs []Channel
	for name, ch := range cfgs {
		if !ch.Enabled {
			continue
		}
		switch ch.Type {
		case "telegram":
			chs = append(chs, NewTelegram(ch.Settings["bot_token"], runner))
			slog.Info("channel registered", "name", name, "type", ch.Type)
		default:
			slog.Warn("unknown channel type", "name", name, "type", ch.Type)
		}
	}
	return chs
}
