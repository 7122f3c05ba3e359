package channels

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gekko/internal/agent"
	"gekko/internal/config"
)

type noopRunner struct{}

func (noopRunner) Run(ctx context.Context, sessionID string, message string, emit func(agent.Event)) error {
	return nil
}

func TestBuildSkipsDisabledAndUnknownChannels(t *testing.T) {
	cfgs := map[string]*config.ChannelConfig{
		"tg": {
			Enabled:  true,
			Type:     "telegram",
			Settings: map[string]string{"bot_token": "123:abc"},
		},
		"tg-staging": {
			Enabled: false,
			Type:    "telegram",
		},
		"carrier-pigeon": {
			Enabled: true,
			Type:    "pigeon",
		},
	}

	chs := Build(cfgs, noopRunner{})
	require.Len(t, chs, 1)
	assert.Equal(t, "telegram", chs[0].Name())
}

func TestBuildWithNoChannels(t *testing.T) {
	assert.Empty(t, Build(nil, noopRunner{}))
}
