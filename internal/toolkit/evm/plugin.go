package evm

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"gekko/internal/toolkit"
)

// backend is the subset of ethclient methods the tools need; tests swap in
// a stub.
type backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Plugin exposes read-only wallet and chain tools backed by an EVM JSON-RPC
// endpoint. Its get_chain* tools are filtered out of the agent's capability
// set at bootstrap; they exist for other consumers of the toolkit.
type Plugin struct {
	client  *ethclient.Client
	backend backend
	address common.Address
}

type Config struct {
	RPCURL  string
	Address string // wallet address the get_address/get_balance tools describe
}

func NewPlugin(ctx context.Context, cfg Config) (*Plugin, error) {
	rpcURL := strings.TrimSpace(cfg.RPCURL)
	if rpcURL == "" {
		return nil, fmt.Errorf("evm: RPC URL is required")
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dialing EVM RPC endpoint: %w", err)
	}

	return &Plugin{
		client:  client,
		backend: client,
		address: common.HexToAddress(cfg.Address),
	}, nil
}

// newWithBackend is used by tests to avoid a live RPC connection.
func newWithBackend(b backend, address string) *Plugin {
	return &Plugin{backend: b, address: common.HexToAddress(address)}
}

func (p *Plugin) Name() string { return "evm" }

func (p *Plugin) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

func (p *Plugin) Tools(ctx context.Context) ([]toolkit.Tool, error) {
	return []toolkit.Tool{
		&addressTool{plugin: p},
		&balanceTool{plugin: p},
		&chainIDTool{plugin: p},
		&chainInfoTool{plugin: p},
	}, nil
}

func unmarshalArgs(input string, v any) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(input), v); err != nil {
		return fmt.Errorf("parsing input: %w", err)
	}
	return nil
}

func emptySchema() any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}

type addressTool struct{ plugin *Plugin }

func (t *addressTool) Name() string        { return "evm.get_address" }
func (t *addressTool) Description() string { return "Get the wallet address used by this agent" }
func (t *addressTool) InputSchema() any    { return emptySchema() }

func (t *addressTool) Execute(ctx context.Context, input string) (any, error) {
	return t.plugin.address.Hex(), nil
}

type balanceTool struct{ plugin *Plugin }

func (t *balanceTool) Name() string { return "evm.get_balance" }
func (t *balanceTool) Description() string {
	return "Get the native token balance of an address in wei"
}

func (t *balanceTool) InputSchema() any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"address": map[string]any{
				"type":        "string",
				"description": "Address to query; empty for the agent's own wallet",
			},
		},
		"required":             []string{"address"},
		"additionalProperties": false,
	}
}

func (t *balanceTool) Execute(ctx context.Context, input string) (any, error) {
	args := struct {
		Address string `json:"address"`
	}{}
	if err := unmarshalArgs(input, &args); err != nil {
		return nil, err
	}

	addr := t.plugin.address
	if args.Address != "" {
		if !common.IsHexAddress(args.Address) {
			return nil, fmt.Errorf("invalid address: %s", args.Address)
		}
		addr = common.HexToAddress(args.Address)
	}

	balance, err := t.plugin.backend.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("querying balance: %w", err)
	}
	return map[string]any{
		"address": addr.Hex(),
		"wei":     balance.String(),
	}, nil
}

type chainIDTool struct{ plugin *Plugin }

func (t *chainIDTool) Name() string        { return "evm.get_chain_id" }
func (t *chainIDTool) Description() string { return "Get the chain ID of the connected network" }
func (t *chainIDTool) InputSchema() any    { return emptySchema() }

func (t *chainIDTool) Execute(ctx context.Context, input string) (any, error) {
	id, err := t.plugin.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying chain id: %w", err)
	}
	return id.String(), nil
}

type chainInfoTool struct{ plugin *Plugin }

func (t *chainInfoTool) Name() string { return "evm.get_chain_info" }
func (t *chainInfoTool) Description() string {
	return "Get the chain ID and latest block number of the connected network"
}
func (t *chainInfoTool) InputSchema() any { return emptySchema() }

func (t *chainInfoTool) Execute(ctx context.Context, input string) (any, error) {
	id, err := t.plugin.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying chain id: %w", err)
	}
	block, err := t.plugin.backend.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying block number: %w", err)
	}
	return map[string]any{
		"chain_id":     id.String(),
		"block_number": block,
	}, nil
}
