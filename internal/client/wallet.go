package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

const (
	pathTotalBalance = "/v1/user/total_balance"
	pathChainBalance = "/v1/user/chain_balance"
	pathUsedChains   = "/v1/user/used_chain_list"
)

// WalletClient implements debank.WalletClient.
type WalletClient struct {
	api debank.Getter
}

// NewWalletClient creates a new wallet balance client.
func NewWalletClient(api debank.Getter) *WalletClient {
	return &WalletClient{
		api: api,
	}
}

// TotalBalance implements debank.WalletClient.TotalBalance.
func (c *WalletClient) TotalBalance(ctx context.Context, addr string) (debank.Payload, error) {
	payload, err := c.api.Get(ctx, pathTotalBalance, debank.Params{"id": addr})
	if err != nil {
		return nil, fmt.Errorf("getting total balance: %w", err)
	}

	return payload, nil
}

// ChainBalance implements debank.WalletClient.ChainBalance.
func (c *WalletClient) ChainBalance(ctx context.Context, addr, chainID string) (debank.Payload, error) {
	payload, err := c.api.Get(ctx, pathChainBalance, debank.Params{"id": addr, "chain_id": chainID})
	if err != nil {
		return nil, fmt.Errorf("getting chain balance: %w", err)
	}

	return payload, nil
}

// UsedChains implements debank.WalletClient.UsedChains.
func (c *WalletClient) UsedChains(ctx context.Context, addr string) (debank.Payload, error) {
	payload, err := c.api.Get(ctx, pathUsedChains, debank.Params{"id": addr})
	if err != nil {
		return nil, fmt.Errorf("listing used chains: %w", err)
	}

	return payload, nil
}
