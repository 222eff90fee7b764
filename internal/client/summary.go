package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

type totalBalance struct {
	USDValue    *float64 `json:"usd_value"`
	NetUSDValue *float64 `json:"net_usd_value"`
}

// SummarizeWallet implements debank.Client.SummarizeWallet. The three
// sub-calls run one after another and any failure fails the summary.
func (c *Client) SummarizeWallet(ctx context.Context, addr string) (*debank.WalletSummary, error) {
	balancePayload, err := c.TotalBalance(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("summarizing wallet %s: %w", addr, err)
	}

	chains, err := c.UsedChains(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("summarizing wallet %s: %w", addr, err)
	}

	positions, err := c.ComplexProtocolList(ctx, addr, "")
	if err != nil {
		return nil, fmt.Errorf("summarizing wallet %s: %w", addr, err)
	}

	var balance totalBalance

	err = balancePayload.Decode(&balance)
	if err != nil {
		return nil, fmt.Errorf("parsing total balance for %s: %w", addr, err)
	}

	summary := &debank.WalletSummary{
		Address:   addr,
		Chains:    chains,
		Positions: positions,
	}

	if balance.USDValue != nil {
		summary.TotalUSD = *balance.USDValue
	}

	summary.NetUSD = summary.TotalUSD
	if balance.NetUSDValue != nil {
		summary.NetUSD = *balance.NetUSDValue
	}

	return summary, nil
}
