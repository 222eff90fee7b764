package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

const (
	pathTotalNetCurve = "/v1/user/total_net_curve"
	pathChainNetCurve = "/v1/user/chain_net_curve"
)

// CurvesClient implements debank.CurvesClient.
type CurvesClient struct {
	api debank.Getter
}

// NewCurvesClient creates a new net-worth curve client.
func NewCurvesClient(api debank.Getter) *CurvesClient {
	return &CurvesClient{
		api: api,
	}
}

// TotalNetCurve implements debank.CurvesClient.TotalNetCurve.
func (c *CurvesClient) TotalNetCurve(ctx context.Context, addr string) (debank.Payload, error) {
	payload, err := c.api.Get(ctx, pathTotalNetCurve, debank.Params{"id": addr})
	if err != nil {
		return nil, fmt.Errorf("getting net curve: %w", err)
	}

	return payload, nil
}

// ChainNetCurve implements debank.CurvesClient.ChainNetCurve.
func (c *CurvesClient) ChainNetCurve(ctx context.Context, addr, chainID string) (debank.Payload, error) {
	payload, err := c.api.Get(ctx, pathChainNetCurve, debank.Params{"id": addr, "chain_id": chainID})
	if err != nil {
		return nil, fmt.Errorf("getting chain net curve: %w", err)
	}

	return payload, nil
}
