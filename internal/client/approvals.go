package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

const (
	pathTokenApprovals = "/v1/user/token_authorized_list"
	pathNFTApprovals   = "/v1/user/nft_authorized_list"
)

// ApprovalsClient implements debank.ApprovalsClient.
type ApprovalsClient struct {
	api debank.Getter
}

// NewApprovalsClient creates a new allowance listing client.
func NewApprovalsClient(api debank.Getter) *ApprovalsClient {
	return &ApprovalsClient{
		api: api,
	}
}

// TokenApprovals implements debank.ApprovalsClient.TokenApprovals.
func (c *ApprovalsClient) TokenApprovals(ctx context.Context, addr, chainID string) (debank.Payload, error) {
	payload, err := c.api.Get(ctx, pathTokenApprovals, debank.Params{"id": addr, "chain_id": chainID})
	if err != nil {
		return nil, fmt.Errorf("listing token approvals: %w", err)
	}

	return payload, nil
}

// NFTApprovals implements debank.ApprovalsClient.NFTApprovals.
func (c *ApprovalsClient) NFTApprovals(ctx context.Context, addr, chainID string) (debank.Payload, error) {
	payload, err := c.api.Get(ctx, pathNFTApprovals, debank.Params{"id": addr, "chain_id": chainID})
	if err != nil {
		return nil, fmt.Errorf("listing NFT approvals: %w", err)
	}

	return payload, nil
}
