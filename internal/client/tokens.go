package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

const (
	pathTokenList    = "/v1/user/token_list"
	pathAllTokenList = "/v1/user/all_token_list"
	pathUserToken    = "/v1/user/token"
	pathTokenInfo    = "/v1/token"
)

// TokensClient implements debank.TokensClient.
type TokensClient struct {
	api debank.Getter
}

// NewTokensClient creates a new token holdings client.
func NewTokensClient(api debank.Getter) *TokensClient {
	return &TokensClient{
		api: api,
	}
}

// TokenList implements debank.TokensClient.TokenList.
func (c *TokensClient) TokenList(ctx context.Context, addr, chainID string, isAll bool) (debank.Payload, error) {
	params := debank.Params{
		"id":       addr,
		"chain_id": chainID,
		"is_all":   isAll,
	}

	payload, err := c.api.Get(ctx, pathTokenList, params)
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}

	return payload, nil
}

// AllTokenList implements debank.TokensClient.AllTokenList.
func (c *TokensClient) AllTokenList(ctx context.Context, addr string, isAll bool) (debank.Payload, error) {
	payload, err := c.api.Get(ctx, pathAllTokenList, debank.Params{"id": addr, "is_all": isAll})
	if err != nil {
		return nil, fmt.Errorf("listing tokens across chains: %w", err)
	}

	return payload, nil
}

// Token implements debank.TokensClient.Token.
func (c *TokensClient) Token(ctx context.Context, addr, chainID, tokenID string) (debank.Payload, error) {
	params := debank.Params{
		"id":       addr,
		"chain_id": chainID,
		"token_id": tokenID,
	}

	payload, err := c.api.Get(ctx, pathUserToken, params)
	if err != nil {
		return nil, fmt.Errorf("getting token balance: %w", err)
	}

	return payload, nil
}

// TokenInfo implements debank.TokensClient.TokenInfo. It describes a token
// contract, independent of any wallet.
func (c *TokensClient) TokenInfo(ctx context.Context, chainID, tokenAddr string) (debank.Payload, error) {
	payload, err := c.api.Get(ctx, pathTokenInfo, debank.Params{"chain_id": chainID, "id": tokenAddr})
	if err != nil {
		return nil, fmt.Errorf("getting token info: %w", err)
	}

	return payload, nil
}
