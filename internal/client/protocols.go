package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

const (
	pathComplexProtocolList    = "/v1/user/complex_protocol_list"
	pathAllComplexProtocolList = "/v1/user/all_complex_protocol_list"
	pathProtocol               = "/v1/user/protocol"
)

// ProtocolsClient implements debank.ProtocolsClient.
type ProtocolsClient struct {
	api debank.Getter
}

// NewProtocolsClient creates a new DeFi positions client.
func NewProtocolsClient(api debank.Getter) *ProtocolsClient {
	return &ProtocolsClient{
		api: api,
	}
}

// ComplexProtocolList implements debank.ProtocolsClient.ComplexProtocolList.
// An empty chainID aggregates positions across all chains.
func (c *ProtocolsClient) ComplexProtocolList(ctx context.Context, addr, chainID string) (debank.Payload, error) {
	path := pathAllComplexProtocolList
	params := debank.Params{"id": addr}

	if chainID != "" {
		path = pathComplexProtocolList
		params["chain_id"] = chainID
	}

	payload, err := c.api.Get(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("listing protocol positions: %w", err)
	}

	return payload, nil
}

// Protocol implements debank.ProtocolsClient.Protocol.
func (c *ProtocolsClient) Protocol(ctx context.Context, addr, protocolID string) (debank.Payload, error) {
	payload, err := c.api.Get(ctx, pathProtocol, debank.Params{"id": addr, "protocol_id": protocolID})
	if err != nil {
		return nil, fmt.Errorf("getting protocol %s: %w", protocolID, err)
	}

	return payload, nil
}
