package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/shadow-nav/internal/constants"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

const (
	pathAllHistoryList = "/v1/user/all_history_list"
	pathHistoryList    = "/v1/user/history_list"
)

// HistoryClient implements debank.HistoryClient.
type HistoryClient struct {
	api debank.Getter
}

// NewHistoryClient creates a new transaction history client.
func NewHistoryClient(api debank.Getter) *HistoryClient {
	return &HistoryClient{
		api: api,
	}
}

// AllHistoryList implements debank.HistoryClient.AllHistoryList.
func (c *HistoryClient) AllHistoryList(ctx context.Context, addr string, opts *debank.HistoryOptions) (debank.Payload, error) {
	params := historyParams(addr, opts)

	payload, err := c.api.Get(ctx, pathAllHistoryList, params)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	return payload, nil
}

// HistoryList implements debank.HistoryClient.HistoryList.
func (c *HistoryClient) HistoryList(ctx context.Context, addr, chainID string, opts *debank.HistoryOptions) (debank.Payload, error) {
	params := historyParams(addr, opts)
	params["chain_id"] = chainID

	payload, err := c.api.Get(ctx, pathHistoryList, params)
	if err != nil {
		return nil, fmt.Errorf("listing chain history: %w", err)
	}

	return payload, nil
}

func historyParams(addr string, opts *debank.HistoryOptions) debank.Params {
	pageCount := constants.DefaultHistoryPageCount

	var startTime int64

	if opts != nil {
		if opts.PageCount > 0 {
			pageCount = opts.PageCount
		}

		startTime = opts.StartTime
	}

	params := debank.Params{
		"id":         addr,
		"page_count": pageCount,
	}

	if startTime > 0 {
		params["start_time"] = startTime
	}

	return params
}
