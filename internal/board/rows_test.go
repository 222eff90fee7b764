package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/shadow-nav/internal/board"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

func TestPositionRows(t *testing.T) {
	t.Parallel()

	payload := debank.Payload(`[
		{"id": "aave3", "name": "Aave V3", "chain": "eth", "usd_value": 120.5},
		{"id": "curve", "chain": "arb", "portfolio_item_list": [
			{"stats": {"net_usd_value": 300}},
			{"stats": {"net_usd_value": 0, "usd_value": 50}},
			{"stats": {"asset_usd_value": "25"}},
			{"stats": null},
			{}
		]},
		{"id": "dust", "name": "Dust", "chain": "bsc", "usd_value": 0}
	]`)

	rows, err := board.PositionRows(payload)
	require.NoError(t, err)

	assert.Equal(t, []board.PositionRow{
		{Protocol: "curve", Chain: "arb", USDValue: 375},
		{Protocol: "Aave V3", Chain: "eth", USDValue: 120.5},
		{Protocol: "Dust", Chain: "bsc", USDValue: 0},
	}, rows)
	assert.InDelta(t, 495.5, board.SumPositions(rows), 0.0001)
}

func TestPositionRows_EmptyPayloads(t *testing.T) {
	t.Parallel()

	for _, payload := range []debank.Payload{nil, debank.Payload(`null`), debank.Payload(`[]`)} {
		rows, err := board.PositionRows(payload)
		require.NoError(t, err)
		assert.Empty(t, rows)
	}

	_, err := board.PositionRows(debank.Payload(`{"not": "a list"}`))
	require.Error(t, err)
}

func TestTokenRows(t *testing.T) {
	t.Parallel()

	payload := debank.Payload(`[
		{"symbol": "ETH", "display_symbol": "ETH.e", "chain": "eth", "amount": 2, "price": 3000},
		{"symbol": "USDC", "chain": "arb", "amount": 500, "price": 1, "usd_value": 500},
		{"name": "Mystery", "chain": "bsc", "amount": 10},
		{"symbol": "WBTC", "chain": "eth", "amount": 0.1, "price": 50000}
	]`)

	rows, err := board.TokenRows(payload, 0)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, board.TokenRow{Token: "ETH.e", Chain: "eth", Amount: 2, Price: 3000, USDValue: 6000}, rows[0])
	assert.Equal(t, "WBTC", rows[1].Token)
	assert.Equal(t, "USDC", rows[2].Token)
	assert.Equal(t, board.TokenRow{Token: "Mystery", Chain: "bsc", Amount: 10}, rows[3])

	top, err := board.TokenRows(payload, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestTotalUSD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  string
		expected float64
	}{
		{name: "total field", payload: `{"total_usd_value": 42, "usd_value": 10}`, expected: 42},
		{name: "usd field", payload: `{"usd_value": 10}`, expected: 10},
		{name: "zero total falls back", payload: `{"total_usd_value": 0, "usd_value": 7}`, expected: 7},
		{name: "neither", payload: `{"chain_list": []}`, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			total, err := board.TotalUSD(debank.Payload(tt.payload))
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, total, 0.0001)
		})
	}

	_, err := board.TotalUSD(debank.Payload(`[1, 2]`))
	require.Error(t, err)
}
