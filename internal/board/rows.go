package board

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

// PositionRow is one DeFi protocol position.
type PositionRow struct {
	Protocol string  `json:"protocol"  yaml:"protocol"`
	Chain    string  `json:"chain"     yaml:"chain"`
	USDValue float64 `json:"usd_value" yaml:"usd_value"`
}

// TokenRow is one token holding.
type TokenRow struct {
	Token    string  `json:"token"     yaml:"token"`
	Chain    string  `json:"chain"     yaml:"chain"`
	Amount   float64 `json:"amount"    yaml:"amount"`
	Price    float64 `json:"price"     yaml:"price"`
	USDValue float64 `json:"usd_value" yaml:"usd_value"`
}

// PositionRows flattens a complex protocol list, largest position first. A
// protocol without usd_value is valued as the sum of its portfolio items'
// stats.
func PositionRows(payload debank.Payload) ([]PositionRow, error) {
	protocols, err := decodeObjects(payload)
	if err != nil {
		return nil, fmt.Errorf("parsing positions: %w", err)
	}

	rows := make([]PositionRow, 0, len(protocols))

	for _, protocol := range protocols {
		usd, ok := number(protocol["usd_value"])
		if !ok {
			usd = portfolioItemsValue(protocol["portfolio_item_list"])
		}

		rows = append(rows, PositionRow{
			Protocol: firstString(protocol, "name", "id"),
			Chain:    firstString(protocol, "chain"),
			USDValue: usd,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].USDValue > rows[j].USDValue
	})

	return rows, nil
}

func portfolioItemsValue(raw interface{}) float64 {
	items, _ := raw.([]interface{})

	var total float64

	for _, item := range items {
		fields, _ := item.(map[string]interface{})
		stats, _ := fields["stats"].(map[string]interface{})

		total += firstNonZero(stats, "net_usd_value", "usd_value", "asset_usd_value")
	}

	return total
}

// TokenRows flattens a token list, largest holding first, keeping at most
// limit rows when limit is positive. A token without usd_value is valued as
// price times amount.
func TokenRows(payload debank.Payload, limit int) ([]TokenRow, error) {
	tokens, err := decodeObjects(payload)
	if err != nil {
		return nil, fmt.Errorf("parsing tokens: %w", err)
	}

	rows := make([]TokenRow, 0, len(tokens))

	for _, token := range tokens {
		amount, _ := number(token["amount"])
		price, _ := number(token["price"])

		usd, ok := number(token["usd_value"])
		if !ok {
			usd = price * amount
		}

		rows = append(rows, TokenRow{
			Token:    firstString(token, "display_symbol", "symbol", "name"),
			Chain:    firstString(token, "chain"),
			Amount:   amount,
			Price:    price,
			USDValue: usd,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].USDValue > rows[j].USDValue
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	return rows, nil
}

// TotalUSD reads a total balance payload: total_usd_value when non-zero,
// otherwise usd_value.
func TotalUSD(payload debank.Payload) (float64, error) {
	balance, err := payload.Object()
	if err != nil {
		return 0, fmt.Errorf("parsing total balance: %w", err)
	}

	return firstNonZero(balance, "total_usd_value", "usd_value"), nil
}

// SumPositions adds up position values.
func SumPositions(rows []PositionRow) float64 {
	var total float64
	for _, row := range rows {
		total += row.USDValue
	}

	return total
}

func decodeObjects(payload debank.Payload) ([]map[string]interface{}, error) {
	if len(payload) == 0 || string(payload) == "null" {
		return nil, nil
	}

	var items []interface{}

	err := payload.Decode(&items)
	if err != nil {
		return nil, err
	}

	objects := make([]map[string]interface{}, 0, len(items))

	for _, item := range items {
		if object, ok := item.(map[string]interface{}); ok {
			objects = append(objects, object)
		}
	}

	return objects, nil
}

func number(value interface{}) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case json.Number:
		parsed, err := typed.Float64()

		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(typed, 64)

		return parsed, err == nil
	default:
		return 0, false
	}
}

func firstNonZero(fields map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		if value, ok := number(fields[key]); ok && value != 0 {
			return value
		}
	}

	return 0
}

func firstString(fields map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if value, ok := fields[key].(string); ok && value != "" {
			return value
		}
	}

	return ""
}
