package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/shadow-nav/internal/board"
	"github.com/fivetwenty-io/shadow-nav/internal/constants"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

const cliTestAPIKey = "cli-test-key"

// setupCLI isolates viper and the environment, pointing the config and board
// files into a temp dir. Output defaults to JSON.
func setupCLI(t *testing.T, settings map[string]interface{}) string {
	t.Helper()

	t.Setenv(constants.EnvAPIKey, "")
	t.Setenv(constants.EnvHeaderName, "")
	t.Setenv(constants.EnvBaseURL, "")

	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	viper.SetConfigFile(filepath.Join(dir, "config.yml"))
	viper.Set(keyBoardFile, filepath.Join(dir, "board.yml"))
	viper.Set(keyOutput, constants.FormatJSON)
	viper.Set(keyMaxAttempts, 1)

	for key, value := range settings {
		viper.Set(key, value)
	}

	return dir
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()

	return out.String(), err
}

// fakeDeBank serves canned JSON per path and counts calls.
func fakeDeBank(t *testing.T, handler func(path string, query map[string][]string) (int, interface{})) (*httptest.Server, *int) {
	t.Helper()

	var (
		mu    sync.Mutex
		calls int
	)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, cliTestAPIKey, request.Header.Get("AccessKey"))

		mu.Lock()
		calls++
		mu.Unlock()

		status, body := handler(request.URL.Path, request.URL.Query())

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_ = json.NewEncoder(writer).Encode(body)
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func TestVersionCommandOutput(t *testing.T) {
	setupCLI(t, nil)

	out, err := execute(t, NewVersionCommand("1.2.3", "abc123", "today"), "")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, VersionInfo{Version: "1.2.3", Commit: "abc123", Built: "today"}, info)

	viper.Set(keyOutput, constants.FormatYAML)
	out, err = execute(t, NewVersionCommand("1.2.3", "abc123", "today"), "")
	require.NoError(t, err)
	assert.Contains(t, out, "commit: abc123")

	viper.Set(keyOutput, constants.FormatTable)
	out, err = execute(t, NewVersionCommand("1.2.3", "abc123", "today"), "")
	require.NoError(t, err)
	assert.Contains(t, out, "abc123")
}

func TestInvalidOutputFormat(t *testing.T) {
	setupCLI(t, map[string]interface{}{keyOutput: "xml"})

	_, err := execute(t, NewVersionCommand("1", "2", "3"), "")
	assert.ErrorIs(t, err, constants.ErrInvalidOutput)
}

func TestConfigSetShowUnset(t *testing.T) {
	dir := setupCLI(t, nil)
	configFile := filepath.Join(dir, "config.yml")

	_, err := execute(t, NewConfigCommand(), "", "set", "base_url", "https://debank.example.test")
	require.NoError(t, err)

	_, err = execute(t, NewConfigCommand(), "", "set", "api_key", "secret")
	require.NoError(t, err)

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "base_url: https://debank.example.test")
	assert.Contains(t, string(data), "api_key: secret")

	info, err := os.Stat(configFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())

	out, err := execute(t, NewConfigCommand(), "", "show")
	require.NoError(t, err)

	var shown Config
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, constants.MaskedSecret, shown.APIKey)
	assert.Equal(t, "https://debank.example.test", shown.BaseURL)

	_, err = execute(t, NewConfigCommand(), "", "unset", "base_url")
	require.NoError(t, err)

	config, err := loadConfigFile(configFile)
	require.NoError(t, err)
	assert.Empty(t, config.BaseURL)
	assert.Equal(t, "secret", config.APIKey)
}

func TestConfigSetRejectsBadValues(t *testing.T) {
	setupCLI(t, nil)

	_, err := execute(t, NewConfigCommand(), "", "set", "colour", "blue")
	assert.ErrorIs(t, err, constants.ErrUnknownConfigKey)

	_, err = execute(t, NewConfigCommand(), "", "set", "max_attempts", "0")
	assert.Error(t, err)

	_, err = execute(t, NewConfigCommand(), "", "set", "timeout", "soon")
	assert.Error(t, err)

	_, err = execute(t, NewConfigCommand(), "", "set", "output", "xml")
	assert.ErrorIs(t, err, constants.ErrInvalidOutput)
}

func TestLoginSavesKey(t *testing.T) {
	dir := setupCLI(t, nil)

	out, err := execute(t, NewLoginCommand(), "piped-key\n", "--header", "X-Api-Key")
	require.NoError(t, err)
	assert.Contains(t, out, "API key saved")

	config, err := loadConfigFile(filepath.Join(dir, "config.yml"))
	require.NoError(t, err)
	assert.Equal(t, "piped-key", config.APIKey)
	assert.Equal(t, "X-Api-Key", config.HeaderName)
}

func TestLoginRejectsEmptyKey(t *testing.T) {
	setupCLI(t, nil)

	_, err := execute(t, NewLoginCommand(), "\n")
	assert.ErrorIs(t, err, constants.ErrAPIKeyRequired)
}

func TestLoginVerifiesKey(t *testing.T) {
	server, calls := fakeDeBank(t, func(path string, _ map[string][]string) (int, interface{}) {
		return http.StatusUnauthorized, map[string]string{"message": "bad key"}
	})
	dir := setupCLI(t, map[string]interface{}{keyBaseURL: server.URL})

	_, err := execute(t, NewLoginCommand(), "", "--key", cliTestAPIKey, "--verify", "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key rejected")
	assert.Equal(t, 401, debank.StatusCode(err))
	assert.Equal(t, 1, *calls)

	_, statErr := os.Stat(filepath.Join(dir, "config.yml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMissingAPIKey(t *testing.T) {
	setupCLI(t, nil)

	_, err := execute(t, NewWalletCommand(), "", "balance", "0xabc")
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrAPIKeyRequired)
	assert.True(t, debank.IsConfiguration(err))
}

func TestWalletBalanceCommand(t *testing.T) {
	server, _ := fakeDeBank(t, func(path string, query map[string][]string) (int, interface{}) {
		assert.Equal(t, "/v1/user/total_balance", path)
		assert.Equal(t, []string{"0xabc"}, query["id"])

		return http.StatusOK, map[string]interface{}{
			"total_usd_value": 123.45,
			"chain_list": []map[string]interface{}{
				{"id": "eth", "name": "Ethereum", "usd_value": 100.45},
				{"id": "bsc", "name": "BNB Chain", "usd_value": 23},
				{"id": "ftm", "name": "Fantom", "usd_value": 0},
			},
		}
	})
	setupCLI(t, map[string]interface{}{
		keyAPIKey:  cliTestAPIKey,
		keyBaseURL: server.URL,
		keyOutput:  constants.FormatTable,
	})

	out, err := execute(t, NewWalletCommand(), "", "balance", "0xabc")
	require.NoError(t, err)
	assert.Contains(t, out, "$123.45")
	assert.Contains(t, out, "Ethereum")
	assert.NotContains(t, out, "Fantom")
}

func TestWalletBalanceCommandEnvelopeJSON(t *testing.T) {
	server, _ := fakeDeBank(t, func(string, map[string][]string) (int, interface{}) {
		return http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"total_usd_value": 5}}
	})
	setupCLI(t, map[string]interface{}{keyAPIKey: cliTestAPIKey, keyBaseURL: server.URL})

	out, err := execute(t, NewWalletCommand(), "", "balance", "0xabc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_usd_value": 5}`, out)
}

func TestWalletTokensCommandOutput(t *testing.T) {
	server, _ := fakeDeBank(t, func(path string, query map[string][]string) (int, interface{}) {
		assert.Equal(t, "/v1/user/token_list", path)
		assert.Equal(t, []string{"eth"}, query["chain_id"])
		assert.Equal(t, []string{"true"}, query["is_all"])

		return http.StatusOK, []map[string]interface{}{
			{"symbol": "USDC", "chain": "eth", "amount": 10, "price": 1},
			{"symbol": "ETH", "chain": "eth", "amount": 2, "price": 3000, "usd_value": 6000},
		}
	})
	setupCLI(t, map[string]interface{}{keyAPIKey: cliTestAPIKey, keyBaseURL: server.URL})

	out, err := execute(t, NewWalletCommand(), "", "tokens", "0xabc", "--chain", "eth", "--all")
	require.NoError(t, err)

	var rows []board.TokenRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "ETH", rows[0].Token)
	assert.InDelta(t, 10.0, rows[1].USDValue, 1e-9)
}

func TestWalletPositionsCommandAllChains(t *testing.T) {
	server, _ := fakeDeBank(t, func(path string, _ map[string][]string) (int, interface{}) {
		assert.Equal(t, "/v1/user/all_complex_protocol_list", path)

		return http.StatusOK, []map[string]interface{}{
			{"name": "Aave", "chain": "eth", "usd_value": 50},
			{"name": "Curve", "chain": "eth", "usd_value": 70},
		}
	})
	setupCLI(t, map[string]interface{}{
		keyAPIKey:  cliTestAPIKey,
		keyBaseURL: server.URL,
		keyOutput:  constants.FormatTable,
	})

	out, err := execute(t, NewWalletCommand(), "", "positions", "0xabc")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Curve"), strings.Index(out, "Aave"))
	assert.Contains(t, out, "$120.00")
}

func TestWalletCommandRateLimited(t *testing.T) {
	server, calls := fakeDeBank(t, func(string, map[string][]string) (int, interface{}) {
		return http.StatusTooManyRequests, map[string]string{"message": "slow"}
	})
	setupCLI(t, map[string]interface{}{
		keyAPIKey:      cliTestAPIKey,
		keyBaseURL:     server.URL,
		keyMaxAttempts: 3,
	})

	_, err := execute(t, NewWalletCommand(), "", "chains", "0xabc")
	require.Error(t, err)
	assert.True(t, debank.IsRateLimited(err))
	assert.Contains(t, err.Error(), "slow down")
	assert.Equal(t, 1, *calls)
}

func TestSummaryCommand(t *testing.T) {
	server, calls := fakeDeBank(t, func(path string, _ map[string][]string) (int, interface{}) {
		switch path {
		case "/v1/user/total_balance":
			return http.StatusOK, map[string]interface{}{"usd_value": 100, "net_usd_value": 90}
		case "/v1/user/used_chain_list":
			return http.StatusOK, []map[string]interface{}{{"id": "eth"}}
		default:
			return http.StatusOK, []map[string]interface{}{{"id": "aave"}, {"id": "curve"}}
		}
	})
	setupCLI(t, map[string]interface{}{keyAPIKey: cliTestAPIKey, keyBaseURL: server.URL})

	out, err := execute(t, NewSummaryCommand(), "", "0xa", "0xb")
	require.NoError(t, err)

	var summaries []debank.WalletSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "0xb", summaries[1].Address)
	assert.InDelta(t, 90.0, summaries[0].NetUSD, 1e-9)
	assert.Equal(t, 2, payloadLen(summaries[0].Positions))
	assert.Equal(t, 6, *calls)
}

const boardInput = `Acme, Treasury, 0xaaa
Acme, Ops, 0xbbb
Globex, Vault, 0xccc
`

func TestBoardWorkflow(t *testing.T) {
	setupCLI(t, nil)

	out, err := execute(t, NewBoardCommand(), boardInput, "load")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 3 wallets")

	out, err = execute(t, NewBoardCommand(), "", "list", "--client", "Acme")
	require.NoError(t, err)

	var entries []board.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Ops", entries[1].Wallet.Label)

	_, err = execute(t, NewBoardCommand(), "", "select", "2")
	require.NoError(t, err)

	out, err = execute(t, NewBoardCommand(), "", "comment", "rebalanced", "vault")
	require.NoError(t, err)
	assert.Contains(t, out, "Vault: rebalanced vault")

	_, err = execute(t, NewBoardCommand(), "", "comment", "--index", "0", "first note")
	require.NoError(t, err)

	out, err = execute(t, NewBoardCommand(), "", "comments")
	require.NoError(t, err)

	var comments []board.Comment
	require.NoError(t, json.Unmarshal([]byte(out), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "rebalanced vault", comments[0].Text)

	_, err = execute(t, NewBoardCommand(), "", "delete", "0")
	require.NoError(t, err)

	out, err = execute(t, NewBoardCommand(), "", "show")
	require.NoError(t, err)

	var detail walletDetail
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	assert.Equal(t, 1, detail.Index)
	assert.Equal(t, "0xccc", detail.Wallet.Address)
	assert.Nil(t, detail.Summary)

	_, err = execute(t, NewBoardCommand(), "", "clear-selection")
	require.NoError(t, err)

	_, err = execute(t, NewBoardCommand(), "", "show")
	assert.ErrorIs(t, err, constants.ErrNoActiveWallet)
}

func TestBoardLoadRejectsEmptyInput(t *testing.T) {
	setupCLI(t, nil)

	_, err := execute(t, NewBoardCommand(), "\n  \n", "load")
	assert.ErrorIs(t, err, constants.ErrNoWallets)
}

func TestBoardSelectOutOfRange(t *testing.T) {
	setupCLI(t, nil)

	_, err := execute(t, NewBoardCommand(), boardInput, "load")
	require.NoError(t, err)

	_, err = execute(t, NewBoardCommand(), "", "select", "7")
	assert.ErrorIs(t, err, constants.ErrWalletIndexRange)

	_, err = execute(t, NewBoardCommand(), "", "select", "x")
	assert.ErrorIs(t, err, constants.ErrInvalidWalletIndex)
}

func TestBoardClearAsksForConfirmation(t *testing.T) {
	setupCLI(t, nil)

	_, err := execute(t, NewBoardCommand(), boardInput, "load")
	require.NoError(t, err)

	out, err := execute(t, NewBoardCommand(), "n\n", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")

	store, err := openBoard()
	require.NoError(t, err)
	assert.Len(t, store.Wallets(), 3)

	_, err = execute(t, NewBoardCommand(), "y\n", "clear")
	require.NoError(t, err)

	store, err = openBoard()
	require.NoError(t, err)
	assert.Empty(t, store.Wallets())
}

func TestBoardSnapshotCommand(t *testing.T) {
	server, _ := fakeDeBank(t, func(_ string, query map[string][]string) (int, interface{}) {
		switch query["id"][0] {
		case "0xaaa":
			return http.StatusOK, map[string]interface{}{"total_usd_value": 100}
		case "0xbbb":
			return http.StatusInternalServerError, map[string]string{"message": "boom"}
		default:
			return http.StatusOK, map[string]interface{}{"total_usd_value": 25}
		}
	})
	setupCLI(t, map[string]interface{}{keyAPIKey: cliTestAPIKey, keyBaseURL: server.URL})

	_, err := execute(t, NewBoardCommand(), boardInput, "load")
	require.NoError(t, err)

	_, err = execute(t, NewBoardCommand(), "", "select", "2")
	require.NoError(t, err)

	out, err := execute(t, NewBoardCommand(), "", "snapshot", "--concurrency", "2")
	require.NoError(t, err)

	var snapshot board.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snapshot))
	require.Len(t, snapshot.Rows, 3)
	assert.InDelta(t, 125.0, snapshot.Total, 1e-9)
	assert.InDelta(t, 25.0, snapshot.SelectedTotal, 1e-9)
	assert.Equal(t, 1, snapshot.Failed)
	assert.Contains(t, snapshot.Rows[1].Error, "500")
}

func TestBoardSnapshotEmptyBoard(t *testing.T) {
	setupCLI(t, map[string]interface{}{keyAPIKey: cliTestAPIKey, keyBaseURL: "http://127.0.0.1:1"})

	_, err := execute(t, NewBoardCommand(), "", "snapshot")
	assert.ErrorIs(t, err, constants.ErrNoWallets)
}

func TestPublishRequiresNATSURL(t *testing.T) {
	setupCLI(t, nil)

	_, err := execute(t, NewPublishCommand(), "")
	assert.ErrorIs(t, err, constants.ErrNoNATSURLConfigured)
}

func TestRenderPayloadTable(t *testing.T) {
	setupCLI(t, map[string]interface{}{keyOutput: constants.FormatTable})

	var out bytes.Buffer
	require.NoError(t, renderPayload(&out, debank.Payload(`{"id":"eth","usd_value":1.5,"tags":["a"]}`)))
	assert.Contains(t, out.String(), "1.5")
	assert.Contains(t, out.String(), `["a"]`)

	out.Reset()
	require.NoError(t, renderPayload(&out, debank.Payload(`[{"id":"eth","name":"Ethereum"},{"id":"bsc"}]`)))
	assert.Contains(t, out.String(), "Ethereum")
	assert.Contains(t, out.String(), "bsc")

	out.Reset()
	require.NoError(t, renderPayload(&out, debank.Payload(`42`)))
	assert.Contains(t, out.String(), "42")
}
