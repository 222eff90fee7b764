package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/shadow-nav/internal/board"
	"github.com/fivetwenty-io/shadow-nav/internal/constants"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

// NewWalletCommand creates the wallet command group.
func NewWalletCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wallet",
		Aliases: []string{"w"},
		Short:   "Query DeBank wallet endpoints",
		Long:    "Query balances, tokens, DeFi positions, history and approvals for a wallet address",
	}

	cmd.AddCommand(newWalletBalanceCommand())
	cmd.AddCommand(newWalletChainBalanceCommand())
	cmd.AddCommand(newWalletChainsCommand())
	cmd.AddCommand(newWalletTokensCommand())
	cmd.AddCommand(newWalletTokenCommand())
	cmd.AddCommand(newWalletTokenInfoCommand())
	cmd.AddCommand(newWalletPositionsCommand())
	cmd.AddCommand(newWalletProtocolCommand())
	cmd.AddCommand(newWalletCurveCommand())
	cmd.AddCommand(newWalletHistoryCommand())
	cmd.AddCommand(newWalletApprovalsCommand())

	return cmd
}

// payloadRunE runs fetch with a configured client and renders the payload.
func payloadRunE(fetch func(cmd *cobra.Command, client debank.Client, args []string) (debank.Payload, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withClient(func(client debank.Client, _ debank.Logger) error {
			payload, err := fetch(cmd, client, args)
			if err != nil {
				return describeError(err)
			}

			return renderPayload(cmd.OutOrStdout(), payload)
		})
	}
}

func newWalletBalanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance ADDRESS",
		Short: "Show total balance",
		Long:  "Display the total USD balance of a wallet with a per-chain breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(client debank.Client, _ debank.Logger) error {
				payload, err := client.TotalBalance(commandContext(cmd), args[0])
				if err != nil {
					return describeError(err)
				}

				return renderBalance(cmd.OutOrStdout(), payload)
			})
		},
	}
}

// balanceChain is one entry of a total balance chain_list.
type balanceChain struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	USDValue float64 `json:"usd_value"`
}

func renderBalance(w io.Writer, payload debank.Payload) error {
	return render(w, payload, func(table *tablewriter.Table) error {
		total, err := board.TotalUSD(payload)
		if err != nil {
			return err
		}

		var balance struct {
			ChainList []balanceChain `json:"chain_list"`
		}

		err = payload.Decode(&balance)
		if err != nil {
			return fmt.Errorf("parsing total balance: %w", err)
		}

		table.Header("Chain", "Name", "USD Value")

		for _, chain := range balance.ChainList {
			if chain.USDValue == 0 {
				continue
			}

			_ = table.Append(chain.ID, chain.Name, formatUSD(chain.USDValue))
		}

		_ = table.Append("", "Total", formatUSD(total))

		return nil
	})
}

func newWalletChainBalanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chain-balance ADDRESS CHAIN_ID",
		Short: "Show balance on one chain",
		Long:  "Display the USD balance of a wallet on a single chain",
		Args:  cobra.ExactArgs(2),
		RunE: payloadRunE(func(cmd *cobra.Command, client debank.Client, args []string) (debank.Payload, error) {
			return client.ChainBalance(commandContext(cmd), args[0], args[1])
		}),
	}
}

func newWalletChainsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chains ADDRESS",
		Short: "List used chains",
		Long:  "List the chains a wallet has interacted with",
		Args:  cobra.ExactArgs(1),
		RunE: payloadRunE(func(cmd *cobra.Command, client debank.Client, args []string) (debank.Payload, error) {
			return client.UsedChains(commandContext(cmd), args[0])
		}),
	}
}

func newWalletTokensCommand() *cobra.Command {
	var (
		chainID string
		isAll   bool
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "tokens ADDRESS",
		Short: "List token holdings",
		Long:  "List token holdings of a wallet, largest first, on one chain or across all chains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(client debank.Client, _ debank.Logger) error {
				ctx := commandContext(cmd)

				var (
					payload debank.Payload
					err     error
				)

				if chainID != "" {
					payload, err = client.TokenList(ctx, args[0], chainID, isAll)
				} else {
					payload, err = client.AllTokenList(ctx, args[0], isAll)
				}

				if err != nil {
					return describeError(err)
				}

				rows, err := board.TokenRows(payload, limit)
				if err != nil {
					return err
				}

				return render(cmd.OutOrStdout(), rows, func(table *tablewriter.Table) error {
					table.Header("Token", "Chain", "Amount", "Price", "USD Value")

					for _, row := range rows {
						_ = table.Append(
							row.Token,
							row.Chain,
							strconv.FormatFloat(row.Amount, 'f', -1, 64),
							strconv.FormatFloat(row.Price, 'f', -1, 64),
							formatUSD(row.USDValue),
						)
					}

					return nil
				})
			})
		},
	}

	cmd.Flags().StringVar(&chainID, "chain", "", "limit to one chain (e.g. eth, bsc)")
	cmd.Flags().BoolVar(&isAll, "all", false, "include tokens DeBank does not list by default")
	cmd.Flags().IntVar(&limit, "limit", constants.TokenDisplayLimit, "maximum rows to show (0 for all)")

	return cmd
}

func newWalletTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token ADDRESS CHAIN_ID TOKEN_ID",
		Short: "Show one token balance",
		Long:  "Display a wallet's balance of a single token on a chain",
		Args:  cobra.ExactArgs(3),
		RunE: payloadRunE(func(cmd *cobra.Command, client debank.Client, args []string) (debank.Payload, error) {
			return client.Token(commandContext(cmd), args[0], args[1], args[2])
		}),
	}
}

func newWalletTokenInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token-info CHAIN_ID TOKEN_ADDRESS",
		Short: "Show token metadata",
		Long:  "Display metadata and price for a token contract on a chain",
		Args:  cobra.ExactArgs(2),
		RunE: payloadRunE(func(cmd *cobra.Command, client debank.Client, args []string) (debank.Payload, error) {
			return client.TokenInfo(commandContext(cmd), args[0], args[1])
		}),
	}
}

func newWalletPositionsCommand() *cobra.Command {
	var chainID string

	cmd := &cobra.Command{
		Use:   "positions ADDRESS",
		Short: "List DeFi positions",
		Long:  "List protocol positions of a wallet, largest first, on one chain or across all chains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(client debank.Client, _ debank.Logger) error {
				payload, err := client.ComplexProtocolList(commandContext(cmd), args[0], chainID)
				if err != nil {
					return describeError(err)
				}

				rows, err := board.PositionRows(payload)
				if err != nil {
					return err
				}

				return render(cmd.OutOrStdout(), rows, func(table *tablewriter.Table) error {
					table.Header("Protocol", "Chain", "USD Value")

					for _, row := range rows {
						_ = table.Append(row.Protocol, row.Chain, formatUSD(row.USDValue))
					}

					_ = table.Append("", "Total", formatUSD(board.SumPositions(rows)))

					return nil
				})
			})
		},
	}

	cmd.Flags().StringVar(&chainID, "chain", "", "limit to one chain (e.g. eth, bsc)")

	return cmd
}

func newWalletProtocolCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "protocol ADDRESS PROTOCOL_ID",
		Short: "Show one protocol position",
		Long:  "Display a wallet's position in a single DeFi protocol",
		Args:  cobra.ExactArgs(2),
		RunE: payloadRunE(func(cmd *cobra.Command, client debank.Client, args []string) (debank.Payload, error) {
			return client.Protocol(commandContext(cmd), args[0], args[1])
		}),
	}
}

func newWalletCurveCommand() *cobra.Command {
	var chainID string

	cmd := &cobra.Command{
		Use:   "curve ADDRESS",
		Short: "Show net worth curve",
		Long:  "Display the 24h net worth time series of a wallet, in total or for one chain",
		Args:  cobra.ExactArgs(1),
		RunE: payloadRunE(func(cmd *cobra.Command, client debank.Client, args []string) (debank.Payload, error) {
			if chainID != "" {
				return client.ChainNetCurve(commandContext(cmd), args[0], chainID)
			}

			return client.TotalNetCurve(commandContext(cmd), args[0])
		}),
	}

	cmd.Flags().StringVar(&chainID, "chain", "", "limit to one chain (e.g. eth, bsc)")

	return cmd
}

func newWalletHistoryCommand() *cobra.Command {
	var (
		chainID   string
		startTime int64
		pageCount int
	)

	cmd := &cobra.Command{
		Use:   "history ADDRESS",
		Short: "List transaction history",
		Long:  "List a wallet's transaction history, newest first, on one chain or across all chains",
		Args:  cobra.ExactArgs(1),
		RunE: payloadRunE(func(cmd *cobra.Command, client debank.Client, args []string) (debank.Payload, error) {
			opts := &debank.HistoryOptions{StartTime: startTime, PageCount: pageCount}

			if chainID != "" {
				return client.HistoryList(commandContext(cmd), args[0], chainID, opts)
			}

			return client.AllHistoryList(commandContext(cmd), args[0], opts)
		}),
	}

	cmd.Flags().StringVar(&chainID, "chain", "", "limit to one chain (e.g. eth, bsc)")
	cmd.Flags().Int64Var(&startTime, "start-time", 0, "unix timestamp cursor; only older transactions are returned")
	cmd.Flags().IntVar(&pageCount, "page-count", constants.DefaultHistoryPageCount, "transactions per page")

	return cmd
}

func newWalletApprovalsCommand() *cobra.Command {
	var (
		chainID string
		nft     bool
	)

	cmd := &cobra.Command{
		Use:   "approvals ADDRESS",
		Short: "List token approvals",
		Long:  "List token (or NFT) allowances a wallet has granted on a chain",
		Args:  cobra.ExactArgs(1),
		RunE: payloadRunE(func(cmd *cobra.Command, client debank.Client, args []string) (debank.Payload, error) {
			if nft {
				return client.NFTApprovals(commandContext(cmd), args[0], chainID)
			}

			return client.TokenApprovals(commandContext(cmd), args[0], chainID)
		}),
	}

	cmd.Flags().StringVar(&chainID, "chain", "", "chain to inspect (e.g. eth, bsc)")
	cmd.Flags().BoolVar(&nft, "nft", false, "list NFT approvals instead of token approvals")
	_ = cmd.MarkFlagRequired("chain")

	return cmd
}
