package commands

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary ADDRESS...",
		Short: "Summarize wallets",
		Long:  "Compose total balance, used chains and DeFi positions for one or more wallets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(client debank.Client, _ debank.Logger) error {
				summaries := make([]*debank.WalletSummary, 0, len(args))

				for _, addr := range args {
					summary, err := client.SummarizeWallet(commandContext(cmd), addr)
					if err != nil {
						return describeError(err)
					}

					summaries = append(summaries, summary)
				}

				return render(cmd.OutOrStdout(), summaries, func(table *tablewriter.Table) error {
					table.Header("Address", "Total USD", "Net USD", "Chains", "Positions")

					for _, summary := range summaries {
						_ = table.Append(
							summary.Address,
							formatUSD(summary.TotalUSD),
							formatUSD(summary.NetUSD),
							strconv.Itoa(payloadLen(summary.Chains)),
							strconv.Itoa(payloadLen(summary.Positions)),
						)
					}

					return nil
				})
			})
		},
	}
}

// payloadLen counts array elements, or returns 0 for any other payload.
func payloadLen(payload debank.Payload) int {
	items, err := payload.Array()
	if err != nil {
		return 0
	}

	return len(items)
}
