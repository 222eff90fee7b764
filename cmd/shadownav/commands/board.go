package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/shadow-nav/internal/board"
	"github.com/fivetwenty-io/shadow-nav/internal/constants"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

// NewBoardCommand creates the board command group.
func NewBoardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage the NAV board",
		Long:  "Track client wallets, select one, keep comments and value the board",
	}

	cmd.AddCommand(newBoardLoadCommand())
	cmd.AddCommand(newBoardListCommand())
	cmd.AddCommand(newBoardSelectCommand())
	cmd.AddCommand(newBoardClearSelectionCommand())
	cmd.AddCommand(newBoardCommentCommand())
	cmd.AddCommand(newBoardCommentsCommand())
	cmd.AddCommand(newBoardDeleteCommand())
	cmd.AddCommand(newBoardClearCommand())
	cmd.AddCommand(newBoardShowCommand())
	cmd.AddCommand(newBoardSnapshotCommand())

	return cmd
}

func newBoardLoadCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load wallets onto the board",
		Long: `Replace the board's wallets with one wallet per line, read from --file or stdin.

Accepted line forms:
  Client, Label, 0xAddress
  Label, 0xAddress
  0xAddress`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)

			if file != "" {
				data, err = os.ReadFile(file) //nolint:gosec // G304: User-specified file path is intentional for CLI tool
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}

			if err != nil {
				return fmt.Errorf("failed to read wallets: %w", err)
			}

			wallets := board.ParseWallets(string(data))
			if len(wallets) == 0 {
				return constants.ErrNoWallets
			}

			store, err := openBoard()
			if err != nil {
				return err
			}

			err = store.LoadWallets(wallets)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d wallets\n", len(wallets))

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file with one wallet per line (default stdin)")

	return cmd
}

func newBoardListCommand() *cobra.Command {
	var clients []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List board wallets",
		Long:  "List the wallets on the board, optionally limited to some clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBoard()
			if err != nil {
				return err
			}

			entries := store.Filter(clients)
			active, hasActive := store.Active()

			return render(cmd.OutOrStdout(), entries, func(table *tablewriter.Table) error {
				table.Header("#", "Active", "Client", "Label", "Address")

				for _, entry := range entries {
					mark := ""
					if hasActive && active.Index == entry.Index {
						mark = constants.CheckMarkSymbol
					}

					_ = table.Append(strconv.Itoa(entry.Index), mark, entry.Wallet.Client, entry.Wallet.Label, entry.Wallet.Address)
				}

				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&clients, "client", nil, "only show wallets of these clients")

	return cmd
}

func newBoardSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select INDEX",
		Short: "Select the active wallet",
		Long:  "Mark the wallet at INDEX as the active wallet for comments and show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			store, err := openBoard()
			if err != nil {
				return err
			}

			err = store.Select(index)
			if err != nil {
				return err
			}

			active, _ := store.Active()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Selected %s (%s)\n", active.Wallet.Label, active.Wallet.Address)

			return nil
		},
	}
}

func newBoardClearSelectionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-selection",
		Short: "Clear the active wallet",
		Long:  "Drop the active wallet selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBoard()
			if err != nil {
				return err
			}

			return store.ClearSelection()
		},
	}
}

// targetWallet resolves --index, or the active wallet when index is negative.
func targetWallet(store *board.Store, index int) (board.Entry, error) {
	if index < 0 {
		active, ok := store.Active()
		if !ok {
			return board.Entry{}, constants.ErrNoActiveWallet
		}

		return active, nil
	}

	wallets := store.Wallets()
	if index >= len(wallets) {
		return board.Entry{}, fmt.Errorf("%w: %d (board has %d wallets)", constants.ErrWalletIndexRange, index, len(wallets))
	}

	return board.Entry{Index: index, Wallet: wallets[index]}, nil
}

func newBoardCommentCommand() *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "comment TEXT...",
		Short: "Comment on a wallet",
		Long:  "Append a timestamped comment to the active wallet, or the wallet at --index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBoard()
			if err != nil {
				return err
			}

			target, err := targetWallet(store, index)
			if err != nil {
				return err
			}

			comment, err := store.AddComment(target.Wallet.Address, strings.Join(args, " "), time.Now())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", comment.Timestamp, target.Wallet.Label, comment.Text)

			return nil
		},
	}

	cmd.Flags().IntVar(&index, "index", -1, "board index of the wallet (default active wallet)")

	return cmd
}

func newBoardCommentsCommand() *cobra.Command {
	var (
		index int
		limit int
	)

	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Show wallet comments",
		Long:  "Show the most recent comments of the active wallet, or the wallet at --index, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBoard()
			if err != nil {
				return err
			}

			target, err := targetWallet(store, index)
			if err != nil {
				return err
			}

			comments := store.RecentComments(target.Wallet.Address, limit)

			return render(cmd.OutOrStdout(), comments, commentsTable(comments))
		},
	}

	cmd.Flags().IntVar(&index, "index", -1, "board index of the wallet (default active wallet)")
	cmd.Flags().IntVar(&limit, "limit", constants.RecentCommentsLimit, "maximum comments to show (0 for all)")

	return cmd
}

func commentsTable(comments []board.Comment) func(*tablewriter.Table) error {
	return func(table *tablewriter.Table) error {
		table.Header("Time", "Comment")

		for _, comment := range comments {
			_ = table.Append(comment.Timestamp, comment.Text)
		}

		return nil
	}
}

func newBoardDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete INDEX",
		Short: "Delete a wallet",
		Long:  "Remove the wallet at INDEX from the board. Its comments are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			store, err := openBoard()
			if err != nil {
				return err
			}

			return store.DeleteWallet(index)
		},
	}
}

func newBoardClearCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the board",
		Long:  "Remove every wallet, comment and the selection from the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Remove all wallets and comments? [y/N]: ")

				answer, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}

				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted")

					return nil
				}
			}

			store, err := openBoard()
			if err != nil {
				return err
			}

			return store.Clear()
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")

	return cmd
}

// walletDetail is the active wallet with its comments and, when fetched, live values.
type walletDetail struct {
	Index     int                   `json:"index"               yaml:"index"`
	Wallet    board.Wallet          `json:"wallet"              yaml:"wallet"`
	Comments  []board.Comment       `json:"comments"            yaml:"comments"`
	Summary   *debank.WalletSummary `json:"summary,omitempty"   yaml:"summary,omitempty"`
	Positions []board.PositionRow   `json:"positions,omitempty" yaml:"positions,omitempty"`
}

func newBoardShowCommand() *cobra.Command {
	var (
		index int
		live  bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active wallet",
		Long:  "Show the active wallet, or the wallet at --index, with recent comments and optionally live DeBank values",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBoard()
			if err != nil {
				return err
			}

			target, err := targetWallet(store, index)
			if err != nil {
				return err
			}

			detail := walletDetail{
				Index:    target.Index,
				Wallet:   target.Wallet,
				Comments: store.RecentComments(target.Wallet.Address, constants.RecentCommentsLimit),
			}

			if live {
				err = withClient(func(client debank.Client, _ debank.Logger) error {
					summary, err := client.SummarizeWallet(commandContext(cmd), target.Wallet.Address)
					if err != nil {
						return describeError(err)
					}

					detail.Summary = summary

					detail.Positions, err = board.PositionRows(summary.Positions)

					return err
				})
				if err != nil {
					return err
				}
			}

			return render(cmd.OutOrStdout(), detail, func(table *tablewriter.Table) error {
				table.Header("Property", "Value")
				_ = table.Append("Index", strconv.Itoa(detail.Index))
				_ = table.Append("Client", detail.Wallet.Client)
				_ = table.Append("Label", detail.Wallet.Label)
				_ = table.Append("Address", detail.Wallet.Address)

				if detail.Summary != nil {
					_ = table.Append("Total USD", formatUSD(detail.Summary.TotalUSD))
					_ = table.Append("Net USD", formatUSD(detail.Summary.NetUSD))

					for _, row := range detail.Positions {
						_ = table.Append("Position "+row.Protocol, fmt.Sprintf("%s on %s", formatUSD(row.USDValue), row.Chain))
					}
				}

				for _, comment := range detail.Comments {
					_ = table.Append(comment.Timestamp, comment.Text)
				}

				return nil
			})
		},
	}

	cmd.Flags().IntVar(&index, "index", -1, "board index of the wallet (default active wallet)")
	cmd.Flags().BoolVar(&live, "live", false, "fetch balance and positions from DeBank")

	return cmd
}

// snapshotFlags are shared by board snapshot and publish.
type snapshotFlags struct {
	clients     []string
	concurrency int
}

func (f *snapshotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.clients, "client", nil, "only value wallets of these clients")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", constants.DefaultConcurrencyLimit, "maximum concurrent balance requests")
}

// takeSnapshot values the filtered board. The active wallet counts as selected.
func takeSnapshot(ctx context.Context, flags *snapshotFlags, client debank.Client, logger debank.Logger) (*board.Snapshot, error) {
	store, err := openBoard()
	if err != nil {
		return nil, err
	}

	entries := store.Filter(flags.clients)
	if len(entries) == 0 {
		return nil, constants.ErrNoWallets
	}

	var selected []int
	if active, ok := store.Active(); ok {
		selected = append(selected, active.Index)
	}

	opts := []board.SnapshotOption{board.WithConcurrency(flags.concurrency)}
	if logger != nil {
		opts = append(opts, board.WithSnapshotLogger(logger))
	}

	return board.NewSnapshotter(client, opts...).Take(ctx, entries, selected)
}

func renderSnapshot(w io.Writer, snapshot *board.Snapshot) error {
	return render(w, snapshot, func(table *tablewriter.Table) error {
		table.Header("#", "Active", "Client", "Label", "Address", "USD Value")

		for _, row := range snapshot.Rows {
			mark := ""
			if row.Selected {
				mark = constants.CheckMarkSymbol
			}

			value := formatUSD(row.USDValue)
			if row.Error != "" {
				value = "error: " + row.Error
			}

			_ = table.Append(strconv.Itoa(row.Index), mark, row.Wallet.Client, row.Wallet.Label, row.Wallet.Address, value)
		}

		_ = table.Append("", "", "", "", "Total", formatUSD(snapshot.Total))

		if snapshot.SelectedTotal != 0 {
			_ = table.Append("", "", "", "", "Selected", formatUSD(snapshot.SelectedTotal))
		}

		return nil
	})
}

func newBoardSnapshotCommand() *cobra.Command {
	flags := &snapshotFlags{}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Value the board",
		Long:  "Fetch the total balance of every board wallet concurrently and show the NAV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(client debank.Client, logger debank.Logger) error {
				snapshot, err := takeSnapshot(commandContext(cmd), flags, client, logger)
				if err != nil {
					return err
				}

				return renderSnapshot(cmd.OutOrStdout(), snapshot)
			})
		},
	}

	flags.register(cmd)

	return cmd
}
