package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/shadow-nav/internal/board"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

// NewPublishCommand creates the publish command.
func NewPublishCommand() *cobra.Command {
	flags := &snapshotFlags{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a board snapshot to NATS",
		Long:  "Value the board and publish the snapshot as JSON on a NATS subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := board.ConnectNATS(viper.GetString(keyNATSURL))
			if err != nil {
				return err
			}
			defer conn.Close()

			publisher := board.NewNATSPublisher(conn, viper.GetString(keySubject))

			return withClient(func(client debank.Client, logger debank.Logger) error {
				ctx := commandContext(cmd)

				snapshot, err := takeSnapshot(ctx, flags, client, logger)
				if err != nil {
					return err
				}

				err = publisher.Publish(ctx, snapshot)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Published %d wallets (%s, %d failed) to %s\n",
					len(snapshot.Rows), formatUSD(snapshot.Total), snapshot.Failed, publisher.Subject())

				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().String("nats-url", "", "NATS server URL (or nats_url in config)")
	cmd.Flags().String("subject", "", "NATS subject (default shadownav.snapshots)")
	_ = viper.BindPFlag(keyNATSURL, cmd.Flags().Lookup("nats-url"))
	_ = viper.BindPFlag(keySubject, cmd.Flags().Lookup("subject"))

	return cmd
}
