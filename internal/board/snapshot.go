package board

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fivetwenty-io/shadow-nav/internal/constants"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

// BalanceFetcher fetches a wallet's total balance. debank.Client satisfies it.
type BalanceFetcher interface {
	TotalBalance(ctx context.Context, addr string) (debank.Payload, error)
}

// WalletRow is one wallet's line in a snapshot. A failed fetch keeps the row
// with a zero value and the error text.
type WalletRow struct {
	Index    int     `json:"index"           yaml:"index"`
	Wallet   Wallet  `json:"wallet"          yaml:"wallet"`
	USDValue float64 `json:"usd_value"       yaml:"usd_value"`
	Selected bool    `json:"selected"        yaml:"selected"`
	Error    string  `json:"error,omitempty" yaml:"error,omitempty"`

	Err error `json:"-" yaml:"-"`
}

// Snapshot is the board valued at one point in time.
type Snapshot struct {
	Taken         time.Time   `json:"taken"          yaml:"taken"`
	Rows          []WalletRow `json:"rows"           yaml:"rows"`
	Total         float64     `json:"total"          yaml:"total"`
	SelectedTotal float64     `json:"selected_total" yaml:"selected_total"`
	Failed        int         `json:"failed"         yaml:"failed"`
}

// Snapshotter values board wallets concurrently.
type Snapshotter struct {
	fetcher BalanceFetcher
	limit   int
	now     func() time.Time
	logger  debank.Logger
}

// SnapshotOption configures a Snapshotter.
type SnapshotOption func(*Snapshotter)

// WithConcurrency bounds in-flight balance requests.
func WithConcurrency(limit int) SnapshotOption {
	return func(s *Snapshotter) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) SnapshotOption {
	return func(s *Snapshotter) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSnapshotLogger reports per-wallet failures.
func WithSnapshotLogger(logger debank.Logger) SnapshotOption {
	return func(s *Snapshotter) {
		s.logger = logger
	}
}

// NewSnapshotter creates a snapshotter backed by fetcher.
func NewSnapshotter(fetcher BalanceFetcher, opts ...SnapshotOption) *Snapshotter {
	snapshotter := &Snapshotter{
		fetcher: fetcher,
		limit:   constants.DefaultConcurrencyLimit,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(snapshotter)
	}

	return snapshotter
}

// Take fetches every entry's total balance. Individual wallet failures are
// recorded in their rows; only cancellation of ctx fails the whole snapshot.
// selected lists board indices whose values count toward SelectedTotal.
func (s *Snapshotter) Take(ctx context.Context, entries []Entry, selected []int) (*Snapshot, error) {
	isSelected := make(map[int]bool, len(selected))
	for _, index := range selected {
		isSelected[index] = true
	}

	rows := make([]WalletRow, len(entries))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.limit)

	for i, entry := range entries {
		rows[i] = WalletRow{Index: entry.Index, Wallet: entry.Wallet, Selected: isSelected[entry.Index]}

		group.Go(func() error {
			err := groupCtx.Err()
			if err != nil {
				return err
			}

			value, err := s.value(groupCtx, entry.Wallet.Address)
			if err != nil {
				rows[i].Err = err
				rows[i].Error = err.Error()

				if s.logger != nil {
					s.logger.Warn("Wallet balance failed", map[string]interface{}{
						"label": entry.Wallet.Label,
						"addr":  entry.Wallet.Address,
						"error": err,
					})
				}

				return nil
			}

			rows[i].USDValue = value

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("taking snapshot: %w", err)
	}

	err = ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("taking snapshot: %w", err)
	}

	snapshot := &Snapshot{Taken: s.now().UTC(), Rows: rows}

	for _, row := range rows {
		if row.Err != nil {
			snapshot.Failed++

			continue
		}

		snapshot.Total += row.USDValue
		if row.Selected {
			snapshot.SelectedTotal += row.USDValue
		}
	}

	return snapshot, nil
}

func (s *Snapshotter) value(ctx context.Context, addr string) (float64, error) {
	payload, err := s.fetcher.TotalBalance(ctx, addr)
	if err != nil {
		return 0, err
	}

	return TotalUSD(payload)
}
