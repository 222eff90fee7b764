package board_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/shadow-nav/internal/board"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

var errUpstream = errors.New("upstream unavailable")

// fakeFetcher answers TotalBalance from a fixed table and tracks concurrency.
type fakeFetcher struct {
	balances map[string]string
	delay    time.Duration

	mu       sync.Mutex
	inFlight int
	peak     int
	calls    int32
}

func (f *fakeFetcher) TotalBalance(ctx context.Context, addr string) (debank.Payload, error) {
	atomic.AddInt32(&f.calls, 1)

	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	body, ok := f.balances[addr]
	if !ok {
		return nil, &debank.HTTPStatusError{StatusCode: 500, Path: "/v1/user/total_balance", Err: errUpstream}
	}

	return debank.Payload(body), nil
}

func entries(addrs ...string) []board.Entry {
	out := make([]board.Entry, 0, len(addrs))
	for i, addr := range addrs {
		out = append(out, board.Entry{Index: i, Wallet: board.Wallet{Client: "c", Label: addr, Address: addr}})
	}

	return out
}

func TestSnapshotter_Take(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{balances: map[string]string{
		"0x1": `{"total_usd_value": 100}`,
		"0x2": `{"usd_value": 50.5}`,
		"0x3": `{"usd_value": 25}`,
	}}
	taken := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	snapshotter := board.NewSnapshotter(fetcher, board.WithClock(func() time.Time { return taken }))

	snapshot, err := snapshotter.Take(context.Background(), entries("0x1", "0x2", "0x3", "0x4"), []int{1, 3, 9})
	require.NoError(t, err)

	assert.Equal(t, taken, snapshot.Taken)
	require.Len(t, snapshot.Rows, 4)
	assert.InDelta(t, 100, snapshot.Rows[0].USDValue, 0.0001)
	assert.True(t, snapshot.Rows[1].Selected)
	assert.False(t, snapshot.Rows[2].Selected)

	failed := snapshot.Rows[3]
	require.Error(t, failed.Err)
	assert.Equal(t, 500, debank.StatusCode(failed.Err))
	assert.Contains(t, failed.Error, "upstream unavailable")
	assert.True(t, failed.Selected)

	assert.InDelta(t, 175.5, snapshot.Total, 0.0001)
	assert.InDelta(t, 50.5, snapshot.SelectedTotal, 0.0001)
	assert.Equal(t, 1, snapshot.Failed)
	assert.Equal(t, int32(4), atomic.LoadInt32(&fetcher.calls))
}

func TestSnapshotter_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	balances := map[string]string{}
	addrs := make([]string, 0, 12)

	for i := range 12 {
		addr := string(rune('a' + i))
		balances[addr] = `{"usd_value": 1}`
		addrs = append(addrs, addr)
	}

	fetcher := &fakeFetcher{balances: balances, delay: 10 * time.Millisecond}
	snapshotter := board.NewSnapshotter(fetcher, board.WithConcurrency(3))

	snapshot, err := snapshotter.Take(context.Background(), entries(addrs...), nil)
	require.NoError(t, err)
	assert.InDelta(t, 12, snapshot.Total, 0.0001)

	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	assert.LessOrEqual(t, fetcher.peak, 3)
}

func TestSnapshotter_Cancelled(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{balances: map[string]string{"0x1": `{"usd_value": 1}`}, delay: time.Second}
	snapshotter := board.NewSnapshotter(fetcher)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	snapshot, err := snapshotter.Take(ctx, entries("0x1", "0x1"), nil)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, snapshot)
}

func TestSnapshotter_Empty(t *testing.T) {
	t.Parallel()

	snapshot, err := board.NewSnapshotter(&fakeFetcher{}).Take(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Rows)
	assert.Zero(t, snapshot.Total)
}
