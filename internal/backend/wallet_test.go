package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestCollectWallet_TruncatesToMostRecent(t *testing.T) {
	history := make([]json.RawMessage, 25)
	for i := range history {
		history[i] = json.RawMessage(fmt.Sprintf(`{"txid":"tx%d"}`, i))
	}

	report, err := CollectWallet(context.Background(), "flux", "addr1",
		func(context.Context) (json.RawMessage, error) {
			return json.RawMessage(`{"balance":42}`), nil
		},
		func(context.Context) ([]json.RawMessage, error) {
			return history, nil
		},
	)
	if err != nil {
		t.Fatalf("CollectWallet failed: %v", err)
	}

	if len(report.Transactions) != HistoryLimit {
		t.Fatalf("got %d transactions, want %d", len(report.Transactions), HistoryLimit)
	}
	// Newest-first input, so the kept entries are the first ten.
	for i, tx := range report.Transactions {
		want := fmt.Sprintf(`{"txid":"tx%d"}`, i)
		if string(tx) != want {
			t.Errorf("transaction %d = %s, want %s", i, tx, want)
		}
	}
	if !report.Truncated {
		t.Error("Truncated flag not set")
	}
	if report.Address != "addr1" || report.Network != "flux" {
		t.Errorf("report identity = %s/%s, want flux/addr1", report.Network, report.Address)
	}
}

func TestCollectWallet_ShortHistoryNotTruncated(t *testing.T) {
	report, err := CollectWallet(context.Background(), "flux", "addr1",
		func(context.Context) (json.RawMessage, error) {
			return json.RawMessage(`{}`), nil
		},
		func(context.Context) ([]json.RawMessage, error) {
			return []json.RawMessage{json.RawMessage(`{"txid":"tx0"}`)}, nil
		},
	)
	if err != nil {
		t.Fatalf("CollectWallet failed: %v", err)
	}
	if len(report.Transactions) != 1 || report.Truncated {
		t.Errorf("got %d transactions (truncated=%v), want 1 untruncated",
			len(report.Transactions), report.Truncated)
	}
}

func TestCollectWallet_PropagatesFailures(t *testing.T) {
	balErr := fmt.Errorf("node down: %w", ErrBackendUnavailable)

	_, err := CollectWallet(context.Background(), "flux", "addr1",
		func(context.Context) (json.RawMessage, error) {
			return nil, balErr
		},
		func(context.Context) ([]json.RawMessage, error) {
			return nil, nil
		},
	)
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestCollectWallet_ReadsRunConcurrently(t *testing.T) {
	// Each leg sleeps; if they ran sequentially the join would take twice
	// as long.
	const leg = 100 * time.Millisecond

	start := time.Now()
	_, err := CollectWallet(context.Background(), "flux", "addr1",
		func(context.Context) (json.RawMessage, error) {
			time.Sleep(leg)
			return json.RawMessage(`{}`), nil
		},
		func(context.Context) ([]json.RawMessage, error) {
			time.Sleep(leg)
			return nil, nil
		},
	)
	if err != nil {
		t.Fatalf("CollectWallet failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed >= 2*leg {
		t.Errorf("join took %v, reads appear to run sequentially", elapsed)
	}
}
