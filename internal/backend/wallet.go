package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// CollectWallet issues a balance read and a transaction-history read
// concurrently, waits for both, and combines them into a WalletReport.
// Adapters share this join so the truncation and error semantics stay
// identical across networks.
//
// The history function must return entries newest-first; anything beyond
// HistoryLimit is dropped.
func CollectWallet(
	ctx context.Context,
	network, address string,
	balance func(context.Context) (json.RawMessage, error),
	history func(context.Context) ([]json.RawMessage, error),
) (*WalletReport, error) {
	var (
		wg sync.WaitGroup

		bal    json.RawMessage
		balErr error
		txs    []json.RawMessage
		txErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		bal, balErr = balance(ctx)
	}()
	go func() {
		defer wg.Done()
		txs, txErr = history(ctx)
	}()
	wg.Wait()

	if balErr != nil {
		return nil, fmt.Errorf("balance: %w", balErr)
	}
	if txErr != nil {
		return nil, fmt.Errorf("history: %w", txErr)
	}

	report := &WalletReport{
		Network:      network,
		Address:      address,
		Balance:      bal,
		Transactions: txs,
	}
	if len(txs) > HistoryLimit {
		report.Transactions = txs[:HistoryLimit]
		report.Truncated = true
	}
	return report, nil
}
