// Package solana implements the backend adapter for Solana over the node's
// JSON-RPC API.
package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/jmourad/chainmcp/internal/backend"
)

const lamportsPerSol = 1_000_000_000

// Config holds the Solana adapter settings.
type Config struct {
	// RPCURL is the node's JSON-RPC endpoint, e.g.
	// https://api.mainnet-beta.solana.com.
	RPCURL string

	// Timeout bounds each downstream call.
	Timeout time.Duration
}

// Adapter is the Solana implementation of backend.Adapter.
type Adapter struct {
	cfg    Config
	client *rpc.Client
	logger *slog.Logger
}

// New creates a Solana adapter. The RPC client is lazy; an unreachable node
// surfaces on the first call.
func New(cfg Config, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Adapter{
		cfg:    cfg,
		client: rpc.New(cfg.RPCURL),
		logger: logger.With("network", "solana"),
	}
}

// Network implements backend.Adapter.
func (a *Adapter) Network() string { return "solana" }

// Close releases the underlying RPC connection.
func (a *Adapter) Close() error {
	return a.client.Close()
}

// Balance implements backend.Adapter.
func (a *Adapter) Balance(ctx context.Context, address string) (json.RawMessage, error) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("%q is not a base58 public key: %w", address, backend.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	out, err := a.client.GetBalance(ctx, pk, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("getBalance %s: %v: %w", address, err, backend.ErrBackendUnavailable)
	}

	payload := map[string]any{
		"address":  address,
		"lamports": out.Value,
		"sol":      float64(out.Value) / lamportsPerSol,
	}
	return json.Marshal(payload)
}

// Transaction implements backend.Adapter.
func (a *Adapter) Transaction(ctx context.Context, txID string) (json.RawMessage, error) {
	sig, err := solana.SignatureFromBase58(txID)
	if err != nil {
		return nil, fmt.Errorf("%q is not a base58 signature: %w", txID, backend.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	maxVersion := uint64(0)
	out, err := a.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentFinalized,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("getTransaction %s: %v: %w", txID, err, backend.ErrBackendUnavailable)
	}

	payload := map[string]any{
		"signature": txID,
		"slot":      out.Slot,
	}
	if out.BlockTime != nil {
		payload["block_time"] = out.BlockTime.Time().UTC().Format(time.RFC3339)
	}
	if out.Meta != nil {
		payload["fee"] = out.Meta.Fee
		if out.Meta.Err != nil {
			payload["err"] = fmt.Sprintf("%v", out.Meta.Err)
		}
	}
	return json.Marshal(payload)
}

// WalletInfo implements backend.Adapter.
func (a *Adapter) WalletInfo(ctx context.Context, address string) (*backend.WalletReport, error) {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return nil, fmt.Errorf("%q is not a base58 public key: %w", address, backend.ErrValidation)
	}
	return backend.CollectWallet(ctx, a.Network(), address,
		func(ctx context.Context) (json.RawMessage, error) {
			return a.Balance(ctx, address)
		},
		func(ctx context.Context) ([]json.RawMessage, error) {
			return a.history(ctx, address)
		},
	)
}

// history returns the address's most recent transaction signatures,
// newest-first as the RPC reports them.
func (a *Adapter) history(ctx context.Context, address string) ([]json.RawMessage, error) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("%q is not a base58 public key: %w", address, backend.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	sigs, err := a.client.GetSignaturesForAddressWithOpts(ctx, pk, &rpc.GetSignaturesForAddressOpts{
		Commitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return nil, fmt.Errorf("getSignaturesForAddress %s: %v: %w", address, err, backend.ErrBackendUnavailable)
	}

	out := make([]json.RawMessage, 0, len(sigs))
	for _, sig := range sigs {
		raw, err := json.Marshal(sig)
		if err != nil {
			return nil, fmt.Errorf("encode signature entry: %w", err)
		}
		out = append(out, raw)
	}
	return out, nil
}
