// Package backend defines the uniform operation set every blockchain network
// adapter implements, and the registry that owns the adapter set for the
// process lifetime. The protocol-facing router never branches on network
// identity beyond a single registry lookup; everything network-specific lives
// behind the Adapter interface.
package backend

import (
	"context"
	"encoding/json"
)

// HistoryLimit is the number of most recent transactions included in a
// combined wallet report.
const HistoryLimit = 10

// WalletReport is the combined payload produced by WalletInfo: the address,
// its balance, and the most recent transactions, truncated to HistoryLimit.
type WalletReport struct {
	Network      string            `json:"network"`
	Address      string            `json:"address"`
	Balance      json.RawMessage   `json:"balance"`
	Transactions []json.RawMessage `json:"transactions"`
	Truncated    bool              `json:"truncated,omitempty"`
}

// Adapter translates the uniform operation set into one network's native API
// calls. Implementations are stateless and safe for concurrent use; every
// downstream failure is returned as an error wrapping ErrBackendUnavailable
// rather than escaping as a panic or transport fault.
type Adapter interface {
	// Network returns the identifier the adapter is registered under.
	Network() string

	// Balance returns the network's raw balance representation for an
	// address, serialized as JSON.
	Balance(ctx context.Context, address string) (json.RawMessage, error)

	// Transaction returns the network's raw representation of a transaction.
	Transaction(ctx context.Context, txID string) (json.RawMessage, error)

	// WalletInfo issues the balance and transaction-history reads
	// concurrently and joins them into a single report.
	WalletInfo(ctx context.Context, address string) (*WalletReport, error)
}
