// Package evm implements the backend adapter for Ethereum and EVM-compatible
// networks. Balance and transaction lookups go through the node's JSON-RPC
// interface via ethclient; address history comes from an etherscan-style
// explorer API, since nodes do not index transactions by address.
package evm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/jmourad/chainmcp/internal/backend"
)

const maxBodyBytes = 4 << 20

// Config holds the EVM adapter settings.
type Config struct {
	// Network is the identifier the adapter registers under, e.g. "ethereum".
	Network string

	// RPCURL is the node's JSON-RPC endpoint.
	RPCURL string

	// ExplorerURL is an etherscan-compatible API root used for address
	// history. Empty disables history; wallet reports then carry an empty
	// transaction list.
	ExplorerURL string

	// Timeout bounds each downstream call.
	Timeout time.Duration
}

// Adapter is the EVM implementation of backend.Adapter.
type Adapter struct {
	cfg    Config
	client *ethclient.Client
	httpc  *http.Client
	logger *slog.Logger
}

// New dials the node's JSON-RPC endpoint. Dialing an HTTP endpoint does not
// touch the network, so a node that is down surfaces on the first call, as an
// error envelope, not at startup.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Network == "" {
		cfg.Network = "ethereum"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCURL, err)
	}

	return &Adapter{
		cfg:    cfg,
		client: client,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("network", cfg.Network),
	}, nil
}

// Network implements backend.Adapter.
func (a *Adapter) Network() string { return a.cfg.Network }

// Close releases the underlying RPC connection.
func (a *Adapter) Close() error {
	a.client.Close()
	return nil
}

// Balance implements backend.Adapter.
func (a *Adapter) Balance(ctx context.Context, address string) (json.RawMessage, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%q is not a hex address: %w", address, backend.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	wei, err := a.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance %s: %v: %w", address, err, backend.ErrBackendUnavailable)
	}

	payload := map[string]string{
		"address": address,
		"wei":     wei.String(),
		"ether":   weiToEther(wei),
	}
	return json.Marshal(payload)
}

// Transaction implements backend.Adapter.
func (a *Adapter) Transaction(ctx context.Context, txID string) (json.RawMessage, error) {
	hash, err := parseTxHash(txID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	tx, pending, err := a.client.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("transaction %s not found: %w", txID, backend.ErrBackendUnavailable)
		}
		return nil, fmt.Errorf("eth_getTransactionByHash %s: %v: %w", txID, err, backend.ErrBackendUnavailable)
	}

	payload := map[string]any{
		"hash":      tx.Hash().Hex(),
		"nonce":     tx.Nonce(),
		"gas":       tx.Gas(),
		"gas_price": tx.GasPrice().String(),
		"value":     tx.Value().String(),
		"pending":   pending,
	}
	if to := tx.To(); to != nil {
		payload["to"] = to.Hex()
	}
	return json.Marshal(payload)
}

// WalletInfo implements backend.Adapter.
func (a *Adapter) WalletInfo(ctx context.Context, address string) (*backend.WalletReport, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%q is not a hex address: %w", address, backend.ErrValidation)
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

// explorerResponse is the etherscan API envelope.
type explorerResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Result  []json.RawMessage `json:"result"`
}

// history fetches the address's transactions from the explorer API,
// newest-first.
func (a *Adapter) history(ctx context.Context, address string) ([]json.RawMessage, error) {
	if a.cfg.ExplorerURL == "" {
		a.logger.Debug("no explorer configured, returning empty history")
		return nil, nil
	}

	q := url.Values{
		"module":  {"account"},
		"action":  {"txlist"},
		"address": {address},
		"sort":    {"desc"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.ExplorerURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build explorer request: %w", err)
	}

	resp, err := a.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer txlist %s: %v: %w", address, err, backend.ErrBackendUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read explorer response: %v: %w", err, backend.ErrBackendUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer txlist: status %d: %w", resp.StatusCode, backend.ErrBackendUnavailable)
	}

	var out explorerResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("malformed explorer response: %w", backend.ErrBackendUnavailable)
	}
	return out.Result, nil
}

func parseTxHash(txID string) (common.Hash, error) {
	b, err := hexDecodeHash(txID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%q is not a transaction hash: %w", txID, backend.ErrValidation)
	}
	return common.BytesToHash(b), nil
}

func hexDecodeHash(s string) ([]byte, error) {
	b := common.FromHex(s)
	if len(b) != common.HashLength {
		return nil, fmt.Errorf("want %d bytes, got %d", common.HashLength, len(b))
	}
	return b, nil
}

// weiToEther renders a wei amount as a decimal ether string.
func weiToEther(wei *big.Int) string {
	f := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18))
	return f.Text('f', 6)
}
