// Package flux implements the Flux network adapter against the node's
// explorer HTTP API. It is the canonical plain-GET backend: every operation
// is one or two GET requests returning JSON.
package flux

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmourad/chainmcp/internal/backend"
)

// maxBodyBytes bounds downstream response bodies so a misbehaving node
// cannot exhaust memory.
const maxBodyBytes = 4 << 20

// Config holds the Flux adapter settings.
type Config struct {
	// BaseURL is the node or explorer API root, e.g. https://api.runonflux.io.
	BaseURL string

	// Timeout bounds each downstream call.
	Timeout time.Duration
}

// Adapter is the Flux implementation of backend.Adapter.
type Adapter struct {
	cfg    Config
	httpc  *http.Client
	logger *slog.Logger
}

// New creates a Flux adapter.
func New(cfg Config, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Adapter{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("network", "flux"),
	}
}

// Network implements backend.Adapter.
func (a *Adapter) Network() string { return "flux" }

// Balance implements backend.Adapter.
func (a *Adapter) Balance(ctx context.Context, address string) (json.RawMessage, error) {
	if address == "" {
		return nil, fmt.Errorf("address must not be empty: %w", backend.ErrValidation)
	}
	return a.getJSON(ctx, "/explorer/balance", url.Values{"address": {address}})
}

// Transaction implements backend.Adapter.
func (a *Adapter) Transaction(ctx context.Context, txID string) (json.RawMessage, error) {
	if txID == "" {
		return nil, fmt.Errorf("txid must not be empty: %w", backend.ErrValidation)
	}
	return a.getJSON(ctx, "/explorer/tx/"+url.PathEscape(txID), nil)
}

// WalletInfo implements backend.Adapter.
func (a *Adapter) WalletInfo(ctx context.Context, address string) (*backend.WalletReport, error) {
	if address == "" {
		return nil, fmt.Errorf("address must not be empty: %w", backend.ErrValidation)
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

// history returns the address's transactions, newest-first, as reported by
// the explorer.
func (a *Adapter) history(ctx context.Context, address string) ([]json.RawMessage, error) {
	raw, err := a.getJSON(ctx, "/explorer/transactions", url.Values{"address": {address}})
	if err != nil {
		return nil, err
	}

	var txs []json.RawMessage
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, fmt.Errorf("transaction history for %s is not a JSON array: %w",
			address, backend.ErrBackendUnavailable)
	}
	return txs, nil
}

// envelope is the {status, data} wrapper the Flux API puts around most
// responses. Older explorer endpoints return the payload bare.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func (a *Adapter) getJSON(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	u := strings.TrimRight(a.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %v: %w", path, err, backend.ErrBackendUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", path, err, backend.ErrBackendUnavailable)
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Warn("downstream returned non-success status",
			"path", path,
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("get %s: status %d: %w", path, resp.StatusCode, backend.ErrBackendUnavailable)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("get %s: malformed JSON body: %w", path, backend.ErrBackendUnavailable)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		if env.Status != "" && env.Status != "success" {
			return nil, fmt.Errorf("get %s: api status %q: %w", path, env.Status, backend.ErrBackendUnavailable)
		}
		return env.Data, nil
	}
	return body, nil
}
