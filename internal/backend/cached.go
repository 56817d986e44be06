package backend

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jmourad/chainmcp/internal/cache"
)

// Cached wraps an adapter with a read-through response cache. Only reads are
// cached; the wrapped adapter stays the source of truth and cache failures
// degrade to a plain downstream call.
func Cached(a Adapter, store cache.Store, logger *slog.Logger) Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &cachedAdapter{
		inner:  a,
		store:  store,
		logger: logger.With("component", "cached-adapter", "network", a.Network()),
	}
}

type cachedAdapter struct {
	inner  Adapter
	store  cache.Store
	logger *slog.Logger
}

func (c *cachedAdapter) Network() string { return c.inner.Network() }

func (c *cachedAdapter) Balance(ctx context.Context, address string) (json.RawMessage, error) {
	key := c.inner.Network() + ":balance:" + address
	if val, ok := c.store.Get(ctx, key); ok {
		c.logger.Debug("cache hit", "key", key)
		return json.RawMessage(val), nil
	}

	raw, err := c.inner.Balance(ctx, address)
	if err != nil {
		return nil, err
	}
	c.store.Set(ctx, key, raw)
	return raw, nil
}

func (c *cachedAdapter) Transaction(ctx context.Context, txID string) (json.RawMessage, error) {
	key := c.inner.Network() + ":tx:" + txID
	if val, ok := c.store.Get(ctx, key); ok {
		c.logger.Debug("cache hit", "key", key)
		return json.RawMessage(val), nil
	}

	raw, err := c.inner.Transaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	c.store.Set(ctx, key, raw)
	return raw, nil
}

func (c *cachedAdapter) WalletInfo(ctx context.Context, address string) (*WalletReport, error) {
	key := c.inner.Network() + ":wallet:" + address
	if val, ok := c.store.Get(ctx, key); ok {
		var report WalletReport
		if err := json.Unmarshal(val, &report); err == nil {
			c.logger.Debug("cache hit", "key", key)
			return &report, nil
		}
		// Unreadable entry: fall through and overwrite it.
	}

	report, err := c.inner.WalletInfo(ctx, address)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(report); err == nil {
		c.store.Set(ctx, key, data)
	}
	return report, nil
}
