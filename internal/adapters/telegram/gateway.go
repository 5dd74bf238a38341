package telegram

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Gateway wraps a Client with lazy, single-flight session establishment.
// The session is a single shared resource: the first caller triggers the
// connect, concurrent callers attach to the same in-flight attempt, and a
// failed attempt propagates to every waiter and clears the in-flight state
// so the next call may retry.
type Gateway struct {
	client    Client
	connected atomic.Bool
	group     singleflight.Group
	log       *logger.Logger
}

// NewGateway creates a gateway over the given messaging client
func NewGateway(client Client) *Gateway {
	return &Gateway{
		client: client,
		log:    logger.Get().With("component", "telegram_gateway"),
	}
}

// EnsureConnected establishes the provider session at most once concurrently
func (g *Gateway) EnsureConnected(ctx context.Context) error {
	if g.connected.Load() {
		return nil
	}

	_, err, shared := g.group.Do("connect", func() (interface{}, error) {
		// A waiter that queued behind a successful connect sees the flag
		if g.connected.Load() {
			return nil, nil
		}
		if err := g.client.Connect(ctx); err != nil {
			return nil, errors.Wrapf(errors.ErrConnectionFailed, "%v", err)
		}
		g.connected.Store(true)
		g.log.Info("Telegram session established")
		return nil, nil
	})
	if err != nil {
		g.log.Errorf("Telegram connection failed (shared=%v): %v", shared, err)
		return err
	}
	return nil
}

// Connected reports whether a session has been established
func (g *Gateway) Connected() bool {
	return g.connected.Load()
}

// ResolveChannel resolves channel metadata, connecting first if needed
func (g *Gateway) ResolveChannel(ctx context.Context, username string) (*ChannelInfo, error) {
	if err := g.EnsureConnected(ctx); err != nil {
		return nil, err
	}
	return g.client.ResolveChannel(ctx, username)
}

// RecentMessages fetches recent messages, connecting first if needed
func (g *Gateway) RecentMessages(ctx context.Context, username string, limit int) ([]Message, error) {
	if err := g.EnsureConnected(ctx); err != nil {
		return nil, err
	}
	return g.client.RecentMessages(ctx, username, limit)
}

// FullMemberCount fetches the full participant count, connecting first if needed
func (g *Gateway) FullMemberCount(ctx context.Context, username string) (int, error) {
	if err := g.EnsureConnected(ctx); err != nil {
		return 0, err
	}
	return g.client.FullMemberCount(ctx, username)
}

// SearchMessages searches a channel, connecting first if needed
func (g *Gateway) SearchMessages(ctx context.Context, username, query string, limit int) ([]Message, error) {
	if err := g.EnsureConnected(ctx); err != nil {
		return nil, err
	}
	return g.client.SearchMessages(ctx, username, query, limit)
}

// Close tears down the session
func (g *Gateway) Close() error {
	g.connected.Store(false)
	return g.client.Close()
}
