package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/pkg/errors"
)

type fakeClient struct {
	mu           sync.Mutex
	connectCalls int
	connectErr   error
	closed       bool

	block chan struct{} // when set, Connect blocks until closed
}

func (c *fakeClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.connectCalls++
	err := c.connectErr
	block := c.block
	c.mu.Unlock()

	if block != nil {
		<-block
	}
	return err
}

func (c *fakeClient) ResolveChannel(ctx context.Context, username string) (*ChannelInfo, error) {
	return &ChannelInfo{Username: username, Title: "Test", MemberCount: 42}, nil
}

func (c *fakeClient) RecentMessages(ctx context.Context, username string, limit int) ([]Message, error) {
	return []Message{{ID: 1, Text: "hi"}}, nil
}

func (c *fakeClient) FullMemberCount(ctx context.Context, username string) (int, error) {
	return 42, nil
}

func (c *fakeClient) SearchMessages(ctx context.Context, username, query string, limit int) ([]Message, error) {
	return nil, nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectCalls
}

func TestGatewayConnectsLazily(t *testing.T) {
	client := &fakeClient{}
	g := NewGateway(client)

	assert.False(t, g.Connected())
	assert.Equal(t, 0, client.calls())

	_, err := g.RecentMessages(context.Background(), "@a", 10)
	require.NoError(t, err)
	assert.True(t, g.Connected())
	assert.Equal(t, 1, client.calls())
}

func TestGatewayConnectsOnce(t *testing.T) {
	client := &fakeClient{}
	g := NewGateway(client)
	ctx := context.Background()

	require.NoError(t, g.EnsureConnected(ctx))
	require.NoError(t, g.EnsureConnected(ctx))
	_, err := g.ResolveChannel(ctx, "@a")
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls())
}

func TestGatewayConcurrentConnectCollapses(t *testing.T) {
	client := &fakeClient{block: make(chan struct{})}
	g := NewGateway(client)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = g.EnsureConnected(context.Background())
		}(i)
	}

	// Wait until at least one caller is inside Connect, then release
	for client.calls() == 0 {
		time.Sleep(time.Millisecond)
	}
	close(client.block)
	wg.Wait()

	assert.Equal(t, 1, client.calls())
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.True(t, g.Connected())
}

func TestGatewayConnectFailureAllowsRetry(t *testing.T) {
	client := &fakeClient{connectErr: errors.New("network down")}
	g := NewGateway(client)
	ctx := context.Background()

	err := g.EnsureConnected(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConnectionFailed))
	assert.False(t, g.Connected())

	// The failure is not sticky
	client.mu.Lock()
	client.connectErr = nil
	client.mu.Unlock()

	require.NoError(t, g.EnsureConnected(ctx))
	assert.True(t, g.Connected())
	assert.Equal(t, 2, client.calls())
}

func TestGatewayClose(t *testing.T) {
	client := &fakeClient{}
	g := NewGateway(client)

	require.NoError(t, g.EnsureConnected(context.Background()))
	require.NoError(t, g.Close())

	assert.False(t, g.Connected())
	assert.True(t, client.closed)
}
