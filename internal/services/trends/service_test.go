package trends

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/adapters/telegram"
	"hermes/internal/refdata"
	"hermes/pkg/errors"
)

func newTestService(t *testing.T, gateway *fakeGateway, channels []string) *Service {
	t.Helper()
	ref, err := refdata.Load()
	require.NoError(t, err)

	var sleeps []time.Duration
	fetcher := newTestFetcher(gateway, testFetcherConfig(), time.Unix(1_700_000_000, 0), &sleeps)

	return NewService(
		fetcher,
		gateway,
		NewCoinAggregator(NewMentionExtractor(ref)),
		NewTopicAggregator(ref),
		NewResultCache(),
		TTLConfig{Channels: 2 * time.Minute, Coins: 5 * time.Minute, Topics: 5 * time.Minute},
		channels,
	)
}

func trendGateway(now time.Time) *fakeGateway {
	gateway := newFakeGateway()
	gateway.addChannel("@alpha", "Alpha Signals", 12000,
		telegram.Message{ID: 3, Text: "$BTC breaking out 🚀", Date: now.Unix(), Views: 900},
		telegram.Message{ID: 2, Text: "Ethereum looking strong", Date: now.Unix(), Views: 400},
		telegram.Message{ID: 1, Text: "$BTC", Date: now.Unix(), Views: 100},
	)
	gateway.addChannel("@beta", "Beta Research", 8000,
		telegram.Message{ID: 2, Text: "Bitcoin dip incoming 📉", Date: now.Unix(), Views: 700},
		telegram.Message{ID: 1, Text: "$ETH", Date: now.Unix(), Views: 250},
	)
	return gateway
}

func TestServiceTrendingCoins(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	gateway := trendGateway(now)
	svc := newTestService(t, gateway, []string{"@alpha", "@beta"})

	coins, err := svc.GetTrendingCoins(context.Background())
	require.NoError(t, err)
	require.Len(t, coins, 2)

	assert.Equal(t, "BTC", coins[0].Symbol)
	assert.Equal(t, 6, coins[0].Mentions)
	assert.Equal(t, 2, coins[0].ChannelCount)
	assert.Equal(t, "rising", coins[0].Trend)
	assert.Equal(t, 17, coins[0].Sentiment.Positive)
	assert.Equal(t, 17, coins[0].Sentiment.Negative)
	assert.Equal(t, 66, coins[0].Sentiment.Neutral)

	assert.Equal(t, "ETH", coins[1].Symbol)
	assert.Equal(t, 4, coins[1].Mentions)
	assert.Equal(t, "normal", coins[1].Trend)
}

func TestServiceSharedSnapshotAcrossKinds(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	gateway := trendGateway(now)
	svc := newTestService(t, gateway, []string{"@alpha", "@beta"})
	ctx := context.Background()

	_, err := svc.GetTrendingCoins(ctx)
	require.NoError(t, err)
	fetched := gateway.resolveCalls
	assert.Equal(t, 2, fetched)

	// Coins again and topics both ride the warm channel snapshot
	_, err = svc.GetTrendingCoins(ctx)
	require.NoError(t, err)
	_, err = svc.GetTrendingTopics(ctx)
	require.NoError(t, err)
	assert.Equal(t, fetched, gateway.resolveCalls)
}

func TestServiceClearCacheForcesRefetch(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	gateway := trendGateway(now)
	svc := newTestService(t, gateway, []string{"@alpha", "@beta"})
	ctx := context.Background()

	_, err := svc.GetTrendingCoins(ctx)
	require.NoError(t, err)

	svc.ClearCache("")

	_, err = svc.GetTrendingCoins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, gateway.resolveCalls)
}

func TestServiceUpstreamErrorWrapped(t *testing.T) {
	gateway := newFakeGateway()
	gateway.failing["@dead"] = errors.ErrChannelFetch
	svc := newTestService(t, gateway, []string{"@dead"})

	_, err := svc.GetTrendingCoins(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUpstreamFetch))
}

func TestServiceChannelStats(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	gateway := newFakeGateway()
	longText := strings.Repeat("x", 150)
	gateway.addChannel("@alpha", "Alpha Signals", 12000,
		telegram.Message{ID: 3, Text: longText, Date: now.Unix(), Views: 30},
		telegram.Message{ID: 2, Text: "short", Date: now.Unix(), Views: 20},
		telegram.Message{ID: 1, Text: "older", Date: now.Unix(), Views: 10},
	)
	svc := newTestService(t, gateway, []string{"@alpha"})

	stats, err := svc.GetChannelStats(context.Background(), "@alpha")
	require.NoError(t, err)

	assert.Equal(t, "@alpha", stats.Username)
	assert.Equal(t, "Alpha Signals", stats.Title)
	assert.Equal(t, 12000, stats.MemberCount)
	assert.Equal(t, 3, stats.TotalMessages)
	assert.Equal(t, 20, stats.AvgViews)
	require.Len(t, stats.RecentActivity, 3)
	assert.Equal(t, strings.Repeat("x", 100)+"...", stats.RecentActivity[0].Text)
	assert.Equal(t, "short", stats.RecentActivity[1].Text)
}

func TestServiceChannelStatsNotFound(t *testing.T) {
	gateway := newFakeGateway()
	svc := newTestService(t, gateway, []string{"@alpha"})

	_, err := svc.GetChannelStats(context.Background(), "@missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestServiceSearchMessages(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	gateway := newFakeGateway()
	gateway.addChannel("@alpha", "Alpha Signals", 12000,
		telegram.Message{ID: 2, Text: "halving soon", Date: now.Unix(), Views: 100},
		telegram.Message{ID: 1, Text: "", Date: now.Unix(), Views: 999},
	)
	gateway.addChannel("@beta", "Beta Research", 8000,
		telegram.Message{ID: 5, Text: "halving priced in", Date: now.Unix(), Views: 400},
	)
	gateway.failing["@gamma"] = errors.ErrChannelFetch
	svc := newTestService(t, gateway, []string{"@alpha", "@beta", "@gamma"})

	results, err := svc.SearchMessages(context.Background(), "halving", 50)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Sorted by views, empty texts and failing channels dropped
	assert.Equal(t, "@beta", results[0].Channel)
	assert.Equal(t, 400, results[0].Views)
	assert.Equal(t, "@alpha", results[1].Channel)
}

func TestServiceSearchRequiresQuery(t *testing.T) {
	gateway := newFakeGateway()
	svc := newTestService(t, gateway, []string{"@alpha"})

	_, err := svc.SearchMessages(context.Background(), "", 50)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
