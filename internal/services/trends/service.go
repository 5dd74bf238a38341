package trends

import (
	"context"
	"sort"
	"time"

	"hermes/internal/domain/trends"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// TTLConfig carries the per-kind cache windows
type TTLConfig struct {
	Channels time.Duration
	Coins    time.Duration
	Topics   time.Duration
}

// Service is the trend-extraction facade: cached channel snapshots feeding
// the coin and topic aggregators. Coins and topics read through the
// channels cache, so a warm snapshot is shared instead of re-fetched.
type Service struct {
	fetcher  *ChannelFetcher
	gateway  Gateway
	coins    *CoinAggregator
	topics   *TopicAggregator
	cache    *ResultCache
	ttl      TTLConfig
	channels []string
	log      *logger.Logger
}

// NewService wires the trend pipeline together
func NewService(
	fetcher *ChannelFetcher,
	gateway Gateway,
	coins *CoinAggregator,
	topics *TopicAggregator,
	cache *ResultCache,
	ttl TTLConfig,
	channels []string,
) *Service {
	return &Service{
		fetcher:  fetcher,
		gateway:  gateway,
		coins:    coins,
		topics:   topics,
		cache:    cache,
		ttl:      ttl,
		channels: channels,
		log:      logger.Get().With("component", "trends_service"),
	}
}

// GetTrendingChannels returns the cached channel snapshots, fetching them
// from the provider on a cache miss.
func (s *Service) GetTrendingChannels(ctx context.Context) ([]trends.ChannelSnapshot, error) {
	data, err := s.cache.GetOrCompute(ctx, CacheChannels, s.ttl.Channels, func(ctx context.Context) (interface{}, error) {
		return s.fetcher.FetchChannels(ctx, s.channels)
	})
	if err != nil {
		return nil, err
	}
	return data.([]trends.ChannelSnapshot), nil
}

// GetTrendingCoins returns the cached ranked coin list, recomputing from the
// shared channel snapshots on a cache miss.
func (s *Service) GetTrendingCoins(ctx context.Context) ([]trends.TrendingCoin, error) {
	data, err := s.cache.GetOrCompute(ctx, CacheCoins, s.ttl.Coins, func(ctx context.Context) (interface{}, error) {
		snapshots, err := s.GetTrendingChannels(ctx)
		if err != nil {
			metrics.RecordTrendComputation("coins", 0, err)
			return nil, errors.Wrapf(errors.ErrUpstreamFetch, "trending coins: %v", err)
		}

		result := s.coins.Aggregate(snapshots)
		metrics.RecordTrendComputation("coins", len(result), nil)
		s.log.Infof("Aggregated %d trending coins from %d channels", len(result), len(snapshots))
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return data.([]trends.TrendingCoin), nil
}

// GetTrendingTopics returns the cached ranked topic list, recomputing from
// the shared channel snapshots on a cache miss.
func (s *Service) GetTrendingTopics(ctx context.Context) ([]trends.TrendingTopic, error) {
	data, err := s.cache.GetOrCompute(ctx, CacheTopics, s.ttl.Topics, func(ctx context.Context) (interface{}, error) {
		snapshots, err := s.GetTrendingChannels(ctx)
		if err != nil {
			metrics.RecordTrendComputation("topics", 0, err)
			return nil, errors.Wrapf(errors.ErrUpstreamFetch, "trending topics: %v", err)
		}

		result := s.topics.Aggregate(snapshots)
		metrics.RecordTrendComputation("topics", len(result), nil)
		s.log.Infof("Aggregated %d trending topics from %d channels", len(result), len(snapshots))
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return data.([]trends.TrendingTopic), nil
}

// ClearCache clears one result kind, or everything when kind is empty
func (s *Service) ClearCache(kind CacheKind) {
	s.cache.Clear(kind)
}

// GetChannelStats summarizes a single channel on demand, bypassing the cache
func (s *Service) GetChannelStats(ctx context.Context, username string) (*trends.ChannelStats, error) {
	info, err := s.gateway.ResolveChannel(ctx, username)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", username)
	}

	messages, err := s.gateway.RecentMessages(ctx, username, 100)
	if err != nil {
		return nil, errors.Wrapf(err, "messages %s", username)
	}

	memberCount, err := s.gateway.FullMemberCount(ctx, username)
	if err != nil {
		memberCount = info.MemberCount
	}

	totalViews := 0
	for _, msg := range messages {
		totalViews += msg.Views
	}
	avgViews := 0
	if len(messages) > 0 {
		avgViews = int(float64(totalViews)/float64(len(messages)) + 0.5)
	}

	recent := make([]trends.MessageRecord, 0, 10)
	for _, msg := range messages {
		if len(recent) == 10 {
			break
		}
		recent = append(recent, trends.MessageRecord{
			ID:    msg.ID,
			Text:  previewText(msg.Text, 100),
			Date:  msg.Date,
			Views: msg.Views,
		})
	}

	title := info.Title
	if title == "" {
		title = username
	}

	return &trends.ChannelStats{
		Username:       username,
		Title:          title,
		MemberCount:    memberCount,
		TotalMessages:  len(messages),
		AvgViews:       avgViews,
		RecentActivity: recent,
	}, nil
}

// SearchMessages searches the configured channels for query, skipping
// channels that error, and returns matches sorted by view count.
func (s *Service) SearchMessages(ctx context.Context, query string, limit int) ([]trends.SearchResult, error) {
	if query == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "search query is required")
	}

	results := make([]trends.SearchResult, 0)
	for _, channel := range s.channels {
		info, err := s.gateway.ResolveChannel(ctx, channel)
		if err != nil {
			s.log.Warnw("Skipping channel in search", "channel", channel, "error", err)
			continue
		}

		messages, err := s.gateway.SearchMessages(ctx, channel, query, limit)
		if err != nil {
			s.log.Warnw("Search failed for channel", "channel", channel, "error", err)
			continue
		}

		title := info.Title
		if title == "" {
			title = channel
		}

		for _, msg := range messages {
			if msg.Text == "" {
				continue
			}
			results = append(results, trends.SearchResult{
				Channel:      channel,
				ChannelTitle: title,
				MessageID:    msg.ID,
				Text:         msg.Text,
				Date:         msg.Date,
				Views:        msg.Views,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Views > results[j].Views
	})
	return results, nil
}

// previewText truncates text for activity previews
func previewText(text string, max int) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
