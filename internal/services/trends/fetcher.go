package trends

import (
	"context"
	"sync"
	"time"

	"hermes/internal/adapters/telegram"
	"hermes/internal/domain/trends"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Gateway is the messaging surface the trends service consumes
type Gateway interface {
	ResolveChannel(ctx context.Context, username string) (*telegram.ChannelInfo, error)
	RecentMessages(ctx context.Context, username string, limit int) ([]telegram.Message, error)
	FullMemberCount(ctx context.Context, username string) (int, error)
	SearchMessages(ctx context.Context, username, query string, limit int) ([]telegram.Message, error)
}

// FetcherConfig bounds the batch fetch against provider flood control
type FetcherConfig struct {
	BatchSize     int
	BatchDelay    time.Duration
	MessageLimit  int
	MessagesKept  int
	RecencyWindow time.Duration
}

// ChannelFetcher resolves a list of channel handles into snapshots. Channels
// are fetched in fixed-size batches with an inter-batch delay; within a
// batch fetches run concurrently, so output order is not guaranteed to match
// input order. A failing channel is logged and skipped, never retried here;
// cache expiry is the natural retry path.
type ChannelFetcher struct {
	gateway Gateway
	cfg     FetcherConfig
	log     *logger.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewChannelFetcher creates a fetcher over the given gateway
func NewChannelFetcher(gateway Gateway, cfg FetcherConfig) *ChannelFetcher {
	return &ChannelFetcher{
		gateway: gateway,
		cfg:     cfg,
		log:     logger.Get().With("component", "channel_fetcher"),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// FetchChannels fetches snapshots for every channel that succeeds. It fails
// only when not a single channel could be fetched.
func (f *ChannelFetcher) FetchChannels(ctx context.Context, channelIDs []string) ([]trends.ChannelSnapshot, error) {
	start := f.now()
	snapshots := make([]trends.ChannelSnapshot, 0, len(channelIDs))
	var mu sync.Mutex

	batches := (len(channelIDs) + f.cfg.BatchSize - 1) / f.cfg.BatchSize

	for i := 0; i < len(channelIDs); i += f.cfg.BatchSize {
		end := i + f.cfg.BatchSize
		if end > len(channelIDs) {
			end = len(channelIDs)
		}
		batch := channelIDs[i:end]
		f.log.Debugf("Fetching batch %d/%d (%d channels)", i/f.cfg.BatchSize+1, batches, len(batch))

		var wg sync.WaitGroup
		for _, id := range batch {
			wg.Add(1)
			go func(channelID string) {
				defer wg.Done()

				snapshot, err := f.fetchOne(ctx, channelID)
				if err != nil {
					metrics.ChannelFetches.WithLabelValues("error").Inc()
					f.log.Warnw("Skipping channel after fetch error", "channel", channelID, "error", err)
					return
				}
				metrics.ChannelFetches.WithLabelValues("success").Inc()

				mu.Lock()
				snapshots = append(snapshots, *snapshot)
				mu.Unlock()
			}(id)
		}
		wg.Wait()

		// Flood-control pause between batches, never after the last one
		if end < len(channelIDs) {
			if err := f.sleep(ctx, f.cfg.BatchDelay); err != nil {
				return nil, err
			}
		}
	}

	metrics.FetchDuration.Observe(f.now().Sub(start).Seconds())
	metrics.ChannelsFetched.Set(float64(len(snapshots)))

	if len(snapshots) == 0 {
		return nil, errors.ErrNoChannelsAvailable
	}

	f.log.Infof("Fetched %d/%d channels", len(snapshots), len(channelIDs))
	return snapshots, nil
}

// fetchOne builds a snapshot for a single channel: resolve metadata, pull
// recent messages, best-effort member count, recency filter and cap.
func (f *ChannelFetcher) fetchOne(ctx context.Context, channelID string) (*trends.ChannelSnapshot, error) {
	info, err := f.gateway.ResolveChannel(ctx, channelID)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", channelID)
	}

	messages, err := f.gateway.RecentMessages(ctx, channelID, f.cfg.MessageLimit)
	if err != nil {
		return nil, errors.Wrapf(err, "messages %s", channelID)
	}

	memberCount, err := f.gateway.FullMemberCount(ctx, channelID)
	if err != nil {
		// Best effort: fall back to the count the entity resolve reported
		f.log.Debugw("Full member count unavailable", "channel", channelID, "error", err)
		memberCount = info.MemberCount
	}

	cutoff := f.now().Add(-f.cfg.RecencyWindow).Unix()
	records := make([]trends.MessageRecord, 0, len(messages))
	for _, msg := range messages {
		if msg.Date < cutoff {
			continue
		}
		records = append(records, trends.MessageRecord{
			ID:    msg.ID,
			Text:  msg.Text,
			Date:  msg.Date,
			Views: msg.Views,
		})
		if len(records) == f.cfg.MessagesKept {
			break
		}
	}

	if len(records) > 0 {
		oldest, newest := records[len(records)-1].Date, records[0].Date
		f.log.Debugw("Channel window",
			"channel", channelID,
			"messages", len(records),
			"oldest", time.Unix(oldest, 0).UTC().Format(time.RFC3339),
			"newest", time.Unix(newest, 0).UTC().Format(time.RFC3339),
		)
	}

	title := info.Title
	if title == "" {
		title = channelID
	}

	return &trends.ChannelSnapshot{
		Username:    channelID,
		Title:       title,
		MemberCount: memberCount,
		Messages:    records,
	}, nil
}

// sleepContext pauses for d unless the context ends first
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
