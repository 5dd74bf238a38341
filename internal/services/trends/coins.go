package trends

import (
	"math"
	"sort"

	"hermes/internal/domain/trends"
)

const (
	// perChannelMentionCap bounds how much a single channel can contribute
	// to a symbol's global mention count. Sentiment counts are intentionally
	// NOT capped, so mention and sentiment totals can diverge.
	perChannelMentionCap = 5

	minMentions = 2
	minChannels = 2

	maxCoinResults = 15

	hotThreshold    = 15
	risingThreshold = 8
)

// coinAggregate is the per-symbol accumulated state during global merge
type coinAggregate struct {
	mentions     int
	positive     int
	negative     int
	neutral      int
	channelCount int
}

// channelTally is the per-channel intermediate state before capping
type channelTally struct {
	mentions map[string]int
	positive map[string]int
	negative map[string]int
	neutral  map[string]int
}

// CoinAggregator folds channel snapshots into the ranked trending-coin list
type CoinAggregator struct {
	extractor *MentionExtractor
}

// NewCoinAggregator creates a coin aggregator over the given extractor
func NewCoinAggregator(extractor *MentionExtractor) *CoinAggregator {
	return &CoinAggregator{extractor: extractor}
}

// Aggregate scans every message of every channel and produces the top
// trending coins: per-channel tallies merged with the mention cap, filtered
// by mention volume and channel diversity, ranked by diversity first. The
// result is deterministic for identical input snapshots.
func (a *CoinAggregator) Aggregate(snapshots []trends.ChannelSnapshot) []trends.TrendingCoin {
	global := make(map[string]*coinAggregate)

	for _, snapshot := range snapshots {
		tally := a.tallyChannel(snapshot)

		for sym, count := range tally.mentions {
			agg, ok := global[sym]
			if !ok {
				agg = &coinAggregate{}
				global[sym] = agg
			}

			capped := count
			if capped > perChannelMentionCap {
				capped = perChannelMentionCap
			}
			agg.mentions += capped
			agg.positive += tally.positive[sym]
			agg.negative += tally.negative[sym]
			agg.neutral += tally.neutral[sym]
			agg.channelCount++
		}
	}

	results := make([]trends.TrendingCoin, 0, len(global))
	for sym, agg := range global {
		if agg.mentions < minMentions || agg.channelCount < minChannels {
			continue
		}
		results = append(results, buildCoinResult(sym, agg))
	}

	// Diversity outranks raw volume; symbol breaks remaining ties so the
	// ordering is stable across runs
	sort.Slice(results, func(i, j int) bool {
		if results[i].ChannelCount != results[j].ChannelCount {
			return results[i].ChannelCount > results[j].ChannelCount
		}
		if results[i].Mentions != results[j].Mentions {
			return results[i].Mentions > results[j].Mentions
		}
		return results[i].Symbol < results[j].Symbol
	})

	if len(results) > maxCoinResults {
		results = results[:maxCoinResults]
	}
	return results
}

// tallyChannel scans one channel's messages into an uncapped tally. Each
// mention event counts toward the symbol's mention total; each distinct
// symbol in a message receives that message's sentiment label exactly once.
func (a *CoinAggregator) tallyChannel(snapshot trends.ChannelSnapshot) channelTally {
	tally := channelTally{
		mentions: make(map[string]int),
		positive: make(map[string]int),
		negative: make(map[string]int),
		neutral:  make(map[string]int),
	}

	for _, msg := range snapshot.Messages {
		mentions := a.extractor.Extract(msg.Text)
		if len(mentions) == 0 {
			continue
		}

		seen := make(map[string]struct{})
		for _, m := range mentions {
			tally.mentions[m.Symbol]++

			if _, dup := seen[m.Symbol]; dup {
				continue
			}
			seen[m.Symbol] = struct{}{}

			switch m.Sentiment {
			case trends.SentimentPositive:
				tally.positive[m.Symbol]++
			case trends.SentimentNegative:
				tally.negative[m.Symbol]++
			default:
				tally.neutral[m.Symbol]++
			}
		}
	}

	return tally
}

func buildCoinResult(sym string, agg *coinAggregate) trends.TrendingCoin {
	positivePct := int(math.Round(float64(agg.positive) / float64(agg.mentions) * 100))
	negativePct := int(math.Round(float64(agg.negative) / float64(agg.mentions) * 100))
	// Derived, not rounded: can go negative when the other two round up
	// past 100. Kept as-is.
	neutralPct := 100 - positivePct - negativePct

	trendScore := agg.mentions + agg.channelCount*2
	trend := trends.TrendNormal
	switch {
	case trendScore > hotThreshold:
		trend = trends.TrendHot
	case trendScore > risingThreshold:
		trend = trends.TrendRising
	}

	return trends.TrendingCoin{
		Symbol:       sym,
		Mentions:     agg.mentions,
		ChannelCount: agg.channelCount,
		Trend:        trend,
		Sentiment: trends.SentimentBreakdown{
			Positive: positivePct,
			Negative: negativePct,
			Neutral:  neutralPct,
			Score:    positivePct - negativePct,
		},
	}
}
