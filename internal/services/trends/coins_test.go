package trends

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/domain/trends"
)

func snapshot(username string, texts ...string) trends.ChannelSnapshot {
	messages := make([]trends.MessageRecord, len(texts))
	for i, text := range texts {
		messages[i] = trends.MessageRecord{ID: int64(i + 1), Text: text}
	}
	return trends.ChannelSnapshot{
		Username: username,
		Title:    username,
		Messages: messages,
	}
}

func repeat(text string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = text
	}
	return out
}

func TestAggregateChannelDiversityFilter(t *testing.T) {
	a := NewCoinAggregator(newTestExtractor(t))

	// SOL is loud in one channel only; BTC appears in both
	result := a.Aggregate([]trends.ChannelSnapshot{
		snapshot("@a", "$SOL pump", "$SOL pump", "$SOL pump", "Bitcoin"),
		snapshot("@b", "Bitcoin"),
	})

	symbols := make([]string, len(result))
	for i, c := range result {
		symbols[i] = c.Symbol
	}
	assert.Contains(t, symbols, "BTC")
	assert.NotContains(t, symbols, "SOL")
}

func TestAggregatePerChannelMentionCap(t *testing.T) {
	a := NewCoinAggregator(newTestExtractor(t))

	// Each "BTC" message yields two mention events, so channel @a accumulates
	// twenty and is capped at five; channel @b contributes two uncapped
	result := a.Aggregate([]trends.ChannelSnapshot{
		snapshot("@a", repeat("BTC", 10)...),
		snapshot("@b", "BTC"),
	})

	assert.Len(t, result, 1)
	assert.Equal(t, "BTC", result[0].Symbol)
	assert.Equal(t, 7, result[0].Mentions)
	assert.Equal(t, 2, result[0].ChannelCount)
	assert.Equal(t, trends.TrendRising, result[0].Trend)
}

func TestAggregateSentimentNotCapped(t *testing.T) {
	a := NewCoinAggregator(newTestExtractor(t))

	// Mention counts are capped per channel, sentiment tallies are not, so a
	// flooded channel can push the positive share past 100
	result := a.Aggregate([]trends.ChannelSnapshot{
		snapshot("@a", repeat("BTC pump", 10)...),
		snapshot("@b", "BTC pump"),
	})

	assert.Len(t, result, 1)
	assert.Equal(t, 7, result[0].Mentions)
	assert.Equal(t, 157, result[0].Sentiment.Positive)
	assert.Equal(t, -57, result[0].Sentiment.Neutral)
}

func TestAggregateOrdering(t *testing.T) {
	a := NewCoinAggregator(newTestExtractor(t))

	// Aliases produce exactly one mention event per occurrence, which keeps
	// the tallies predictable: BTC spans three channels, ETH out-mentions SOL
	// within two, ADA ties SOL and wins the alphabetical tiebreak
	result := a.Aggregate([]trends.ChannelSnapshot{
		snapshot("@a", "Bitcoin", "Ethereum", "Ethereum", "Solana", "Cardano"),
		snapshot("@b", "Bitcoin", "Ethereum", "Solana", "Cardano"),
		snapshot("@c", "Bitcoin"),
	})

	symbols := make([]string, len(result))
	for i, c := range result {
		symbols[i] = c.Symbol
	}
	assert.Equal(t, []string{"BTC", "ETH", "ADA", "SOL"}, symbols)
}

func TestAggregateResultLimit(t *testing.T) {
	a := NewCoinAggregator(newTestExtractor(t))

	text := "$AAVE $ADA $APT $ARB $ATOM $AVAX $BCH $BNB $BONK $BTC $DOGE $DOT $FIL $HBAR $ICP $INJ"
	result := a.Aggregate([]trends.ChannelSnapshot{
		snapshot("@a", text),
		snapshot("@b", text),
	})

	assert.Len(t, result, maxCoinResults)
}

func TestAggregateTwoChannelScenario(t *testing.T) {
	a := NewCoinAggregator(newTestExtractor(t))

	result := a.Aggregate([]trends.ChannelSnapshot{
		snapshot("@a", "$BTC pump 🚀", "$BTC pump 🚀", "BTC dump"),
		snapshot("@b", "BTC to the moon", "ETH rising"),
	})

	// ETH lives in one channel only and is filtered out
	require.Len(t, result, 1)
	btc := result[0]

	assert.Equal(t, "BTC", btc.Symbol)
	assert.Equal(t, 2, btc.ChannelCount)
	// Channel @a's eight mention events cap at five, @b adds two
	assert.Equal(t, 7, btc.Mentions)
	assert.Equal(t, 43, btc.Sentiment.Positive)
	assert.Equal(t, 14, btc.Sentiment.Negative)
	assert.Equal(t, 43, btc.Sentiment.Neutral)
	assert.Equal(t, trends.TrendRising, btc.Trend)
}

func TestAggregateEmptyInput(t *testing.T) {
	a := NewCoinAggregator(newTestExtractor(t))
	assert.Empty(t, a.Aggregate(nil))
	assert.Empty(t, a.Aggregate([]trends.ChannelSnapshot{snapshot("@a")}))
}

func TestAggregateDeterministic(t *testing.T) {
	a := NewCoinAggregator(newTestExtractor(t))

	snapshots := []trends.ChannelSnapshot{
		snapshot("@a", "$BTC and $ETH look strong 🚀", "Solana breakout", "$ADA"),
		snapshot("@b", "$ETH dump 📉", "$BTC", "Cardano update"),
		snapshot("@c", "$BTC", "$SOL"),
	}

	first := a.Aggregate(snapshots)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, a.Aggregate(snapshots), "run %d", i)
	}
}

func TestBuildCoinResultPercentages(t *testing.T) {
	coin := buildCoinResult("BTC", &coinAggregate{
		mentions: 3, positive: 1, negative: 1, neutral: 1, channelCount: 2,
	})

	assert.Equal(t, 33, coin.Sentiment.Positive)
	assert.Equal(t, 33, coin.Sentiment.Negative)
	assert.Equal(t, 34, coin.Sentiment.Neutral)
	assert.Equal(t, 0, coin.Sentiment.Score)
}

func TestBuildCoinResultNegativeNeutral(t *testing.T) {
	// 37.5 and 62.5 both round up, leaving the derived neutral below zero
	coin := buildCoinResult("ETH", &coinAggregate{
		mentions: 8, positive: 3, negative: 5, channelCount: 2,
	})

	assert.Equal(t, 38, coin.Sentiment.Positive)
	assert.Equal(t, 63, coin.Sentiment.Negative)
	assert.Equal(t, -1, coin.Sentiment.Neutral)
	assert.Equal(t, -25, coin.Sentiment.Score)
}

func TestBuildCoinResultTrendLabels(t *testing.T) {
	tests := []struct {
		mentions int
		channels int
		want     string
	}{
		{4, 2, trends.TrendNormal},  // score 8, not above the rising bar
		{5, 2, trends.TrendRising},  // score 9
		{11, 2, trends.TrendRising}, // score 15, not above the hot bar
		{12, 2, trends.TrendHot},    // score 16
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("m%d_c%d", tt.mentions, tt.channels), func(t *testing.T) {
			coin := buildCoinResult("X", &coinAggregate{
				mentions: tt.mentions, neutral: tt.mentions, channelCount: tt.channels,
			})
			assert.Equal(t, tt.want, coin.Trend)
		})
	}
}
