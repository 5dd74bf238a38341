package trends

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/domain/trends"
	"hermes/internal/refdata"
)

func newTestExtractor(t *testing.T) *MentionExtractor {
	t.Helper()
	ref, err := refdata.Load()
	require.NoError(t, err)
	return NewMentionExtractor(ref)
}

func countSymbols(mentions []Mention) map[string]int {
	counts := make(map[string]int)
	for _, m := range mentions {
		counts[m.Symbol]++
	}
	return counts
}

func TestExtractEmptyText(t *testing.T) {
	e := newTestExtractor(t)
	assert.Empty(t, e.Extract(""))
}

func TestExtractTaggedSymbol(t *testing.T) {
	e := newTestExtractor(t)

	// The passes are cumulative: the tagged pass, the bare-token pass and
	// the dictionary pass each report the same occurrence
	mentions := e.Extract("$BTC")
	counts := countSymbols(mentions)
	assert.Equal(t, map[string]int{"BTC": 3}, counts)
}

func TestExtractBlacklistedTag(t *testing.T) {
	e := newTestExtractor(t)
	assert.Empty(t, e.Extract("$USD is strong"))
}

func TestExtractAlias(t *testing.T) {
	e := newTestExtractor(t)

	// "Bitcoin" is too long for the bare-token pass and only the
	// case-insensitive alias pass resolves it
	mentions := e.Extract("Bitcoin to the moon")
	counts := countSymbols(mentions)
	assert.Equal(t, map[string]int{"BTC": 1}, counts)
	assert.Equal(t, trends.SentimentPositive, mentions[0].Sentiment)
}

func TestExtractBareUnknownToken(t *testing.T) {
	e := newTestExtractor(t)

	// Unknown uppercase runs still count; downstream channel-diversity
	// filtering is what prunes the noise
	counts := countSymbols(e.Extract("ZORP"))
	assert.Equal(t, map[string]int{"ZORP": 1}, counts)
}

func TestExtractDuplicatesPreserved(t *testing.T) {
	e := newTestExtractor(t)

	counts := countSymbols(e.Extract("BTC BTC"))
	assert.Equal(t, 4, counts["BTC"])
}

func TestExtractSentimentKeywordNotACoin(t *testing.T) {
	e := newTestExtractor(t)

	mentions := e.Extract("ETH pump")
	counts := countSymbols(mentions)
	assert.Equal(t, map[string]int{"ETH": 2}, counts)
	for _, m := range mentions {
		assert.Equal(t, trends.SentimentPositive, m.Sentiment)
	}
}

func TestClassify(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name string
		text string
		want trends.Sentiment
	}{
		{"positive keyword", "PUMP INCOMING", trends.SentimentPositive},
		{"negative keyword", "DUMP INCOMING", trends.SentimentNegative},
		{"both sides cancel", "PUMP AND DUMP", trends.SentimentNeutral},
		{"no markers", "FLAT SESSION", trends.SentimentNeutral},
		{"positive emoji", "🚀🚀🚀", trends.SentimentPositive},
		{"negative emoji", "📉", trends.SentimentNegative},
		// Markers match as substrings: SUPPORT contains UP
		{"substring marker", "SUPPORT HOLDS", trends.SentimentPositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Classify(tt.text))
		})
	}
}
