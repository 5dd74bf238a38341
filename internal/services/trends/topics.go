package trends

import (
	"sort"
	"strings"

	"hermes/internal/domain/trends"
	"hermes/internal/refdata"
)

const (
	topicMinTokenLen = 2
	topicMaxTokenLen = 15

	maxTopicWords   = 10
	maxTopicPhrases = 5
	maxTopicResults = 10

	minWordCount   = 2
	minPhraseCount = 1
)

// TopicAggregator folds message text into ranked single-word and two-word
// topic frequencies, excluding stopwords, known coin symbols and the coin
// blacklist.
type TopicAggregator struct {
	excluded map[string]struct{}
}

// NewTopicAggregator builds the combined exclusion set from the reference data
func NewTopicAggregator(ref *refdata.Store) *TopicAggregator {
	excluded := make(map[string]struct{})
	for w := range ref.Stopwords() {
		excluded[w] = struct{}{}
	}
	for s := range ref.Symbols() {
		excluded[s] = struct{}{}
	}
	for b := range ref.Blacklist() {
		excluded[b] = struct{}{}
	}
	return &TopicAggregator{excluded: excluded}
}

// Aggregate produces the merged top topics across all channels: top single
// words seen at least twice and top adjacent-word phrases, re-ranked
// together by count. Deterministic for identical input snapshots.
func (a *TopicAggregator) Aggregate(snapshots []trends.ChannelSnapshot) []trends.TrendingTopic {
	wordCounts := make(map[string]int)
	phraseCounts := make(map[string]int)

	for _, snapshot := range snapshots {
		for _, msg := range snapshot.Messages {
			if msg.Text == "" {
				continue
			}
			tokens := tokenize(strings.ToUpper(msg.Text))

			for _, tok := range tokens {
				if _, skip := a.excluded[tok]; skip {
					continue
				}
				wordCounts[tok]++
			}

			for i := 0; i+1 < len(tokens); i++ {
				if _, skip := a.excluded[tokens[i]]; skip {
					continue
				}
				if _, skip := a.excluded[tokens[i+1]]; skip {
					continue
				}
				phraseCounts[tokens[i]+" "+tokens[i+1]]++
			}
		}
	}

	words := rankTopics(wordCounts, trends.TopicKeyword, minWordCount, maxTopicWords)
	phrases := rankTopics(phraseCounts, trends.TopicPhrase, minPhraseCount, maxTopicPhrases)

	merged := append(words, phrases...)
	// Stable: at equal counts word entries stay ahead of phrase entries
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Mentions > merged[j].Mentions
	})

	if len(merged) > maxTopicResults {
		merged = merged[:maxTopicResults]
	}
	return merged
}

// tokenize splits uppercased text into maximal A-Z runs of accepted length
func tokenize(upper string) []string {
	var tokens []string
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		if n := end - start; n >= topicMinTokenLen && n <= topicMaxTokenLen {
			tokens = append(tokens, upper[start:end])
		}
		start = -1
	}

	for i := 0; i < len(upper); i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(upper))

	return tokens
}

func rankTopics(counts map[string]int, topicType string, minCount, limit int) []trends.TrendingTopic {
	ranked := make([]trends.TrendingTopic, 0, len(counts))
	for topic, count := range counts {
		if count < minCount {
			continue
		}
		ranked = append(ranked, trends.TrendingTopic{
			Topic:    topic,
			Type:     topicType,
			Mentions: count,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Mentions != ranked[j].Mentions {
			return ranked[i].Mentions > ranked[j].Mentions
		}
		return ranked[i].Topic < ranked[j].Topic
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
