package trends

import (
	"regexp"
	"strings"

	"hermes/internal/domain/trends"
	"hermes/internal/refdata"
)

var (
	// $BTC-style tags, scanned over uppercased text
	taggedSymbolRe = regexp.MustCompile(`\$([A-Z]{2,6})\b`)

	// standalone runs of 2-6 uppercase letters
	bareTokenRe = regexp.MustCompile(`\b[A-Z]{2,6}\b`)
)

// Mention is one detected coin reference within a message. Sentiment is the
// message-level label, shared by every mention from the same message.
type Mention struct {
	Symbol    string
	Sentiment trends.Sentiment
}

type aliasPattern struct {
	symbol string
	re     *regexp.Regexp
	upper  bool // match against uppercased text (canonical symbols) or original (aliases)
}

// MentionExtractor detects coin references in message text using three
// cumulative passes: tagged symbols, bare uppercase tokens and dictionary
// alias lookup. Deduplication and capping belong to the aggregator.
type MentionExtractor struct {
	ref      *refdata.Store
	patterns []aliasPattern
}

// NewMentionExtractor compiles the alias patterns for the coin dictionary
func NewMentionExtractor(ref *refdata.Store) *MentionExtractor {
	e := &MentionExtractor{ref: ref}

	for _, coin := range ref.Coins() {
		sym := strings.ToUpper(coin.Symbol)
		e.patterns = append(e.patterns, aliasPattern{
			symbol: sym,
			re:     regexp.MustCompile(`\b` + regexp.QuoteMeta(sym) + `\b`),
			upper:  true,
		})
		for _, alias := range coin.Aliases {
			e.patterns = append(e.patterns, aliasPattern{
				symbol: sym,
				re:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(alias) + `\b`),
			})
		}
	}

	return e
}

// Extract returns every coin reference detected in text, duplicates
// preserved, each carrying the message's single sentiment label. Empty text
// yields no mentions.
func (e *MentionExtractor) Extract(text string) []Mention {
	if text == "" {
		return nil
	}

	upper := strings.ToUpper(text)
	label := e.Classify(upper)

	var symbols []string

	// Pass 1: tagged symbols
	for _, match := range taggedSymbolRe.FindAllStringSubmatch(upper, -1) {
		sym := match[1]
		if e.ref.IsBlacklisted(sym) {
			continue
		}
		symbols = append(symbols, sym)
	}

	// Pass 2: bare uppercase tokens
	for _, sym := range bareTokenRe.FindAllString(upper, -1) {
		if e.ref.IsBlacklisted(sym) || e.ref.IsSentimentKeyword(sym) {
			continue
		}
		symbols = append(symbols, sym)
	}

	// Pass 3: dictionary symbols and aliases
	for _, p := range e.patterns {
		haystack := text
		if p.upper {
			haystack = upper
		}
		if n := len(p.re.FindAllStringIndex(haystack, -1)); n > 0 {
			for i := 0; i < n; i++ {
				symbols = append(symbols, p.symbol)
			}
		}
	}

	mentions := make([]Mention, len(symbols))
	for i, sym := range symbols {
		mentions[i] = Mention{Symbol: sym, Sentiment: label}
	}
	return mentions
}

// Classify decides the message-level sentiment from its uppercased text:
// positive when any positive marker is present and no negative one is, the
// mirrored condition for negative, neutral otherwise.
func (e *MentionExtractor) Classify(upper string) trends.Sentiment {
	hasPositive := containsAny(upper, e.ref.PositiveMarkers())
	hasNegative := containsAny(upper, e.ref.NegativeMarkers())

	switch {
	case hasPositive && !hasNegative:
		return trends.SentimentPositive
	case hasNegative && !hasPositive:
		return trends.SentimentNegative
	default:
		return trends.SentimentNeutral
	}
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
