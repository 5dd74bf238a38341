package trends

// MessageRecord is one channel message, normalized at the adapter boundary:
// a missing body becomes an empty string and missing views become 0, so
// aggregation code never checks for absent fields.
type MessageRecord struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Date  int64  `json:"date"` // unix seconds, provider clock
	Views int    `json:"views"`
}

// ChannelSnapshot is one fetch result for one channel.
// Messages is never nil, ordered newest first, capped and recency-filtered.
type ChannelSnapshot struct {
	Username    string          `json:"username"`
	Title       string          `json:"title"`
	MemberCount int             `json:"memberCount"`
	Messages    []MessageRecord `json:"recentMessages"`
}

// Sentiment is the per-message classification shared by every symbol
// mentioned in that message.
type Sentiment int

const (
	SentimentNeutral Sentiment = iota
	SentimentPositive
	SentimentNegative
)

// String returns the label used in output and logs
func (s Sentiment) String() string {
	switch s {
	case SentimentPositive:
		return "positive"
	case SentimentNegative:
		return "negative"
	default:
		return "neutral"
	}
}

// Trend labels for ranked coins
const (
	TrendHot    = "hot"
	TrendRising = "rising"
	TrendNormal = "normal"
)

// SentimentBreakdown holds the rounded sentiment percentages for a coin.
// Neutral is derived as 100 - positive - negative and can go negative when
// rounding pushes the other two over 100; that behavior is kept as-is.
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
	Score    int `json:"score"` // positive% - negative%, -100..+100
}

// TrendingCoin is one ranked entry in the coins result
type TrendingCoin struct {
	Symbol       string             `json:"symbol"`
	Mentions     int                `json:"mentions"`
	ChannelCount int                `json:"channelCount"`
	Trend        string             `json:"trend"`
	Sentiment    SentimentBreakdown `json:"sentiment"`
}

// Topic entry types
const (
	TopicKeyword = "keyword"
	TopicPhrase  = "phrase"
)

// TrendingTopic is one ranked entry in the topics result
type TrendingTopic struct {
	Topic    string `json:"topic"`
	Type     string `json:"type"`
	Mentions int    `json:"mentions"`
}

// ChannelStats summarizes a single channel on demand
type ChannelStats struct {
	Username       string          `json:"username"`
	Title          string          `json:"title"`
	MemberCount    int             `json:"memberCount"`
	TotalMessages  int             `json:"totalMessages"`
	AvgViews       int             `json:"avgViews"`
	RecentActivity []MessageRecord `json:"recentActivity"`
}

// SearchResult is one message matched by a cross-channel search
type SearchResult struct {
	Channel      string `json:"channel"`
	ChannelTitle string `json:"channelTitle"`
	MessageID    int64  `json:"messageId"`
	Text         string `json:"text"`
	Date         int64  `json:"date"`
	Views        int    `json:"views"`
}
