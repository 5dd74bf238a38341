package telegram

import "context"

// ChannelInfo is the resolved metadata for a channel entity
type ChannelInfo struct {
	Username    string `json:"username"`
	Title       string `json:"title"`
	MemberCount int    `json:"memberCount"`
}

// Message is one raw channel message as reported by the provider.
// Text may be empty and Views may be zero when the provider omits them.
type Message struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Date  int64  `json:"date"` // unix seconds
	Views int    `json:"views"`
}

// Client is the contract for the external messaging client that holds the
// authenticated user session. Implementations are subject to provider rate
// limits and transient failures; callers own batching and flood control.
type Client interface {
	// Connect establishes the provider session. Safe to call when already
	// connected; implementations should make it idempotent.
	Connect(ctx context.Context) error

	// ResolveChannel resolves a channel handle to its metadata
	ResolveChannel(ctx context.Context, username string) (*ChannelInfo, error)

	// RecentMessages returns up to limit most recent messages, newest first
	RecentMessages(ctx context.Context, username string, limit int) ([]Message, error)

	// FullMemberCount fetches the full channel participant count, which may
	// require an extra provider call and can fail independently of resolve
	FullMemberCount(ctx context.Context, username string) (int, error)

	// SearchMessages returns up to limit messages matching query
	SearchMessages(ctx context.Context, username, query string, limit int) ([]Message, error)

	// Close tears down the session
	Close() error
}
