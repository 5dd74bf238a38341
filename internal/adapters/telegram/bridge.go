package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// BridgeConfig configures the connection to the MTProto session bridge
type BridgeConfig struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
}

// BridgeClient implements Client against the MTProto session bridge, a
// sidecar that holds the logged-in user session and exposes channel reads
// over HTTP. Keeping the session out of process means this service never
// touches API credentials or the session string directly.
type BridgeClient struct {
	http *resty.Client
	log  *logger.Logger
}

// NewBridgeClient creates a bridge-backed messaging client
func NewBridgeClient(cfg BridgeConfig) *BridgeClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "hermes/1.0")

	if cfg.AuthToken != "" {
		client.SetAuthToken(cfg.AuthToken)
	}

	return &BridgeClient{
		http: client,
		log:  logger.Get().With("component", "telegram_bridge"),
	}
}

type bridgeError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type channelResponse struct {
	Channel ChannelInfo `json:"channel"`
}

type messagesResponse struct {
	Messages []Message `json:"messages"`
}

type memberCountResponse struct {
	MemberCount int `json:"memberCount"`
}

// Connect asks the bridge to establish (or confirm) the provider session
func (c *BridgeClient) Connect(ctx context.Context) error {
	var apiErr bridgeError
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&apiErr).
		Post("/connect")
	if err != nil {
		return errors.Wrap(err, "bridge connect request")
	}
	if resp.IsError() {
		return fmt.Errorf("bridge connect returned %d: %s", resp.StatusCode(), apiErr.Message)
	}
	return nil
}

// ResolveChannel resolves a channel handle to its metadata
func (c *BridgeClient) ResolveChannel(ctx context.Context, username string) (*ChannelInfo, error) {
	var out channelResponse
	var apiErr bridgeError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		SetPathParam("username", username).
		Get("/channels/{username}")
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", username)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, errors.Wrapf(errors.ErrNotFound, "channel %s", username)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, errors.Wrapf(errors.ErrRateLimited, "resolve %s", username)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("resolve %s returned %d: %s", username, resp.StatusCode(), apiErr.Message)
	}
	return &out.Channel, nil
}

// RecentMessages returns up to limit most recent messages, newest first
func (c *BridgeClient) RecentMessages(ctx context.Context, username string, limit int) ([]Message, error) {
	var out messagesResponse
	var apiErr bridgeError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		SetPathParam("username", username).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		Get("/channels/{username}/messages")
	if err != nil {
		return nil, errors.Wrapf(err, "messages %s", username)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, errors.Wrapf(errors.ErrRateLimited, "messages %s", username)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("messages %s returned %d: %s", username, resp.StatusCode(), apiErr.Message)
	}
	return out.Messages, nil
}

// FullMemberCount fetches the full participant count for a channel
func (c *BridgeClient) FullMemberCount(ctx context.Context, username string) (int, error) {
	var out memberCountResponse
	var apiErr bridgeError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		SetPathParam("username", username).
		Get("/channels/{username}/full")
	if err != nil {
		return 0, errors.Wrapf(err, "member count %s", username)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("member count %s returned %d: %s", username, resp.StatusCode(), apiErr.Message)
	}
	return out.MemberCount, nil
}

// SearchMessages returns up to limit messages matching query
func (c *BridgeClient) SearchMessages(ctx context.Context, username, query string, limit int) ([]Message, error) {
	var out messagesResponse
	var apiErr bridgeError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		SetPathParam("username", username).
		SetQueryParams(map[string]string{
			"q":     query,
			"limit": fmt.Sprintf("%d", limit),
		}).
		Get("/channels/{username}/search")
	if err != nil {
		return nil, errors.Wrapf(err, "search %s", username)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search %s returned %d: %s", username, resp.StatusCode(), apiErr.Message)
	}
	return out.Messages, nil
}

// Close is a no-op for the HTTP bridge; the sidecar owns the session
func (c *BridgeClient) Close() error {
	return nil
}
