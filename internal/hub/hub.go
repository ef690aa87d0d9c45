// Package hub builds and sends PubSubHubbub subscription requests for
// YouTube channel feeds.
package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultURL is Google's public PubSubHubbub hub, which serves all
	// YouTube channel feeds.
	DefaultURL = "https://pubsubhubbub.appspot.com/"

	// TopicBase is the feed URL prefix a channel id is appended to. Channel
	// ids are assumed never to contain this substring, so the mapping is
	// reversible by prefix stripping.
	TopicBase = "https://www.youtube.com/xml/feeds/videos.xml?channel_id="
)

// ErrRequestRejected is returned when the hub does not accept a
// subscription or unsubscription request.
var ErrRequestRejected = errors.New("hub rejected request")

// TopicURL returns the canonical feed URL for a channel id.
func TopicURL(channelID string) string {
	return TopicBase + channelID
}

// ChannelID recovers a channel id from a hub.topic value. Topics without
// the known prefix are returned unchanged.
func ChannelID(topic string) string {
	return strings.TrimPrefix(topic, TopicBase)
}

// Request is a fully built subscription or unsubscription request, ready to
// be POSTed to the hub as a form body.
type Request struct {
	HubURL string
	Form   url.Values
}

// NewRequest builds the hub's expected form body for one channel. The
// hub.secret field is included only when secret is non-empty.
func NewRequest(channelID, mode, callback, hubURL, secret string) *Request {
	form := url.Values{}
	form.Set("hub.callback", callback)
	form.Set("hub.mode", mode)
	form.Set("hub.topic", TopicURL(channelID))
	if secret != "" {
		form.Set("hub.secret", secret)
	}

	return &Request{HubURL: hubURL, Form: form}
}

// HTTPClient is the outbound transport. *http.Client satisfies it; tests
// substitute their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client sends built requests to a hub.
type Client struct {
	http   HTTPClient
	logger *zap.Logger
}

// NewClient creates a hub client. A nil httpClient falls back to a default
// http.Client and a nil logger to a no-op logger.
func NewClient(httpClient HTTPClient, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{http: httpClient, logger: logger}
}

// Send POSTs the request to the hub. The hub acknowledges with 202 Accepted
// (or 204 from some implementations); anything else is a rejection.
func (c *Client) Send(ctx context.Context, req *Request) error {
	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		req.HubURL,
		strings.NewReader(req.Form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Info("sending request to hub",
		zap.String("hub_url", req.HubURL),
		zap.String("mode", req.Form.Get("hub.mode")),
		zap.String("topic", req.Form.Get("hub.topic")),
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusNoContent:
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("hub rejected request",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response_body", string(body)),
		)
		return fmt.Errorf("%w: status %d: %s", ErrRequestRejected, resp.StatusCode, string(body))
	}
}
