// Package notifier implements a PubSubHubbub (WebSub) subscriber for
// YouTube channel feeds. It registers interest in channels with a hub and
// serves the HTTP callback the hub uses to verify subscriptions and deliver
// signed new-video notifications.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/daggieblanqx/youtube-notification/internal/bus"
	"github.com/daggieblanqx/youtube-notification/internal/hub"
)

// Bus topics the callback handler publishes on.
const (
	topicSubscribe   = "subscribe"
	topicUnsubscribe = "unsubscribe"
	topicNotified    = "notified"
)

// ErrMiddlewareMode is returned by ListenAndServe when the Notifier was
// configured for embedding into a host router.
var ErrMiddlewareMode = errors.New("notifier: configured as middleware, refusing to self-host")

// HTTPClient is the outbound transport used to talk to the hub.
// *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Notifier. Only HubCallback is required.
type Config struct {
	// HubCallback is the public URL the hub calls back to. Required.
	HubCallback string

	// HubURL overrides the hub endpoint. Defaults to Google's public hub.
	HubURL string

	// Secret, when set, is sent to the hub and every notification delivery
	// is then HMAC-verified against it. Leaving it empty accepts all
	// deliveries unverified.
	Secret string

	// Path is where the callback handler is mounted. Defaults to "/".
	Path string

	// Port is the listen port for ListenAndServe.
	Port int

	// Middleware marks the Notifier as embedded in a host router via
	// Handler; ListenAndServe then refuses to run.
	Middleware bool

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Client is the outbound HTTP client. Defaults to &http.Client{}.
	Client HTTPClient
}

// Notifier owns the subscription client and the callback handler, and is
// the event source host code subscribes to. Its configuration is immutable
// after New, so concurrent use from request handlers needs no locking.
type Notifier struct {
	hubCallback string
	hubURL      string
	secret      string
	path        string
	port        int
	middleware  bool

	client *hub.Client
	events *bus.Bus
	logger *zap.Logger
}

// New validates cfg and creates a Notifier. It fails when HubCallback is
// empty.
func New(cfg Config) (*Notifier, error) {
	if cfg.HubCallback == "" {
		return nil, errors.New("notifier: hub callback URL is required")
	}
	if cfg.HubURL == "" {
		cfg.HubURL = hub.DefaultURL
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Notifier{
		hubCallback: cfg.HubCallback,
		hubURL:      cfg.HubURL,
		secret:      cfg.Secret,
		path:        cfg.Path,
		port:        cfg.Port,
		middleware:  cfg.Middleware,
		client:      hub.NewClient(cfg.Client, cfg.Logger),
		events:      bus.New(),
		logger:      cfg.Logger,
	}, nil
}

// Subscribe registers interest in one or more channels with the hub. Each
// channel is one independent hub request; a partial failure leaves the
// remaining channels subscribed and reports the failed ones joined into a
// single error.
func (n *Notifier) Subscribe(ctx context.Context, channelIDs ...string) error {
	return n.request(ctx, string(ModeSubscribe), channelIDs)
}

// Unsubscribe withdraws interest in one or more channels.
func (n *Notifier) Unsubscribe(ctx context.Context, channelIDs ...string) error {
	return n.request(ctx, string(ModeUnsubscribe), channelIDs)
}

func (n *Notifier) request(ctx context.Context, mode string, channelIDs []string) error {
	if len(channelIDs) == 0 {
		return fmt.Errorf("notifier: %s requires at least one channel id", mode)
	}

	var errs []error
	for _, id := range channelIDs {
		if id == "" {
			errs = append(errs, fmt.Errorf("notifier: empty channel id"))
			continue
		}
		req := hub.NewRequest(id, mode, n.hubCallback, n.hubURL, n.secret)
		if err := n.client.Send(ctx, req); err != nil {
			errs = append(errs, fmt.Errorf("channel %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Handler returns the callback handler for mounting into a host router at
// the configured path.
func (n *Notifier) Handler() http.Handler {
	return &callbackHandler{notifier: n}
}

// ListenAndServe runs a minimal HTTP server with the callback handler
// mounted at the configured path, until ctx is canceled. It refuses to run
// when the Notifier was configured as middleware.
func (n *Notifier) ListenAndServe(ctx context.Context) error {
	if n.middleware {
		return ErrMiddlewareMode
	}

	mux := http.NewServeMux()
	mux.Handle(n.path, n.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", n.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		n.logger.Info("callback server starting",
			zap.Int("port", n.port),
			zap.String("path", n.path),
		)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// OnSubscribe registers fn for verified subscribe intents. The returned
// function removes the registration.
func (n *Notifier) OnSubscribe(fn func(IntentVerification)) (remove func()) {
	return n.events.Subscribe(topicSubscribe, func(p any) {
		fn(p.(IntentVerification))
	})
}

// OnUnsubscribe registers fn for verified unsubscribe intents.
func (n *Notifier) OnUnsubscribe(fn func(IntentVerification)) (remove func()) {
	return n.events.Subscribe(topicUnsubscribe, func(p any) {
		fn(p.(IntentVerification))
	})
}

// OnNotified registers fn for verified new-video notifications. Handlers
// run after the HTTP response to the hub has been written, on the request
// goroutine.
func (n *Notifier) OnNotified(fn func(Notification)) (remove func()) {
	return n.events.Subscribe(topicNotified, func(p any) {
		fn(p.(Notification))
	})
}
