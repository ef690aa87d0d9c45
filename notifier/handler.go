package notifier

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daggieblanqx/youtube-notification/internal/feed"
	"github.com/daggieblanqx/youtube-notification/internal/hub"
	"github.com/daggieblanqx/youtube-notification/internal/signature"
)

// maxBodySize caps notification payloads. YouTube feed entries are a few KB;
// 1MB leaves generous headroom.
const maxBodySize = 1 << 20

// callbackHandler serves the hub's two callback paths: GET intent
// verification and POST notification delivery. All protocol failures are
// terminal per-request and map to a fixed HTTP status; only verified events
// escape, via the notifier's event bus.
type callbackHandler struct {
	notifier *Notifier
}

func (h *callbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleVerification(w, r)
	case http.MethodPost:
		h.handleNotification(w, r)
	default:
		http.Error(w, "Forbidden", http.StatusForbidden)
	}
}

// handleVerification answers the hub's intent verification handshake by
// echoing hub.challenge verbatim. The response is written before the event
// is emitted, so a slow or failing consumer cannot break the handshake.
func (h *callbackHandler) handleVerification(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	topic := query.Get("hub.topic")
	mode := query.Get("hub.mode")
	if topic == "" || mode == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(query.Get("hub.challenge")))

	event := IntentVerification{
		Mode:    Mode(mode),
		Channel: hub.ChannelID(topic),
	}
	if event.Mode == ModeSubscribe {
		event.LeaseSeconds = query.Get("hub.lease_seconds")
	}

	h.notifier.logger.Info("intent verified",
		zap.String("mode", mode),
		zap.String("channel", event.Channel),
		zap.String("lease_seconds", event.LeaseSeconds),
	)

	h.notifier.events.Publish(string(event.Mode), event)
}

// handleNotification processes a notification delivery. With a secret
// configured, a missing signature header is rejected outright, but a
// present-and-wrong signature gets a quiet 200 with no event: the protocol
// treats mismatches as "ignore silently" so probing requests learn nothing.
func (h *callbackHandler) handleNotification(w http.ResponseWriter, r *http.Request) {
	sigHeader := r.Header.Get("X-Hub-Signature")
	if h.notifier.secret != "" && sigHeader == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	video, err := feed.Parse(body)
	if err != nil {
		h.notifier.logger.Warn("unusable notification payload", zap.Error(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if video.Deleted {
		w.WriteHeader(http.StatusOK)
		return
	}

	if h.notifier.secret != "" {
		algo, hexSig := signature.ParseHeader(sigHeader)
		ok, err := signature.Verify(h.notifier.secret, algo, hexSig, body)
		if err != nil || !ok {
			h.notifier.logger.Warn("signature verification failed",
				zap.String("algorithm", algo),
				zap.Error(err),
			)
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	event := Notification{
		ID: uuid.New(),
		Video: Video{
			ID:    video.VideoID,
			Title: video.Title,
			Link:  video.Link,
		},
		Channel: Channel{
			ID:   video.ChannelID,
			Name: video.ChannelName,
			Link: video.ChannelLink,
		},
		Published: video.Published,
		Updated:   video.Updated,
	}

	w.WriteHeader(http.StatusOK)

	h.notifier.logger.Info("notification received",
		zap.String("video_id", event.Video.ID),
		zap.String("channel_id", event.Channel.ID),
	)

	h.notifier.events.Publish(topicNotified, event)
}
