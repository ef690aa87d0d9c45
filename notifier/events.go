package notifier

import "github.com/google/uuid"

// Mode is the hub.mode value of an intent verification.
type Mode string

// The two subscription intents the hub verifies.
const (
	ModeSubscribe   Mode = "subscribe"
	ModeUnsubscribe Mode = "unsubscribe"
)

// IntentVerification is emitted after the handler acknowledges a hub
// verification callback. LeaseSeconds is set only for subscribe intents and
// only when the hub supplied hub.lease_seconds.
type IntentVerification struct {
	Mode         Mode
	Channel      string
	LeaseSeconds string
}

// Video identifies the video a notification is about.
type Video struct {
	ID    string
	Title string
	Link  string
}

// Channel identifies the channel that published the video.
type Channel struct {
	ID   string
	Name string
	Link string
}

// Notification is emitted for each verified new-video delivery. Published
// and Updated keep the feed's native timestamp strings untouched. ID is
// assigned locally per delivery; the protocol itself has no event identity,
// so duplicate hub deliveries produce distinct IDs.
type Notification struct {
	ID        uuid.UUID
	Video     Video
	Channel   Channel
	Published string
	Updated   string
}
