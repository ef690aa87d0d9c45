package notifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daggieblanqx/youtube-notification/internal/hub"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires a hub callback", func(t *testing.T) {
		t.Parallel()

		_, err := New(Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "callback URL is required")
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		n, err := New(Config{HubCallback: "http://example.com/cb"})
		require.NoError(t, err)
		assert.Equal(t, hub.DefaultURL, n.hubURL)
		assert.Equal(t, "/", n.path)
	})
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	t.Run("requires at least one channel", func(t *testing.T) {
		t.Parallel()

		n, err := New(Config{HubCallback: "http://example.com/cb"})
		require.NoError(t, err)

		require.Error(t, n.Subscribe(context.Background()))
		require.Error(t, n.Unsubscribe(context.Background()))
	})

	t.Run("rejects empty channel ids", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		n, err := New(Config{HubCallback: "http://example.com/cb", HubURL: srv.URL, Client: srv.Client()})
		require.NoError(t, err)

		err = n.Subscribe(context.Background(), "UCok", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty channel id")
	})

	t.Run("sends one form request per channel", func(t *testing.T) {
		t.Parallel()

		var forms []url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			form, _ := url.ParseQuery(string(body))
			forms = append(forms, form)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		n, err := New(Config{
			HubCallback: "http://example.com/cb",
			HubURL:      srv.URL,
			Secret:      "s3cret",
			Client:      srv.Client(),
		})
		require.NoError(t, err)

		require.NoError(t, n.Subscribe(context.Background(), "UC1", "UC2"))
		require.NoError(t, n.Unsubscribe(context.Background(), "UC1"))

		require.Len(t, forms, 3)
		assert.Equal(t, "subscribe", forms[0].Get("hub.mode"))
		assert.Equal(t, hub.TopicBase+"UC1", forms[0].Get("hub.topic"))
		assert.Equal(t, hub.TopicBase+"UC2", forms[1].Get("hub.topic"))
		assert.Equal(t, "http://example.com/cb", forms[0].Get("hub.callback"))
		assert.Equal(t, "s3cret", forms[0].Get("hub.secret"))
		assert.Equal(t, "unsubscribe", forms[2].Get("hub.mode"))
	})

	t.Run("partial failure surfaces the failed channels", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			form, _ := url.ParseQuery(string(body))
			if form.Get("hub.topic") == hub.TopicBase+"UCbad" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		n, err := New(Config{HubCallback: "http://example.com/cb", HubURL: srv.URL, Client: srv.Client()})
		require.NoError(t, err)

		err = n.Subscribe(context.Background(), "UCgood", "UCbad")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "UCbad")
		assert.NotContains(t, err.Error(), "UCgood")
	})
}

func TestListenAndServeRefusesMiddlewareMode(t *testing.T) {
	t.Parallel()

	n, err := New(Config{HubCallback: "http://example.com/cb", Middleware: true})
	require.NoError(t, err)

	require.ErrorIs(t, n.ListenAndServe(context.Background()), ErrMiddlewareMode)
}

func TestEventRemoval(t *testing.T) {
	t.Parallel()

	n, err := New(Config{HubCallback: "http://example.com/cb"})
	require.NoError(t, err)

	var got int
	remove := n.OnSubscribe(func(IntentVerification) { got++ })

	get := func() {
		q := url.Values{}
		q.Set("hub.mode", "subscribe")
		q.Set("hub.topic", hub.TopicBase+"UC123")
		q.Set("hub.challenge", "abc")
		w := httptest.NewRecorder()
		n.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?"+q.Encode(), nil))
	}

	get()
	remove()
	get()

	assert.Equal(t, 1, got)
}
