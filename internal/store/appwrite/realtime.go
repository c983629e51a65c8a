package appwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/weekdump/weekdump/internal/store"
)

// Event is a realtime document-change notification.
type Event struct {
	Events   []string       `json:"events"`
	Channels []string       `json:"channels"`
	Payload  store.Document `json:"payload"`
}

// Realtime subscribes to the backend's realtime channel over a websocket.
// It supplements polling: a change notification lets the reconciler re-derive
// state immediately instead of waiting out the poll interval. Polling remains
// the source of truth; a dropped subscription only costs latency.
type Realtime struct {
	client *Client
	dialer *websocket.Dialer
}

// NewRealtime creates a realtime subscriber sharing the client's project
// configuration.
func NewRealtime(client *Client) *Realtime {
	return &Realtime{
		client: client,
		dialer: websocket.DefaultDialer,
	}
}

// DocumentChannel returns the realtime channel name for a single document.
func (r *Realtime) DocumentChannel(collection, documentID string) string {
	return fmt.Sprintf("databases.%s.collections.%s.documents.%s",
		r.client.cfg.DatabaseID, collection, documentID)
}

// Subscribe opens a websocket subscription on the given channels. Events are
// delivered on the returned channel until ctx is cancelled or the connection
// drops, after which the channel is closed.
func (r *Realtime) Subscribe(ctx context.Context, channels ...string) (<-chan Event, error) {
	endpoint, err := r.realtimeURL(channels)
	if err != nil {
		return nil, err
	}

	conn, _, err := r.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial realtime endpoint: %w", err)
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		defer conn.Close()

		// Unblock ReadMessage when the subscription is torn down.
		go func() {
			<-ctx.Done()
			conn.Close()
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					log.Warn().Err(err).Msg("realtime connection dropped")
				}
				return
			}

			var envelope struct {
				Type string          `json:"type"`
				Data json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(msg, &envelope); err != nil {
				log.Warn().Err(err).Msg("failed to decode realtime message")
				continue
			}
			if envelope.Type != "event" {
				continue
			}

			var event Event
			if err := json.Unmarshal(envelope.Data, &event); err != nil {
				log.Warn().Err(err).Msg("failed to decode realtime event")
				continue
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

func (r *Realtime) realtimeURL(channels []string) (string, error) {
	base, err := url.Parse(r.client.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse endpoint: %w", err)
	}
	switch base.Scheme {
	case "https":
		base.Scheme = "wss"
	case "http":
		base.Scheme = "ws"
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + "/realtime"

	params := url.Values{}
	params.Set("project", r.client.cfg.ProjectID)
	for _, ch := range channels {
		params.Add("channels[]", ch)
	}
	base.RawQuery = params.Encode()
	return base.String(), nil
}
