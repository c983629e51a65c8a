package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/weekdump/weekdump/internal/models"
)

// PhaseEvent is the payload published on phase transitions, so downstream
// consumers (notification senders, analytics) can react without polling the
// store themselves.
type PhaseEvent struct {
	GroupID string       `json:"group_id"`
	UserID  string       `json:"user_id"`
	Phase   models.Phase `json:"phase"`
	At      time.Time    `json:"at"`
}

// NATSPublisher publishes phase events to a NATS subject per group.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the broker at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// PublishPhase publishes a phase transition on weekdump.group.<id>.phase.
func (p *NATSPublisher) PublishPhase(ctx context.Context, groupID, userID string, phase models.Phase) error {
	payload, err := json.Marshal(PhaseEvent{
		GroupID: groupID,
		UserID:  userID,
		Phase:   phase,
		At:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal phase event: %w", err)
	}

	subject := fmt.Sprintf("weekdump.group.%s.phase", groupID)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish phase event: %w", err)
	}

	log.Debug().Str("subject", subject).Str("phase", string(phase)).Msg("published phase event")
	return nil
}

// Close drains and closes the broker connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		log.Warn().Err(err).Msg("failed to drain NATS connection")
	}
}

// NoopPublisher discards phase events, for hosts running without a broker.
type NoopPublisher struct{}

// PublishPhase does nothing.
func (NoopPublisher) PublishPhase(ctx context.Context, groupID, userID string, phase models.Phase) error {
	return nil
}
