package reconciler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/weekdump/weekdump/internal/game"
	"github.com/weekdump/weekdump/internal/models"
)

// DefaultInterval is the poll cadence while in a non-terminal phase.
const DefaultInterval = 5 * time.Second

// GroupSource defines what the reconciler needs from the groups
// application: reading polled state and the two opportunistic flag flips.
type GroupSource interface {
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ActivateActivity(ctx context.Context, groupID string) error
	ReleaseResults(ctx context.Context, groupID string) error
}

// Assigner defines what the reconciler needs from the assignment algorithm.
type Assigner interface {
	AssignPhotos(ctx context.Context, group *models.Group) map[string]string
}

// Publisher receives phase transitions as they are detected.
type Publisher interface {
	PublishPhase(ctx context.Context, groupID, userID string, phase models.Phase) error
}

// Update is delivered to the host on every phase transition.
type Update struct {
	Phase models.Phase
	Group *models.Group
	// Assignments holds the captioning game's submitter -> photo map, empty
	// for the voting game.
	Assignments map[string]string
}

// Reconciler polls a group document, opportunistically advances shared
// flags, and derives the current user's game phase. One reconciler run is
// owned by one host screen and torn down with it; results of calls in
// flight at cancellation are discarded.
type Reconciler struct {
	groups    GroupSource
	assigner  Assigner
	publisher Publisher
	clock     clockwork.Clock
	interval  time.Duration
	nudge     chan struct{}
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock substitutes the clock, for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Reconciler) { r.clock = clock }
}

// WithInterval overrides the poll interval.
func WithInterval(interval time.Duration) Option {
	return func(r *Reconciler) { r.interval = interval }
}

// New creates a reconciler. publisher may be nil when the host does not
// forward phase events anywhere.
func New(groups GroupSource, assigner Assigner, publisher Publisher, opts ...Option) *Reconciler {
	r := &Reconciler{
		groups:    groups,
		assigner:  assigner,
		publisher: publisher,
		clock:     clockwork.NewRealClock(),
		interval:  DefaultInterval,
		nudge:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Nudge requests an immediate reconciliation pass, ahead of the next tick.
// Used by realtime document-change subscriptions; safe from any goroutine
// and never blocks.
func (r *Reconciler) Nudge() {
	select {
	case r.nudge <- struct{}{}:
	default:
	}
}

// Run polls the group until the user's phase is terminal or ctx is
// cancelled. onUpdate is invoked once per phase transition, including the
// initial phase. Errors inside a pass are logged and retried on the next
// tick; Run only returns a context error or nil.
func (r *Reconciler) Run(ctx context.Context, groupID, userID string, gameType models.GameType, onUpdate func(Update)) error {
	log.Info().
		Str("group_id", groupID).
		Str("user_id", userID).
		Str("game_type", string(gameType)).
		Dur("interval", r.interval).
		Msg("reconciler started")

	var lastPhase models.Phase

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		phase, done := r.pass(ctx, groupID, userID, gameType, lastPhase, onUpdate)
		if phase != "" {
			lastPhase = phase
		}
		if done {
			log.Info().Str("group_id", groupID).Str("phase", string(lastPhase)).
				Msg("reconciler finished")
			return nil
		}

		select {
		case <-ctx.Done():
			log.Debug().Str("group_id", groupID).Msg("reconciler cancelled")
			return ctx.Err()
		case <-ticker.Chan():
		case <-r.nudge:
		}
	}
}

// pass performs one reconciliation cycle. It returns the derived phase (""
// when the group could not be read) and whether the run is complete.
func (r *Reconciler) pass(ctx context.Context, groupID, userID string, gameType models.GameType, lastPhase models.Phase, onUpdate func(Update)) (models.Phase, bool) {
	group, err := r.groups.GetGroup(ctx, groupID)
	if err != nil {
		if ctx.Err() != nil {
			return "", true
		}
		log.Error().Err(err).Str("group_id", groupID).Msg("failed to poll group")
		return "", false
	}

	// Any polling client may advance shared state: both flips are
	// idempotent boolean sets, so concurrent clients racing on them are
	// harmless.
	if group.AllPhotosSubmitted() && !group.ActivityActive {
		if err := r.groups.ActivateActivity(ctx, groupID); err != nil {
			log.Error().Err(err).Str("group_id", groupID).Msg("failed to activate activity")
		} else {
			log.Info().Str("group_id", groupID).Msg("activated today's activity")
			group.ActivityActive = true
		}
	}

	var assignments map[string]string
	if gameType == models.GameTypeCaption && group.ActivityActive {
		assignments = r.assigner.AssignPhotos(ctx, group)
	}

	if !group.ReleaseResults && game.AllCompleted(group, gameType) {
		if err := r.groups.ReleaseResults(ctx, groupID); err != nil {
			log.Error().Err(err).Str("group_id", groupID).Msg("failed to release results")
		} else {
			log.Info().Str("group_id", groupID).Msg("released results")
			group.ReleaseResults = true
		}
	}

	phase := game.DerivePhase(group, userID, gameType)
	if phase != lastPhase {
		log.Info().
			Str("group_id", groupID).
			Str("user_id", userID).
			Str("from", string(lastPhase)).
			Str("to", string(phase)).
			Msg("phase transition")

		if r.publisher != nil {
			if err := r.publisher.PublishPhase(ctx, groupID, userID, phase); err != nil {
				log.Error().Err(err).Str("group_id", groupID).Msg("failed to publish phase event")
			}
		}
		if onUpdate != nil {
			onUpdate(Update{Phase: phase, Group: group, Assignments: assignments})
		}
	}

	return phase, phase.Terminal()
}
