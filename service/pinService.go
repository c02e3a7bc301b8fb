package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventsoc/soc-backend/repository"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// PinStore is the event-side surface the pin coordinator needs.
type PinStore interface {
	UnsetAllPinned(ctx context.Context) (int64, error)
	SetPinned(ctx context.Context, id bson.ObjectID, pinned bool) (int64, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PinService enforces that at most one event is pinned at any time.
type PinService struct {
	events PinStore
}

func NewPinService(events PinStore) *PinService {
	return &PinService{
		events: events,
	}
}

// SetPinned pins or unpins the target event. Pinning first clears every
// currently pinned event, preferably inside a transaction so the invariant
// holds at every observable point. When the deployment cannot run
// transactions the two writes run sequentially; a reader between them may
// observe zero pinned events and two concurrent pins may both win
// momentarily. That weaker guarantee is accepted, not hidden.
func (s *PinService) SetPinned(ctx context.Context, eventID bson.ObjectID, pinned bool) error {
	if !pinned {
		matched, err := s.events.SetPinned(ctx, eventID, false)
		if err != nil {
			return fmt.Errorf("%w: unset pinned: %w", ErrPersistence, err)
		}
		if matched == 0 {
			return ErrEventNotFound
		}
		return nil
	}

	err := s.events.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.events.UnsetAllPinned(ctx); err != nil {
			return err
		}
		matched, err := s.events.SetPinned(ctx, eventID, true)
		if err != nil {
			return err
		}
		if matched == 0 {
			// Aborts the transaction, so an existing pin survives.
			return ErrEventNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, repository.ErrNoTransactions):
		log.Warn().Err(err).Msg("pin transaction unavailable, using sequential fallback")
		return s.setPinnedSequential(ctx, eventID)
	default:
		return fmt.Errorf("%w: pin transaction: %w", ErrPersistence, err)
	}
}

// setPinnedSequential is the non-transactional fallback. The unset-all step
// runs before the target write, so a missing target is only detected after
// existing pins are already cleared. No compensation is attempted: a
// missing target must not resurrect a previously pinned event.
func (s *PinService) setPinnedSequential(ctx context.Context, eventID bson.ObjectID) error {
	if _, err := s.events.UnsetAllPinned(ctx); err != nil {
		return fmt.Errorf("%w: unset all pinned: %w", ErrPersistence, err)
	}

	matched, err := s.events.SetPinned(ctx, eventID, true)
	if err != nil {
		return fmt.Errorf("%w: set pinned: %w", ErrPersistence, err)
	}
	if matched == 0 {
		return ErrEventNotFound
	}
	return nil
}
