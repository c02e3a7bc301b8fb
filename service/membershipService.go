package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eventsoc/soc-backend/entity"
	"github.com/eventsoc/soc-backend/repository"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// EventStore is the event-side surface the coordinator needs. All mutations
// are single-document atomic set-semantics updates.
type EventStore interface {
	FindOneByID(ctx context.Context, id bson.ObjectID) (*entity.Event, error)
	FindManyByIDs(ctx context.Context, ids []bson.ObjectID) ([]*entity.Event, error)
	AddAttendee(ctx context.Context, eventID bson.ObjectID, attendee entity.Attendee) (int64, error)
	RemoveAttendee(ctx context.Context, eventID, userID bson.ObjectID) (matched, modified int64, err error)
}

// UserStore is the user-side surface of the membership relation.
type UserStore interface {
	AddEvent(ctx context.Context, userID, eventID bson.ObjectID) (int64, error)
	RemoveEvent(ctx context.Context, userID, eventID bson.ObjectID) (int64, error)
}

// MembershipService keeps a user's attending_events list and an event's
// attendees list mutually consistent without multi-document transactions.
// The event-side write always runs first and the user-side write is
// compensated on failure, so the only transient inconsistency is an
// attendee recorded on the event but missing from the user's list, which a
// repeated Join or a Leave converges. The coordinator never retries a
// failed store call; all updates are idempotent so the caller may.
type MembershipService struct {
	events EventStore
	users  UserStore
}

func NewMembershipService(events EventStore, users UserStore) *MembershipService {
	return &MembershipService{
		events: events,
		users:  users,
	}
}

// Join records userID as attending eventID on both documents.
func (s *MembershipService) Join(ctx context.Context, eventID, userID bson.ObjectID, name, email string) error {
	// Existence check for a precise error. Not a lock: the event can
	// disappear before the write below.
	if _, err := s.events.FindOneByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("%w: find event: %w", ErrPersistence, err)
	}

	attendee := entity.Attendee{
		UserID: userID,
		Name:   name,
		Email:  email,
	}

	matched, err := s.events.AddAttendee(ctx, eventID, attendee)
	if err != nil {
		return fmt.Errorf("%w: add attendee: %w", ErrPersistence, err)
	}

	added := matched == 1
	if !added {
		// Zero matches means the event vanished or the user is already
		// in the set. Disambiguate with a read.
		if _, err := s.events.FindOneByID(ctx, eventID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("%w: find event: %w", ErrPersistence, err)
		}
		// Already an attendee. Still run the user-side write so a
		// previously half-applied join converges.
	}

	userMatched, err := s.users.AddEvent(ctx, userID, eventID)
	if err == nil && userMatched == 0 {
		err = repository.ErrNotFound
	}
	if err != nil {
		if added {
			if cerr := s.compensateJoin(ctx, eventID, userID); cerr != nil {
				return &PartialFailureError{
					Op:           "join",
					Cause:        err,
					Compensation: cerr,
				}
			}
		}
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: add event to user: %w", ErrPersistence, err)
	}

	return nil
}

// compensateJoin undoes the event-side write after a failed user-side
// write. It runs on a context detached from the caller's cancellation: a
// cancelled request must not leave the relation asymmetric without at least
// one compensation attempt.
func (s *MembershipService) compensateJoin(ctx context.Context, eventID, userID bson.ObjectID) error {
	_, _, err := s.events.RemoveAttendee(context.WithoutCancel(ctx), eventID, userID)
	if err != nil {
		log.Error().Err(err).
			Str("eventId", eventID.Hex()).
			Str("userId", userID.Hex()).
			Msg("join compensation failed, attendee left on event")
	}
	return err
}

// Leave removes the membership from both documents. Leaving an event the
// user never joined is a no-op.
func (s *MembershipService) Leave(ctx context.Context, eventID, userID bson.ObjectID) error {
	event, err := s.events.FindOneByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("%w: find event: %w", ErrPersistence, err)
	}

	// Snapshot for possible compensation before the record is gone.
	var snapshot *entity.Attendee
	if found := event.FindAttendee(userID); found != nil {
		copied := *found
		snapshot = &copied
	}

	matched, modified, err := s.events.RemoveAttendee(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("%w: remove attendee: %w", ErrPersistence, err)
	}
	if matched == 0 {
		return ErrEventNotFound
	}
	removed := modified == 1

	if _, err := s.users.RemoveEvent(ctx, userID, eventID); err != nil {
		if removed && snapshot != nil {
			if cerr := s.compensateLeave(ctx, eventID, *snapshot); cerr != nil {
				return &PartialFailureError{
					Op:           "leave",
					Cause:        err,
					Compensation: cerr,
				}
			}
		}
		return fmt.Errorf("%w: remove event from user: %w", ErrPersistence, err)
	}

	return nil
}

func (s *MembershipService) compensateLeave(ctx context.Context, eventID bson.ObjectID, attendee entity.Attendee) error {
	_, err := s.events.AddAttendee(context.WithoutCancel(ctx), eventID, attendee)
	if err != nil {
		log.Error().Err(err).
			Str("eventId", eventID.Hex()).
			Str("userId", attendee.UserID.Hex()).
			Msg("leave compensation failed, attendee missing from event")
	}
	return err
}

// GetMany resolves a batch of event id strings. Malformed ids are treated
// as ids that cannot exist and dropped silently; missing events are simply
// absent from the result. Results follow the request order.
func (s *MembershipService) GetMany(ctx context.Context, hexIDs []string) ([]*entity.Event, error) {
	ids := make([]bson.ObjectID, 0, len(hexIDs))
	for _, hex := range hexIDs {
		id, err := bson.ObjectIDFromHex(strings.TrimSpace(hex))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrInvalidInput
	}

	events, err := s.events.FindManyByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: find events: %w", ErrPersistence, err)
	}

	byID := make(map[bson.ObjectID]*entity.Event, len(events))
	for _, event := range events {
		byID[event.ID] = event
	}

	ordered := make([]*entity.Event, 0, len(events))
	for _, id := range ids {
		if event, ok := byID[id]; ok {
			ordered = append(ordered, event)
			delete(byID, id)
		}
	}
	return ordered, nil
}
