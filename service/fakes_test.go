package service

import (
	"context"
	"time"

	"github.com/eventsoc/soc-backend/entity"
	"github.com/eventsoc/soc-backend/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// fakeEventStore mimics the event collection's single-document atomic
// update contract, including matched/modified counts.
type fakeEventStore struct {
	events map[bson.ObjectID]*entity.Event

	failAddAttendee    error
	failRemoveAttendee error
	failFind           error
	txnErr             error

	ops []string
}

func newFakeEventStore(events ...*entity.Event) *fakeEventStore {
	s := &fakeEventStore{events: map[bson.ObjectID]*entity.Event{}}
	for _, event := range events {
		if event.Attendees == nil {
			event.Attendees = []entity.Attendee{}
		}
		s.events[event.ID] = event
	}
	return s
}

func (s *fakeEventStore) FindOneByID(ctx context.Context, id bson.ObjectID) (*entity.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.failFind != nil {
		return nil, s.failFind
	}
	event, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return event, nil
}

func (s *fakeEventStore) FindManyByIDs(ctx context.Context, ids []bson.ObjectID) ([]*entity.Event, error) {
	if s.failFind != nil {
		return nil, s.failFind
	}
	var found []*entity.Event
	for _, id := range ids {
		if event, ok := s.events[id]; ok {
			found = append(found, event)
		}
	}
	return found, nil
}

func (s *fakeEventStore) AddAttendee(ctx context.Context, eventID bson.ObjectID, attendee entity.Attendee) (int64, error) {
	s.ops = append(s.ops, "addAttendee")
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.failAddAttendee != nil {
		return 0, s.failAddAttendee
	}
	event, ok := s.events[eventID]
	if !ok {
		return 0, nil
	}
	if event.FindAttendee(attendee.UserID) != nil {
		return 0, nil
	}
	event.Attendees = append(event.Attendees, attendee)
	return 1, nil
}

func (s *fakeEventStore) RemoveAttendee(ctx context.Context, eventID, userID bson.ObjectID) (int64, int64, error) {
	s.ops = append(s.ops, "removeAttendee")
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if s.failRemoveAttendee != nil {
		return 0, 0, s.failRemoveAttendee
	}
	event, ok := s.events[eventID]
	if !ok {
		return 0, 0, nil
	}
	for i := range event.Attendees {
		if event.Attendees[i].UserID == userID {
			event.Attendees = append(event.Attendees[:i], event.Attendees[i+1:]...)
			return 1, 1, nil
		}
	}
	return 1, 0, nil
}

func (s *fakeEventStore) UnsetAllPinned(ctx context.Context) (int64, error) {
	s.ops = append(s.ops, "unsetAllPinned")
	var modified int64
	for _, event := range s.events {
		if event.Pinned {
			event.Pinned = false
			modified++
		}
	}
	return modified, nil
}

func (s *fakeEventStore) SetPinned(ctx context.Context, id bson.ObjectID, pinned bool) (int64, error) {
	s.ops = append(s.ops, "setPinned")
	event, ok := s.events[id]
	if !ok {
		return 0, nil
	}
	event.Pinned = pinned
	return 1, nil
}

// WithTransaction snapshots pinned flags and restores them when fn fails,
// mirroring a real abort.
func (s *fakeEventStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txnErr != nil {
		return s.txnErr
	}
	snapshot := map[bson.ObjectID]bool{}
	for id, event := range s.events {
		snapshot[id] = event.Pinned
	}
	if err := fn(ctx); err != nil {
		for id, pinned := range snapshot {
			s.events[id].Pinned = pinned
		}
		return err
	}
	return nil
}

func (s *fakeEventStore) pinnedIDs() []bson.ObjectID {
	var ids []bson.ObjectID
	for id, event := range s.events {
		if event.Pinned {
			ids = append(ids, id)
		}
	}
	return ids
}

type fakeUserStore struct {
	users map[bson.ObjectID]*entity.User

	failAddEvent    error
	failRemoveEvent error

	// cancelOnAddEvent cancels the given function before failing, to
	// simulate a caller cancellation mid-saga.
	cancelOnAddEvent context.CancelFunc
}

func newFakeUserStore(users ...*entity.User) *fakeUserStore {
	s := &fakeUserStore{users: map[bson.ObjectID]*entity.User{}}
	for _, user := range users {
		if user.AttendingEvents == nil {
			user.AttendingEvents = []bson.ObjectID{}
		}
		s.users[user.ID] = user
	}
	return s
}

func (s *fakeUserStore) FindOneByID(ctx context.Context, id bson.ObjectID) (*entity.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindOneByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) UpdateAdmin(ctx context.Context, id bson.ObjectID, admin bool) (int64, error) {
	user, ok := s.users[id]
	if !ok {
		return 0, nil
	}
	user.Admin = admin
	return 1, nil
}

func (s *fakeUserStore) AddEvent(ctx context.Context, userID, eventID bson.ObjectID) (int64, error) {
	if s.cancelOnAddEvent != nil {
		s.cancelOnAddEvent()
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.failAddEvent != nil {
		return 0, s.failAddEvent
	}
	user, ok := s.users[userID]
	if !ok {
		return 0, nil
	}
	if !user.IsAttending(eventID) {
		user.AttendingEvents = append(user.AttendingEvents, eventID)
	}
	return 1, nil
}

func (s *fakeUserStore) RemoveEvent(ctx context.Context, userID, eventID bson.ObjectID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.failRemoveEvent != nil {
		return 0, s.failRemoveEvent
	}
	user, ok := s.users[userID]
	if !ok {
		return 0, nil
	}
	for i, id := range user.AttendingEvents {
		if id == eventID {
			user.AttendingEvents = append(user.AttendingEvents[:i], user.AttendingEvents[i+1:]...)
			break
		}
	}
	return 1, nil
}

type fakeLedger struct {
	revoked map[string]time.Time
	failErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{revoked: map[string]time.Time{}}
}

func (l *fakeLedger) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if l.failErr != nil {
		return l.failErr
	}
	l.revoked[tokenID] = expiresAt
	return nil
}

func (l *fakeLedger) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if l.failErr != nil {
		return false, l.failErr
	}
	_, ok := l.revoked[tokenID]
	return ok, nil
}
