package service

import (
	"context"
	"errors"
	"testing"

	"github.com/eventsoc/soc-backend/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newTestEvent() *entity.Event {
	return &entity.Event{
		ID:   bson.NewObjectID(),
		Name: "general meeting",
	}
}

func newTestUser() *entity.User {
	return &entity.User{
		ID:    bson.NewObjectID(),
		Name:  "Ada",
		Email: "ada@x.io",
	}
}

func TestJoinRecordsBothSides(t *testing.T) {
	event := newTestEvent()
	user := newTestUser()
	events := newFakeEventStore(event)
	users := newFakeUserStore(user)
	s := NewMembershipService(events, users)

	err := s.Join(context.Background(), event.ID, user.ID, user.Name, user.Email)
	require.NoError(t, err)

	require.Len(t, event.Attendees, 1)
	assert.Equal(t, user.ID, event.Attendees[0].UserID)
	assert.Equal(t, "Ada", event.Attendees[0].Name)
	assert.Equal(t, "ada@x.io", event.Attendees[0].Email)
	assert.True(t, user.IsAttending(event.ID))
}

func TestJoinIsIdempotent(t *testing.T) {
	event := newTestEvent()
	user := newTestUser()
	events := newFakeEventStore(event)
	users := newFakeUserStore(user)
	s := NewMembershipService(events, users)

	require.NoError(t, s.Join(context.Background(), event.ID, user.ID, user.Name, user.Email))
	require.NoError(t, s.Join(context.Background(), event.ID, user.ID, user.Name, user.Email))

	assert.Len(t, event.Attendees, 1)
	assert.Len(t, user.AttendingEvents, 1)
}

func TestJoinEventMissing(t *testing.T) {
	user := newTestUser()
	events := newFakeEventStore()
	users := newFakeUserStore(user)
	s := NewMembershipService(events, users)

	err := s.Join(context.Background(), bson.NewObjectID(), user.ID, user.Name, user.Email)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.Empty(t, user.AttendingEvents)
}

func TestJoinUserSideFailureCompensates(t *testing.T) {
	event := newTestEvent()
	user := newTestUser()
	events := newFakeEventStore(event)
	users := newFakeUserStore(user)
	users.failAddEvent = errors.New("connection reset")
	s := NewMembershipService(events, users)

	err := s.Join(context.Background(), event.ID, user.ID, user.Name, user.Email)
	assert.ErrorIs(t, err, ErrPersistence)

	// Compensation removed the event-side record: the user is absent
	// from both sides.
	assert.Empty(t, event.Attendees)
	assert.Empty(t, user.AttendingEvents)
}

func TestJoinCompensationFailureIsPartialFailure(t *testing.T) {
	event := newTestEvent()
	user := newTestUser()
	events := newFakeEventStore(event)
	users := newFakeUserStore(user)
	s := NewMembershipService(events, users)

	users.failAddEvent = errors.New("connection reset")
	events.failRemoveAttendee = errors.New("primary stepped down")

	err := s.Join(context.Background(), event.ID, user.ID, user.Name, user.Email)

	var partial *PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "join", partial.Op)
	assert.NotErrorIs(t, err, ErrPersistence)
}

func TestJoinUnknownUserCompensates(t *testing.T) {
	event := newTestEvent()
	events := newFakeEventStore(event)
	users := newFakeUserStore()
	s := NewMembershipService(events, users)

	err := s.Join(context.Background(), event.ID, bson.NewObjectID(), "Ghost", "ghost@x.io")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, event.Attendees)
}

func TestJoinCancelledContextStillCompensates(t *testing.T) {
	event := newTestEvent()
	user := newTestUser()
	events := newFakeEventStore(event)
	users := newFakeUserStore(user)
	s := NewMembershipService(events, users)

	// The caller cancels while the user-side write is in flight. The
	// compensating removal must still run.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	users.cancelOnAddEvent = cancel

	err := s.Join(ctx, event.ID, user.ID, user.Name, user.Email)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, event.Attendees)
}

func TestLeaveRemovesBothSides(t *testing.T) {
	event := newTestEvent()
	user := newTestUser()
	events := newFakeEventStore(event)
	users := newFakeUserStore(user)
	s := NewMembershipService(events, users)

	require.NoError(t, s.Join(context.Background(), event.ID, user.ID, user.Name, user.Email))
	require.NoError(t, s.Leave(context.Background(), event.ID, user.ID))

	assert.Empty(t, event.Attendees)
	assert.Empty(t, user.AttendingEvents)
}

func TestLeaveNeverJoinedIsNoop(t *testing.T) {
	event := newTestEvent()
	other := newTestUser()
	event.Attendees = []entity.Attendee{{UserID: other.ID, Name: other.Name, Email: other.Email}}
	user := newTestUser()
	events := newFakeEventStore(event)
	users := newFakeUserStore(user, other)
	s := NewMembershipService(events, users)

	err := s.Leave(context.Background(), event.ID, user.ID)
	require.NoError(t, err)

	// The unrelated attendee is untouched.
	require.Len(t, event.Attendees, 1)
	assert.Equal(t, other.ID, event.Attendees[0].UserID)
}

func TestLeaveEventMissing(t *testing.T) {
	user := newTestUser()
	s := NewMembershipService(newFakeEventStore(), newFakeUserStore(user))

	err := s.Leave(context.Background(), bson.NewObjectID(), user.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestLeaveUserSideFailureCompensates(t *testing.T) {
	event := newTestEvent()
	user := newTestUser()
	events := newFakeEventStore(event)
	users := newFakeUserStore(user)
	s := NewMembershipService(events, users)

	require.NoError(t, s.Join(context.Background(), event.ID, user.ID, user.Name, user.Email))

	users.failRemoveEvent = errors.New("connection reset")
	err := s.Leave(context.Background(), event.ID, user.ID)
	assert.ErrorIs(t, err, ErrPersistence)

	// The attendee record was re-inserted from the snapshot.
	require.Len(t, event.Attendees, 1)
	assert.Equal(t, user.ID, event.Attendees[0].UserID)
	assert.Equal(t, user.Email, event.Attendees[0].Email)
}

func TestLeaveCompensationFailureIsPartialFailure(t *testing.T) {
	event := newTestEvent()
	user := newTestUser()
	events := newFakeEventStore(event)
	users := newFakeUserStore(user)
	s := NewMembershipService(events, users)

	require.NoError(t, s.Join(context.Background(), event.ID, user.ID, user.Name, user.Email))

	// The user-side removal fails and the re-insert of the snapshot
	// fails too: the attendee is gone from the event but the user still
	// lists the event.
	users.failRemoveEvent = errors.New("connection reset")
	events.failAddAttendee = errors.New("primary stepped down")

	err := s.Leave(context.Background(), event.ID, user.ID)

	var partial *PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "leave", partial.Op)
	assert.NotErrorIs(t, err, ErrPersistence)
	assert.Empty(t, event.Attendees)
	assert.True(t, user.IsAttending(event.ID))
}

func TestJoinLeaveScenario(t *testing.T) {
	event := newTestEvent()
	user := newTestUser()
	events := newFakeEventStore(event)
	users := newFakeUserStore(user)
	s := NewMembershipService(events, users)

	require.NoError(t, s.Join(context.Background(), event.ID, user.ID, "Ada", "ada@x.io"))

	found, err := s.GetMany(context.Background(), []string{event.ID.Hex()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.NotNil(t, found[0].FindAttendee(user.ID))

	require.NoError(t, s.Leave(context.Background(), event.ID, user.ID))

	found, err = s.GetMany(context.Background(), []string{event.ID.Hex()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Empty(t, found[0].Attendees)

	// Leaving again is an idempotent no-op, not an error.
	assert.NoError(t, s.Leave(context.Background(), event.ID, user.ID))
}

func TestGetMany(t *testing.T) {
	first := newTestEvent()
	second := newTestEvent()
	events := newFakeEventStore(first, second)
	s := NewMembershipService(events, newFakeUserStore())

	tests := []struct {
		name    string
		ids     []string
		want    []bson.ObjectID
		wantErr error
	}{
		{
			name: "request order preserved",
			ids:  []string{second.ID.Hex(), first.ID.Hex()},
			want: []bson.ObjectID{second.ID, first.ID},
		},
		{
			name: "malformed ids dropped silently",
			ids:  []string{"nonsense", first.ID.Hex(), ""},
			want: []bson.ObjectID{first.ID},
		},
		{
			name: "missing ids skipped",
			ids:  []string{bson.NewObjectID().Hex(), first.ID.Hex()},
			want: []bson.ObjectID{first.ID},
		},
		{
			name:    "nothing valid",
			ids:     []string{"nonsense", ""},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := s.GetMany(context.Background(), tt.ids)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			got := make([]bson.ObjectID, 0, len(found))
			for _, event := range found {
				got = append(got, event.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
