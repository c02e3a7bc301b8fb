package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Event struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string        `bson:"name" json:"name"`
	Location    string        `bson:"location" json:"location"`
	Date        time.Time     `bson:"date" json:"date"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	Pinned      bool          `bson:"pinned" json:"pinned"`

	Attendees []Attendee `bson:"attendees" json:"attendees"`

	CreatedBy bson.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}

// Attendee is a denormalized snapshot of a user embedded in an event.
// Within one event the set is keyed by UserID.
type Attendee struct {
	UserID bson.ObjectID `bson:"user_id" json:"user_id"`
	Name   string        `bson:"name" json:"name"`
	Email  string        `bson:"email" json:"email"`
}

func (e *Event) FindAttendee(userID bson.ObjectID) *Attendee {
	for i := range e.Attendees {
		if e.Attendees[i].UserID == userID {
			return &e.Attendees[i]
		}
	}
	return nil
}
