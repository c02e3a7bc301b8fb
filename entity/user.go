package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type User struct {
	ID       bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string        `bson:"name" json:"name"`
	Email    string        `bson:"email" json:"email"`
	Password string        `bson:"password" json:"-"`
	Wallet   string        `bson:"wallet,omitempty" json:"wallet,omitempty"`
	Admin    bool          `bson:"admin,omitempty" json:"admin,omitempty"`

	AttendingEvents []bson.ObjectID `bson:"attending_events" json:"attending_events"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (u *User) IsAttending(eventID bson.ObjectID) bool {
	for _, id := range u.AttendingEvents {
		if id == eventID {
			return true
		}
	}
	return false
}
