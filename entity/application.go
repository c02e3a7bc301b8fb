package entity

import "go.mongodb.org/mongo-driver/v2/bson"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

type Application struct {
	ID      bson.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID  bson.ObjectID     `bson:"user_id" json:"user_id"`
	EventID bson.ObjectID     `bson:"event_id" json:"event_id"`
	Status  ApplicationStatus `bson:"status" json:"status"`
}
