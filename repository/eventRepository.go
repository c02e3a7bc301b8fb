package repository

import (
	"context"
	"errors"
	"time"

	"github.com/eventsoc/soc-backend/entity"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type EventRepository struct {
	mongoClient  *mongo.Client
	databaseName string
}

func NewEventRepository(mongoClient *mongo.Client, databaseName string) *EventRepository {
	return &EventRepository{
		mongoClient:  mongoClient,
		databaseName: databaseName,
	}
}

func (r *EventRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.databaseName).Collection("events")
}

func (r *EventRepository) FindAll(ctx context.Context) ([]*entity.Event, error) {
	return r.find(ctx, bson.M{})
}

func (r *EventRepository) FindManyFromDate(ctx context.Context, fromUTC time.Time) ([]*entity.Event, error) {
	return r.find(ctx, bson.M{
		"date": bson.M{
			"$gte": fromUTC,
		},
	})
}

// FindManyByIDs returns the events whose ids are in ids, in date order.
// Missing ids are simply absent from the result.
func (r *EventRepository) FindManyByIDs(ctx context.Context, ids []bson.ObjectID) ([]*entity.Event, error) {
	return r.find(ctx, bson.M{
		"_id": bson.M{
			"$in": ids,
		},
	})
}

func (r *EventRepository) find(ctx context.Context, filter bson.M) ([]*entity.Event, error) {
	opts := options.Find().SetSort(bson.M{"date": 1})

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var events []*entity.Event
	err = cursor.All(ctx, &events)
	return events, err
}

func (r *EventRepository) FindOneByID(ctx context.Context, id bson.ObjectID) (*entity.Event, error) {
	var event entity.Event
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepository) InsertOne(ctx context.Context, event *entity.Event) (bson.ObjectID, error) {
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Attendees == nil {
		event.Attendees = []entity.Attendee{}
	}

	result, err := r.collection().InsertOne(ctx, event)
	if err != nil {
		return bson.ObjectID{}, err
	}

	id := result.InsertedID.(bson.ObjectID)
	event.ID = id
	return id, nil
}

func (r *EventRepository) UpdateOne(ctx context.Context, id bson.ObjectID, event entity.Event) (*entity.Event, error) {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"name":        event.Name,
			"location":    event.Location,
			"date":        event.Date,
			"description": event.Description,
			"updated_at":  time.Now().UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated entity.Event
	err := r.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &updated, nil
}

func (r *EventRepository) DeleteOne(ctx context.Context, id bson.ObjectID) (int64, error) {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *EventRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.collection().DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// AddAttendee adds the attendee to the event's set, keyed by user id.
// Matched is 1 only when the event exists and the user is not already in
// the set; 0 means the event is gone or the attendee is already recorded,
// which the caller disambiguates with a read.
func (r *EventRepository) AddAttendee(ctx context.Context, eventID bson.ObjectID, attendee entity.Attendee) (int64, error) {
	filter := bson.M{
		"_id":               eventID,
		"attendees.user_id": bson.M{"$ne": attendee.UserID},
	}

	update := bson.M{
		"$push": bson.M{
			"attendees": attendee,
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

// RemoveAttendee removes the attendee keyed by userID. Matched reports
// whether the event exists, modified whether an attendee was actually
// removed.
func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID, userID bson.ObjectID) (matched, modified int64, err error) {
	filter := bson.M{"_id": eventID}
	update := bson.M{
		"$pull": bson.M{
			"attendees": bson.M{
				"user_id": userID,
			},
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, 0, err
	}
	return result.MatchedCount, result.ModifiedCount, nil
}

func (r *EventRepository) UnsetAllPinned(ctx context.Context) (int64, error) {
	filter := bson.M{"pinned": true}
	update := bson.M{
		"$set": bson.M{
			"pinned": false,
		},
	}

	result, err := r.collection().UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *EventRepository) SetPinned(ctx context.Context, id bson.ObjectID, pinned bool) (int64, error) {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"pinned": pinned,
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

// WithTransaction runs fn inside a multi-document transaction. It returns
// ErrNoTransactions when the deployment cannot run transactions at all, and
// fn's own error when fn aborts the transaction.
func (r *EventRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.mongoClient.StartSession()
	if err != nil {
		return errors.Join(ErrNoTransactions, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, fn(ctx)
	})
	if err != nil && transactionsUnsupported(err) {
		return errors.Join(ErrNoTransactions, err)
	}
	return err
}
