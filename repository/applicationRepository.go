package repository

import (
	"context"
	"errors"

	"github.com/eventsoc/soc-backend/entity"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ApplicationRepository struct {
	mongoClient  *mongo.Client
	databaseName string
}

func NewApplicationRepository(mongoClient *mongo.Client, databaseName string) *ApplicationRepository {
	return &ApplicationRepository{
		mongoClient:  mongoClient,
		databaseName: databaseName,
	}
}

func (r *ApplicationRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.databaseName).Collection("applications")
}

func (r *ApplicationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "event_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *ApplicationRepository) FindAll(ctx context.Context) ([]*entity.Application, error) {
	return r.find(ctx, bson.M{})
}

func (r *ApplicationRepository) FindManyByUserID(ctx context.Context, userID bson.ObjectID) ([]*entity.Application, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *ApplicationRepository) FindManyByEventID(ctx context.Context, eventID bson.ObjectID) ([]*entity.Application, error) {
	return r.find(ctx, bson.M{"event_id": eventID})
}

func (r *ApplicationRepository) find(ctx context.Context, filter bson.M) ([]*entity.Application, error) {
	cursor, err := r.collection().Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var applications []*entity.Application
	err = cursor.All(ctx, &applications)
	return applications, err
}

func (r *ApplicationRepository) FindOneByUserAndEvent(ctx context.Context, userID, eventID bson.ObjectID) (*entity.Application, error) {
	filter := bson.M{
		"user_id":  userID,
		"event_id": eventID,
	}

	var application entity.Application
	err := r.collection().FindOne(ctx, filter).Decode(&application)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &application, nil
}

func (r *ApplicationRepository) InsertOne(ctx context.Context, application *entity.Application) (bson.ObjectID, error) {
	result, err := r.collection().InsertOne(ctx, application)
	if err != nil {
		return bson.ObjectID{}, err
	}

	id := result.InsertedID.(bson.ObjectID)
	application.ID = id
	return id, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id bson.ObjectID, status entity.ApplicationStatus) (int64, error) {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status": status,
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}
