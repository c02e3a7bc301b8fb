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

type UserRepository struct {
	mongoClient  *mongo.Client
	databaseName string
}

func NewUserRepository(mongoClient *mongo.Client, databaseName string) *UserRepository {
	return &UserRepository{
		mongoClient:  mongoClient,
		databaseName: databaseName,
	}
}

func (r *UserRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.databaseName).Collection("users")
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	cursor, err := r.collection().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	var users []*entity.User
	err = cursor.All(ctx, &users)
	return users, err
}

func (r *UserRepository) FindOneByID(ctx context.Context, id bson.ObjectID) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindOneByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var user entity.User
	err := r.collection().FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) InsertOne(ctx context.Context, user *entity.User) (bson.ObjectID, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.AttendingEvents == nil {
		user.AttendingEvents = []bson.ObjectID{}
	}

	result, err := r.collection().InsertOne(ctx, user)
	if err != nil {
		return bson.ObjectID{}, err
	}

	id := result.InsertedID.(bson.ObjectID)
	user.ID = id
	return id, nil
}

func (r *UserRepository) UpdateOne(ctx context.Context, id bson.ObjectID, user entity.User) (*entity.User, error) {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"name":       user.Name,
			"email":      user.Email,
			"wallet":     user.Wallet,
			"updated_at": time.Now().UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated entity.User
	err := r.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &updated, nil
}

// UpdateAdmin flips the admin flag on its own, separate from profile
// updates, so a routine profile edit can never touch the privilege.
func (r *UserRepository) UpdateAdmin(ctx context.Context, id bson.ObjectID, admin bool) (int64, error) {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"admin":      admin,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

func (r *UserRepository) DeleteOne(ctx context.Context, id bson.ObjectID) (int64, error) {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *UserRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.collection().DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// AddEvent adds eventID to the user's attending_events set. Re-adding an
// existing membership matches the document but modifies nothing.
func (r *UserRepository) AddEvent(ctx context.Context, userID, eventID bson.ObjectID) (int64, error) {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$addToSet": bson.M{
			"attending_events": eventID,
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

// RemoveEvent removes eventID from the user's attending_events set.
func (r *UserRepository) RemoveEvent(ctx context.Context, userID, eventID bson.ObjectID) (int64, error) {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$pull": bson.M{
			"attending_events": eventID,
		},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}
