package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventsoc/soc-backend/entity"
	"github.com/eventsoc/soc-backend/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"
)

type UserService struct {
	userRepository        *repository.UserRepository
	eventRepository       *repository.EventRepository
	applicationRepository *repository.ApplicationRepository
}

func NewUserService(userRepository *repository.UserRepository, eventRepository *repository.EventRepository, applicationRepository *repository.ApplicationRepository) *UserService {
	return &UserService{
		userRepository:        userRepository,
		eventRepository:       eventRepository,
		applicationRepository: applicationRepository,
	}
}

// Register creates a new account with a hashed password. Email uniqueness
// is ultimately enforced by the index; the lookup just gives a precise
// error on the common path.
func (s *UserService) Register(ctx context.Context, user *entity.User) (*entity.User, error) {
	if _, err := s.userRepository.FindOneByEmail(ctx, user.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: find user by email: %w", ErrPersistence, err)
	}

	hashed, err := HashPassword(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed
	user.Admin = false
	user.AttendingEvents = []bson.ObjectID{}

	if _, err := s.userRepository.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: insert user: %w", ErrPersistence, err)
	}
	return user, nil
}

// Profile loads the user together with their attended events and
// applications. The user and application reads are independent and run
// concurrently; the event batch needs the user's membership list.
func (s *UserService) Profile(ctx context.Context, id bson.ObjectID) (*entity.User, []*entity.Event, []*entity.Application, error) {
	var (
		user         *entity.User
		applications []*entity.Application
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.userRepository.FindOneByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		applications, err = s.applicationRepository.FindManyByUserID(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil, ErrUserNotFound
		}
		return nil, nil, nil, fmt.Errorf("%w: load profile: %w", ErrPersistence, err)
	}

	var events []*entity.Event
	if len(user.AttendingEvents) > 0 {
		var err error
		events, err = s.eventRepository.FindManyByIDs(ctx, user.AttendingEvents)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: load attended events: %w", ErrPersistence, err)
		}
	}

	return user, events, applications, nil
}

func (s *UserService) FindAll(ctx context.Context) ([]*entity.User, error) {
	users, err := s.userRepository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: find users: %w", ErrPersistence, err)
	}
	return users, nil
}

func (s *UserService) FindOneByID(ctx context.Context, id bson.ObjectID) (*entity.User, error) {
	user, err := s.userRepository.FindOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find user: %w", ErrPersistence, err)
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id bson.ObjectID, user entity.User) (*entity.User, error) {
	updated, err := s.userRepository.UpdateOne(ctx, id, user)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: update user: %w", ErrPersistence, err)
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id bson.ObjectID) error {
	deleted, err := s.userRepository.DeleteOne(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: delete user: %w", ErrPersistence, err)
	}
	if deleted == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := s.userRepository.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: delete users: %w", ErrPersistence, err)
	}
	return deleted, nil
}
