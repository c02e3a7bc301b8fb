package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventsoc/soc-backend/entity"
	"github.com/eventsoc/soc-backend/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type ApplicationService struct {
	applicationRepository *repository.ApplicationRepository
	eventRepository       *repository.EventRepository
}

func NewApplicationService(applicationRepository *repository.ApplicationRepository, eventRepository *repository.EventRepository) *ApplicationService {
	return &ApplicationService{
		applicationRepository: applicationRepository,
		eventRepository:       eventRepository,
	}
}

// Apply files a pending application for the event. At most one application
// per (user, event) pair exists; the unique index backs the check.
func (s *ApplicationService) Apply(ctx context.Context, userID, eventID bson.ObjectID) (*entity.Application, error) {
	if _, err := s.eventRepository.FindOneByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("%w: find event: %w", ErrPersistence, err)
	}

	if _, err := s.applicationRepository.FindOneByUserAndEvent(ctx, userID, eventID); err == nil {
		return nil, ErrAlreadyApplied
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: find application: %w", ErrPersistence, err)
	}

	application := &entity.Application{
		UserID:  userID,
		EventID: eventID,
		Status:  entity.ApplicationPending,
	}

	if _, err := s.applicationRepository.InsertOne(ctx, application); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("%w: insert application: %w", ErrPersistence, err)
	}
	return application, nil
}

func (s *ApplicationService) FindAll(ctx context.Context) ([]*entity.Application, error) {
	applications, err := s.applicationRepository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: find applications: %w", ErrPersistence, err)
	}
	return applications, nil
}

func (s *ApplicationService) FindManyByEventID(ctx context.Context, eventID bson.ObjectID) ([]*entity.Application, error) {
	applications, err := s.applicationRepository.FindManyByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: find applications: %w", ErrPersistence, err)
	}
	return applications, nil
}

func (s *ApplicationService) UpdateStatus(ctx context.Context, id bson.ObjectID, status entity.ApplicationStatus) error {
	if !status.Valid() {
		return ErrInvalidInput
	}

	matched, err := s.applicationRepository.UpdateStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("%w: update application: %w", ErrPersistence, err)
	}
	if matched == 0 {
		return ErrApplicationNotFound
	}
	return nil
}
