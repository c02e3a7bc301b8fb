package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventsoc/soc-backend/entity"
	"github.com/eventsoc/soc-backend/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type EventService struct {
	eventRepository *repository.EventRepository
}

func NewEventService(eventRepository *repository.EventRepository) *EventService {
	return &EventService{
		eventRepository: eventRepository,
	}
}

func (s *EventService) Create(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	event.Pinned = false
	event.Attendees = []entity.Attendee{}

	if _, err := s.eventRepository.InsertOne(ctx, event); err != nil {
		return nil, fmt.Errorf("%w: insert event: %w", ErrPersistence, err)
	}
	return event, nil
}

func (s *EventService) FindOneByID(ctx context.Context, id bson.ObjectID) (*entity.Event, error) {
	event, err := s.eventRepository.FindOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("%w: find event: %w", ErrPersistence, err)
	}
	return event, nil
}

func (s *EventService) FindAll(ctx context.Context) ([]*entity.Event, error) {
	events, err := s.eventRepository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: find events: %w", ErrPersistence, err)
	}
	return events, nil
}

func (s *EventService) FindUpcoming(ctx context.Context) ([]*entity.Event, error) {
	events, err := s.eventRepository.FindManyFromDate(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: find upcoming events: %w", ErrPersistence, err)
	}
	return events, nil
}

func (s *EventService) Update(ctx context.Context, id bson.ObjectID, event entity.Event) (*entity.Event, error) {
	updated, err := s.eventRepository.UpdateOne(ctx, id, event)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("%w: update event: %w", ErrPersistence, err)
	}
	return updated, nil
}

func (s *EventService) Delete(ctx context.Context, id bson.ObjectID) error {
	deleted, err := s.eventRepository.DeleteOne(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: delete event: %w", ErrPersistence, err)
	}
	if deleted == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (s *EventService) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := s.eventRepository.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: delete events: %w", ErrPersistence, err)
	}
	return deleted, nil
}
