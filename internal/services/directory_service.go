package services

import (
	"context"
	"errors"
	"fmt"

	"kamai/internal/amqp"
	"kamai/internal/core"
	"kamai/internal/directory"
	applog "kamai/internal/log"
	"kamai/internal/metrics"
)

// EventPublisher is the part of the AMQP client the service needs.
type EventPublisher interface {
	PublishDirectoryEvent(ctx context.Context, event *amqp.DirectoryEvent) error
	Close() error
}

// DirectoryService wraps a directory store: it counts every call and, after
// a successful change, announces it to the mirror worker. A failed publish
// is logged and never fails the change, the worker's periodic resync
// catches up.
type DirectoryService struct {
	store     directory.Store
	publisher EventPublisher // nil disables events
	metrics   *metrics.Metrics
	logger    *applog.Logger
}

func NewDirectoryService(store directory.Store, publisher EventPublisher, m *metrics.Metrics, logger *applog.Logger) *DirectoryService {
	return &DirectoryService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithComponent(applog.ComponentDirectory),
	}
}

func (s *DirectoryService) Insert(ctx context.Context, name, followerLabel, profileLink string) (core.FeaturedCreator, error) {
	c, err := s.store.Insert(ctx, name, followerLabel, profileLink)
	s.count(applog.OpInsert, err)
	if err != nil {
		return core.FeaturedCreator{}, fmt.Errorf("add featured creator: %w", err)
	}
	s.logger.InfoContext(ctx, "Featured creator added",
		applog.NewFields().WithCreator(c.ID, c.Name).WithOperation(applog.OpInsert).ToSlice()...)
	s.publish(ctx, amqp.EventCreatorListed, c.ID)
	return c, nil
}

func (s *DirectoryService) ListActive(ctx context.Context) ([]core.FeaturedCreator, error) {
	list, err := s.store.ListActive(ctx)
	s.count(applog.OpList, err)
	if err != nil {
		return nil, fmt.Errorf("list featured creators: %w", err)
	}
	return list, nil
}

func (s *DirectoryService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	s.count(applog.OpDelete, err)
	if err != nil {
		return fmt.Errorf("remove featured creator %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Featured creator removed",
		applog.NewFields().WithCreator(id, "").WithOperation(applog.OpDelete).ToSlice()...)
	s.publish(ctx, amqp.EventCreatorRemoved, id)
	return nil
}

// Ping forwards to the store when it can be pinged.
func (s *DirectoryService) Ping(ctx context.Context) error {
	return directory.Ping(ctx, s.store)
}

func (s *DirectoryService) publish(ctx context.Context, t amqp.EventType, id int64) {
	if s.publisher == nil {
		return
	}
	event := amqp.NewDirectoryEvent(t, id)
	err := s.publisher.PublishDirectoryEvent(ctx, event)
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(string(t), metrics.Result(err)).Inc()
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Directory event not published",
			applog.NewFields().WithCreator(id, "").WithError(err).ToSlice()...)
	}
}

func (s *DirectoryService) count(op string, err error) {
	if s.metrics == nil {
		return
	}
	result := metrics.Result(err)
	if errors.Is(err, directory.ErrNotFound) {
		result = "not_found"
	}
	s.metrics.DirectoryOps.WithLabelValues(op, result).Inc()
}

// Close closes the store and the publisher.
func (s *DirectoryService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
