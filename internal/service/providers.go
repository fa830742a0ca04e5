package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

// ProviderService manages the service-provider marketplace: the whitelist,
// resident ratings and scheduled community visits.
type ProviderService interface {
	List(ctx context.Context) ([]model.Provider, error)
	Add(ctx context.Context, p model.Provider) (model.Provider, error)
	SetWhitelisted(ctx context.Context, providerID string, whitelisted bool) error
	Rate(ctx context.Context, providerID string, rating model.Rating) (model.Provider, error)
	ScheduleVisit(ctx context.Context, visit model.ProviderVisit) (model.ProviderVisit, error)
	ListVisits(ctx context.Context) ([]model.ProviderVisit, error)
}

type providerService struct {
	store  repository.ProviderStore
	bus    repository.MessageBus
	logger *slog.Logger
}

func NewProviderService(store repository.ProviderStore, bus repository.MessageBus, logger *slog.Logger) ProviderService {
	return &providerService{store: store, bus: bus, logger: logger}
}

func (s *providerService) List(ctx context.Context) ([]model.Provider, error) {
	return s.store.ListProviders(ctx)
}

func (s *providerService) Add(ctx context.Context, p model.Provider) (model.Provider, error) {
	if p.Name == "" || p.ServiceCategory == "" {
		return model.Provider{}, fmt.Errorf("%w: provider needs a name and category", ErrInvalidInput)
	}
	p.ID = "prov-" + uuid.NewString()
	p.Ratings = nil
	p.AverageRating = 0
	if err := s.store.SaveProvider(ctx, p); err != nil {
		return model.Provider{}, err
	}
	s.logger.Info("provider added", "provider_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *providerService) SetWhitelisted(ctx context.Context, providerID string, whitelisted bool) error {
	p, err := s.store.GetProvider(ctx, providerID)
	if err != nil {
		return err
	}
	p.IsWhitelisted = whitelisted
	return s.store.SaveProvider(ctx, p)
}

// Rate appends a rating, recomputes the average from scratch and bumps the
// per-tag counters.
func (s *providerService) Rate(ctx context.Context, providerID string, rating model.Rating) (model.Provider, error) {
	if rating.Rating < 1 || rating.Rating > 5 {
		return model.Provider{}, fmt.Errorf("%w: rating must be 1..5", ErrInvalidInput)
	}
	p, err := s.store.GetProvider(ctx, providerID)
	if err != nil {
		return model.Provider{}, err
	}

	p.Ratings = append(p.Ratings, rating)
	p.RecomputeAverage()
	if len(rating.Tags) > 0 {
		if p.TagCounts == nil {
			p.TagCounts = make(map[string]int)
		}
		for _, tag := range rating.Tags {
			p.TagCounts[tag]++
		}
	}

	if err := s.store.SaveProvider(ctx, p); err != nil {
		return model.Provider{}, err
	}
	s.logger.Info("provider rated",
		"provider_id", providerID, "rating", rating.Rating, "average", p.AverageRating)
	return p, nil
}

func (s *providerService) ScheduleVisit(ctx context.Context, visit model.ProviderVisit) (model.ProviderVisit, error) {
	p, err := s.store.GetProvider(ctx, visit.ProviderID)
	if err != nil {
		return model.ProviderVisit{}, err
	}
	visit.ID = "pv-" + uuid.NewString()
	visit.ProviderName = p.Name
	if err := s.store.CreateProviderVisit(ctx, visit); err != nil {
		return model.ProviderVisit{}, err
	}

	event, err := json.Marshal(model.ProviderVisitScheduledEvent{
		ProviderName: visit.ProviderName,
		Date:         visit.Date,
		Time:         visit.Time,
	})
	if err == nil {
		if err := s.bus.Publish(model.TopicProviderVisitScheduled, event); err != nil {
			s.logger.Error("publish event", "topic", model.TopicProviderVisitScheduled, "error", err)
		}
	}

	s.logger.Info("provider visit scheduled",
		"provider_id", visit.ProviderID, "date", visit.Date, "time", visit.Time)
	return visit, nil
}

func (s *providerService) ListVisits(ctx context.Context) ([]model.ProviderVisit, error) {
	return s.store.ListProviderVisits(ctx)
}
