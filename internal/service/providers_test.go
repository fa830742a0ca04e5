package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

func newProviderEnv(t *testing.T) (ProviderService, *recordingBus) {
	t.Helper()
	bus := &recordingBus{}
	return NewProviderService(repository.NewMemoryStore(), bus, testLogger()), bus
}

func TestAddAndRateProvider(t *testing.T) {
	svc, _ := newProviderEnv(t)
	ctx := context.Background()

	p, err := svc.Add(ctx, model.Provider{Name: "Plomería Paco", ServiceCategory: "plumbing"})
	require.NoError(t, err)
	assert.Empty(t, p.Ratings)

	p, err = svc.Rate(ctx, p.ID, model.Rating{
		UserID: "user-resident1", UserName: "Carlos Rivera", Rating: 5, Tags: []string{"puntual"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, p.AverageRating)

	p, err = svc.Rate(ctx, p.ID, model.Rating{
		UserID: "user-resident2", UserName: "Lucía Mora", Rating: 2, Tags: []string{"puntual", "caro"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3.5, p.AverageRating)
	assert.Equal(t, 2, p.TagCounts["puntual"])
	assert.Equal(t, 1, p.TagCounts["caro"])
}

func TestRateValidation(t *testing.T) {
	svc, _ := newProviderEnv(t)
	ctx := context.Background()

	p, err := svc.Add(ctx, model.Provider{Name: "Plomería Paco", ServiceCategory: "plumbing"})
	require.NoError(t, err)

	_, err = svc.Rate(ctx, p.ID, model.Rating{Rating: 0})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Rate(ctx, p.ID, model.Rating{Rating: 6})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestScheduleVisitPublishes(t *testing.T) {
	svc, bus := newProviderEnv(t)
	ctx := context.Background()

	p, err := svc.Add(ctx, model.Provider{Name: "Jardinería Vega", ServiceCategory: "gardening"})
	require.NoError(t, err)

	visit, err := svc.ScheduleVisit(ctx, model.ProviderVisit{
		ProviderID: p.ID, Date: "2025-06-10", Time: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jardinería Vega", visit.ProviderName)
	assert.Contains(t, bus.topics, model.TopicProviderVisitScheduled)

	visits, err := svc.ListVisits(ctx)
	require.NoError(t, err)
	assert.Len(t, visits, 1)
}

func TestWhitelistProvider(t *testing.T) {
	svc, _ := newProviderEnv(t)
	ctx := context.Background()

	p, err := svc.Add(ctx, model.Provider{Name: "Plomería Paco", ServiceCategory: "plumbing"})
	require.NoError(t, err)

	require.NoError(t, svc.SetWhitelisted(ctx, p.ID, true))
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsWhitelisted)
}
