package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

func TestConfigDefaultsWhenMissing(t *testing.T) {
	svc := NewConfigService(repository.NewMemorySettings(), testLogger())

	cfg, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultHabitatConfig(), cfg)
}

func TestConfigUpdateRoundTrip(t *testing.T) {
	svc := NewConfigService(repository.NewMemorySettings(), testLogger())
	ctx := context.Background()

	want := model.DefaultHabitatConfig()
	want.PackageManagement = "direct"
	want.AccessControl.DeliveryHours = 3

	require.NoError(t, svc.Update(ctx, want))

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConfigRejectsBadPackageMode(t *testing.T) {
	svc := NewConfigService(repository.NewMemorySettings(), testLogger())

	cfg := model.DefaultHabitatConfig()
	cfg.PackageManagement = "courier"
	err := svc.Update(context.Background(), cfg)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestConfigCorruptedBlobFallsBack(t *testing.T) {
	settings := repository.NewMemorySettings()
	svc := NewConfigService(settings, testLogger())
	ctx := context.Background()

	require.NoError(t, settings.Set(ctx, "habitat_config", []byte("{broken"), 0))

	cfg, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultHabitatConfig(), cfg)
}
