package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

func newLicenseEnv(t *testing.T, now time.Time) (*licenseService, *time.Time) {
	t.Helper()
	clock := now
	svc := NewLicenseService(repository.NewMemorySettings(), testLogger()).(*licenseService)
	svc.now = func() time.Time { return clock }
	return svc, &clock
}

func TestApplyUnknownKey(t *testing.T) {
	svc, _ := newLicenseEnv(t, time.Now())
	_, err := svc.Apply(context.Background(), "HAV-FAKE-KEY")
	require.ErrorIs(t, err, ErrInvalidLicenseKey)
}

func TestApplyMonthlyKey(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	svc, _ := newLicenseEnv(t, now)
	ctx := context.Background()

	info, err := svc.Apply(ctx, "HAV-MONTH-DEMO-ADMIN")
	require.NoError(t, err)
	assert.Equal(t, model.LicenseValid, info.Status)

	// expiry pins to the end of the final calendar day
	want := time.Date(2025, 7, 1, 23, 59, 59, 999_000_000, time.UTC)
	require.NotNil(t, info.ExpiresAt)
	assert.Equal(t, want, *info.ExpiresAt)
}

func TestStatusUnlicensedWhenMissing(t *testing.T) {
	svc, _ := newLicenseEnv(t, time.Now())

	info, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.LicenseUnlicensed, info.Status)
	assert.Equal(t, 0, info.DaysLeft)
}

func TestStatusCorruptedBlobIsUnlicensed(t *testing.T) {
	settings := repository.NewMemorySettings()
	svc := NewLicenseService(settings, testLogger())
	ctx := context.Background()

	require.NoError(t, settings.Set(ctx, "license", []byte("{not json"), 0))

	info, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.LicenseUnlicensed, info.Status)
}

func TestStatusTransitionsOverTime(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc, clock := newLicenseEnv(t, start)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "HAV-YEAR-DEMO-ADMIN")
	require.NoError(t, err)

	info, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.LicenseValid, info.Status)
	assert.Equal(t, 366, info.DaysLeft)

	// expiry is 2026-06-01 23:59:59.999; ten days before is expiring soon
	*clock = time.Date(2026, 5, 23, 10, 0, 0, 0, time.UTC)
	info, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.LicenseExpiringSoon, info.Status)

	// one second past expiry the license is expired with zero days left
	*clock = time.Date(2026, 6, 2, 0, 0, 1, 0, time.UTC)
	info, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.LicenseExpired, info.Status)
	assert.Equal(t, 0, info.DaysLeft)
}
