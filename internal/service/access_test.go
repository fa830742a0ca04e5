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

func newAccessEnv(t *testing.T, now time.Time) (*accessService, *repository.MemoryStore, *recordingBus, *time.Time) {
	t.Helper()
	store := repository.NewMemoryStore()
	store.PutUser(model.User{
		ID: "user-resident1", Name: "Carlos Rivera",
		Email: "resident@comunidad.com", Role: model.RoleResident, Property: "Casa 42",
	})
	bus := &recordingBus{}
	settings := repository.NewMemorySettings()
	cfg := NewConfigService(settings, testLogger())
	svc := NewAccessService(store, cfg, bus, testLogger()).(*accessService)
	clock := now
	svc.now = func() time.Time { return clock }
	return svc, store, bus, &clock
}

func TestVisitorAuthFlow(t *testing.T) {
	svc, _, bus, _ := newAccessEnv(t, time.Now())
	ctx := context.Background()

	r, err := svc.RequestVisitorAuth(ctx, "Visita Inesperada", "photo-1.jpg", "user-resident1")
	require.NoError(t, err)
	assert.Equal(t, model.AuthRequestPending, r.Status)
	assert.Equal(t, "Casa 42", r.Property)
	assert.Contains(t, bus.topics, model.TopicVisitRequested)

	pending, err := svc.ListPendingAuthForResident(ctx, "user-resident1")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, svc.DecideVisitorAuth(ctx, r.ID, true))
	assert.Contains(t, bus.topics, model.TopicVisitDecided)

	// the decision is one-shot
	err = svc.DecideVisitorAuth(ctx, r.ID, false)
	require.ErrorIs(t, err, repository.ErrConflict)

	pending, err = svc.ListPendingAuthForResident(ctx, "user-resident1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestIssuePassWindows(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC) // a Monday
	svc, _, _, _ := newAccessEnv(t, now)
	ctx := context.Background()

	delivery, err := svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRDelivery, Name: "Paquetería",
	})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), delivery.ValidUntil)

	visitor, err := svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRVisitor, Name: "Tía Rosa",
	})
	require.NoError(t, err)
	assert.Equal(t, now.Add(8*time.Hour), visitor.ValidUntil)

	service, err := svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRService, Name: "Limpieza Sra. Paty",
		Days: []int{1, 3, 5}, TimeFrom: "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 30), service.ValidUntil)
	// TimeTo defaults to TimeFrom plus the configured service hours
	assert.Equal(t, "17:00", service.TimeTo)
}

func TestIssueServicePassValidation(t *testing.T) {
	svc, _, _, _ := newAccessEnv(t, time.Now())
	ctx := context.Background()

	_, err := svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRService, Name: "Limpieza", TimeFrom: "09:00",
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRService, Name: "Limpieza", Days: []int{1},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: "drone", Name: "Dron",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestScanVisitorPassBurns(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	svc, _, _, _ := newAccessEnv(t, now)
	ctx := context.Background()

	pass, err := svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRVisitor, Name: "Tía Rosa",
	})
	require.NoError(t, err)

	res, err := svc.Scan(ctx, pass.ID, "Guardia Nocturno")
	require.NoError(t, err)
	assert.Equal(t, model.AccessGranted, res.Result)

	res, err = svc.Scan(ctx, pass.ID, "Guardia Nocturno")
	require.NoError(t, err)
	assert.Equal(t, model.AccessDenied, res.Result)
	assert.Equal(t, "pass already used", res.Reason)

	// both scans hit the log, newest first
	log, err := svc.AccessLog(ctx)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, model.AccessDenied, log[0].Result)
	assert.Equal(t, model.AccessGranted, log[1].Result)
	assert.Equal(t, "Guardia Nocturno", log[0].GuardName)
}

func TestScanExpiredPass(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	svc, _, _, clock := newAccessEnv(t, now)
	ctx := context.Background()

	pass, err := svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRDelivery, Name: "Paquetería",
	})
	require.NoError(t, err)

	*clock = now.Add(2 * time.Hour)
	res, err := svc.Scan(ctx, pass.ID, "Guardia")
	require.NoError(t, err)
	assert.Equal(t, model.AccessDenied, res.Result)
	assert.Equal(t, "pass expired", res.Reason)
}

func TestScanUnknownPass(t *testing.T) {
	svc, _, _, _ := newAccessEnv(t, time.Now())

	res, err := svc.Scan(context.Background(), "qr-nope", "Guardia")
	require.NoError(t, err)
	assert.Equal(t, model.AccessDenied, res.Result)
	assert.Equal(t, "unknown pass", res.Reason)
}

func TestScanServicePassSchedule(t *testing.T) {
	monday := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	svc, _, _, clock := newAccessEnv(t, monday)
	ctx := context.Background()

	pass, err := svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRService, Name: "Limpieza",
		Days: []int{1, 3}, TimeFrom: "09:00", TimeTo: "13:00",
	})
	require.NoError(t, err)

	// monday 10:00, inside the window
	res, err := svc.Scan(ctx, pass.ID, "Guardia")
	require.NoError(t, err)
	assert.Equal(t, model.AccessGranted, res.Result)

	// service passes are reusable
	res, err = svc.Scan(ctx, pass.ID, "Guardia")
	require.NoError(t, err)
	assert.Equal(t, model.AccessGranted, res.Result)

	// tuesday is not in the weekday set
	*clock = monday.AddDate(0, 0, 1)
	res, err = svc.Scan(ctx, pass.ID, "Guardia")
	require.NoError(t, err)
	assert.Equal(t, "not valid on this weekday", res.Reason)

	// wednesday after hours
	*clock = time.Date(2025, 6, 4, 14, 0, 0, 0, time.UTC)
	res, err = svc.Scan(ctx, pass.ID, "Guardia")
	require.NoError(t, err)
	assert.Equal(t, "outside daily time window", res.Reason)
}

func TestListActivePasses(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	svc, _, _, clock := newAccessEnv(t, now)
	ctx := context.Background()

	burned, err := svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRVisitor, Name: "Tía Rosa",
	})
	require.NoError(t, err)

	kept, err := svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRVisitor, Name: "Primo Luis",
	})
	require.NoError(t, err)

	_, err = svc.Scan(ctx, burned.ID, "Guardia")
	require.NoError(t, err)
	*clock = now.Add(time.Hour)

	active, err := svc.ListActivePasses(ctx, "user-resident1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, kept.ID, active[0].ID)
}

func TestRevokePass(t *testing.T) {
	monday := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	svc, _, _, _ := newAccessEnv(t, monday)
	ctx := context.Background()

	pass, err := svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRVisitor, Name: "Tía Carmen",
	})
	require.NoError(t, err)

	// only the issuing resident can revoke
	err = svc.RevokePass(ctx, pass.ID, "user-other")
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, svc.RevokePass(ctx, pass.ID, "user-resident1"))

	res, err := svc.Scan(ctx, pass.ID, "Guardia Nocturno")
	require.NoError(t, err)
	assert.Equal(t, model.AccessDenied, res.Result)
	assert.Equal(t, "pass revoked", res.Reason)

	// a revoked pass cannot be revoked again
	err = svc.RevokePass(ctx, pass.ID, "user-resident1")
	require.ErrorIs(t, err, repository.ErrConflict)

	active, err := svc.ListActivePasses(ctx, "user-resident1")
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestVisitorPassHoursCappedByMaxDays(t *testing.T) {
	monday := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	svc, _, _, _ := newAccessEnv(t, monday)
	ctx := context.Background()

	// default window when no duration is requested
	pass, err := svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRVisitor, Name: "Visita Corta",
	})
	require.NoError(t, err)
	assert.Equal(t, monday.Add(8*time.Hour), pass.ValidUntil)

	// a multi-day stay inside the cap is honored
	pass, err = svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRVisitor, Name: "Fin de Semana", Hours: 48,
	})
	require.NoError(t, err)
	assert.Equal(t, monday.Add(48*time.Hour), pass.ValidUntil)

	// requests beyond the configured maximum clamp to 7 days
	pass, err = svc.IssuePass(ctx, IssuePassRequest{
		ResidentID: "user-resident1", Kind: model.QRVisitor, Name: "Visita Larga", Hours: 24 * 30,
	})
	require.NoError(t, err)
	assert.Equal(t, monday.Add(7*24*time.Hour), pass.ValidUntil)
}
