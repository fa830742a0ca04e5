package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/oracle"
	"github.com/Xhuk/Habitat-prime/internal/repository"
	"github.com/Xhuk/Habitat-prime/internal/service"
)

type testAPI struct {
	mux     *http.ServeMux
	auth    service.AuthService
	license service.LicenseService
}

// noopBus drops every event; handler tests assert on HTTP behavior only.
type noopBus struct{}

func (noopBus) Publish(string, []byte) error { return nil }

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := repository.NewMemoryStore()
	require.NoError(t, repository.Seed(context.Background(), store, time.Now()))

	settings := repository.NewMemorySettings()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := noopBus{}
	orc := &oracle.StaticOracle{Amount: 1500}
	configSvc := service.NewConfigService(settings, logger)

	s := Services{
		Auth:          service.NewAuthService(store, settings, logger),
		Payments:      service.NewPaymentService(store, settings, bus, orc, logger),
		Statements:    service.NewStatementService(store, orc, logger),
		Bookings:      service.NewBookingService(store, settings, bus, logger),
		License:       service.NewLicenseService(settings, logger),
		Config:        configSvc,
		Access:        service.NewAccessService(store, configSvc, bus, logger),
		Providers:     service.NewProviderService(store, bus, logger),
		Notifications: service.NewNotificationService(store),
		Community:     service.NewCommunityService(store, logger),
		Users:         store,
	}

	mux := http.NewServeMux()
	NewHandler(s).Register(mux)
	return &testAPI{mux: mux, auth: s.Auth, license: s.License}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, email, password string) string {
	t.Helper()
	sess, err := a.auth.Login(context.Background(), email, password)
	require.NoError(t, err)
	return sess.Token
}

func (a *testAPI) activate(t *testing.T) {
	t.Helper()
	_, err := a.license.Apply(context.Background(), "HAV-YEAR-DEMO-ADMIN")
	require.NoError(t, err)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "admin@habitat.app", "password": "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var sess service.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, model.RoleAdmin, sess.User.Role)

	rec = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "admin@habitat.app", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardLoginEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/auth/guard-login", "", map[string]string{"code": "123456"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/auth/guard-login", "", map[string]string{"code": "999999"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)
	api.activate(t)

	rec := api.do(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/me", "bad-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleEnforcement(t *testing.T) {
	api := newTestAPI(t)
	api.activate(t)
	resident := api.login(t, "resident@comunidad.com", "password")

	rec := api.do(t, http.MethodGet, "/payments/pending", resident, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := api.login(t, "admin@habitat.app", "admin")
	rec = api.do(t, http.MethodGet, "/payments/pending", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLicenseGateBlocksUntilActivated(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin@habitat.app", "admin")

	// gated routes answer 403 while unlicensed
	rec := api.do(t, http.MethodGet, "/payments/pending", admin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// the license routes themselves stay open
	rec = api.do(t, http.MethodGet, "/license", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/license", admin, map[string]string{"key": "HAV-YEAR-DEMO-ADMIN"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/payments/pending", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResidentFlowsOpenWithoutLicense(t *testing.T) {
	api := newTestAPI(t)
	resident := api.login(t, "resident@comunidad.com", "password")

	// only admin access is license-gated; residents keep working
	rec := api.do(t, http.MethodPost, "/payments", resident, map[string]any{
		"amount": 900.0, "method": "transfer", "receipt_ref": "receipt-11.jpg",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodGet, "/me/payments", resident, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLicenseRejectsUnknownKey(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin@habitat.app", "admin")

	rec := api.do(t, http.MethodPost, "/license", admin, map[string]string{"key": "HAV-FAKE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitPaymentEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.activate(t)
	resident := api.login(t, "resident@comunidad.com", "password")

	rec := api.do(t, http.MethodPost, "/payments", resident, map[string]any{
		"amount": 1500.0, "method": "transfer", "receipt_ref": "receipt-9.jpg",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var p model.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, model.PaymentPending, p.Status)
	assert.Equal(t, "Casa 42", p.Property)

	rec = api.do(t, http.MethodPost, "/payments", resident, map[string]any{
		"amount": -5.0, "method": "transfer",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingConflictMapsTo409(t *testing.T) {
	api := newTestAPI(t)
	api.activate(t)
	resident := api.login(t, "resident@comunidad.com", "password")

	body := map[string]string{
		"amenity_id": "amen-2", "date": "2030-01-05", "start_time": "10:00",
	}
	rec := api.do(t, http.MethodPost, "/bookings", resident, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPost, "/bookings", resident, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelBookingLifecycle(t *testing.T) {
	api := newTestAPI(t)
	api.activate(t)
	resident := api.login(t, "resident@comunidad.com", "password")

	// book-1 in the seed data belongs to the demo resident
	rec := api.do(t, http.MethodPost, "/bookings/book-1/cancel", resident, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// cancelling twice is an illegal transition
	rec = api.do(t, http.MethodPost, "/bookings/book-1/cancel", resident, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUnknownPaymentMapsTo404(t *testing.T) {
	api := newTestAPI(t)
	api.activate(t)
	admin := api.login(t, "admin@habitat.app", "admin")

	rec := api.do(t, http.MethodPost, "/payments/pay-nope/approve", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
