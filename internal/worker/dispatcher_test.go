package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

func newDispatcherEnv(t *testing.T) (*Dispatcher, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	store.PutUser(model.User{ID: "user-admin1", Name: "Admin Ana", Role: model.RoleAdmin})
	store.PutUser(model.User{
		ID: "user-resident1", Name: "Carlos Rivera", Role: model.RoleResident,
		NotificationSettings: &model.NotificationSettings{Payments: true, Visits: true, Announcements: true},
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDispatcher(store, logger), store
}

func encode(t *testing.T, ev any) []byte {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return data
}

func notificationsFor(t *testing.T, store *repository.MemoryStore, u model.User) []model.Notification {
	t.Helper()
	out, err := store.ListNotificationsFor(context.Background(), u)
	require.NoError(t, err)
	return out
}

func TestHandlePaymentSubmittedNotifiesAdmins(t *testing.T) {
	d, store := newDispatcherEnv(t)

	err := d.HandleEvent(context.Background(), model.TopicPaymentSubmitted, encode(t, model.PaymentSubmittedEvent{
		PaymentID: "pay-1", ResidentName: "Carlos Rivera", Amount: 1500, At: time.Now(),
	}))
	require.NoError(t, err)

	admin := model.User{ID: "user-admin1", Role: model.RoleAdmin}
	got := notificationsFor(t, store, admin)
	require.Len(t, got, 1)
	assert.Equal(t, "Nuevo Pago Registrado", got[0].Title)
	assert.Contains(t, got[0].Description, "Carlos Rivera")
	assert.Contains(t, got[0].Description, "1500.00")
	assert.False(t, got[0].Read)

	// the resident is not addressed by an admin-role notification
	resident := model.User{ID: "user-resident1", Role: model.RoleResident}
	assert.Empty(t, notificationsFor(t, store, resident))
}

func TestHandleBookingDecided(t *testing.T) {
	d, store := newDispatcherEnv(t)
	ctx := context.Background()
	resident := model.User{ID: "user-resident1", Role: model.RoleResident}

	err := d.HandleEvent(ctx, model.TopicBookingDecided, encode(t, model.BookingDecidedEvent{
		BookingID: "book-1", AmenityName: "Salón de Eventos",
		ResidentID: "user-resident1", Status: model.BookingConfirmed,
	}))
	require.NoError(t, err)

	err = d.HandleEvent(ctx, model.TopicBookingDecided, encode(t, model.BookingDecidedEvent{
		BookingID: "book-2", AmenityName: "Cancha de Pádel",
		ResidentID: "user-resident1", Status: model.BookingCancelled,
	}))
	require.NoError(t, err)

	got := notificationsFor(t, store, resident)
	require.Len(t, got, 2)
	titles := []string{got[0].Title, got[1].Title}
	assert.Contains(t, titles, "Reserva Confirmada")
	assert.Contains(t, titles, "Reserva Cancelada")
}

func TestHandleVisitRequestedPushFiltering(t *testing.T) {
	d, store := newDispatcherEnv(t)
	ctx := context.Background()
	resident := model.User{ID: "user-resident1", Role: model.RoleResident}

	ev := encode(t, model.VisitRequestedEvent{
		RequestID: "auth-1", VisitorName: "Visita Inesperada", ResidentID: "user-resident1",
	})
	require.NoError(t, d.HandleEvent(ctx, model.TopicVisitRequested, ev))

	got := notificationsFor(t, store, resident)
	require.Len(t, got, 1)
	assert.True(t, got[0].Push)

	// muting visit pushes downgrades delivery but still stores the notification
	require.NoError(t, store.UpdateNotificationSettings(ctx, "user-resident1",
		model.NotificationSettings{Payments: true, Visits: false, Announcements: true}))
	require.NoError(t, d.HandleEvent(ctx, model.TopicVisitRequested, ev))

	got = notificationsFor(t, store, resident)
	require.Len(t, got, 2)
	pushes := 0
	for _, n := range got {
		if n.Push {
			pushes++
		}
	}
	assert.Equal(t, 1, pushes)
}

func TestHandleVisitDecidedNotifiesGuards(t *testing.T) {
	d, store := newDispatcherEnv(t)

	err := d.HandleEvent(context.Background(), model.TopicVisitDecided, encode(t, model.VisitDecidedEvent{
		RequestID: "auth-1", VisitorName: "Visita", Property: "Casa 42",
		Status: model.AuthRequestApproved,
	}))
	require.NoError(t, err)

	guard := model.User{ID: "user-guard1", Role: model.RoleGuard}
	got := notificationsFor(t, store, guard)
	require.Len(t, got, 1)
	assert.Equal(t, "Acceso Aprobado", got[0].Title)
	assert.Contains(t, got[0].Description, "Casa 42")
}

func TestHandleUnknownTopicIsDropped(t *testing.T) {
	d, _ := newDispatcherEnv(t)
	err := d.HandleEvent(context.Background(), "payment.refunded", []byte(`{}`))
	require.NoError(t, err)
}

func TestHandleMalformedPayload(t *testing.T) {
	d, _ := newDispatcherEnv(t)
	err := d.HandleEvent(context.Background(), model.TopicPaymentSubmitted, []byte("not json"))
	require.Error(t, err)
}

func TestTopicsCoverAllEvents(t *testing.T) {
	assert.Len(t, Topics(), 8)
}
