package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

// Dispatcher turns domain events into stored notifications. It is transport
// agnostic: the NATS, RabbitMQ and in-process runners all feed HandleEvent.
type Dispatcher struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewDispatcher(store repository.Store, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{store: store, logger: logger, now: time.Now}
}

// Topics lists every routing key the dispatcher understands.
func Topics() []string {
	return []string{
		model.TopicPaymentSubmitted,
		model.TopicPaymentApproved,
		model.TopicPaymentReconciled,
		model.TopicBookingCreated,
		model.TopicBookingDecided,
		model.TopicVisitRequested,
		model.TopicVisitDecided,
		model.TopicProviderVisitScheduled,
	}
}

// HandleEvent decodes the payload for its topic and persists the resulting
// notification. Unknown topics are dropped with a warning; they are not an
// error worth requeueing.
func (d *Dispatcher) HandleEvent(ctx context.Context, topic string, data []byte) error {
	switch topic {
	case model.TopicPaymentSubmitted:
		ev, err := model.DecodeEvent[model.PaymentSubmittedEvent](data)
		if err != nil {
			return err
		}
		return d.notify(ctx, model.Notification{
			Recipient:   model.ToRole(model.RoleAdmin),
			Title:       "Nuevo Pago Registrado",
			Description: fmt.Sprintf("%s ha registrado un pago de $%.2f.", ev.ResidentName, ev.Amount),
			Kind:        model.KindPayment,
		})

	case model.TopicPaymentApproved:
		ev, err := model.DecodeEvent[model.PaymentApprovedEvent](data)
		if err != nil {
			return err
		}
		return d.notifyResident(ctx, ev.ResidentID, model.Notification{
			Title:       "Pago Aprobado",
			Description: fmt.Sprintf("Tu pago de $%.2f ha sido aprobado.", ev.Amount),
			Kind:        model.KindPayment,
		})

	case model.TopicPaymentReconciled:
		ev, err := model.DecodeEvent[model.PaymentReconciledEvent](data)
		if err != nil {
			return err
		}
		return d.notifyResident(ctx, ev.ResidentID, model.Notification{
			Title:       "Pago Conciliado",
			Description: "Tu pago ha sido conciliado con el estado de cuenta.",
			Kind:        model.KindPayment,
		})

	case model.TopicBookingCreated:
		ev, err := model.DecodeEvent[model.BookingCreatedEvent](data)
		if err != nil {
			return err
		}
		return d.notify(ctx, model.Notification{
			Recipient:   model.ToRole(model.RoleAdmin),
			Title:       "Nueva Reserva de Amenidad",
			Description: fmt.Sprintf("%s ha solicitado reservar %s.", ev.ResidentName, ev.AmenityName),
			Kind:        model.KindBooking,
		})

	case model.TopicBookingDecided:
		ev, err := model.DecodeEvent[model.BookingDecidedEvent](data)
		if err != nil {
			return err
		}
		title, desc := "Reserva Cancelada", fmt.Sprintf("Tu reserva de %s ha sido cancelada.", ev.AmenityName)
		if ev.Status == model.BookingConfirmed {
			title, desc = "Reserva Confirmada", fmt.Sprintf("Tu reserva de %s ha sido confirmada.", ev.AmenityName)
		}
		return d.notifyResident(ctx, ev.ResidentID, model.Notification{
			Title:       title,
			Description: desc,
			Kind:        model.KindBooking,
		})

	case model.TopicVisitRequested:
		ev, err := model.DecodeEvent[model.VisitRequestedEvent](data)
		if err != nil {
			return err
		}
		return d.notifyResident(ctx, ev.ResidentID, model.Notification{
			Title:       "Visita no anunciada",
			Description: fmt.Sprintf("%s se encuentra en caseta. ¿Autorizas el acceso?", ev.VisitorName),
			Kind:        model.KindVisit,
			Push:        true,
		})

	case model.TopicVisitDecided:
		ev, err := model.DecodeEvent[model.VisitDecidedEvent](data)
		if err != nil {
			return err
		}
		title, verdict := "Acceso Rechazado", "rechazado"
		if ev.Status == model.AuthRequestApproved {
			title, verdict = "Acceso Aprobado", "aprobado"
		}
		return d.notify(ctx, model.Notification{
			Recipient:   model.ToRole(model.RoleGuard),
			Title:       title,
			Description: fmt.Sprintf("El acceso para %s a la propiedad %s fue %s.", ev.VisitorName, ev.Property, verdict),
			Kind:        model.KindVisit,
		})

	case model.TopicProviderVisitScheduled:
		ev, err := model.DecodeEvent[model.ProviderVisitScheduledEvent](data)
		if err != nil {
			return err
		}
		return d.notify(ctx, model.Notification{
			Recipient:   model.ToRole(model.RoleAdmin),
			Title:       "Acceso de proveedor",
			Description: fmt.Sprintf("%s visitará el %s a las %s.", ev.ProviderName, ev.Date, ev.Time),
			Kind:        model.KindProvider,
		})
	}

	d.logger.Warn("dropping event on unknown topic", "topic", topic)
	return nil
}

// notifyResident addresses a single resident, downgrading push delivery when
// the resident has muted that notification kind. The notification itself is
// always stored.
func (d *Dispatcher) notifyResident(ctx context.Context, residentID string, n model.Notification) error {
	n.Recipient = model.ToUser(residentID)
	if n.Push {
		u, err := d.store.GetUser(ctx, residentID)
		if err != nil {
			return fmt.Errorf("lookup recipient: %w", err)
		}
		n.Push = pushAllowed(u, n.Kind)
	}
	return d.notify(ctx, n)
}

func (d *Dispatcher) notify(ctx context.Context, n model.Notification) error {
	n.ID = "notif-" + uuid.NewString()
	n.CreatedAt = d.now()
	if err := d.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	d.logger.Info("notification created",
		"notification_id", n.ID, "kind", n.Kind, "recipient_kind", n.Recipient.Kind, "push", n.Push)
	return nil
}

func pushAllowed(u model.User, kind model.NotificationKind) bool {
	s := u.NotificationSettings
	if s == nil {
		return true
	}
	switch kind {
	case model.KindPayment:
		return s.Payments
	case model.KindVisit:
		return s.Visits
	case model.KindAnnouncement:
		return s.Announcements
	default:
		return true
	}
}
