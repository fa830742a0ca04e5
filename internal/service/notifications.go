package service

import (
	"context"
	"fmt"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

// NotificationService is the read side of the notification pipeline, plus
// the derived admin todo list.
type NotificationService interface {
	List(ctx context.Context, u model.User) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, u model.User) error
	Todos(ctx context.Context) ([]model.TodoItem, error)
}

type notificationService struct {
	store repository.Store
}

func NewNotificationService(store repository.Store) NotificationService {
	return &notificationService{store: store}
}

func (s *notificationService) List(ctx context.Context, u model.User) ([]model.Notification, error) {
	return s.store.ListNotificationsFor(ctx, u)
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	return s.store.MarkNotificationRead(ctx, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, u model.User) error {
	return s.store.MarkAllNotificationsRead(ctx, u)
}

// Todos derives the admin work queue from current state; nothing is stored.
func (s *notificationService) Todos(ctx context.Context) ([]model.TodoItem, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	pendingPayments := 0
	for _, p := range payments {
		if p.Status == model.PaymentPending {
			pendingPayments++
		}
	}

	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	pendingBookings := 0
	for _, b := range bookings {
		if b.Status == model.BookingPending || b.Status == model.BookingPendingApproval {
			pendingBookings++
		}
	}

	var todos []model.TodoItem
	if pendingPayments > 0 {
		todos = append(todos, model.TodoItem{
			ID:          "todo-payments",
			Title:       "Pagos por conciliar",
			Description: fmt.Sprintf("Tienes %d pago(s) esperando revisión.", pendingPayments),
			Type:        "payment",
		})
	}
	if pendingBookings > 0 {
		todos = append(todos, model.TodoItem{
			ID:          "todo-bookings",
			Title:       "Reservas por aprobar",
			Description: fmt.Sprintf("Tienes %d reserva(s) esperando decisión.", pendingBookings),
			Type:        "booking",
		})
	}
	return todos, nil
}
