package repository

import (
	"context"
	"time"

	"github.com/Xhuk/Habitat-prime/internal/model"
)

// Seed loads the demo dataset into the store: three users, a couple of
// payments in different states, matching bank transactions, two amenities
// and some community content. Memory deployments call this on startup so the
// app is usable without any external fixtures.
func Seed(ctx context.Context, s *MemoryStore, now time.Time) error {
	s.PutUser(model.User{
		ID: "user-admin1", Name: "Admin General", Email: "admin@habitat.app",
		Role: model.RoleAdmin, Property: "", Phone: "555-0101",
	})
	s.PutUser(model.User{
		ID: "user-resident1", Name: "Residente Demo", Email: "resident@comunidad.com",
		Role: model.RoleResident, Property: "Casa 42", Phone: "555-0102",
		NotificationSettings: &model.NotificationSettings{Visits: true, Payments: true, Announcements: true, Emergencies: true},
	})
	s.PutUser(model.User{
		ID: "user-guard1", Name: "Guardia Nocturno",
		Role: model.RoleGuard, Phone: "555-0103",
	})
	s.PutGuard(model.Guard{ID: "user-guard1", Name: "Guardia Nocturno", AccessCode: "123456", Shift: "night", Status: "active"})

	amt1500 := 1500.00
	amt250 := 250.00
	payments := []model.Payment{
		{
			ID: "pay-1", ResidentID: "user-resident1", ResidentName: "Residente Demo", Property: "Casa 42",
			Date: now.Add(-24 * time.Hour), ReportedAmount: 1500.00, ExtractedAmount: &amt1500,
			ReceiptRef: "https://placehold.co/600x400/png", Method: model.MethodTransfer, Status: model.PaymentPending,
		},
		{
			ID: "pay-2", ResidentID: "user-resident1", ResidentName: "Residente Demo", Property: "Casa 42",
			Date: now.Add(-48 * time.Hour), ReportedAmount: 250.00, ExtractedAmount: &amt250,
			ReceiptRef: "https://placehold.co/600x400/png", Method: model.MethodCard,
			TransactionID: "pi_12345", Status: model.PaymentApproved,
		},
		{
			ID: "pay-3", ResidentID: "user-resident1", ResidentName: "Residente Demo", Property: "Casa 42",
			Date: now.Add(-72 * time.Hour), ReportedAmount: 1500.00, ExtractedAmount: &amt1500,
			ReceiptRef: "https://placehold.co/600x400/png", Method: model.MethodTransfer, Status: model.PaymentReconciled,
		},
	}
	for _, p := range payments {
		if err := s.CreatePayment(ctx, p); err != nil {
			return err
		}
	}

	txs := []model.BankTransaction{
		{ID: "bt-1", Date: now.Add(-24 * time.Hour), Description: "SPEI RECIBIDO RESIDENTE DEMO", Amount: 1500.00, Reference: "REF123"},
		{ID: "bt-2", Date: now.Add(-72 * time.Hour), Description: "TRANSFERENCIA DE TERCERO", Amount: 250.00, Reference: "REF456"},
	}
	if _, err := s.InsertTransactions(ctx, txs); err != nil {
		return err
	}

	s.PutAmenity(model.Amenity{
		ID: "amen-1", Name: "Salón de Usos Múltiples",
		Description: "Ideal para eventos y reuniones. Equipado con mesas, sillas y proyector.",
		Cost:        500, BookingBlockHours: 4, MaxRentalsPerDay: 2, Capacity: 50,
		Cleaning: model.CleaningPolicy{Type: model.CleaningExtraCost, ExtraCost: 250},
	})
	s.PutAmenity(model.Amenity{
		ID: "amen-2", Name: "Cancha de Pádel",
		Description: "Disfruta de un partido en nuestra cancha profesional.",
		Cost:        100, BookingBlockHours: 1, MaxRentalsPerDay: 8, Capacity: 4,
		Cleaning: model.CleaningPolicy{Type: model.CleaningIncluded},
	})

	if err := s.CreateBooking(ctx, model.Booking{
		ID: "book-1", AmenityID: "amen-1", AmenityName: "Salón de Usos Múltiples",
		ResidentID: "user-resident1", ResidentName: "Residente Demo", Property: "Casa 42",
		Date: "2024-08-15", StartTime: "15:00", EndTime: "19:00",
		Status: model.BookingPending, Cost: 500, CleaningCost: 250,
	}, 2); err != nil {
		return err
	}

	notifications := []model.Notification{
		{ID: "notif-1", Recipient: model.ToUser("user-admin1"), Title: "Pago por Conciliar", Description: "Residente Demo ha enviado un pago de $1500.00", CreatedAt: now.Add(-1 * time.Hour), Kind: model.KindPayment},
		{ID: "notif-2", Recipient: model.ToUser("user-admin1"), Title: "Nueva Reserva", Description: "Residente Demo ha reservado el Salón de Usos Múltiples", CreatedAt: now.Add(-2 * time.Hour), Read: true, Kind: model.KindBooking},
		{ID: "notif-3", Recipient: model.ToUser("user-admin1"), Title: "Acceso de proveedor", Description: "Plomería Express visitará hoy", CreatedAt: now.Add(-3 * time.Hour), Read: true, Kind: model.KindProvider},
		{ID: "notif-4", Recipient: model.ToUser("user-admin1"), Title: "Visita no anunciada", Description: "Juan Pérez está en caseta", CreatedAt: now.Add(-4 * time.Hour), Kind: model.KindVisit},
	}
	for _, n := range notifications {
		if err := s.CreateNotification(ctx, n); err != nil {
			return err
		}
	}

	providers := []model.Provider{
		{
			ID: "prov-1", Name: "Plomería Express", ServiceCategory: "Plomería",
			ContactName: "Mario Lopez", Phone: "555-1234", IsWhitelisted: true,
			ServesCommunity: true, ServesResidents: true,
			Ratings: []model.Rating{{UserID: "user-resident1", UserName: "Residente Demo", Rating: 5, Tags: []string{"A tiempo", "Trabajo impecable"}}},
		},
		{
			ID: "prov-2", Name: "Jardinería El Trébol", ServiceCategory: "Jardinería",
			ContactName: "Ana Martinez", Phone: "555-5678", IsWhitelisted: true,
			ServesCommunity: true,
			Ratings:         []model.Rating{{UserID: "user-resident1", UserName: "Residente Demo", Rating: 4, Comment: "Buen servicio"}},
		},
		{
			ID: "prov-3", Name: "Internet Rápido SA", ServiceCategory: "Internet",
			ContactName: "Luis García", Phone: "555-9012",
			ServesResidents: true,
			Ratings:         []model.Rating{{UserID: "user-resident1", UserName: "Residente Demo", Rating: 3, Comment: "Tardaron mucho en instalar"}},
		},
	}
	for _, p := range providers {
		p.RecomputeAverage()
		if err := s.SaveProvider(ctx, p); err != nil {
			return err
		}
	}

	surveys := []model.Survey{
		{
			ID: "surv-1", Question: "¿De qué color pintamos la fachada?", Status: model.SurveyClosed, TotalVotes: 40,
			Options: []model.SurveyOption{{ID: "opt1", Text: "Blanco", Votes: 15}, {ID: "opt2", Text: "Beige", Votes: 25}},
		},
		{
			ID: "surv-2", Question: "¿Deberíamos instalar un nuevo gimnasio?", Status: model.SurveyActive, TotalVotes: 40,
			Options: []model.SurveyOption{{ID: "opt3", Text: "Sí, es necesario", Votes: 30}, {ID: "opt4", Text: "No, es muy costoso", Votes: 10}},
		},
	}
	for _, sv := range surveys {
		if err := s.SaveSurvey(ctx, sv); err != nil {
			return err
		}
	}

	if err := s.CreateAnnouncement(ctx, model.Announcement{
		ID: "ann-1", Title: "Mantenimiento de Alberca", Date: now.Add(-48 * time.Hour),
		Content: "Se realizará mantenimiento a la alberca el próximo Lunes. No estará disponible de 9am a 5pm.",
		Author:  "Admin General",
	}); err != nil {
		return err
	}

	s.mu.Lock()
	s.directory = []model.DirectoryContact{
		{ID: "dir-1", Category: "Administración", Name: "Admin General", Role: "Administrador", Phone: "555-0101", Email: "admin@habitat.app"},
		{ID: "dir-2", Category: "Seguridad", Name: "Caseta Principal", Role: "Vigilancia", Phone: "555-0103", Email: "seguridad@habitat.app"},
	}
	s.mu.Unlock()

	return nil
}
