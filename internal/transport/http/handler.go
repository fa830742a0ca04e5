package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
	"github.com/Xhuk/Habitat-prime/internal/service"
)

type Handler struct {
	auth          service.AuthService
	payments      service.PaymentService
	statements    service.StatementService
	bookings      service.BookingService
	license       service.LicenseService
	config        service.ConfigService
	access        service.AccessService
	providers     service.ProviderService
	notifications service.NotificationService
	community     service.CommunityService
	users         repository.UserStore
}

type Services struct {
	Auth          service.AuthService
	Payments      service.PaymentService
	Statements    service.StatementService
	Bookings      service.BookingService
	License       service.LicenseService
	Config        service.ConfigService
	Access        service.AccessService
	Providers     service.ProviderService
	Notifications service.NotificationService
	Community     service.CommunityService
	Users         repository.UserStore
}

func NewHandler(s Services) *Handler {
	return &Handler{
		auth:          s.Auth,
		payments:      s.Payments,
		statements:    s.Statements,
		bookings:      s.Bookings,
		license:       s.License,
		config:        s.Config,
		access:        s.Access,
		providers:     s.Providers,
		notifications: s.Notifications,
		community:     s.Community,
		users:         s.Users,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/guard-login", h.GuardLogin)
	mux.HandleFunc("POST /auth/logout", h.withAuth(h.Logout))
	mux.HandleFunc("GET /me", h.withAuth(h.Me))
	mux.HandleFunc("PUT /me/notification-settings", h.withAuth(h.UpdateNotificationSettings))

	mux.HandleFunc("GET /license", h.withAuth(h.LicenseStatus))
	mux.HandleFunc("POST /license", h.withRole(h.ApplyLicense, model.RoleAdmin))

	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return h.withLicense(h.withRole(next, model.RoleAdmin))
	}
	resident := func(next http.HandlerFunc) http.HandlerFunc {
		return h.withRole(next, model.RoleResident)
	}
	guard := func(next http.HandlerFunc) http.HandlerFunc {
		return h.withRole(next, model.RoleGuard)
	}
	authed := h.withAuth

	mux.HandleFunc("POST /payments", resident(h.SubmitPayment))
	mux.HandleFunc("GET /payments/pending", admin(h.PendingPayments))
	mux.HandleFunc("GET /me/payments", authed(h.MyPayments))
	mux.HandleFunc("POST /payments/{id}/approve", admin(h.ApprovePayment))
	mux.HandleFunc("POST /payments/{id}/reject", admin(h.RejectPayment))
	mux.HandleFunc("POST /payments/{id}/reconcile", admin(h.ReconcilePayment))
	mux.HandleFunc("POST /payments/{id}/extract", admin(h.ExtractPaymentAmount))
	mux.HandleFunc("GET /payments/{id}/candidates", admin(h.MatchCandidates))
	mux.HandleFunc("GET /reconciliations", admin(h.ReconciliationHistory))
	mux.HandleFunc("GET /me/property", resident(h.MyProperty))

	mux.HandleFunc("POST /bank/statements", admin(h.IngestStatement))
	mux.HandleFunc("GET /bank/transactions", admin(h.ListTransactions))
	mux.HandleFunc("POST /bank/transactions", admin(h.AddTransactions))

	mux.HandleFunc("GET /amenities", authed(h.ListAmenities))
	mux.HandleFunc("PUT /amenities/{id}", admin(h.UpdateAmenity))
	mux.HandleFunc("GET /amenities/{id}/slots", authed(h.AvailableSlots))
	mux.HandleFunc("POST /bookings", resident(h.CreateBooking))
	mux.HandleFunc("GET /bookings", admin(h.ListBookings))
	mux.HandleFunc("GET /me/bookings", authed(h.MyBookings))
	mux.HandleFunc("POST /bookings/{id}/receipt", resident(h.AttachBookingReceipt))
	mux.HandleFunc("POST /bookings/{id}/confirm", admin(h.ConfirmBooking))
	mux.HandleFunc("POST /bookings/{id}/cancel", authed(h.CancelBooking))

	mux.HandleFunc("GET /config", authed(h.GetConfig))
	mux.HandleFunc("PUT /config", admin(h.UpdateConfig))

	mux.HandleFunc("POST /access/requests", guard(h.RequestVisitorAuth))
	mux.HandleFunc("GET /access/requests", admin(h.ListAuthRequests))
	mux.HandleFunc("GET /me/access/requests", resident(h.MyPendingAuthRequests))
	mux.HandleFunc("POST /access/requests/{id}/approve", authed(h.ApproveVisitorAuth))
	mux.HandleFunc("POST /access/requests/{id}/reject", authed(h.RejectVisitorAuth))
	mux.HandleFunc("POST /access/passes", resident(h.IssuePass))
	mux.HandleFunc("GET /me/access/passes", resident(h.MyPasses))
	mux.HandleFunc("POST /access/passes/{id}/revoke", resident(h.RevokePass))
	mux.HandleFunc("POST /access/scan", guard(h.ScanPass))
	mux.HandleFunc("GET /access/log", h.withRole(h.AccessLog, model.RoleAdmin, model.RoleGuard))
	mux.HandleFunc("GET /guards", admin(h.ListGuards))

	mux.HandleFunc("GET /providers", authed(h.ListProviders))
	mux.HandleFunc("POST /providers", admin(h.AddProvider))
	mux.HandleFunc("POST /providers/{id}/whitelist", admin(h.WhitelistProvider))
	mux.HandleFunc("POST /providers/{id}/ratings", resident(h.RateProvider))
	mux.HandleFunc("POST /provider-visits", admin(h.ScheduleProviderVisit))
	mux.HandleFunc("GET /provider-visits", authed(h.ListProviderVisits))

	mux.HandleFunc("GET /notifications", authed(h.ListNotifications))
	mux.HandleFunc("POST /notifications/{id}/read", authed(h.MarkNotificationRead))
	mux.HandleFunc("POST /notifications/read-all", authed(h.MarkAllNotificationsRead))
	mux.HandleFunc("GET /todos", admin(h.Todos))

	mux.HandleFunc("GET /surveys", authed(h.ListSurveys))
	mux.HandleFunc("POST /surveys", admin(h.CreateSurvey))
	mux.HandleFunc("POST /surveys/{id}/vote", authed(h.VoteSurvey))
	mux.HandleFunc("POST /surveys/{id}/close", admin(h.CloseSurvey))
	mux.HandleFunc("DELETE /surveys/{id}", admin(h.DeleteSurvey))
	mux.HandleFunc("GET /announcements", authed(h.ListAnnouncements))
	mux.HandleFunc("POST /announcements", admin(h.CreateAnnouncement))
	mux.HandleFunc("DELETE /announcements/{id}", admin(h.DeleteAnnouncement))
	mux.HandleFunc("GET /directory", authed(h.Directory))
	mux.HandleFunc("GET /chat/{userID}", authed(h.Conversation))
	mux.HandleFunc("POST /chat", authed(h.SendMessage))

	mux.HandleFunc("GET /users", admin(h.ListUsers))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	sess, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, sess)
}

func (h *Handler) GuardLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	sess, err := h.auth.LoginWithAccessCode(r.Context(), req.Code)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, sess)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	h.respondJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var settings model.NotificationSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if err := h.auth.UpdateNotificationSettings(r.Context(), user.ID, settings); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, settings)
}

func (h *Handler) LicenseStatus(w http.ResponseWriter, r *http.Request) {
	info, err := h.license.Status(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, info)
}

func (h *Handler) ApplyLicense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	info, err := h.license.Apply(r.Context(), req.Key)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, info)
}

func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var req struct {
		Amount        float64             `json:"amount"`
		Method        model.PaymentMethod `json:"method"`
		ReceiptRef    string              `json:"receipt_ref"`
		TransactionID string              `json:"transaction_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	payment, err := h.payments.Submit(r.Context(), service.SubmitPaymentRequest{
		ResidentID:     user.ID,
		Amount:         req.Amount,
		Method:         req.Method,
		ReceiptRef:     req.ReceiptRef,
		TransactionID:  req.TransactionID,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, payment)
}

func (h *Handler) PendingPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.ListPending(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, payments)
}

func (h *Handler) MyPayments(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	payments, err := h.payments.ListForResident(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, payments)
}

func (h *Handler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.payments.Approve(r.Context(), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *Handler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	if err := h.payments.Reject(r.Context(), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *Handler) ReconcilePayment(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var req struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if err := h.payments.Reconcile(r.Context(), r.PathValue("id"), req.TransactionID, user.Name); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "reconciled"})
}

func (h *Handler) ExtractPaymentAmount(w http.ResponseWriter, r *http.Request) {
	payment, err := h.payments.EnsureExtractedAmount(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, payment)
}

func (h *Handler) MatchCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.payments.MatchCandidates(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, candidates)
}

func (h *Handler) ReconciliationHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.payments.History(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, history)
}

func (h *Handler) MyProperty(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	info, err := h.payments.PropertyInfo(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, info)
}

func (h *Handler) IngestStatement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	result, err := h.statements.Ingest(r.Context(), req.Content)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handler) AddTransactions(w http.ResponseWriter, r *http.Request) {
	var txs []model.BankTransaction
	if err := json.NewDecoder(r.Body).Decode(&txs); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	added, err := h.statements.AddTransactions(r.Context(), txs)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, added)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.statements.ListTransactions(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, txs)
}

func (h *Handler) ListAmenities(w http.ResponseWriter, r *http.Request) {
	amenities, err := h.bookings.ListAmenities(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, amenities)
}

func (h *Handler) UpdateAmenity(w http.ResponseWriter, r *http.Request) {
	var amenity model.Amenity
	if err := json.NewDecoder(r.Body).Decode(&amenity); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	amenity.ID = r.PathValue("id")
	updated, err := h.bookings.UpdateAmenity(r.Context(), amenity)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		h.respondError(w, http.StatusBadRequest, "missing date")
		return
	}
	slots, err := h.bookings.AvailableSlots(r.Context(), r.PathValue("id"), date)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, slots)
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var req struct {
		AmenityID string `json:"amenity_id"`
		Date      string `json:"date"`
		StartTime string `json:"start_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	booking, err := h.bookings.Create(r.Context(), service.CreateBookingRequest{
		ResidentID:     user.ID,
		AmenityID:      req.AmenityID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, booking)
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.List(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, bookings)
}

func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	bookings, err := h.bookings.ListForResident(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, bookings)
}

func (h *Handler) AttachBookingReceipt(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var req struct {
		ReceiptRef string `json:"receipt_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	id := r.PathValue("id")
	booking, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if booking.ResidentID != user.ID {
		h.respondError(w, http.StatusForbidden, "forbidden")
		return
	}
	if err := h.bookings.AttachReceipt(r.Context(), id, req.ReceiptRef); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "pending_approval"})
}

func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.bookings.Confirm(r.Context(), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	id := r.PathValue("id")
	if user.Role != model.RoleAdmin {
		booking, err := h.bookings.Get(r.Context(), id)
		if err != nil {
			h.respondServiceError(w, err)
			return
		}
		if booking.ResidentID != user.ID {
			h.respondError(w, http.StatusForbidden, "forbidden")
			return
		}
	}
	if err := h.bookings.Cancel(r.Context(), id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.config.Get(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cfg)
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg model.HabitatConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if err := h.config.Update(r.Context(), cfg); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cfg)
}

func (h *Handler) RequestVisitorAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VisitorName string `json:"visitor_name"`
		IDPhotoRef  string `json:"id_photo_ref"`
		ResidentID  string `json:"resident_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	request, err := h.access.RequestVisitorAuth(r.Context(), req.VisitorName, req.IDPhotoRef, req.ResidentID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, request)
}

func (h *Handler) ListAuthRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.access.ListAuthRequests(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, requests)
}

func (h *Handler) MyPendingAuthRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	requests, err := h.access.ListPendingAuthForResident(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, requests)
}

func (h *Handler) ApproveVisitorAuth(w http.ResponseWriter, r *http.Request) {
	h.decideVisitorAuth(w, r, true)
}

func (h *Handler) RejectVisitorAuth(w http.ResponseWriter, r *http.Request) {
	h.decideVisitorAuth(w, r, false)
}

func (h *Handler) decideVisitorAuth(w http.ResponseWriter, r *http.Request, approve bool) {
	if err := h.access.DecideVisitorAuth(r.Context(), r.PathValue("id"), approve); err != nil {
		h.respondServiceError(w, err)
		return
	}
	status := "rejected"
	if approve {
		status = "approved"
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *Handler) IssuePass(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var req struct {
		Kind     model.QRKind `json:"kind"`
		Name     string       `json:"name"`
		Hours    int          `json:"hours,omitempty"`
		Days     []int        `json:"days,omitempty"`
		TimeFrom string       `json:"time_from,omitempty"`
		TimeTo   string       `json:"time_to,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	pass, err := h.access.IssuePass(r.Context(), service.IssuePassRequest{
		ResidentID: user.ID,
		Kind:       req.Kind,
		Name:       req.Name,
		Hours:      req.Hours,
		Days:       req.Days,
		TimeFrom:   req.TimeFrom,
		TimeTo:     req.TimeTo,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, pass)
}

func (h *Handler) MyPasses(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	passes, err := h.access.ListActivePasses(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, passes)
}

func (h *Handler) RevokePass(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if err := h.access.RevokePass(r.Context(), r.PathValue("id"), user.ID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *Handler) ScanPass(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var req struct {
		PassID string `json:"pass_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	result, err := h.access.Scan(r.Context(), req.PassID, user.Name)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handler) AccessLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.access.AccessLog(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) ListGuards(w http.ResponseWriter, r *http.Request) {
	guards, err := h.access.ListGuards(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, guards)
}

func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.providers.List(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, providers)
}

func (h *Handler) AddProvider(w http.ResponseWriter, r *http.Request) {
	var provider model.Provider
	if err := json.NewDecoder(r.Body).Decode(&provider); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	created, err := h.providers.Add(r.Context(), provider)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) WhitelistProvider(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Whitelisted bool `json:"whitelisted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if err := h.providers.SetWhitelisted(r.Context(), r.PathValue("id"), req.Whitelisted); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"whitelisted": req.Whitelisted})
}

func (h *Handler) RateProvider(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var req struct {
		Rating  int      `json:"rating"`
		Comment string   `json:"comment"`
		Tags    []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	provider, err := h.providers.Rate(r.Context(), r.PathValue("id"), model.Rating{
		UserID:   user.ID,
		UserName: user.Name,
		Rating:   req.Rating,
		Comment:  req.Comment,
		Tags:     req.Tags,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, provider)
}

func (h *Handler) ScheduleProviderVisit(w http.ResponseWriter, r *http.Request) {
	var visit model.ProviderVisit
	if err := json.NewDecoder(r.Body).Decode(&visit); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	created, err := h.providers.ScheduleVisit(r.Context(), visit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListProviderVisits(w http.ResponseWriter, r *http.Request) {
	visits, err := h.providers.ListVisits(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, visits)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	notifications, err := h.notifications.List(r.Context(), user)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, notifications)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if err := h.notifications.MarkAllRead(r.Context(), user); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *Handler) Todos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.notifications.Todos(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, todos)
}

func (h *Handler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.community.ListSurveys(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, surveys)
}

func (h *Handler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	survey, err := h.community.CreateSurvey(r.Context(), req.Question, req.Options)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, survey)
}

func (h *Handler) VoteSurvey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OptionID string `json:"option_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if err := h.community.Vote(r.Context(), r.PathValue("id"), req.OptionID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "voted"})
}

func (h *Handler) CloseSurvey(w http.ResponseWriter, r *http.Request) {
	if err := h.community.CloseSurvey(r.Context(), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (h *Handler) DeleteSurvey(w http.ResponseWriter, r *http.Request) {
	if err := h.community.DeleteSurvey(r.Context(), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.community.ListAnnouncements(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, announcements)
}

func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	announcement, err := h.community.CreateAnnouncement(r.Context(), req.Title, req.Content, user.Name)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, announcement)
}

func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	if err := h.community.DeleteAnnouncement(r.Context(), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) Directory(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.community.Directory(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, contacts)
}

func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	messages, err := h.community.Conversation(r.Context(), user.ID, r.PathValue("userID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, messages)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	var req struct {
		ReceiverID string `json:"receiver_id"`
		Text       string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	message, err := h.community.SendMessage(r.Context(), user.ID, req.ReceiverID, req.Text)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, message)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if role := r.URL.Query().Get("role"); role != "" {
		users, err := h.users.ListUsersByRole(r.Context(), model.Role(role))
		if err != nil {
			h.respondServiceError(w, err)
			return
		}
		h.respondJSON(w, http.StatusOK, users)
		return
	}
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, users)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidLicenseKey):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthorized):
		h.respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrSlotTaken),
		errors.Is(err, repository.ErrDailyLimitReached),
		errors.Is(err, model.ErrIllegalTransition),
		errors.Is(err, service.ErrSurveyClosed):
		h.respondError(w, http.StatusConflict, err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
