package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

// servicePassValidityDays bounds how long a recurring service pass lives
// before the resident has to reissue it.
const servicePassValidityDays = 30

// AccessService covers the gate: visitor authorization requests raised by
// guards, QR pass issuance by residents, and pass validation at scan time.
type AccessService interface {
	RequestVisitorAuth(ctx context.Context, visitorName, idPhotoRef, residentID string) (model.VisitorAuthorizationRequest, error)
	DecideVisitorAuth(ctx context.Context, requestID string, approve bool) error
	ListAuthRequests(ctx context.Context) ([]model.VisitorAuthorizationRequest, error)
	ListPendingAuthForResident(ctx context.Context, residentID string) ([]model.VisitorAuthorizationRequest, error)

	IssuePass(ctx context.Context, req IssuePassRequest) (model.QRPass, error)
	RevokePass(ctx context.Context, passID, residentID string) error
	Scan(ctx context.Context, passID, guardName string) (ScanResult, error)
	ListActivePasses(ctx context.Context, residentID string) ([]model.QRPass, error)

	AccessLog(ctx context.Context) ([]model.AccessLogEntry, error)
	ListGuards(ctx context.Context) ([]model.Guard, error)
}

type IssuePassRequest struct {
	ResidentID string
	Kind       model.QRKind
	Name       string // visitor or service company name
	Hours      int    // visitor passes: requested stay, 0 means the configured default

	// service passes only
	Days     []int  // weekdays, 0=Sunday
	TimeFrom string // HH:mm
	TimeTo   string // HH:mm, defaults from config when empty
}

type ScanResult struct {
	Result model.AccessResult `json:"result"`
	Reason string             `json:"reason,omitempty"`
	Pass   *model.QRPass      `json:"pass,omitempty"`
}

type accessService struct {
	store  repository.Store
	config ConfigService
	bus    repository.MessageBus
	logger *slog.Logger
	now    func() time.Time
}

func NewAccessService(store repository.Store, config ConfigService, bus repository.MessageBus, logger *slog.Logger) AccessService {
	return &accessService{store: store, config: config, bus: bus, logger: logger, now: time.Now}
}

// RequestVisitorAuth is raised by the guard for an unannounced visitor. The
// resident gets asked via the notification pipeline.
func (s *accessService) RequestVisitorAuth(ctx context.Context, visitorName, idPhotoRef, residentID string) (model.VisitorAuthorizationRequest, error) {
	if visitorName == "" {
		return model.VisitorAuthorizationRequest{}, fmt.Errorf("%w: missing visitor name", ErrInvalidInput)
	}
	resident, err := s.store.GetUser(ctx, residentID)
	if err != nil {
		return model.VisitorAuthorizationRequest{}, fmt.Errorf("lookup resident: %w", err)
	}

	r := model.VisitorAuthorizationRequest{
		ID:           "auth-" + uuid.NewString(),
		VisitorName:  visitorName,
		IDPhotoRef:   idPhotoRef,
		VisitDate:    s.now(),
		ResidentID:   resident.ID,
		ResidentName: resident.Name,
		Property:     resident.Property,
		Status:       model.AuthRequestPending,
	}
	if err := s.store.CreateAuthRequest(ctx, r); err != nil {
		return model.VisitorAuthorizationRequest{}, err
	}

	s.publish(model.TopicVisitRequested, model.VisitRequestedEvent{
		RequestID:   r.ID,
		VisitorName: r.VisitorName,
		ResidentID:  r.ResidentID,
	})
	s.logger.Info("visitor authorization requested",
		"request_id", r.ID, "visitor", visitorName, "resident_id", residentID)
	return r, nil
}

func (s *accessService) DecideVisitorAuth(ctx context.Context, requestID string, approve bool) error {
	r, err := s.store.GetAuthRequest(ctx, requestID)
	if err != nil {
		return err
	}
	to := model.AuthRequestRejected
	if approve {
		to = model.AuthRequestApproved
	}
	if err := s.store.UpdateAuthRequestStatus(ctx, requestID, to, model.AuthRequestPending); err != nil {
		return err
	}

	s.publish(model.TopicVisitDecided, model.VisitDecidedEvent{
		RequestID:   r.ID,
		VisitorName: r.VisitorName,
		Property:    r.Property,
		Status:      to,
	})
	s.logger.Info("visitor authorization decided", "request_id", requestID, "status", to)
	return nil
}

func (s *accessService) ListAuthRequests(ctx context.Context) ([]model.VisitorAuthorizationRequest, error) {
	return s.store.ListAuthRequests(ctx)
}

func (s *accessService) ListPendingAuthForResident(ctx context.Context, residentID string) ([]model.VisitorAuthorizationRequest, error) {
	all, err := s.store.ListAuthRequests(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.VisitorAuthorizationRequest
	for _, r := range all {
		if r.ResidentID == residentID && r.Status == model.AuthRequestPending {
			out = append(out, r)
		}
	}
	return out, nil
}

// IssuePass creates a QR pass with a validity window taken from the access
// control configuration: short for deliveries, a working day for social
// visits, and a recurring weekday/time window for service staff.
func (s *accessService) IssuePass(ctx context.Context, req IssuePassRequest) (model.QRPass, error) {
	resident, err := s.store.GetUser(ctx, req.ResidentID)
	if err != nil {
		return model.QRPass{}, fmt.Errorf("lookup resident: %w", err)
	}
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return model.QRPass{}, err
	}

	now := s.now()
	p := model.QRPass{
		ID:           "qr-" + uuid.NewString(),
		Kind:         req.Kind,
		Name:         req.Name,
		ResidentID:   resident.ID,
		ResidentName: resident.Name,
		Property:     resident.Property,
		ValidFrom:    now,
		Status:       model.QRActive,
	}

	ac := cfg.AccessControl
	switch req.Kind {
	case model.QRDelivery:
		p.ValidUntil = now.Add(time.Duration(ac.DeliveryHours) * time.Hour)
	case model.QRVisitor:
		hours := req.Hours
		if hours <= 0 {
			hours = ac.SocialVisitDefaultHours
		}
		if max := ac.SocialVisitMaxDays * 24; max > 0 && hours > max {
			hours = max
		}
		p.ValidUntil = now.Add(time.Duration(hours) * time.Hour)
	case model.QRService:
		if len(req.Days) == 0 {
			return model.QRPass{}, fmt.Errorf("%w: service pass needs weekdays", ErrInvalidInput)
		}
		if req.TimeFrom == "" {
			return model.QRPass{}, fmt.Errorf("%w: service pass needs a start time", ErrInvalidInput)
		}
		p.Days = req.Days
		p.TimeFrom = req.TimeFrom
		p.TimeTo = req.TimeTo
		if p.TimeTo == "" {
			p.TimeTo = shiftClock(req.TimeFrom, ac.ServiceDefaultHours)
		}
		p.ValidUntil = now.AddDate(0, 0, servicePassValidityDays)
	default:
		return model.QRPass{}, fmt.Errorf("%w: unknown pass kind %q", ErrInvalidInput, req.Kind)
	}

	if err := s.store.CreateQRPass(ctx, p); err != nil {
		return model.QRPass{}, err
	}
	s.logger.Info("qr pass issued",
		"pass_id", p.ID, "kind", p.Kind, "resident_id", resident.ID, "valid_until", p.ValidUntil)
	return p, nil
}

// RevokePass invalidates a pass the resident issued earlier. Only active
// passes of the requesting resident can be revoked.
func (s *accessService) RevokePass(ctx context.Context, passID, residentID string) error {
	p, err := s.store.GetQRPass(ctx, passID)
	if err != nil {
		return err
	}
	if p.ResidentID != residentID {
		return ErrUnauthorized
	}
	if p.Status != model.QRActive {
		return fmt.Errorf("%w: pass is %s", repository.ErrConflict, p.Status)
	}
	if err := s.store.UpdateQRPassStatus(ctx, p.ID, model.QRRevoked); err != nil {
		return err
	}
	s.logger.Info("qr pass revoked", "pass_id", p.ID, "resident_id", residentID)
	return nil
}

// Scan validates a pass at the gate and appends the outcome to the access
// log. Single-use passes (visitor, delivery) burn on a successful scan.
func (s *accessService) Scan(ctx context.Context, passID, guardName string) (ScanResult, error) {
	deny := func(reason, qrID string) (ScanResult, error) {
		res := ScanResult{Result: model.AccessDenied, Reason: reason}
		s.log(ctx, qrID, res, guardName)
		return res, nil
	}

	p, err := s.store.GetQRPass(ctx, passID)
	if err != nil {
		return deny("unknown pass", passID)
	}

	now := s.now()
	switch {
	case p.Status == model.QRUsed:
		return deny("pass already used", p.ID)
	case p.Status == model.QRRevoked:
		return deny("pass revoked", p.ID)
	case p.Status == model.QRExpired || now.After(p.ValidUntil):
		if p.Status == model.QRActive {
			_ = s.store.UpdateQRPassStatus(ctx, p.ID, model.QRExpired)
		}
		return deny("pass expired", p.ID)
	case now.Before(p.ValidFrom):
		return deny("pass not yet valid", p.ID)
	}

	if p.Kind == model.QRService {
		if !containsDay(p.Days, int(now.Weekday())) {
			return deny("not valid on this weekday", p.ID)
		}
		clock := now.Format("15:04")
		if clock < p.TimeFrom || clock > p.TimeTo {
			return deny("outside daily time window", p.ID)
		}
	}

	if p.Kind == model.QRVisitor || p.Kind == model.QRDelivery {
		if err := s.store.UpdateQRPassStatus(ctx, p.ID, model.QRUsed); err != nil {
			return ScanResult{}, err
		}
	}

	res := ScanResult{Result: model.AccessGranted, Pass: &p}
	s.log(ctx, p.ID, res, guardName)
	return res, nil
}

func (s *accessService) ListActivePasses(ctx context.Context, residentID string) ([]model.QRPass, error) {
	passes, err := s.store.ListQRPassesByResident(ctx, residentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var out []model.QRPass
	for _, p := range passes {
		if p.Status == model.QRActive && now.Before(p.ValidUntil) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *accessService) AccessLog(ctx context.Context) ([]model.AccessLogEntry, error) {
	return s.store.ListAccessLog(ctx)
}

func (s *accessService) ListGuards(ctx context.Context) ([]model.Guard, error) {
	return s.store.ListGuards(ctx)
}

func (s *accessService) log(ctx context.Context, qrID string, res ScanResult, guardName string) {
	entry := model.AccessLogEntry{
		ID:        "log-" + uuid.NewString(),
		Timestamp: s.now(),
		QRID:      qrID,
		Result:    res.Result,
		Reason:    res.Reason,
		GuardName: guardName,
	}
	if err := s.store.AppendAccessLog(ctx, entry); err != nil {
		s.logger.Error("append access log", "qr_id", qrID, "error", err)
	}
}

func (s *accessService) publish(topic string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("encode event", "topic", topic, "error", err)
		return
	}
	if err := s.bus.Publish(topic, data); err != nil {
		s.logger.Error("publish event", "topic", topic, "error", err)
	}
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// shiftClock adds whole hours to an HH:mm clock string, clamping at the end
// of the day.
func shiftClock(clock string, hours int) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return "23:59"
	}
	shifted := t.Add(time.Duration(hours) * time.Hour)
	if shifted.Day() != t.Day() {
		return "23:59"
	}
	return shifted.Format("15:04")
}
