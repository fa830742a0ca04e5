package model

import "time"

type AuthRequestStatus string

const (
	AuthRequestPending  AuthRequestStatus = "pending"
	AuthRequestApproved AuthRequestStatus = "approved"
	AuthRequestRejected AuthRequestStatus = "rejected"
)

// VisitorAuthorizationRequest is raised by a guard when an unannounced
// visitor shows up at the gate; the resident approves or rejects it.
type VisitorAuthorizationRequest struct {
	ID           string            `json:"id"`
	VisitorName  string            `json:"visitor_name"`
	IDPhotoRef   string            `json:"id_photo_ref,omitempty"`
	VisitDate    time.Time         `json:"visit_date"`
	ResidentID   string            `json:"resident_id"`
	ResidentName string            `json:"resident_name"`
	Property     string            `json:"property"`
	Status       AuthRequestStatus `json:"status"`
}

type QRKind string

const (
	QRVisitor  QRKind = "visitor"
	QRDelivery QRKind = "delivery"
	QRService  QRKind = "service"
)

type QRPassStatus string

const (
	QRActive  QRPassStatus = "active"
	QRUsed    QRPassStatus = "used"
	QRExpired QRPassStatus = "expired"
	QRRevoked QRPassStatus = "revoked"
)

// QRPass is a resident-issued access credential scanned at the gate.
// Service passes additionally restrict access to a weekday set and a daily
// time window.
type QRPass struct {
	ID           string       `json:"id"`
	Kind         QRKind       `json:"kind"`
	Name         string       `json:"name,omitempty"`
	ResidentID   string       `json:"resident_id"`
	ResidentName string       `json:"resident_name"`
	Property     string       `json:"property"`
	ValidFrom    time.Time    `json:"valid_from"`
	ValidUntil   time.Time    `json:"valid_until"`
	Days         []int        `json:"days,omitempty"`      // 0=Sunday
	TimeFrom     string       `json:"time_from,omitempty"` // HH:mm
	TimeTo       string       `json:"time_to,omitempty"`   // HH:mm
	Status       QRPassStatus `json:"status"`
}

type AccessResult string

const (
	AccessGranted AccessResult = "granted"
	AccessDenied  AccessResult = "denied"
)

type AccessLogEntry struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	QRID      string       `json:"qr_id"`
	Result    AccessResult `json:"result"`
	Reason    string       `json:"reason,omitempty"`
	GuardName string       `json:"guard_name"`
}
