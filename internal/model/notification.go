package model

import "time"

type NotificationKind string

const (
	KindPayment      NotificationKind = "payment"
	KindBooking      NotificationKind = "booking"
	KindAnnouncement NotificationKind = "announcement"
	KindPackage      NotificationKind = "package"
	KindVisit        NotificationKind = "visit"
	KindProvider     NotificationKind = "provider"
)

type RecipientKind string

const (
	RecipientIndividual RecipientKind = "individual"
	RecipientRole       RecipientKind = "role"
	RecipientBroadcast  RecipientKind = "broadcast"
)

// Recipient is a tagged address: a single user, everyone with a role, or
// everyone. It replaces the string field the wire format used to overload.
type Recipient struct {
	Kind   RecipientKind `json:"kind"`
	UserID string        `json:"user_id,omitempty"`
	Role   Role          `json:"role,omitempty"`
}

func ToUser(id string) Recipient  { return Recipient{Kind: RecipientIndividual, UserID: id} }
func ToRole(r Role) Recipient     { return Recipient{Kind: RecipientRole, Role: r} }
func ToEveryone() Recipient       { return Recipient{Kind: RecipientBroadcast} }

// Addresses reports whether the recipient covers the given user.
func (r Recipient) Addresses(u User) bool {
	switch r.Kind {
	case RecipientIndividual:
		return r.UserID == u.ID
	case RecipientRole:
		return r.Role == u.Role
	case RecipientBroadcast:
		return true
	}
	return false
}

type Notification struct {
	ID          string           `json:"id"`
	Recipient   Recipient        `json:"recipient"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Kind        NotificationKind `json:"kind"`
	Push        bool             `json:"push,omitempty"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TodoItem is a derived admin work item; it is never stored.
type TodoItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"` // payment|booking|task
}
