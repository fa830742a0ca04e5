package model

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleResident Role = "resident"
	RoleGuard    Role = "guard"
)

// NotificationSettings controls which push notifications a resident receives.
// Non-push (in-app) notifications are always delivered.
type NotificationSettings struct {
	Visits        bool `json:"visits"`
	Payments      bool `json:"payments"`
	Announcements bool `json:"announcements"`
	Emergencies   bool `json:"emergencies"`
}

type User struct {
	ID                   string                `json:"id"`
	Name                 string                `json:"name"`
	Email                string                `json:"email"`
	Role                 Role                  `json:"role"`
	Property             string                `json:"property,omitempty"`
	Phone                string                `json:"phone,omitempty"`
	AvatarURL            string                `json:"avatar_url,omitempty"`
	NotificationSettings *NotificationSettings `json:"notification_settings,omitempty"`
}

type Guard struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AccessCode  string    `json:"-"`
	Shift       string    `json:"shift"` // day|night|mixed
	LastCheckIn time.Time `json:"last_check_in"`
	Status      string    `json:"status"` // active|inactive|on-break
}
