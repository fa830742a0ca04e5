package model

// AccessControlConfig holds the validity windows QR passes are issued with.
type AccessControlConfig struct {
	DeliveryHours           int `json:"delivery_hours"`
	SocialVisitDefaultHours int `json:"social_visit_default_hours"`
	SocialVisitMaxDays      int `json:"social_visit_max_days"`
	ServiceDefaultHours     int `json:"service_default_hours"`
}

type StripeConfig struct {
	Enabled   bool   `json:"enabled"`
	AccountID string `json:"account_id,omitempty"`
}

// HabitatConfig is the per-community configuration blob. It round-trips
// through the settings store as opaque JSON; a corrupted blob falls back to
// DefaultHabitatConfig.
type HabitatConfig struct {
	PackageManagement string              `json:"package_management"` // gate|direct
	AccessControl     AccessControlConfig `json:"access_control"`
	Stripe            StripeConfig        `json:"stripe"`
}

func DefaultHabitatConfig() HabitatConfig {
	return HabitatConfig{
		PackageManagement: "gate",
		AccessControl: AccessControlConfig{
			DeliveryHours:           1,
			SocialVisitDefaultHours: 8,
			SocialVisitMaxDays:      7,
			ServiceDefaultHours:     8,
		},
		Stripe: StripeConfig{Enabled: true, AccountID: "acct_123456789"},
	}
}
