package model

import (
	"math"
	"time"
)

type LicenseStatus string

const (
	LicenseUnlicensed   LicenseStatus = "UNLICENSED"
	LicenseValid        LicenseStatus = "VALID"
	LicenseExpiringSoon LicenseStatus = "EXPIRING_SOON"
	LicenseExpired      LicenseStatus = "EXPIRED"
)

// License is never stored with a status; status is always recomputed from
// ExpiresAt against the current time.
type License struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DaysLeft counts whole days until expiry, rounding up. The ceiling matters:
// it decides on which day the expiring-soon warning first appears.
func (l License) DaysLeft(now time.Time) int {
	diff := l.ExpiresAt.Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}

// CheckLicense derives the license status at the given instant. A nil license
// means no key has ever been applied.
func CheckLicense(l *License, now time.Time) LicenseStatus {
	if l == nil {
		return LicenseUnlicensed
	}
	days := l.DaysLeft(now)
	switch {
	case days <= 0:
		return LicenseExpired
	case days <= 10:
		return LicenseExpiringSoon
	default:
		return LicenseValid
	}
}
