package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckLicense(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) time.Time { return now.Add(d) }

	tests := []struct {
		name    string
		license *License
		want    LicenseStatus
	}{
		{"nil license", nil, LicenseUnlicensed},
		{"expired a second ago", &License{ExpiresAt: at(-time.Second)}, LicenseExpired},
		{"expires this instant", &License{ExpiresAt: now}, LicenseExpired},
		{"one hour left", &License{ExpiresAt: at(time.Hour)}, LicenseExpiringSoon},
		{"ten days left", &License{ExpiresAt: at(10 * 24 * time.Hour)}, LicenseExpiringSoon},
		{"just over ten days", &License{ExpiresAt: at(10*24*time.Hour + time.Minute)}, LicenseValid},
		{"a year left", &License{ExpiresAt: at(365 * 24 * time.Hour)}, LicenseValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckLicense(tt.license, now))
		})
	}
}

func TestDaysLeftRoundsUp(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	l := License{ExpiresAt: now.Add(25 * time.Hour)}
	assert.Equal(t, 2, l.DaysLeft(now))

	l = License{ExpiresAt: now.Add(24 * time.Hour)}
	assert.Equal(t, 1, l.DaysLeft(now))
}
