package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

const licenseKeyName = "license"

// licenseCatalog maps recognized keys to the validity they grant in days.
var licenseCatalog = map[string]int{
	"HAV-YEAR-DEMO-ADMIN":  365,
	"HAV-MONTH-DEMO-ADMIN": 30,
}

// LicenseService gates mutating operations: a community without a valid
// license runs read-only.
type LicenseService interface {
	Apply(ctx context.Context, key string) (LicenseInfo, error)
	Status(ctx context.Context) (LicenseInfo, error)
}

type LicenseInfo struct {
	Status    model.LicenseStatus `json:"status"`
	Key       string              `json:"key,omitempty"`
	ExpiresAt *time.Time          `json:"expires_at,omitempty"`
	DaysLeft  int                 `json:"days_left"`
}

type licenseService struct {
	settings repository.SettingsStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewLicenseService(settings repository.SettingsStore, logger *slog.Logger) LicenseService {
	return &licenseService{settings: settings, logger: logger, now: time.Now}
}

// Apply activates a recognized key. Expiry pins to the last millisecond of
// the final day so the license stays valid through that whole calendar day.
func (s *licenseService) Apply(ctx context.Context, key string) (LicenseInfo, error) {
	days, ok := licenseCatalog[key]
	if !ok {
		return LicenseInfo{}, ErrInvalidLicenseKey
	}

	now := s.now()
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999_000_000, now.Location())
	lic := model.License{Key: key, ExpiresAt: endOfDay.AddDate(0, 0, days)}

	data, err := json.Marshal(lic)
	if err != nil {
		return LicenseInfo{}, fmt.Errorf("encode license: %w", err)
	}
	if err := s.settings.Set(ctx, licenseKeyName, data, 0); err != nil {
		return LicenseInfo{}, fmt.Errorf("store license: %w", err)
	}

	s.logger.Info("license applied", "days", days, "expires_at", lic.ExpiresAt)
	return s.info(&lic), nil
}

// Status recomputes the license state from the stored record. A missing or
// corrupted record reads as unlicensed; it never fails the request.
func (s *licenseService) Status(ctx context.Context) (LicenseInfo, error) {
	data, err := s.settings.Get(ctx, licenseKeyName)
	if err != nil {
		return LicenseInfo{Status: model.LicenseUnlicensed}, nil
	}
	var lic model.License
	if err := json.Unmarshal(data, &lic); err != nil || lic.ExpiresAt.IsZero() {
		s.logger.Warn("stored license unreadable, treating as unlicensed", "error", err)
		return LicenseInfo{Status: model.LicenseUnlicensed}, nil
	}
	return s.info(&lic), nil
}

func (s *licenseService) info(lic *model.License) LicenseInfo {
	now := s.now()
	status := model.CheckLicense(lic, now)
	days := lic.DaysLeft(now)
	if days < 0 {
		days = 0
	}
	return LicenseInfo{Status: status, Key: lic.Key, ExpiresAt: &lic.ExpiresAt, DaysLeft: days}
}
