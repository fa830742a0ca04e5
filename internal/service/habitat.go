package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

const habitatConfigKey = "habitat_config"

// ConfigService manages the per-community configuration blob.
type ConfigService interface {
	Get(ctx context.Context) (model.HabitatConfig, error)
	Update(ctx context.Context, cfg model.HabitatConfig) error
}

type configService struct {
	settings repository.SettingsStore
	logger   *slog.Logger
}

func NewConfigService(settings repository.SettingsStore, logger *slog.Logger) ConfigService {
	return &configService{settings: settings, logger: logger}
}

// Get returns the stored configuration, falling back to defaults when
// nothing is stored or the blob does not decode.
func (s *configService) Get(ctx context.Context) (model.HabitatConfig, error) {
	data, err := s.settings.Get(ctx, habitatConfigKey)
	if err != nil {
		return model.DefaultHabitatConfig(), nil
	}
	var cfg model.HabitatConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.logger.Warn("stored config unreadable, using defaults", "error", err)
		return model.DefaultHabitatConfig(), nil
	}
	return cfg, nil
}

func (s *configService) Update(ctx context.Context, cfg model.HabitatConfig) error {
	if cfg.PackageManagement != "gate" && cfg.PackageManagement != "direct" {
		return fmt.Errorf("%w: package management must be gate or direct", ErrInvalidInput)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := s.settings.Set(ctx, habitatConfigKey, data, 0); err != nil {
		return fmt.Errorf("store config: %w", err)
	}
	s.logger.Info("habitat config updated", "package_management", cfg.PackageManagement)
	return nil
}
