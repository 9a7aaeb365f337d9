package installment

import (
	"context"

	"github.com/noah-isme/backend-loja/internal/common"
	"github.com/noah-isme/backend-loja/internal/store"
)

// Service persists the store-wide installment configuration.
type Service struct {
	Store *store.Store
}

// Config loads the installment configuration. When nothing was authored yet
// the store sells at a single payment.
func (s *Service) Config(ctx context.Context) (Config, error) {
	cfg := Config{MaxInstallments: 1}
	_, err := s.Store.GetJSON(ctx, store.KeyInstallmentConfig, &cfg)
	if err != nil {
		return Config{}, err
	}
	if cfg.MaxInstallments < 1 {
		cfg.MaxInstallments = 1
	}
	return cfg, nil
}

// SaveConfig validates and persists the configuration.
func (s *Service) SaveConfig(ctx context.Context, cfg Config) error {
	if cfg.MaxInstallments < 1 {
		return common.BadRequest("VALIDATION", "maxInstallments must be at least 1")
	}
	if cfg.InterestFree < 0 || cfg.InterestFree > cfg.MaxInstallments {
		return common.BadRequest("VALIDATION", "interest-free installments must be between 0 and maxInstallments")
	}
	if cfg.InterestRatePercent < 0 {
		return common.BadRequest("VALIDATION", "interest rate must not be negative")
	}
	if cfg.Special != nil && cfg.Special.Enabled {
		if cfg.Special.MaxInstallments < 1 {
			return common.BadRequest("VALIDATION", "special rule maxInstallments must be at least 1")
		}
		if cfg.Special.InterestFree < 0 || cfg.Special.InterestFree > cfg.Special.MaxInstallments {
			return common.BadRequest("VALIDATION", "special rule interest-free installments out of range")
		}
	}
	return s.Store.SetJSON(ctx, store.KeyInstallmentConfig, cfg)
}
