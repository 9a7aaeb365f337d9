package shipping

import (
	"context"
	"net/http"

	"github.com/noah-isme/backend-loja/internal/common"
	"github.com/noah-isme/backend-loja/internal/store"
)

// Service persists the store-wide shipping configuration.
type Service struct {
	Store *store.Store
}

// Config loads the shipping configuration, falling back to a zero config
// whose base cost is the only active rule.
func (s *Service) Config(ctx context.Context) (Config, error) {
	var cfg Config
	_, err := s.Store.GetJSON(ctx, store.KeyShippingConfig, &cfg)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SaveConfig validates region CEP ranges and persists the configuration.
// Malformed ranges are rejected here so checkout never sees them.
func (s *Service) SaveConfig(ctx context.Context, cfg Config) error {
	if cfg.BaseCost < 0 {
		return common.BadRequest("VALIDATION", "base cost must not be negative")
	}
	for _, region := range cfg.FreeRegions {
		if region.StartCEP == "" && region.EndCEP == "" {
			if len(region.States) == 0 && len(region.Cities) == 0 {
				return common.BadRequest("VALIDATION", "free shipping region must define a CEP range or locations")
			}
			continue
		}
		if err := ValidateCEPRange(region.StartCEP, region.EndCEP); err != nil {
			return common.NewAppError("MALFORMED_CEP_RANGE", "invalid free shipping region", http.StatusBadRequest, err)
		}
	}
	for _, region := range cfg.FixedRegions {
		if err := ValidateCEPRange(region.StartCEP, region.EndCEP); err != nil {
			return common.NewAppError("MALFORMED_CEP_RANGE", "invalid fixed shipping region", http.StatusBadRequest, err)
		}
		if region.Cost < 0 {
			return common.BadRequest("VALIDATION", "fixed region cost must not be negative")
		}
	}
	if cfg.Correios != nil && cfg.Correios.Enabled {
		if cfg.Correios.OriginCEP != "" {
			if _, err := CEPValue(cfg.Correios.OriginCEP); err != nil {
				return common.NewAppError("MALFORMED_CEP_RANGE", "invalid correios origin CEP", http.StatusBadRequest, err)
			}
		}
	}
	return s.Store.SetJSON(ctx, store.KeyShippingConfig, cfg)
}
