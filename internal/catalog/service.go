package catalog

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-loja/internal/common"
	"github.com/noah-isme/backend-loja/internal/shipping"
	"github.com/noah-isme/backend-loja/internal/store"
)

// ErrNotFound indicates the requested product could not be located.
var ErrNotFound = errors.New("catalog: product not found")

const listCacheKey = "cache:catalog:list"

// Service orchestrates product persistence, validation and listing.
type Service struct {
	Store    *store.Store
	Cache    *Cache
	Validate *validator.Validate
}

// Get loads a single product by id.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	found, err := s.Store.GetJSON(ctx, store.ProductKey(id), &p)
	if err != nil {
		return Product{}, err
	}
	if !found {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// List returns all products sorted by name, served from cache when possible.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var cached []Product
	if found, err := s.Cache.GetJSON(ctx, listCacheKey, &cached); err == nil && found {
		return cached, nil
	}
	keys, err := s.Store.Keys(ctx, store.ProductPattern())
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(keys))
	for _, key := range keys {
		var p Product
		found, err := s.Store.GetJSON(ctx, key, &p)
		if err != nil {
			return nil, err
		}
		if found {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	_ = s.Cache.SetJSON(ctx, listCacheKey, products)
	return products, nil
}

// ListVisible filters the catalog down to what a buyer at the given location
// may see. City matching is case-insensitive; CEP ranges are inclusive.
func (s *Service) ListVisible(ctx context.Context, city, cep string) ([]Product, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]Product, 0, len(all))
	for _, p := range all {
		if productVisible(p, city, cep) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func productVisible(p Product, city, cep string) bool {
	switch p.Visibility.Mode {
	case "", VisibilityAll:
		return true
	case VisibilityCities:
		if city == "" {
			return false
		}
		for _, c := range p.Visibility.Cities {
			if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(city)) {
				return true
			}
		}
		return false
	case VisibilityCEPRange:
		if cep == "" {
			return false
		}
		in, err := shipping.CEPInRange(cep, p.Visibility.StartCEP, p.Visibility.EndCEP)
		return err == nil && in
	default:
		return true
	}
}

// Save validates and persists a product, assigning ids where missing and
// synchronising the managed stock counter.
func (s *Service) Save(ctx context.Context, p Product) (Product, error) {
	if s.Validate != nil {
		if err := s.Validate.Struct(p); err != nil {
			return Product{}, common.NewAppError("VALIDATION", "invalid product", http.StatusUnprocessableEntity, err)
		}
	}
	if err := validateProductRules(p); err != nil {
		return Product{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for i := range p.Variants {
		if p.Variants[i].ID == "" {
			p.Variants[i].ID = uuid.NewString()
		}
		for j := range p.Variants[i].Options {
			if p.Variants[i].Options[j].ID == "" {
				p.Variants[i].Options[j].ID = uuid.NewString()
			}
		}
	}
	if err := s.Store.SetJSON(ctx, store.ProductKey(p.ID), p); err != nil {
		return Product{}, err
	}
	if p.Managed() {
		if err := s.Store.SetCounter(ctx, store.StockKey(p.ID), *p.Stock); err != nil {
			return Product{}, err
		}
	} else {
		_ = s.Store.Delete(ctx, store.StockKey(p.ID))
	}
	s.Cache.Invalidate(ctx, listCacheKey)
	return p, nil
}

// Delete removes a product and its stock counter.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, store.ProductKey(id)); err != nil {
		return err
	}
	_ = s.Store.Delete(ctx, store.StockKey(id))
	s.Cache.Invalidate(ctx, listCacheKey)
	return nil
}

func validateProductRules(p Product) error {
	if p.ShippingRule != nil && p.ShippingRule.Enabled {
		switch p.ShippingRule.Type {
		case shipping.RuleTypeFree:
		case shipping.RuleTypeFixed:
			if p.ShippingRule.FixedCost < 0 {
				return common.BadRequest("VALIDATION", "fixed shipping cost must not be negative")
			}
		default:
			return common.BadRequest("VALIDATION", "shipping rule type must be free or fixed")
		}
	}
	if p.Visibility.Mode == VisibilityCEPRange {
		if err := shipping.ValidateCEPRange(p.Visibility.StartCEP, p.Visibility.EndCEP); err != nil {
			return common.NewAppError("MALFORMED_CEP_RANGE", "invalid visibility CEP range", http.StatusBadRequest, err)
		}
	}
	if p.InstallmentRule != nil && p.InstallmentRule.Enabled {
		if p.InstallmentRule.InterestFree > p.InstallmentRule.MaxInstallments {
			return common.BadRequest("VALIDATION", "interest-free installments cannot exceed the maximum")
		}
	}
	return nil
}
