package coupon

import (
	"context"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-loja/internal/common"
	"github.com/noah-isme/backend-loja/internal/obs"
	"github.com/noah-isme/backend-loja/internal/store"
)

// ErrNotFound indicates the coupon document does not exist.
var ErrNotFound = errors.New("coupon: not found")

// Service handles coupon persistence and atomic redemption. The redemption
// counter lives in a separate key from the document so increments go through
// a capped Lua script instead of read-modify-write.
type Service struct {
	Store    *store.Store
	Validate *validator.Validate
}

// Lookup loads a coupon by code, overlaying the live redemption counter.
func (s *Service) Lookup(ctx context.Context, code string) (Coupon, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return Coupon{}, ErrNotFound
	}
	var c Coupon
	found, err := s.Store.GetJSON(ctx, store.CouponKey(normalized), &c)
	if err != nil {
		return Coupon{}, err
	}
	if !found {
		return Coupon{}, ErrNotFound
	}
	uses, err := s.Store.GetCounter(ctx, store.CouponUsesKey(normalized))
	if err != nil {
		return Coupon{}, err
	}
	c.CurrentUses = uses
	return c, nil
}

// Redeem atomically increments the redemption counter, refusing once the cap
// is reached. Called during order placement only.
func (s *Service) Redeem(ctx context.Context, c Coupon) error {
	_, ok, err := s.Store.IncrCapped(ctx, store.CouponUsesKey(c.Code), c.MaxUses)
	if err != nil {
		return err
	}
	if !ok {
		obs.CouponRedemptionsTotal.WithLabelValues("exhausted").Inc()
		return ErrCouponExhausted
	}
	obs.CouponRedemptionsTotal.WithLabelValues("redeemed").Inc()
	return nil
}

// Release undoes a redemption after a failed order placement.
func (s *Service) Release(ctx context.Context, c Coupon) error {
	return s.Store.R.Decr(ctx, store.CouponUsesKey(c.Code)).Err()
}

// List returns every authored coupon with live counters.
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	keys, err := s.Store.Keys(ctx, store.CouponPattern())
	if err != nil {
		return nil, err
	}
	coupons := make([]Coupon, 0, len(keys))
	for _, key := range keys {
		if store.IsCouponUsesKey(key) {
			continue
		}
		var c Coupon
		found, err := s.Store.GetJSON(ctx, key, &c)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		uses, err := s.Store.GetCounter(ctx, store.CouponUsesKey(c.Code))
		if err != nil {
			return nil, err
		}
		c.CurrentUses = uses
		coupons = append(coupons, c)
	}
	return coupons, nil
}

// Save validates and persists a coupon document. The redemption counter is
// left untouched so edits cannot reset usage history.
func (s *Service) Save(ctx context.Context, c Coupon) (Coupon, error) {
	c.Code = NormalizeCode(c.Code)
	if c.Code == "" {
		return Coupon{}, common.BadRequest("VALIDATION", "coupon code is required")
	}
	if s.Validate != nil {
		if err := s.Validate.Struct(c); err != nil {
			return Coupon{}, common.NewAppError("VALIDATION", "invalid coupon", http.StatusUnprocessableEntity, err)
		}
	}
	if c.Type == TypePercentage && c.Value > 100 {
		return Coupon{}, common.BadRequest("VALIDATION", "percentage value cannot exceed 100")
	}
	c.CurrentUses = 0
	if err := s.Store.SetJSON(ctx, store.CouponKey(c.Code), c); err != nil {
		return Coupon{}, err
	}
	return c, nil
}

// Delete removes a coupon and its counter.
func (s *Service) Delete(ctx context.Context, code string) error {
	normalized := NormalizeCode(code)
	var c Coupon
	found, err := s.Store.GetJSON(ctx, store.CouponKey(normalized), &c)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	if err := s.Store.Delete(ctx, store.CouponKey(normalized)); err != nil {
		return err
	}
	return s.Store.Delete(ctx, store.CouponUsesKey(normalized))
}
