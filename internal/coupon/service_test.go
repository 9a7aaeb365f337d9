package coupon_test

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	validator "github.com/go-playground/validator/v10"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-loja/internal/coupon"
	"github.com/noah-isme/backend-loja/internal/obs"
	"github.com/noah-isme/backend-loja/internal/store"
)

func newService(t *testing.T) *coupon.Service {
	t.Helper()
	obs.MustRegisterDomainMetrics("test", nil)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &coupon.Service{
		Store:    &store.Store{R: client},
		Validate: validator.New(),
	}
}

func TestSaveNormalizesAndLookupIsCaseInsensitive(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, coupon.Coupon{
		Code:    " save10 ",
		Type:    coupon.TypePercentage,
		Value:   10,
		Enabled: true,
	})
	require.NoError(t, err)
	require.Equal(t, "SAVE10", saved.Code)

	got, err := svc.Lookup(ctx, "Save10")
	require.NoError(t, err)
	require.Equal(t, "SAVE10", got.Code)
	require.EqualValues(t, 0, got.CurrentUses)
}

func TestSaveRejectsPercentageOverHundred(t *testing.T) {
	svc := newService(t)

	_, err := svc.Save(context.Background(), coupon.Coupon{
		Code:    "DEMAIS",
		Type:    coupon.TypePercentage,
		Value:   150,
		Enabled: true,
	})
	require.Error(t, err)
}

func TestRedeemEnforcesCapAtomically(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.Save(ctx, coupon.Coupon{
		Code:    "UNICO",
		Type:    coupon.TypeFixed,
		Value:   500,
		MaxUses: 1,
		Enabled: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Redeem(ctx, c))
	require.ErrorIs(t, svc.Redeem(ctx, c), coupon.ErrCouponExhausted)

	got, err := svc.Lookup(ctx, "UNICO")
	require.NoError(t, err)
	require.EqualValues(t, 1, got.CurrentUses)
}

func TestReleaseUndoesRedemption(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.Save(ctx, coupon.Coupon{
		Code:    "VOLTA",
		Type:    coupon.TypeFixed,
		Value:   500,
		MaxUses: 1,
		Enabled: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Redeem(ctx, c))
	require.NoError(t, svc.Release(ctx, c))
	require.NoError(t, svc.Redeem(ctx, c), "released use can be redeemed again")
}

func TestSaveKeepsRedemptionCounter(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.Save(ctx, coupon.Coupon{
		Code:    "FIEL",
		Type:    coupon.TypeFixed,
		Value:   500,
		MaxUses: 10,
		Enabled: true,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Redeem(ctx, c))

	// editing the coupon must not reset usage history
	c.Value = 700
	c.CurrentUses = 0
	_, err = svc.Save(ctx, c)
	require.NoError(t, err)

	got, err := svc.Lookup(ctx, "FIEL")
	require.NoError(t, err)
	require.EqualValues(t, 1, got.CurrentUses)
}

func TestListSkipsCounterKeys(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Save(ctx, coupon.Coupon{Code: "A", Type: coupon.TypeFixed, Value: 100, Enabled: true})
	require.NoError(t, err)
	_, err = svc.Save(ctx, coupon.Coupon{Code: "B", Type: coupon.TypeFixed, Value: 200, Enabled: true})
	require.NoError(t, err)
	require.NoError(t, svc.Redeem(ctx, a))

	coupons, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, coupons, 2)
}

func TestDeleteRemovesCouponAndCounter(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	c, err := svc.Save(ctx, coupon.Coupon{Code: "FIM", Type: coupon.TypeFixed, Value: 100, MaxUses: 5, Enabled: true})
	require.NoError(t, err)
	require.NoError(t, svc.Redeem(ctx, c))

	require.NoError(t, svc.Delete(ctx, "fim"))

	_, err = svc.Lookup(ctx, "FIM")
	require.ErrorIs(t, err, coupon.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, "FIM"), coupon.ErrNotFound)
}
