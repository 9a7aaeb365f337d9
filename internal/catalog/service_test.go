package catalog_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	validator "github.com/go-playground/validator/v10"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-loja/internal/catalog"
	"github.com/noah-isme/backend-loja/internal/common"
	"github.com/noah-isme/backend-loja/internal/store"
)

func newService(t *testing.T) (*catalog.Service, *store.Store) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	st := &store.Store{R: client}
	svc := &catalog.Service{
		Store:    st,
		Cache:    catalog.NewCache(client, time.Minute),
		Validate: validator.New(),
	}
	return svc, st
}

func int64p(v int64) *int64 { return &v }

func TestSaveAssignsIDs(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, catalog.Product{
		Name:  "Caneca",
		Price: 4500,
		Variants: []catalog.Variant{
			{Name: "Cor", Options: []catalog.VariantOption{{Value: "Azul"}}},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.NotEmpty(t, p.Variants[0].ID)
	require.NotEmpty(t, p.Variants[0].Options[0].ID)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Caneca", got.Name)
}

func TestSaveRejectsBadVisibilityRange(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Save(context.Background(), catalog.Product{
		Name:  "Caneca",
		Price: 4500,
		Visibility: catalog.Visibility{
			Mode:     catalog.VisibilityCEPRange,
			StartCEP: "01999999",
			EndCEP:   "01000000",
		},
	})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "MALFORMED_CEP_RANGE", appErr.Code)
}

func TestSaveRejectsBadShippingRuleType(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Save(context.Background(), catalog.Product{
		Name:         "Caneca",
		Price:        4500,
		ShippingRule: &catalog.ShippingRule{Enabled: true, Type: "teleporte"},
	})
	require.Error(t, err)
}

func TestSaveSyncsStockCounter(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, catalog.Product{Name: "Caneca", Price: 4500, Stock: int64p(7)})
	require.NoError(t, err)

	stock, err := st.GetCounter(ctx, store.StockKey(p.ID))
	require.NoError(t, err)
	require.EqualValues(t, 7, stock)

	// switching stock management off drops the counter
	p.Stock = nil
	_, err = svc.Save(ctx, p)
	require.NoError(t, err)
	stock, err = st.GetCounter(ctx, store.StockKey(p.ID))
	require.NoError(t, err)
	require.EqualValues(t, 0, stock)
}

func TestListSortsByNameAndCaches(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, catalog.Product{Name: "Zebra", Price: 100})
	require.NoError(t, err)
	_, err = svc.Save(ctx, catalog.Product{Name: "Abacaxi", Price: 100})
	require.NoError(t, err)

	products, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "Abacaxi", products[0].Name)

	// cached listing is served until an admin mutation invalidates it
	again, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, products, again)

	_, err = svc.Save(ctx, catalog.Product{Name: "Banana", Price: 100})
	require.NoError(t, err)
	products, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
}

func TestListVisibleFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, catalog.Product{Name: "Todos", Price: 100})
	require.NoError(t, err)
	_, err = svc.Save(ctx, catalog.Product{
		Name:  "So Campinas",
		Price: 100,
		Visibility: catalog.Visibility{
			Mode:   catalog.VisibilityCities,
			Cities: []string{"Campinas"},
		},
	})
	require.NoError(t, err)
	_, err = svc.Save(ctx, catalog.Product{
		Name:  "So Centro SP",
		Price: 100,
		Visibility: catalog.Visibility{
			Mode:     catalog.VisibilityCEPRange,
			StartCEP: "01000000",
			EndCEP:   "01999999",
		},
	})
	require.NoError(t, err)

	visible, err := svc.ListVisible(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, visible, 1, "restricted products need a location to match")

	visible, err = svc.ListVisible(ctx, "campinas", "")
	require.NoError(t, err)
	require.Len(t, visible, 2)

	visible, err = svc.ListVisible(ctx, "", "01310-100")
	require.NoError(t, err)
	require.Len(t, visible, 2)
}

func TestDeleteRemovesProductAndStock(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	p, err := svc.Save(ctx, catalog.Product{Name: "Caneca", Price: 4500, Stock: int64p(3)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err = svc.Get(ctx, p.ID)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	stock, err := st.GetCounter(ctx, store.StockKey(p.ID))
	require.NoError(t, err)
	require.EqualValues(t, 0, stock)
	require.ErrorIs(t, svc.Delete(ctx, p.ID), catalog.ErrNotFound)
}
