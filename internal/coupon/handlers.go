package coupon

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-loja/internal/common"
)

// AdminHandler exposes coupon CRUD to the admin console.
type AdminHandler struct {
	Svc *Service
}

// List handles GET /api/v1/admin/coupons.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.Svc.List(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": coupons})
}

// Get handles GET /api/v1/admin/coupons/{code}.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.WriteError(w, common.NotFound("coupon not found"))
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// Create handles POST /api/v1/admin/coupons.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c Coupon
	if err := common.DecodeJSON(r, &c); err != nil {
		common.WriteError(w, err)
		return
	}
	saved, err := h.Svc.Save(r.Context(), c)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": saved})
}

// Update handles PUT /api/v1/admin/coupons/{code}.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var c Coupon
	if err := common.DecodeJSON(r, &c); err != nil {
		common.WriteError(w, err)
		return
	}
	c.Code = chi.URLParam(r, "code")
	saved, err := h.Svc.Save(r.Context(), c)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": saved})
}

// Delete handles DELETE /api/v1/admin/coupons/{code}.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		if errors.Is(err, ErrNotFound) {
			common.WriteError(w, common.NotFound("coupon not found"))
			return
		}
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
