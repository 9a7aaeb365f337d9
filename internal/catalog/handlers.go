package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-loja/internal/common"
)

// Handler exposes the public catalog endpoints.
type Handler struct {
	Svc *Service
}

// List handles GET /api/v1/products. The optional city and cep query
// parameters narrow the listing to what that location may buy.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	cep := r.URL.Query().Get("cep")
	products, err := h.Svc.ListVisible(r.Context(), city, cep)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

// Get handles GET /api/v1/products/{id}. Detail pages stay reachable by
// direct link regardless of visibility so shared URLs keep working.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.WriteError(w, common.NotFound("product not found"))
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// AdminHandler exposes product CRUD to the admin console.
type AdminHandler struct {
	Svc *Service
}

// List handles GET /api/v1/admin/products.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Svc.List(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}

// Get handles GET /api/v1/admin/products/{id}.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.WriteError(w, common.NotFound("product not found"))
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// Create handles POST /api/v1/admin/products.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := common.DecodeJSON(r, &p); err != nil {
		common.WriteError(w, err)
		return
	}
	p.ID = ""
	saved, err := h.Svc.Save(r.Context(), p)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": saved})
}

// Update handles PUT /api/v1/admin/products/{id}.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Svc.Get(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			common.WriteError(w, common.NotFound("product not found"))
			return
		}
		common.WriteError(w, err)
		return
	}
	var p Product
	if err := common.DecodeJSON(r, &p); err != nil {
		common.WriteError(w, err)
		return
	}
	p.ID = id
	saved, err := h.Svc.Save(r.Context(), p)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": saved})
}

// Delete handles DELETE /api/v1/admin/products/{id}.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			common.WriteError(w, common.NotFound("product not found"))
			return
		}
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
