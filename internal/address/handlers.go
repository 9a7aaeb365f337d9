package address

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-loja/internal/common"
)

// Handler exposes the public address lookup endpoint.
type Handler struct {
	Client *Client
}

// Lookup handles GET /api/v1/address/{cep}.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	addr, err := h.Client.Lookup(r.Context(), chi.URLParam(r, "cep"))
	if err != nil {
		if errors.Is(err, ErrCEPNotFound) {
			common.WriteError(w, common.NotFound("address not found for CEP"))
			return
		}
		if common.IsAppError(err) {
			common.WriteError(w, err)
			return
		}
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "postal service unavailable", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": addr})
}
