package shipping

import (
	"net/http"

	"github.com/noah-isme/backend-loja/internal/common"
)

// AdminHandler exposes the shipping configuration to the admin console.
type AdminHandler struct {
	Svc *Service
}

// GetConfig handles GET /api/v1/admin/shipping-config.
func (h *AdminHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Svc.Config(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cfg})
}

// PutConfig handles PUT /api/v1/admin/shipping-config.
func (h *AdminHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg Config
	if err := common.DecodeJSON(r, &cfg); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Svc.SaveConfig(r.Context(), cfg); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cfg})
}
