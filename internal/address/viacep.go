package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/noah-isme/backend-loja/internal/common"
	"github.com/noah-isme/backend-loja/internal/obs"
	"github.com/noah-isme/backend-loja/internal/resilience"
	"github.com/noah-isme/backend-loja/internal/shipping"
)

// ErrCEPNotFound is returned when the postal service has no record for the CEP.
var ErrCEPNotFound = errors.New("address: cep not found")

// Address is the normalised lookup result returned to the storefront.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type viaCEPResponse struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	Erro         bool   `json:"erro"`
}

// Client looks up Brazilian postal codes against ViaCEP. Outbound calls go
// through the resilient HTTP wrapper so a flapping upstream trips the breaker
// instead of stalling checkout address forms.
type Client struct {
	BaseURL string
	HTTP    *resilience.HTTPClient
}

// Lookup resolves a CEP into a street address.
func (c *Client) Lookup(ctx context.Context, cep string) (Address, error) {
	normalized := shipping.NormalizeCEP(cep)
	if len(normalized) != 8 {
		return Address{}, common.BadRequest("INVALID_CEP", "CEP must have 8 digits")
	}
	if c == nil || c.HTTP == nil {
		return Address{}, errors.New("address: client not configured")
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = "https://viacep.com.br"
	}
	url := fmt.Sprintf("%s/ws/%s/json/", base, normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Address{}, err
	}
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		countLookup("error")
		return Address{}, fmt.Errorf("address: viacep request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusBadRequest {
		countLookup("invalid")
		return Address{}, common.BadRequest("INVALID_CEP", "CEP rejected by postal service")
	}
	if resp.StatusCode != http.StatusOK {
		countLookup("error")
		return Address{}, fmt.Errorf("address: viacep status %d", resp.StatusCode)
	}
	var payload viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		countLookup("error")
		return Address{}, fmt.Errorf("address: decode viacep response: %w", err)
	}
	if payload.Erro {
		countLookup("not_found")
		return Address{}, ErrCEPNotFound
	}
	countLookup("ok")
	return Address{
		CEP:          normalized,
		Street:       payload.Street,
		Neighborhood: payload.Neighborhood,
		City:         payload.City,
		State:        payload.State,
	}, nil
}

func countLookup(result string) {
	if obs.CEPLookupTotal != nil {
		obs.CEPLookupTotal.WithLabelValues(result).Inc()
	}
}
