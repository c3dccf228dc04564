package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/iliyamo/bola-na-rede/internal/model"
)

type viaCEPResponse struct {
	Cep        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	// ViaCEP answers 200 with {"erro": true} (older API: "true") for unknown codes.
	Erro json.RawMessage `json:"erro"`
}

func (r viaCEPResponse) notFound() bool {
	switch string(r.Erro) {
	case "true", `"true"`:
		return true
	}
	return false
}

// LookupAddress fetches the address of an 8-digit postal code.  Punctuation
// such as "01310-100" is ignored.
func (c *Client) LookupAddress(ctx context.Context, postalCode string) (Address, error) {
	cep := model.DigitsOnly(postalCode)
	if len(cep) != 8 {
		return Address{}, ErrInvalidPostalCode
	}

	url := fmt.Sprintf("%s/%s/json/", c.viaCEPURL, cep)
	var body viaCEPResponse
	status, err := c.getJSON(ctx, url, &body)
	if err != nil {
		return Address{}, err
	}
	if status == http.StatusBadRequest || status == http.StatusNotFound {
		return Address{}, ErrNotFound
	}
	if body.notFound() {
		return Address{}, ErrNotFound
	}
	return Address{
		PostalCode:   cep,
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		Region:       body.UF,
	}, nil
}

// getJSON performs a GET and decodes a 2xx body into out.  4xx statuses are
// returned to the caller undecoded; 5xx and transport errors wrap ErrUpstream.
func (c *Client) getJSON(ctx context.Context, url string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return resp.StatusCode, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	case resp.StatusCode >= 400:
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return resp.StatusCode, nil
}
