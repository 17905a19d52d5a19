package gstin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// APIClient fetches taxpayer details from the external GSTIN service.
type APIClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAPIClient constructs the client. Returns nil when no base URL is
// configured, which disables the API tier of the lookup chain.
func NewAPIClient(baseURL, apiKey string) *APIClient {
	if baseURL == "" {
		return nil
	}
	return &APIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type apiResponse struct {
	GSTIN     string `json:"gstin"`
	LegalName string `json:"lgnm"`
	TradeName string `json:"tradeNam"`
	Status    string `json:"sts"`
	Address   struct {
		Building string `json:"bno"`
		Street   string `json:"st"`
		City     string `json:"city"`
		State    string `json:"stcd"`
	} `json:"pradr"`
}

// Fetch looks up a single GSTIN.
func (c *APIClient) Fetch(ctx context.Context, gstin string) (Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+gstin, nil)
	if err != nil {
		return Record{}, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return Record{}, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return Record{}, fmt.Errorf("gstin: api status %d", res.StatusCode)
	}
	var body apiResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return Record{}, err
	}
	address := body.Address.Building
	if body.Address.Street != "" {
		address += ", " + body.Address.Street
	}
	if body.Address.City != "" {
		address += ", " + body.Address.City
	}
	return Record{
		GSTIN:     gstin,
		LegalName: body.LegalName,
		TradeName: body.TradeName,
		State:     body.Address.State,
		StateCode: StateCode(gstin),
		Address:   address,
		Status:    body.Status,
		FetchedAt: time.Now(),
	}, nil
}
