package upbit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type RESTClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetKRWMarkets fetches the tradable market list and returns the KRW-quoted
// instrument codes (e.g. "KRW-BTC").
func (c *RESTClient) GetKRWMarkets(ctx context.Context) ([]string, error) {
	endpoint := c.baseURL + "/v1/market/all"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("upbit error: %s", body)
	}

	var markets []Market
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var codes []string
	for _, m := range markets {
		if strings.HasPrefix(m.Market, "KRW-") {
			codes = append(codes, m.Market)
		}
	}
	return codes, nil
}
