package meteora

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aman-zulfiqar/meteora-quoter/internal/constants"
	"github.com/aman-zulfiqar/meteora-quoter/internal/models"
	"github.com/aman-zulfiqar/meteora-quoter/internal/quoter"
)

const (
	DefaultBaseURL = "https://amm-v2.meteora.ag"

	poolsEndpoint = "meteora-pools"
)

// Client reads pool metadata from the public Meteora AMM API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetPools fetches the pools with the given addresses. Failures use the same
// error types as the quote client: *quoter.TransportError when nothing came
// back, *quoter.RemoteQueryError for a non-200 status.
func (c *Client) GetPools(ctx context.Context, addresses ...string) ([]models.PoolSnapshot, error) {
	if len(addresses) == 0 {
		return nil, fmt.Errorf("at least one pool address is required")
	}
	if len(addresses) > constants.MaxPoolsPerRequest {
		return nil, fmt.Errorf("too many pool addresses: %d > %d", len(addresses), constants.MaxPoolsPerRequest)
	}

	q := url.Values{}
	for _, a := range addresses {
		if err := quoter.ValidateAddress("address", a); err != nil {
			return nil, err
		}
		q.Add("address", strings.TrimSpace(a))
	}

	u := c.BaseURL + "/pools?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("accept", "application/json")

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, &quoter.TransportError{Endpoint: poolsEndpoint, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &quoter.TransportError{Endpoint: poolsEndpoint, Err: err}
	}
	if res.StatusCode != http.StatusOK {
		return nil, &quoter.RemoteQueryError{Endpoint: poolsEndpoint, StatusCode: res.StatusCode, Body: body}
	}

	return decodePools(body, time.Now().UTC())
}

func decodePools(body []byte, fetchedAt time.Time) ([]models.PoolSnapshot, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode meteora pools response: %w", err)
	}

	out := make([]models.PoolSnapshot, 0, len(entries))
	for _, raw := range entries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode meteora pool entry: %w", err)
		}
		out = append(out, models.PoolSnapshot{
			PoolAddress: scalar(fields["pool_address"]),
			PoolName:    scalar(fields["pool_name"]),
			TVL:         scalar(fields["pool_tvl"]),
			FetchedAt:   fetchedAt,
			Raw:         raw,
		})
	}
	return out, nil
}

// scalar renders a JSON string or number as text; anything else is empty.
func scalar(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
