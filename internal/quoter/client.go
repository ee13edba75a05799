package quoter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "http://localhost:3005"

// Client issues GET requests against the local quoting service. It holds no
// mutable state after construction and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// ClientConfig holds configuration for the quote client
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  *logrus.Logger

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// NewClient creates a quote client for the service at cfg.BaseURL
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// GetPoolInfo fetches DYN pool metadata: token mints, reserves, LP supply
// and virtual price.
func (c *Client) GetPoolInfo(ctx context.Context, nodeURL, poolAddress string) (json.RawMessage, error) {
	if err := ValidateAddress(ParamPoolAddress, poolAddress); err != nil {
		return nil, err
	}
	return c.Do(ctx, PoolInfoEndpoint, map[string]string{
		ParamNodeURL:     nodeURL,
		ParamPoolAddress: poolAddress,
	})
}

// GetSwapQuote asks for a DYN pool quote. swapAmount is a base-10 string in
// the input token's smallest unit; swapAtoB picks token A as the input.
func (c *Client) GetSwapQuote(ctx context.Context, nodeURL, poolAddress, swapAmount string, swapAtoB bool) (json.RawMessage, error) {
	if err := ValidateAddress(ParamPoolAddress, poolAddress); err != nil {
		return nil, err
	}
	if err := ValidateAmount(swapAmount); err != nil {
		return nil, err
	}
	return c.Do(ctx, SwapQuoteEndpoint, map[string]string{
		ParamNodeURL:     nodeURL,
		ParamPoolAddress: poolAddress,
		ParamSwapAmount:  swapAmount,
		ParamSwapAtoB:    FormatBool(swapAtoB),
	})
}

type dlmmOptions struct {
	limit int
}

// DLMMOption tweaks a DLMM quote request.
type DLMMOption func(*dlmmOptions)

// WithLimit bounds the number of bin arrays the service walks.
func WithLimit(n int) DLMMOption {
	return func(o *dlmmOptions) { o.limit = n }
}

// GetDLMMSwapQuote asks for a DLMM pool quote. token is the mint being sold
// and must be one of the pool's two tokens. The bin limit defaults to
// DefaultBinLimit.
func (c *Client) GetDLMMSwapQuote(ctx context.Context, nodeURL, poolAddress, swapAmount, token string, opts ...DLMMOption) (json.RawMessage, error) {
	o := dlmmOptions{limit: DefaultBinLimit}
	for _, opt := range opts {
		opt(&o)
	}

	if err := ValidateAddress(ParamPoolAddress, poolAddress); err != nil {
		return nil, err
	}
	if err := ValidateAmount(swapAmount); err != nil {
		return nil, err
	}
	if err := ValidateAddress(ParamToken, token); err != nil {
		return nil, err
	}
	if o.limit < 0 {
		return nil, invalid(ParamLimit, nil, "invalid %s %d: must not be negative", ParamLimit, o.limit)
	}

	return c.Do(ctx, DLMMSwapQuoteEndpoint, map[string]string{
		ParamNodeURL:     nodeURL,
		ParamPoolAddress: poolAddress,
		ParamSwapAmount:  swapAmount,
		ParamToken:       token,
		ParamLimit:       FormatLimit(o.limit),
	})
}

// Do performs one GET against ep. A 200 response body is returned verbatim;
// any other status yields *RemoteQueryError and a missing response yields
// *TransportError. Nothing is retried.
func (c *Client) Do(ctx context.Context, ep Endpoint, params map[string]string) (json.RawMessage, error) {
	q, err := ep.Query(params)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + ep.Path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	log := c.logger.WithFields(logrus.Fields{
		"endpoint":   ep.Name,
		"request_id": reqID,
	})

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Debug("quote request failed")
		return nil, &TransportError{Endpoint: ep.Name, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: ep.Name, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	log.WithFields(logrus.Fields{
		"status": res.StatusCode,
		"took":   time.Since(start),
	}).Debug("quote request")

	if res.StatusCode != http.StatusOK {
		return nil, &RemoteQueryError{Endpoint: ep.Name, StatusCode: res.StatusCode, Body: body}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("failed to decode %s response: invalid json", ep.Name)
	}
	return json.RawMessage(body), nil
}
