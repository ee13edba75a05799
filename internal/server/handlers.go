package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/meteora-quoter/internal/cache"
	"github.com/aman-zulfiqar/meteora-quoter/internal/quoter"
	"github.com/aman-zulfiqar/meteora-quoter/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Quoter is the quote client surface the handlers use
type Quoter interface {
	BaseURL() string
	GetPoolInfo(ctx context.Context, nodeURL, poolAddress string) (json.RawMessage, error)
	GetSwapQuote(ctx context.Context, nodeURL, poolAddress, swapAmount string, swapAtoB bool) (json.RawMessage, error)
	GetDLMMSwapQuote(ctx context.Context, nodeURL, poolAddress, swapAmount, token string, opts ...quoter.DLMMOption) (json.RawMessage, error)
}

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Quoter    Quoter                 // Local quoting service client
	NodeURL   string                 // Default nodeUrl when a request omits it
	Cache     storage.QuoteCache     // Optional Redis quote cache
	CacheTTL  time.Duration          // Lifetime of cached quotes
	Snapshots storage.SnapshotReader // Optional recent pool snapshots
	DevMode   bool                   // Enable detailed error responses in development
	Logger    *logrus.Logger         // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		OK:      true,
		Quoter:  h.Quoter.BaseURL(),
		Cache:   h.Cache != nil,
		Storage: h.Snapshots != nil,
	})
}

// RecentSnapshots returns the most recent pool snapshots recorded by the poller
// Accepts limit query parameter (default: 20, range: 1-100)
func (h *Handlers) RecentSnapshots(c echo.Context) error {
	if h.Snapshots == nil {
		return h.err(c, http.StatusServiceUnavailable, "snapshots are not configured", nil)
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 100 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 100"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Snapshots.GetRecentSnapshots(ctx, int64(limit))
	if err != nil {
		h.Logger.WithError(err).Error("failed to get snapshots")
		return h.err(c, http.StatusInternalServerError, "failed to get snapshots", nil)
	}
	return c.JSON(http.StatusOK, SnapshotsResponse{Items: items})
}

func (h *Handlers) nodeURL(c echo.Context) string {
	if v := strings.TrimSpace(c.QueryParam(quoter.ParamNodeURL)); v != "" {
		return v
	}
	return h.NodeURL
}

// quoteFailed maps a quote client error onto an HTTP response
func (h *Handlers) quoteFailed(c echo.Context, ep quoter.Endpoint, err error) error {
	var (
		ve *quoter.ValidationError
		re *quoter.RemoteQueryError
		te *quoter.TransportError
	)
	switch {
	case errors.As(err, &ve):
		return h.err(c, http.StatusBadRequest, "invalid "+ve.Field, map[string]any{ve.Field: ve.Msg})
	case errors.As(err, &re):
		h.Logger.WithFields(logrus.Fields{
			"endpoint": ep.Name,
			"status":   re.StatusCode,
		}).Warn("quoting service rejected request")
		code := http.StatusBadGateway
		if re.StatusCode >= 400 && re.StatusCode < 500 {
			code = re.StatusCode
		}
		return h.err(c, code, "quote failed", map[string]any{"status": re.StatusCode, "err": re.Message()})
	case errors.As(err, &te):
		h.Logger.WithError(err).WithField("endpoint", ep.Name).Error("quoting service unreachable")
		code := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			code = http.StatusGatewayTimeout
		}
		return h.err(c, code, "quoting service unreachable", map[string]any{"err": te.Err.Error()})
	default:
		h.Logger.WithError(err).WithField("endpoint", ep.Name).Error("quote failed")
		return h.err(c, http.StatusBadGateway, "quote failed", map[string]any{"err": err.Error()})
	}
}

// cachedQuote serves a quote from the cache when present, otherwise calls
// fetch and stores the result. Cache failures only cost a round trip.
func (h *Handlers) cachedQuote(c echo.Context, ep quoter.Endpoint, params map[string]string, fetch func(ctx context.Context) (json.RawMessage, error)) error {
	q, err := ep.Query(params)
	if err != nil {
		return h.quoteFailed(c, ep, err)
	}
	key := cache.QuoteKey(ep.Name, q.Encode())

	ctx, cancel := h.withTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	if h.Cache != nil {
		body, err := h.Cache.GetQuote(ctx, key)
		switch {
		case err == nil:
			c.Response().Header().Set("X-Cache", "HIT")
			return c.JSONBlob(http.StatusOK, body)
		case !errors.Is(err, cache.ErrCacheMiss):
			h.Logger.WithError(err).Warn("quote cache read failed")
		}
	}

	body, err := fetch(ctx)
	if err != nil {
		return h.quoteFailed(c, ep, err)
	}

	if h.Cache != nil {
		if err := h.Cache.SetQuote(ctx, key, body, h.CacheTTL); err != nil {
			h.Logger.WithError(err).Warn("quote cache write failed")
		}
		c.Response().Header().Set("X-Cache", "MISS")
	}
	return c.JSONBlob(http.StatusOK, body)
}
