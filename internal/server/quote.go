package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/aman-zulfiqar/meteora-quoter/internal/quoter"
	"github.com/labstack/echo/v4"
)

// PoolInfo proxies /getPoolInfo for the pool in the path
func (h *Handlers) PoolInfo(c echo.Context) error {
	nodeURL := h.nodeURL(c)
	pool := strings.TrimSpace(c.Param("address"))

	return h.cachedQuote(c, quoter.PoolInfoEndpoint, map[string]string{
		quoter.ParamNodeURL:     nodeURL,
		quoter.ParamPoolAddress: pool,
	}, func(ctx context.Context) (json.RawMessage, error) {
		return h.Quoter.GetPoolInfo(ctx, nodeURL, pool)
	})
}

// DynQuote proxies /swapQuote for DYN pools
func (h *Handlers) DynQuote(c echo.Context) error {
	nodeURL := h.nodeURL(c)
	pool := strings.TrimSpace(c.QueryParam(quoter.ParamPoolAddress))
	amount := strings.TrimSpace(c.QueryParam(quoter.ParamSwapAmount))

	v := strings.TrimSpace(c.QueryParam(quoter.ParamSwapAtoB))
	if v == "" {
		return h.err(c, http.StatusBadRequest, "invalid swapAtoB", map[string]any{"swapAtoB": "required"})
	}
	aToB, err := strconv.ParseBool(v)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid swapAtoB", map[string]any{"swapAtoB": "must be boolean"})
	}

	return h.cachedQuote(c, quoter.SwapQuoteEndpoint, map[string]string{
		quoter.ParamNodeURL:     nodeURL,
		quoter.ParamPoolAddress: pool,
		quoter.ParamSwapAmount:  amount,
		quoter.ParamSwapAtoB:    quoter.FormatBool(aToB),
	}, func(ctx context.Context) (json.RawMessage, error) {
		return h.Quoter.GetSwapQuote(ctx, nodeURL, pool, amount, aToB)
	})
}

// DLMMQuote proxies /dlmmSwapQuote for DLMM pools
// Accepts optional limit query parameter (default: 10, range: 1-100)
func (h *Handlers) DLMMQuote(c echo.Context) error {
	nodeURL := h.nodeURL(c)
	pool := strings.TrimSpace(c.QueryParam(quoter.ParamPoolAddress))
	amount := strings.TrimSpace(c.QueryParam(quoter.ParamSwapAmount))
	token := strings.TrimSpace(c.QueryParam(quoter.ParamToken))

	limit := quoter.DefaultBinLimit
	if v := strings.TrimSpace(c.QueryParam(quoter.ParamLimit)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 100 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 100"})
	}

	return h.cachedQuote(c, quoter.DLMMSwapQuoteEndpoint, map[string]string{
		quoter.ParamNodeURL:     nodeURL,
		quoter.ParamPoolAddress: pool,
		quoter.ParamSwapAmount:  amount,
		quoter.ParamToken:       token,
		quoter.ParamLimit:       quoter.FormatLimit(limit),
	}, func(ctx context.Context) (json.RawMessage, error) {
		return h.Quoter.GetDLMMSwapQuote(ctx, nodeURL, pool, amount, token, quoter.WithLimit(limit))
	})
}
