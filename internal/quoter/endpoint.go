package quoter

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultBinLimit is the number of bin arrays the DLMM quote considers when
// the caller does not ask for a specific limit.
const DefaultBinLimit = 10

// Query parameter names understood by the quoting service.
const (
	ParamNodeURL     = "nodeUrl"
	ParamPoolAddress = "poolAddress"
	ParamSwapAmount  = "swapAmount"
	ParamSwapAtoB    = "swapAtoB"
	ParamToken       = "token"
	ParamLimit       = "limit"
)

// Endpoint describes one GET route of the quoting service: its path, the
// parameters it cannot do without and the defaults for the optional ones.
type Endpoint struct {
	Name     string
	Path     string
	Required []string
	Defaults map[string]string
}

var (
	PoolInfoEndpoint = Endpoint{
		Name:     "pool-info",
		Path:     "/getPoolInfo",
		Required: []string{ParamNodeURL, ParamPoolAddress},
	}
	SwapQuoteEndpoint = Endpoint{
		Name:     "swap-quote",
		Path:     "/swapQuote",
		Required: []string{ParamNodeURL, ParamPoolAddress, ParamSwapAmount, ParamSwapAtoB},
	}
	DLMMSwapQuoteEndpoint = Endpoint{
		Name:     "dlmm-swap-quote",
		Path:     "/dlmmSwapQuote",
		Required: []string{ParamNodeURL, ParamPoolAddress, ParamSwapAmount, ParamToken},
		Defaults: map[string]string{ParamLimit: FormatLimit(DefaultBinLimit)},
	}
)

// Endpoints lists every route of the quoting service.
func Endpoints() []Endpoint {
	return []Endpoint{PoolInfoEndpoint, SwapQuoteEndpoint, DLMMSwapQuoteEndpoint}
}

// Query turns a flat parameter map into url values. Required parameters
// must be present and non-blank; missing optional ones take their default.
func (e Endpoint) Query(params map[string]string) (url.Values, error) {
	q := url.Values{}
	for _, name := range e.Required {
		v := params[name]
		if strings.TrimSpace(v) == "" {
			return nil, invalid(name, nil, "%s is required", name)
		}
		q.Set(name, v)
	}
	for name, v := range params {
		if q.Has(name) || v == "" {
			continue
		}
		q.Set(name, v)
	}
	for name, def := range e.Defaults {
		if !q.Has(name) {
			q.Set(name, def)
		}
	}
	return q, nil
}

// FormatBool encodes a boolean as the lowercase literal the service parses.
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}

// FormatLimit encodes a bin limit in base 10.
func FormatLimit(n int) string {
	return strconv.Itoa(n)
}
