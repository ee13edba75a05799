package quoter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testNodeURL  = "https://api.mainnet-beta.solana.com"
	testDynPool  = "Gc9yHrCpcUMXCw1YhAVTcrUb6ZGbCv7ns363FZpDTbHW"
	testDLMMPool = "9d9mb8kooFfaD3SctgZtkxQypkshx6ezhbKio89ixyy2"
	testUSDC     = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// recorder captures the requests the mock quoting service receives.
type recorder struct {
	mu       sync.Mutex
	queries  []url.Values
	rawQuery []string
	headers  []http.Header
}

func (r *recorder) record(c echo.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, c.QueryParams())
	r.rawQuery = append(r.rawQuery, c.Request().URL.RawQuery)
	r.headers = append(r.headers, c.Request().Header.Clone())
}

func (r *recorder) last(t *testing.T) (url.Values, string, http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.queries, "mock service received no request")
	i := len(r.queries) - 1
	return r.queries[i], r.rawQuery[i], r.headers[i]
}

// newMockService serves all three routes with the given status and body.
func newMockService(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	rec := &recorder{}
	e := echo.New()
	h := func(c echo.Context) error {
		rec.record(c)
		return c.Blob(status, echo.MIMEApplicationJSON, []byte(body))
	}
	for _, ep := range Endpoints() {
		e.GET(ep.Path, h)
	}
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, rec
}

func newTestClient(baseURL string) *Client {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	return NewClient(ClientConfig{BaseURL: baseURL, Timeout: 5 * time.Second, Logger: logger})
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(ClientConfig{})
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.NotNil(t, c.logger)

	c = NewClient(ClientConfig{BaseURL: "  http://quoter:3005/  "})
	assert.Equal(t, "http://quoter:3005", c.BaseURL())
}

func TestGetPoolInfo_ReturnsBodyUnchanged(t *testing.T) {
	srv, rec := newMockService(t, http.StatusOK, `{"reserve":123}`)
	c := newTestClient(srv.URL)

	out, err := c.GetPoolInfo(context.Background(), testNodeURL, testDynPool)
	require.NoError(t, err)
	assert.Equal(t, `{"reserve":123}`, string(out))

	q, _, headers := rec.last(t)
	assert.Equal(t, testNodeURL, q.Get(ParamNodeURL))
	assert.Equal(t, testDynPool, q.Get(ParamPoolAddress))
	assert.Len(t, q, 2)
	assert.NotEmpty(t, headers.Get("X-Request-ID"))
	assert.Equal(t, "application/json", headers.Get("Accept"))
}

func TestGetSwapQuote_SerializesBoolLowercase(t *testing.T) {
	srv, rec := newMockService(t, http.StatusOK, `{"swapInAmount":"1","swapOutAmount":"2"}`)
	c := newTestClient(srv.URL)

	for _, tc := range []struct {
		in   bool
		want string
	}{
		{true, "true"},
		{false, "false"},
	} {
		_, err := c.GetSwapQuote(context.Background(), testNodeURL, testDynPool, "1000", tc.in)
		require.NoError(t, err)

		q, _, _ := rec.last(t)
		assert.Equal(t, tc.want, q.Get(ParamSwapAtoB))
		assert.NotEqual(t, "True", q.Get(ParamSwapAtoB))
		assert.NotEqual(t, "1", q.Get(ParamSwapAtoB))
	}
}

func TestGetSwapQuote_RemoteQueryError(t *testing.T) {
	srv, _ := newMockService(t, http.StatusNotFound, "not found")
	c := newTestClient(srv.URL)

	var (
		out json.RawMessage
		err error
	)
	assert.NotPanics(t, func() {
		out, err = c.GetSwapQuote(context.Background(), testNodeURL, testDynPool, "1000", false)
	})
	require.Error(t, err)
	assert.Nil(t, out)

	var re *RemoteQueryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
	assert.Equal(t, "not found", string(re.Body))
	assert.Equal(t, "swap-quote", re.Endpoint)
	assert.True(t, IsRemote(err))
	assert.False(t, IsTransport(err))

	code, ok := StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRemoteQueryError_Message(t *testing.T) {
	re := &RemoteQueryError{StatusCode: 400, Body: []byte(`{"error":"missing nodeUrl or poolAddress"}`)}
	assert.Equal(t, "missing nodeUrl or poolAddress", re.Message())
	assert.Contains(t, re.Error(), "http 400")

	re = &RemoteQueryError{StatusCode: 502, Body: []byte("bad gateway\n")}
	assert.Equal(t, "bad gateway", re.Message())

	re = &RemoteQueryError{Endpoint: "pool-info", StatusCode: 500}
	assert.Equal(t, "quoter pool-info: http 500", re.Error())
}

func TestTransportError_AllOperations(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close() // nothing listens here any more

	c := newTestClient(baseURL)
	ctx := context.Background()

	calls := map[string]func() (json.RawMessage, error){
		"pool-info": func() (json.RawMessage, error) {
			return c.GetPoolInfo(ctx, testNodeURL, testDynPool)
		},
		"swap-quote": func() (json.RawMessage, error) {
			return c.GetSwapQuote(ctx, testNodeURL, testDynPool, "1000", true)
		},
		"dlmm-swap-quote": func() (json.RawMessage, error) {
			return c.GetDLMMSwapQuote(ctx, testNodeURL, testDLMMPool, "100000000", testUSDC)
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			out, err := call()
			require.Error(t, err)
			assert.Nil(t, out)

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, name, te.Endpoint)
			assert.True(t, IsTransport(err))
			assert.False(t, IsRemote(err))

			_, ok := StatusCode(err)
			assert.False(t, ok, "transport failures carry no status code")
		})
	}
}

func TestTransportError_ContextCancelled(t *testing.T) {
	srv, _ := newMockService(t, http.StatusOK, `{}`)
	c := newTestClient(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetPoolInfo(ctx, testNodeURL, testDynPool)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetDLMMSwapQuote_DefaultLimit(t *testing.T) {
	srv, rec := newMockService(t, http.StatusOK, `{"outAmount":"42"}`)
	c := newTestClient(srv.URL)

	_, err := c.GetDLMMSwapQuote(context.Background(), testNodeURL, testDLMMPool, "100000000", testUSDC)
	require.NoError(t, err)

	q, _, _ := rec.last(t)
	assert.Equal(t, "10", q.Get(ParamLimit))
	assert.Equal(t, testUSDC, q.Get(ParamToken))
	assert.Equal(t, "100000000", q.Get(ParamSwapAmount))
}

func TestGetDLMMSwapQuote_ExplicitLimit(t *testing.T) {
	srv, rec := newMockService(t, http.StatusOK, `{"outAmount":"42"}`)
	c := newTestClient(srv.URL)

	for _, tc := range []struct {
		limit int
		want  string
	}{
		{0, "0"},
		{7, "7"},
		{25, "25"},
		{1000, "1000"},
	} {
		_, err := c.GetDLMMSwapQuote(context.Background(), testNodeURL, testDLMMPool, "5", testUSDC, WithLimit(tc.limit))
		require.NoError(t, err)

		q, _, _ := rec.last(t)
		assert.Equal(t, tc.want, q.Get(ParamLimit))
	}
}

func TestGetDLMMSwapQuote_NegativeLimitRejected(t *testing.T) {
	srv, rec := newMockService(t, http.StatusOK, `{}`)
	c := newTestClient(srv.URL)

	_, err := c.GetDLMMSwapQuote(context.Background(), testNodeURL, testDLMMPool, "5", testUSDC, WithLimit(-1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
	assert.Empty(t, rec.queries)
}

func TestQueryKeepsLargeAmountsVerbatim(t *testing.T) {
	srv, rec := newMockService(t, http.StatusOK, `{}`)
	c := newTestClient(srv.URL)

	amounts := []string{
		"1000000000",
		"18446744073709551616", // 2^64, past uint64
		"340282366920938463463374607431768211457",
	}
	for _, amt := range amounts {
		_, err := c.GetSwapQuote(context.Background(), testNodeURL, testDynPool, amt, false)
		require.NoError(t, err)

		q, raw, _ := rec.last(t)
		assert.Contains(t, raw, "poolAddress="+testDynPool)
		assert.Contains(t, raw, "swapAmount="+amt)
		assert.Equal(t, amt, q.Get(ParamSwapAmount))
	}
}

func TestValidationFailsBeforeRequest(t *testing.T) {
	srv, rec := newMockService(t, http.StatusOK, `{}`)
	c := newTestClient(srv.URL)
	ctx := context.Background()

	_, err := c.GetPoolInfo(ctx, "", testDynPool)
	assert.ErrorContains(t, err, "nodeUrl is required")

	_, err = c.GetPoolInfo(ctx, testNodeURL, "not-a-pubkey")
	assert.ErrorContains(t, err, "invalid poolAddress")

	_, err = c.GetSwapQuote(ctx, testNodeURL, testDynPool, "1.5", true)
	assert.ErrorContains(t, err, "invalid swapAmount")

	_, err = c.GetSwapQuote(ctx, testNodeURL, testDynPool, "-10", true)
	assert.ErrorContains(t, err, "invalid swapAmount")

	_, err = c.GetDLMMSwapQuote(ctx, testNodeURL, testDLMMPool, "10", "")
	assert.ErrorContains(t, err, "token is required")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ParamToken, ve.Field)
	assert.False(t, IsTransport(err))
	assert.False(t, IsRemote(err))
	assert.Empty(t, rec.queries)
}

func TestDo_InvalidJSONBody(t *testing.T) {
	srv, _ := newMockService(t, http.StatusOK, `not json`)
	c := newTestClient(srv.URL)

	_, err := c.GetPoolInfo(context.Background(), testNodeURL, testDynPool)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid json")
}

func TestOperationsAreIndependent(t *testing.T) {
	// pool info fails, the swap quote on the same client still succeeds
	e := echo.New()
	e.GET(PoolInfoEndpoint.Path, func(c echo.Context) error {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "rpc down"})
	})
	e.GET(SwapQuoteEndpoint.Path, func(c echo.Context) error {
		return c.JSON(http.StatusOK, SwapQuote{SwapInAmount: "1000", SwapOutAmount: "998"})
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.GetPoolInfo(context.Background(), testNodeURL, testDynPool)
	require.Error(t, err)
	var re *RemoteQueryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "rpc down", re.Message())

	raw, err := c.GetSwapQuote(context.Background(), testNodeURL, testDynPool, "1000", true)
	require.NoError(t, err)
	q, err := DecodeSwapQuote(raw)
	require.NoError(t, err)
	assert.Equal(t, "998", q.SwapOutAmount)
}

func TestDecodePoolInfo(t *testing.T) {
	raw := json.RawMessage(`{
		"poolAddress": "Gc9yHrCpcUMXCw1YhAVTcrUb6ZGbCv7ns363FZpDTbHW",
		"poolTokenMint": "LP11111111111111111111111111111111111111111",
		"lockedLpAmount": "0",
		"lpSupply": "123456789012345678901234",
		"tokenA": {"address": "So11111111111111111111111111111111111111112", "amount": "1000", "decimals": 9},
		"tokenB": {"address": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "amount": "2000", "decimals": 6},
		"virtualPrice": 1.0042,
		"virtualPriceRaw": "1004200000"
	}`)

	info, err := DecodePoolInfo(raw)
	require.NoError(t, err)
	assert.Equal(t, testDynPool, info.PoolAddress)
	assert.Equal(t, "123456789012345678901234", info.LpSupply)
	assert.Equal(t, uint8(9), info.TokenA.Decimals)
	assert.Equal(t, testUSDC, info.TokenB.Address)
	assert.InDelta(t, 1.0042, info.VirtualPrice, 1e-9)

	_, err = DecodePoolInfo(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}

func TestDecodeDLMMSwapQuote(t *testing.T) {
	raw := json.RawMessage(`{"consumedInAmount":"100000000","outAmount":"712","fee":"25","protocolFee":"1","minOutAmount":"705","binArraysPubkey":["A","B"],"priceImpact":"0.01"}`)
	q, err := DecodeDLMMSwapQuote(raw)
	require.NoError(t, err)
	assert.Equal(t, "712", q.OutAmount)
	assert.Equal(t, []string{"A", "B"}, q.BinArraysPubkey)
	assert.True(t, strings.HasPrefix(q.ConsumedInAmount, "1"))
}
