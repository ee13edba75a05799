package quoter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "true", FormatBool(true))
	assert.Equal(t, "false", FormatBool(false))
}

func TestFormatLimit(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 99, 100, 12345} {
		got := FormatLimit(n)
		assert.Equal(t, fmt.Sprintf("%d", n), got)
		if n != 0 {
			assert.NotEqual(t, byte('0'), got[0], "no leading zeros")
		}
		assert.NotContains(t, got, "+")
	}
}

func TestEndpoint_QueryRequired(t *testing.T) {
	_, err := SwapQuoteEndpoint.Query(map[string]string{
		ParamNodeURL:     "http://node",
		ParamPoolAddress: testDynPool,
		ParamSwapAmount:  "1",
	})
	require.Error(t, err)
	assert.Equal(t, "swapAtoB is required", err.Error())
	assert.True(t, IsValidation(err))

	_, err = PoolInfoEndpoint.Query(map[string]string{ParamNodeURL: "   ", ParamPoolAddress: testDynPool})
	assert.Error(t, err)
}

func TestEndpoint_QueryDefaults(t *testing.T) {
	params := map[string]string{
		ParamNodeURL:     "http://node",
		ParamPoolAddress: testDLMMPool,
		ParamSwapAmount:  "100",
		ParamToken:       testUSDC,
	}

	q, err := DLMMSwapQuoteEndpoint.Query(params)
	require.NoError(t, err)
	assert.Equal(t, "10", q.Get(ParamLimit))

	params[ParamLimit] = "3"
	q, err = DLMMSwapQuoteEndpoint.Query(params)
	require.NoError(t, err)
	assert.Equal(t, "3", q.Get(ParamLimit))
}

func TestEndpoint_QueryEncodesVerbatim(t *testing.T) {
	q, err := SwapQuoteEndpoint.Query(map[string]string{
		ParamNodeURL:     "http://node",
		ParamPoolAddress: testDynPool,
		ParamSwapAmount:  "1000000000",
		ParamSwapAtoB:    FormatBool(false),
	})
	require.NoError(t, err)

	enc := q.Encode()
	assert.Contains(t, enc, "poolAddress=Gc9yHrCpcUMXCw1YhAVTcrUb6ZGbCv7ns363FZpDTbHW")
	assert.Contains(t, enc, "swapAmount=1000000000")
	assert.Contains(t, enc, "swapAtoB=false")
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress("poolAddress", testDynPool))
	assert.NoError(t, ValidateAddress("token", testUSDC))
	assert.Error(t, ValidateAddress("token", ""))
	assert.Error(t, ValidateAddress("token", "0OIl"))
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount("0"))
	assert.NoError(t, ValidateAmount("99999999999999999999999999999"))
	assert.Error(t, ValidateAmount(""))
	assert.Error(t, ValidateAmount("1e9"))
	assert.Error(t, ValidateAmount(" 1"))
}
