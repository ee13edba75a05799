package quoter

import (
	"encoding/json"
	"fmt"
)

// PoolInfo is the shape /getPoolInfo returns for a DYN pool. Amounts stay
// strings so no precision is lost.
type PoolInfo struct {
	PoolAddress     string      `json:"poolAddress"`
	PoolTokenMint   string      `json:"poolTokenMint"`
	LockedLpAmount  string      `json:"lockedLpAmount"`
	LpSupply        string      `json:"lpSupply"`
	TokenA          TokenAmount `json:"tokenA"`
	TokenB          TokenAmount `json:"tokenB"`
	VirtualPrice    float64     `json:"virtualPrice"`
	VirtualPriceRaw string      `json:"virtualPriceRaw"`
}

type TokenAmount struct {
	Address  string `json:"address"`
	Amount   string `json:"amount"`
	Decimals uint8  `json:"decimals"`
}

// SwapQuote is the shape /swapQuote returns.
type SwapQuote struct {
	SwapInAmount  string `json:"swapInAmount"`
	SwapOutAmount string `json:"swapOutAmount"`
}

// DLMMSwapQuote holds the fields of a /dlmmSwapQuote response that callers
// usually care about. The service sends more; use the raw message for those.
type DLMMSwapQuote struct {
	ConsumedInAmount string   `json:"consumedInAmount"`
	OutAmount        string   `json:"outAmount"`
	Fee              string   `json:"fee"`
	ProtocolFee      string   `json:"protocolFee"`
	MinOutAmount     string   `json:"minOutAmount"`
	BinArraysPubkey  []string `json:"binArraysPubkey"`
}

func DecodePoolInfo(raw json.RawMessage) (*PoolInfo, error) {
	var out PoolInfo
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode pool info: %w", err)
	}
	return &out, nil
}

func DecodeSwapQuote(raw json.RawMessage) (*SwapQuote, error) {
	var out SwapQuote
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode swap quote: %w", err)
	}
	return &out, nil
}

func DecodeDLMMSwapQuote(raw json.RawMessage) (*DLMMSwapQuote, error) {
	var out DLMMSwapQuote
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode dlmm swap quote: %w", err)
	}
	return &out, nil
}
