package models

import (
	"encoding/json"
	"time"
)

// PoolSnapshot is one pool entry returned by the public pool API, as seen
// at FetchedAt. Raw keeps the full entry since the API schema is not ours.
type PoolSnapshot struct {
	PoolAddress string          `json:"pool_address"`
	PoolName    string          `json:"pool_name,omitempty"`
	TVL         string          `json:"pool_tvl,omitempty"`
	FetchedAt   time.Time       `json:"fetched_at"`
	Raw         json.RawMessage `json:"raw"`
}
