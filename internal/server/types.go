package server

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Quoter  string `json:"quoter"`
	Cache   bool   `json:"cache"`
	Storage bool   `json:"snapshots"`
}

// SnapshotsResponse wraps the recent snapshot list
type SnapshotsResponse struct {
	Items any `json:"items"`
}
