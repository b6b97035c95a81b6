// Package api provides the HTTP API server exposing the ingestion and
// query entrypoints plus the supporting maintenance operations.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8422")
	ListenAddr string
}

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
