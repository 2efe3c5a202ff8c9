// Package ingest holds what third-party export importers have in common.
package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int    `json:"sessions_received"`
	SessionsAdded    int    `json:"sessions_added"`
	SetsReceived     int    `json:"sets_received"`
	Message          string `json:"message,omitempty"`
}
