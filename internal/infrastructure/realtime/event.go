package realtime

import (
	"encoding/json"
	"time"
)

// Close codes distinguish retryable from non-retryable closures for clients.
const (
	CloseUnauthenticated = 4001
	CloseForbidden       = 4003
	CloseNotFound        = 4004
	CloseInternalFault   = 4011
)

// Envelope is the minimal inbound frame shape: a type tag plus free-form
// fields the matched handler decodes on its own.
type Envelope struct {
	Type string `json:"type"`
}

// ErrorEvent is the outbound error frame. IsPremium is attached for quota
// errors so clients can decide whether to offer an upgrade path.
type ErrorEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error"`
	IsPremium *bool  `json:"is_premium,omitempty"`
}

// Timestamp returns the canonical outbound event timestamp.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NewErrorEvent encodes a plain error frame.
func NewErrorEvent(detail string) []byte {
	payload, _ := json.Marshal(ErrorEvent{
		Type:      "error",
		Timestamp: Timestamp(),
		Error:     detail,
	})
	return payload
}

// NewQuotaErrorEvent encodes an error frame carrying the sender's plan
// status.
func NewQuotaErrorEvent(detail string, isPremium bool) []byte {
	payload, _ := json.Marshal(ErrorEvent{
		Type:      "error",
		Timestamp: Timestamp(),
		Error:     detail,
		IsPremium: &isPremium,
	})
	return payload
}
