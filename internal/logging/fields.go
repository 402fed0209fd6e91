package logging

import "log/slog"

// Common field names for consistent logging across the engine's
// components.
const (
	FieldSubject        = "subject"
	FieldSubscriptionID = "subscription_id"
	FieldQueueGroup     = "queue_group"
	FieldEndpoint       = "endpoint"
	FieldState          = "state"
	FieldError          = "error"
	FieldAttempt        = "attempt"
)

// Subject returns a slog attribute for a subject name.
func Subject(s string) slog.Attr {
	return slog.String(FieldSubject, s)
}

// SubscriptionID returns a slog attribute for a subscription id.
func SubscriptionID(id string) slog.Attr {
	return slog.String(FieldSubscriptionID, id)
}

// Endpoint returns a slog attribute for a broker endpoint address.
func Endpoint(addr string) slog.Attr {
	return slog.String(FieldEndpoint, addr)
}

// State returns a slog attribute for a connection state name.
func State(s string) slog.Attr {
	return slog.String(FieldState, s)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// Attempt returns a slog attribute for a retry/reconnect attempt count.
func Attempt(n int) slog.Attr {
	return slog.Int(FieldAttempt, n)
}
