package context

// RequestKey is the type for context keys shared between the request
// middleware and the log formatter.
type RequestKey string

const (
	// RequestIDKey carries the per-request correlation id
	RequestIDKey RequestKey = "requestID"
	// InitiatorIDKey carries the id of the user the request acts for
	InitiatorIDKey RequestKey = "initiatorID"
	// LogSourceKey carries the source subsystem of a log entry
	LogSourceKey RequestKey = "source"
)
