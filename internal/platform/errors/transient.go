package errors

// Retry semantics for transport-level failures

// Retryable reports whether the error is worth retrying at a higher level.
// Only rate limiting and transient unavailability qualify; everything else
// is either a caller bug or a permanent upstream failure.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	default:
		return false
	}
}
