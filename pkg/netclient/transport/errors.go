package transport

import "errors"

var (
	// ErrReceiveTimeout is returned when the response does not complete
	// within the caller's timeout.
	ErrReceiveTimeout = errors.New("transport: response reception timed out")

	// ErrSendRetriesExhausted is returned when every send attempt failed.
	// The wrapped message carries the last underlying error.
	ErrSendRetriesExhausted = errors.New("transport: send retries exhausted")

	// ErrIncompleteResponse is returned when the peer closes the
	// connection before the declared body is complete.
	ErrIncompleteResponse = errors.New("transport: connection closed before response completed")
)
