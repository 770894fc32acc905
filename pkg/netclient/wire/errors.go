package wire

import "errors"

// Codec errors - pre-allocated so callers can test with errors.Is.
var (
	// ErrAmbiguousEscape indicates a URL containing both pre-existing %HH
	// escapes and characters that would need encoding. Normalizing such an
	// input silently risks double-encoding, so it is rejected instead.
	ErrAmbiguousEscape = errors.New("wire: URL mixes percent-escapes with characters that need encoding")

	// ErrMissingPayload indicates a request with a payload type but no
	// payload bytes or pre-encoding length.
	ErrMissingPayload = errors.New("wire: payload bytes are required for a non-empty payload type")

	// ErrChunkSize indicates a non-positive chunk size.
	ErrChunkSize = errors.New("wire: chunk size must be greater than zero")

	// ErrEmptyChunkedPayload indicates chunked coding requested for a
	// zero-length payload.
	ErrEmptyChunkedPayload = errors.New("wire: chunked coding requires a non-empty payload")

	// ErrDeflateNotImplemented indicates deflate was requested as a request
	// content coding. Only gzip and identity are supported on the encode side.
	ErrDeflateNotImplemented = errors.New("wire: deflate content coding is not implemented for requests")

	// ErrUnsupportedContentCoding indicates a content coding outside
	// gzip/deflate/identity.
	ErrUnsupportedContentCoding = errors.New("wire: unsupported content coding")

	// ErrUnsupportedTransferCoding indicates a transfer coding outside
	// chunked/identity.
	ErrUnsupportedTransferCoding = errors.New("wire: unsupported transfer coding")

	// ErrMissingHeaderEnd indicates a response buffer without the CRLFCRLF
	// header terminator.
	ErrMissingHeaderEnd = errors.New("wire: invalid response: missing header terminator")

	// ErrInvalidStatusLine indicates a malformed response status line.
	// Status line format: HTTP-VERSION STATUS-CODE REASON\r\n
	ErrInvalidStatusLine = errors.New("wire: invalid response status line")

	// ErrChunkedFraming indicates malformed chunked framing in a response
	// body (missing size line terminator or trailing CRLF).
	ErrChunkedFraming = errors.New("wire: invalid chunked framing")
)
