package wire

// HTTP methods used by this client.
const (
	MethodGET    = "GET"
	MethodPOST   = "POST"
	MethodPUT    = "PUT"
	MethodDELETE = "DELETE"
	MethodPATCH  = "PATCH"
)

// PayloadType is the media type carried in Content-Type.
type PayloadType string

const (
	PayloadNone           PayloadType = ""
	PayloadJSON           PayloadType = "application/json"
	PayloadFormURLEncoded PayloadType = "application/x-www-form-urlencoded"
	PayloadXML            PayloadType = "application/xml"
	PayloadTextPlain      PayloadType = "text/plain"
	PayloadTextHTML       PayloadType = "text/html"
	PayloadMultipartForm  PayloadType = "multipart/form-data"
)

// TransferCoding is the message framing applied after content coding.
type TransferCoding string

const (
	TransferNone     TransferCoding = ""
	TransferChunked  TransferCoding = "chunked"
	TransferIdentity TransferCoding = "identity"
)

// ContentCoding is the compression applied to the payload.
type ContentCoding string

const (
	ContentNone     ContentCoding = ""
	ContentGzip     ContentCoding = "gzip"
	ContentDeflate  ContentCoding = "deflate"
	ContentIdentity ContentCoding = "identity"
)

// Request is the encoding-side view of a request descriptor: everything
// the codec needs to serialize one HTTP/1.1 request to bytes. The driver
// embeds it and adds the transmission knobs.
type Request struct {
	// Request line
	URL     string
	Method  string
	Version string // "HTTP/1.1"
	Host    string // Host header value

	// Optional headers, emitted only when non-empty, in this order:
	// Cookie, User-Agent, Accept, Accept-Encoding.
	Cookie         string
	UserAgent      string
	Accept         string
	AcceptEncoding string

	// Connection: keep-alive vs close.
	KeepAlive bool

	// Payload. A non-empty PayloadType requires PayloadBytes and
	// ContentLengthBeforeEncoding.
	PayloadType                 PayloadType
	PayloadBytes                []byte
	ContentLengthBeforeEncoding int
	ContentCoding               ContentCoding
	TransferCoding              TransferCoding
	ChunkSize                   int
}

// Response is the decoded view of one HTTP/1.1 response. PayloadBytes
// holds the body after both transfer decoding and content decoding; its
// length equals ContentLength only in the identity/identity case.
type Response struct {
	StatusCode int
	Version    string

	ContentType   string // media type with parameters stripped
	ContentLength int    // 0 when the header is absent
	SetCookie     string
	LastModified  string
	Location      string
	KeepAlive     bool

	TransferCoding string // declared Transfer-Encoding, verbatim
	ContentCoding  string // declared Content-Encoding, verbatim

	PayloadBytes []byte
}
