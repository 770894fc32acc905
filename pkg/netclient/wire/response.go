package wire

import (
	"bytes"
	"strconv"
	"strings"
)

// DecodeResponse parses a raw response buffer, assumed to end at the last
// body byte (the transport owns framing), into a Response.
//
// The body pipeline is the reverse of encoding: transfer decoding first
// (chunked or as-is), then content decoding (gzip, deflate, identity).
// Bytes are never text-decoded here; callers interpret the payload.
func DecodeResponse(raw []byte) (*Response, error) {
	headerEnd := bytes.Index(raw, headerEndBytes)
	if headerEnd == -1 {
		return nil, ErrMissingHeaderEnd
	}
	header := raw[:headerEnd]
	body := raw[headerEnd+4:]

	resp := &Response{}

	lines := bytes.Split(header, crlfBytes)
	if err := parseStatusLine(lines[0], resp); err != nil {
		return nil, err
	}
	for _, line := range lines[1:] {
		parseHeaderLine(line, resp)
	}

	if len(body) > 0 {
		decoded, err := decodeBody(body, resp)
		if err != nil {
			return nil, err
		}
		resp.PayloadBytes = decoded
	}
	return resp, nil
}

// parseStatusLine parses "HTTP-VERSION SP STATUS-CODE SP REASON". The
// numeric status is required; the reason phrase is discarded.
func parseStatusLine(line []byte, resp *Response) error {
	parts := strings.SplitN(string(line), " ", 3)
	if len(parts) < 2 {
		return ErrInvalidStatusLine
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return ErrInvalidStatusLine
	}
	resp.Version = parts[0]
	resp.StatusCode = code
	return nil
}

// parseHeaderLine matches one "Name: Value" line against the headers this
// client cares about. Unknown headers are ignored; matching is
// case-sensitive on the listed names, per the server dialect.
func parseHeaderLine(line []byte, resp *Response) {
	idx := bytes.Index(line, colonSpaceBytes)
	if idx == -1 {
		return
	}
	name := string(line[:idx])
	value := string(line[idx+2:])

	switch name {
	case headerTransferEncoding:
		resp.TransferCoding = value
	case headerContentEncoding:
		resp.ContentCoding = value
	case headerContentLength:
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			resp.ContentLength = n
		}
	case headerSetCookie:
		resp.SetCookie = value
	case headerLastModified:
		resp.LastModified = value
	case headerLocation:
		resp.Location = value
	case headerContentType:
		resp.ContentType = mainContentType(value)
	case headerConnection:
		resp.KeepAlive = strings.ToLower(value) == connectionKeepAlive
	}
}

func decodeBody(body []byte, resp *Response) ([]byte, error) {
	var err error

	switch TransferCoding(resp.TransferCoding) {
	case TransferNone, TransferIdentity:
		// framing untouched
	case TransferChunked:
		body, err = DecodeChunked(body)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnsupportedTransferCoding
	}

	if resp.ContentCoding != "" {
		body, err = stripContentCoding(body, resp.ContentCoding)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

// mainContentType strips media-type parameters after the first ';'.
func mainContentType(value string) string {
	if idx := strings.IndexByte(value, ';'); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}
