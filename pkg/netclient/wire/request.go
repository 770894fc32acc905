package wire

import (
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// EncodeRequest serializes a request descriptor into one contiguous
// buffer: request line, headers, CRLF, then the (coded) payload.
//
// Header order is fixed: Host, Connection, then Cookie / User-Agent /
// Accept / Accept-Encoding when present, then the payload block
// (Content-Type, Content-Encoding, Transfer-Encoding, Content-Length).
// Content-Length always describes the final post-transfer-coding buffer.
func EncodeRequest(r *Request) ([]byte, error) {
	target, err := NormalizeURL(r.URL)
	if err != nil {
		return nil, err
	}

	version := r.Version
	if version == "" {
		version = HTTP11
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	// Request line: METHOD SP request-target SP HTTP-VERSION CRLF
	buf.B = append(buf.B, r.Method...)
	buf.B = append(buf.B, ' ')
	buf.B = append(buf.B, target...)
	buf.B = append(buf.B, ' ')
	buf.B = append(buf.B, version...)
	buf.B = append(buf.B, crlfBytes...)

	appendHeader(buf, headerHost, r.Host)
	if r.KeepAlive {
		appendHeader(buf, headerConnection, connectionKeepAlive)
	} else {
		appendHeader(buf, headerConnection, connectionClose)
	}
	if r.Cookie != "" {
		appendHeader(buf, headerCookie, r.Cookie)
	}
	if r.UserAgent != "" {
		appendHeader(buf, headerUserAgent, r.UserAgent)
	}
	if r.Accept != "" {
		appendHeader(buf, headerAccept, r.Accept)
	}
	if r.AcceptEncoding != "" {
		appendHeader(buf, headerAcceptEncoding, r.AcceptEncoding)
	}

	var body []byte
	if r.PayloadType != PayloadNone {
		// a payload type commits the descriptor to bytes and a
		// pre-encoding length
		if r.PayloadBytes == nil || (len(r.PayloadBytes) > 0 && r.ContentLengthBeforeEncoding <= 0) {
			return nil, ErrMissingPayload
		}
		appendHeader(buf, headerContentType, string(r.PayloadType))

		body = r.PayloadBytes

		if r.ContentCoding != ContentNone {
			appendHeader(buf, headerContentEncoding, string(r.ContentCoding))
			body, err = applyContentCoding(body, r.ContentCoding)
			if err != nil {
				return nil, err
			}
		}

		if r.TransferCoding != TransferNone {
			appendHeader(buf, headerTransferEncoding, string(r.TransferCoding))
			switch r.TransferCoding {
			case TransferIdentity:
				// framing untouched
			case TransferChunked:
				chunkSize := r.ChunkSize
				if chunkSize == 0 {
					chunkSize = DefaultChunkSize
				}
				body, err = EncodeChunked(body, chunkSize)
				if err != nil {
					return nil, err
				}
			default:
				return nil, ErrUnsupportedTransferCoding
			}
		}

		appendHeader(buf, headerContentLength, strconv.Itoa(len(body)))
	}

	buf.B = append(buf.B, crlfBytes...)
	buf.B = append(buf.B, body...)

	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

func appendHeader(buf *bytebufferpool.ByteBuffer, name, value string) {
	buf.B = append(buf.B, name...)
	buf.B = append(buf.B, colonSpaceBytes...)
	buf.B = append(buf.B, value...)
	buf.B = append(buf.B, crlfBytes...)
}
