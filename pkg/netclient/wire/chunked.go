package wire

import (
	"bytes"
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// EncodeChunked partitions data into chunks of at most chunkSize bytes,
// each framed as "hex-size CRLF data CRLF", terminated by "0 CRLF CRLF"
// (RFC 7230 §4.1 framing; extensions and trailers are never emitted).
//
// A non-positive chunk size and a zero-length payload are both rejected:
// this codec only frames request bodies that actually exist.
func EncodeChunked(data []byte, chunkSize int) ([]byte, error) {
	if chunkSize <= 0 {
		return nil, ErrChunkSize
	}
	if len(data) == 0 {
		return nil, ErrEmptyChunkedPayload
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for offset := 0; offset < len(data); {
		n := len(data) - offset
		if n > chunkSize {
			n = chunkSize
		}
		buf.B = strconv.AppendInt(buf.B, int64(n), 16)
		buf.B = append(buf.B, crlfBytes...)
		buf.B = append(buf.B, data[offset:offset+n]...)
		buf.B = append(buf.B, crlfBytes...)
		offset += n
	}
	buf.B = append(buf.B, lastChunkBytes...)

	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

// DecodeChunked strips chunked framing from body and returns the joined
// chunk data. Trailers after the last chunk are not collected. A missing
// framing sentinel (size-line CRLF or chunk-trailing CRLF) fails decoding.
func DecodeChunked(body []byte) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	offset := 0
	for offset < len(body) {
		sizeEnd := bytes.Index(body[offset:], crlfBytes)
		if sizeEnd == -1 {
			return nil, ErrChunkedFraming
		}
		size, err := parseChunkSize(body[offset : offset+sizeEnd])
		if err != nil {
			return nil, err
		}
		offset += sizeEnd + 2

		// Last chunk; trailers, if any, are discarded with the rest.
		if size == 0 {
			break
		}

		if offset+size > len(body) {
			return nil, ErrChunkedFraming
		}
		buf.B = append(buf.B, body[offset:offset+size]...)
		offset += size

		if offset+2 > len(body) || body[offset] != '\r' || body[offset+1] != '\n' {
			return nil, ErrChunkedFraming
		}
		offset += 2
	}

	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

// parseChunkSize parses a hex chunk-size line, ignoring chunk extensions
// after ';'.
func parseChunkSize(line []byte) (int, error) {
	if idx := bytes.IndexByte(line, ';'); idx >= 0 {
		line = line[:idx]
	}
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return 0, ErrChunkedFraming
	}

	size := 0
	for _, b := range line {
		var d int
		switch {
		case b >= '0' && b <= '9':
			d = int(b - '0')
		case b >= 'a' && b <= 'f':
			d = int(b-'a') + 10
		case b >= 'A' && b <= 'F':
			d = int(b-'A') + 10
		default:
			return 0, ErrChunkedFraming
		}
		size = size<<4 | d
	}
	return size, nil
}
