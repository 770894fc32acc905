package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// applyContentCoding compresses a request payload per the requested
// coding. Deflate is deliberately unsupported on the encode side; the
// server dialect never negotiates it for uploads.
func applyContentCoding(data []byte, coding ContentCoding) ([]byte, error) {
	switch coding {
	case ContentGzip:
		return gzipCompress(data)
	case ContentDeflate:
		return nil, ErrDeflateNotImplemented
	case ContentIdentity:
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentCoding, coding)
	}
}

// stripContentCoding reverses a response's declared Content-Encoding.
// The declared value arrives verbatim from the header block.
func stripContentCoding(data []byte, coding string) ([]byte, error) {
	switch ContentCoding(coding) {
	case ContentGzip:
		return gzipDecompress(data)
	case ContentDeflate:
		return zlibDecompress(data)
	case ContentIdentity:
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentCoding, coding)
	}
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func zlibDecompress(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
