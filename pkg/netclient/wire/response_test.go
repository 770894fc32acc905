package wire

import (
	"bytes"
	"errors"
	"strconv"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func TestDecodeResponseBasic(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"Content-Length: 5\r\n" +
		"Set-Cookie: sessionid=abc123\r\n" +
		"Last-Modified: Mon, 01 Jan 2024 00:00:00 GMT\r\n" +
		"Connection: keep-alive\r\n" +
		"\r\n" +
		"hello")

	resp, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.Version != "HTTP/1.1" {
		t.Errorf("Version = %q, want HTTP/1.1", resp.Version)
	}
	if resp.ContentType != "text/html" {
		t.Errorf("ContentType = %q, want text/html (parameters stripped)", resp.ContentType)
	}
	if resp.ContentLength != 5 {
		t.Errorf("ContentLength = %d, want 5", resp.ContentLength)
	}
	if resp.SetCookie != "sessionid=abc123" {
		t.Errorf("SetCookie = %q, want sessionid=abc123", resp.SetCookie)
	}
	if resp.LastModified != "Mon, 01 Jan 2024 00:00:00 GMT" {
		t.Errorf("LastModified = %q", resp.LastModified)
	}
	if !resp.KeepAlive {
		t.Error("KeepAlive = false, want true")
	}
	if string(resp.PayloadBytes) != "hello" {
		t.Errorf("PayloadBytes = %q, want hello", resp.PayloadBytes)
	}
}

func TestDecodeResponseConnectionClose(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\nConnection: close\r\n\r\n")
	resp, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if resp.KeepAlive {
		t.Error("KeepAlive = true, want false")
	}
	if resp.PayloadBytes != nil {
		t.Errorf("PayloadBytes = %q, want nil for empty body", resp.PayloadBytes)
	}
}

func TestDecodeResponseLocationAndUnknownHeaders(t *testing.T) {
	raw := []byte("HTTP/1.1 302 Found\r\n" +
		"Location: /welcome.html\r\n" +
		"X-Custom-Header: ignored\r\n" +
		"Date: Mon, 01 Jan 2024 00:00:00 GMT\r\n" +
		"\r\n")
	resp, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Errorf("StatusCode = %d, want 302", resp.StatusCode)
	}
	if resp.Location != "/welcome.html" {
		t.Errorf("Location = %q, want /welcome.html", resp.Location)
	}
}

func TestDecodeResponseChunkedBody(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\n" +
		"4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n")
	resp, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if string(resp.PayloadBytes) != "Wikipedia" {
		t.Errorf("PayloadBytes = %q, want Wikipedia", resp.PayloadBytes)
	}
	if resp.TransferCoding != "chunked" {
		t.Errorf("TransferCoding = %q, want chunked", resp.TransferCoding)
	}
}

func TestDecodeResponseGzipBody(t *testing.T) {
	plain := []byte("<html>hello gzip</html>")
	compressed, err := gzipCompress(plain)
	if err != nil {
		t.Fatalf("gzipCompress failed: %v", err)
	}

	raw := append([]byte("HTTP/1.1 200 OK\r\n"+
		"Content-Encoding: gzip\r\n"+
		"Content-Length: "+strconv.Itoa(len(compressed))+"\r\n"+
		"\r\n"), compressed...)

	resp, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if !bytes.Equal(resp.PayloadBytes, plain) {
		t.Errorf("PayloadBytes = %q, want %q", resp.PayloadBytes, plain)
	}
	if resp.ContentCoding != "gzip" {
		t.Errorf("ContentCoding = %q, want gzip", resp.ContentCoding)
	}
}

func TestDecodeResponseChunkedThenGzip(t *testing.T) {
	// transfer decoding runs first, content decoding second
	plain := []byte("layered codings work")
	compressed, err := gzipCompress(plain)
	if err != nil {
		t.Fatalf("gzipCompress failed: %v", err)
	}
	chunked, err := EncodeChunked(compressed, 8)
	if err != nil {
		t.Fatalf("EncodeChunked failed: %v", err)
	}

	raw := append([]byte("HTTP/1.1 200 OK\r\n"+
		"Transfer-Encoding: chunked\r\n"+
		"Content-Encoding: gzip\r\n"+
		"\r\n"), chunked...)

	resp, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if !bytes.Equal(resp.PayloadBytes, plain) {
		t.Errorf("PayloadBytes = %q, want %q", resp.PayloadBytes, plain)
	}
}

func TestDecodeResponseDeflateBody(t *testing.T) {
	// deflate responses are zlib streams
	plain := []byte("deflate via zlib")
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(plain); err != nil {
		t.Fatalf("zlib write failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close failed: %v", err)
	}

	raw := append([]byte("HTTP/1.1 200 OK\r\n"+
		"Content-Encoding: deflate\r\n"+
		"\r\n"), compressed.Bytes()...)

	resp, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if !bytes.Equal(resp.PayloadBytes, plain) {
		t.Errorf("PayloadBytes = %q, want %q", resp.PayloadBytes, plain)
	}
}

func TestDecodeResponseErrors(t *testing.T) {
	if _, err := DecodeResponse([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n")); !errors.Is(err, ErrMissingHeaderEnd) {
		t.Errorf("missing terminator error = %v, want ErrMissingHeaderEnd", err)
	}
	if _, err := DecodeResponse([]byte("HTTP/1.1\r\n\r\n")); !errors.Is(err, ErrInvalidStatusLine) {
		t.Errorf("short status line error = %v, want ErrInvalidStatusLine", err)
	}
	if _, err := DecodeResponse([]byte("HTTP/1.1 abc OK\r\n\r\n")); !errors.Is(err, ErrInvalidStatusLine) {
		t.Errorf("non-numeric status error = %v, want ErrInvalidStatusLine", err)
	}

	raw := []byte("HTTP/1.1 200 OK\r\nContent-Encoding: br\r\n\r\nxxxx")
	if _, err := DecodeResponse(raw); !errors.Is(err, ErrUnsupportedContentCoding) {
		t.Errorf("unknown coding error = %v, want ErrUnsupportedContentCoding", err)
	}

	raw = []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: gzip\r\n\r\nxxxx")
	if _, err := DecodeResponse(raw); !errors.Is(err, ErrUnsupportedTransferCoding) {
		t.Errorf("unknown transfer coding error = %v, want ErrUnsupportedTransferCoding", err)
	}
}

func TestDecodeResponseStatusLineWithoutReason(t *testing.T) {
	raw := []byte("HTTP/1.1 204\r\n\r\n")
	resp, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if resp.StatusCode != 204 {
		t.Errorf("StatusCode = %d, want 204", resp.StatusCode)
	}
}

func TestGzipRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("a"),
		[]byte("gzip round trip"),
		bytes.Repeat([]byte{0x00, 0xff, 0x42}, 5000),
	}
	for _, payload := range payloads {
		compressed, err := gzipCompress(payload)
		if err != nil {
			t.Fatalf("gzipCompress failed: %v", err)
		}
		decompressed, err := gzipDecompress(compressed)
		if err != nil {
			t.Fatalf("gzipDecompress failed: %v", err)
		}
		if !bytes.Equal(decompressed, payload) {
			t.Errorf("gzip round trip mismatch for len=%d", len(payload))
		}
	}
}
