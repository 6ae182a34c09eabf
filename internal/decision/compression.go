// File: internal/decision/compression.go
package decision

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

// acceptEncoding is advertised on every request that does not set its own.
const acceptEncoding = "br, gzip, deflate"

var (
	gzipReaderPool = sync.Pool{
		New: func() interface{} { return new(gzip.Reader) },
	}
	brotliReaderPool = sync.Pool{
		New: func() interface{} { return brotli.NewReader(nil) },
	}
)

// CompressionMiddleware is an http.RoundTripper that negotiates compressed
// responses and hands callers a plain body. Supported encodings are gzip,
// deflate (zlib-wrapped or raw) and brotli.
type CompressionMiddleware struct {
	Transport http.RoundTripper
}

// NewCompressionMiddleware wraps transport, defaulting to http.DefaultTransport.
func NewCompressionMiddleware(transport http.RoundTripper) *CompressionMiddleware {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &CompressionMiddleware{Transport: transport}
}

// RoundTrip implements http.RoundTripper.
func (cm *CompressionMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := cm.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if err := DecompressResponse(resp); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to initialize response decompression: %w", err)
	}
	return resp, nil
}

// decodedBody closes the decoder, returns pooled readers, and closes the wire body.
type decodedBody struct {
	io.Reader
	closeDecoder func() error
	wire         io.ReadCloser
}

func (b *decodedBody) Close() error {
	var decErr error
	if b.closeDecoder != nil {
		decErr = b.closeDecoder()
		b.closeDecoder = nil
	}
	return errors.Join(decErr, b.wire.Close())
}

// DecompressResponse replaces resp.Body with a decoding reader according to
// Content-Encoding. Layered encodings are undone in reverse order. On error the
// body may be partially consumed and the response should be discarded.
func DecompressResponse(resp *http.Response) error {
	if resp == nil || resp.Body == nil {
		return nil
	}
	encodings := resp.Header.Values("Content-Encoding")
	if len(encodings) == 0 {
		return nil
	}

	for i := len(encodings) - 1; i >= 0; i-- {
		for _, layer := range splitEncodings(encodings[i]) {
			body, err := decodeLayer(layer, resp.Body)
			if err != nil {
				return err
			}
			resp.Body = body
		}
	}

	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

// splitEncodings parses one header value, which may list several codings, and
// returns them in the order they must be removed.
func splitEncodings(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for i := len(parts) - 1; i >= 0; i-- {
		out = append(out, strings.ToLower(strings.TrimSpace(parts[i])))
	}
	return out
}

func decodeLayer(encoding string, wire io.ReadCloser) (io.ReadCloser, error) {
	switch encoding {
	case "", "identity":
		return wire, nil

	case "gzip", "x-gzip":
		zr := gzipReaderPool.Get().(*gzip.Reader)
		if err := zr.Reset(wire); err != nil {
			gzipReaderPool.Put(zr)
			return nil, fmt.Errorf("gzip initialization error: %w", err)
		}
		return &decodedBody{
			Reader: zr,
			closeDecoder: func() error {
				err := zr.Close()
				gzipReaderPool.Put(zr)
				return err
			},
			wire: wire,
		}, nil

	case "br":
		br := brotliReaderPool.Get().(*brotli.Reader)
		if err := br.Reset(wire); err != nil {
			brotliReaderPool.Put(br)
			return nil, fmt.Errorf("brotli initialization error: %w", err)
		}
		return &decodedBody{
			Reader: br,
			closeDecoder: func() error {
				brotliReaderPool.Put(br)
				return nil
			},
			wire: wire,
		}, nil

	case "deflate":
		fr := newDeflateReader(wire)
		return &decodedBody{Reader: fr, closeDecoder: fr.Close, wire: wire}, nil

	default:
		return nil, fmt.Errorf("unsupported Content-Encoding layer: %s", encoding)
	}
}

// newDeflateReader accepts both zlib-wrapped (RFC 1950) and raw (RFC 1951) streams.
// Servers disagree on what "deflate" means, so the zlib header is sniffed first.
func newDeflateReader(r io.Reader) io.ReadCloser {
	br := bufio.NewReader(r)
	if header, err := br.Peek(2); err == nil && isZlibHeader(header) {
		if zr, err := zlib.NewReader(br); err == nil {
			return zr
		}
	}
	return flate.NewReader(br)
}

// isZlibHeader checks the CMF/FLG pair: deflate method with a valid checksum.
func isZlibHeader(h []byte) bool {
	return h[0]&0x0f == 8 && (uint16(h[0])<<8|uint16(h[1]))%31 == 0
}
