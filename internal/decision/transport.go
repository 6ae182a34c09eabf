// File: internal/decision/transport.go
package decision

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Defaults for the connection to the decision service. The service is usually on
// the same host, so the pool is small and dials are short.
const (
	DefaultDialTimeout         = 5 * time.Second
	DefaultKeepAliveInterval   = 15 * time.Second
	DefaultTLSHandshakeTimeout = 5 * time.Second
	DefaultMaxIdleConnsPerHost = 2
	DefaultIdleConnTimeout     = 90 * time.Second
)

// TransportConfig holds the knobs for the decision service transport.
type TransportConfig struct {
	DialTimeout         time.Duration
	KeepAlive           time.Duration
	TLSHandshakeTimeout time.Duration
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	// ForceHTTP2 enables HTTP/2 negotiation on TLS connections.
	ForceHTTP2      bool
	IgnoreTLSErrors bool

	Logger *zap.Logger
}

// NewDefaultTransportConfig returns a TransportConfig with the package defaults.
func NewDefaultTransportConfig() *TransportConfig {
	return &TransportConfig{
		DialTimeout:         DefaultDialTimeout,
		KeepAlive:           DefaultKeepAliveInterval,
		TLSHandshakeTimeout: DefaultTLSHandshakeTimeout,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		Logger:              zap.NewNop(),
	}
}

// NewHTTPTransport builds the base transport. Response decompression is left to
// CompressionMiddleware, so the transport's own gzip handling is disabled.
func NewHTTPTransport(cfg *TransportConfig) *http.Transport {
	if cfg == nil {
		cfg = NewDefaultTransportConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAlive,
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.IgnoreTLSErrors,
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		DisableCompression:  true,
		ForceAttemptHTTP2:   cfg.ForceHTTP2,
	}

	if cfg.ForceHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			cfg.Logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1", zap.Error(err))
		}
	} else {
		tlsConfig.NextProtos = []string{"http/1.1"}
	}

	return transport
}

// NewHTTPClient returns an http.Client that negotiates compressed responses.
// A zero timeout leaves requests unbounded.
func NewHTTPClient(cfg *TransportConfig, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: NewCompressionMiddleware(NewHTTPTransport(cfg)),
		Timeout:   timeout,
	}
}
