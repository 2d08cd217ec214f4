package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
)

// chromeHelloID is the browser whose ClientHello is mimicked.
var chromeHelloID = tls.HelloChrome_Auto

// CheckChromeFingerprint reports whether the Chrome ClientHello can be built
// by the linked utls version. Call it at startup before enabling
// WithChromeFingerprint.
func CheckChromeFingerprint() error {
	_, err := chromeSpec()
	return err
}

// chromeSpec returns a Chrome ClientHello with ALPN restricted to http/1.1.
// http.Transport cannot speak h2 over a utls connection, so servers must
// never be offered it.
func chromeSpec() (tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(chromeHelloID)
	if err != nil {
		return tls.ClientHelloSpec{}, fmt.Errorf("fetcher: chrome tls spec %s: %w", chromeHelloID.Str(), err)
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			break
		}
	}
	return spec, nil
}

// newChromeTransport returns a transport whose TLS handshake looks like
// Chrome's. Some CDNs answer default Go ClientHellos with a bot wall that
// carries no metadata at all. Dial and handshake share the fetch deadline.
func newChromeTransport(timeout time.Duration) (*http.Transport, error) {
	// Validate once; each dial builds a fresh spec because ApplyPreset
	// takes ownership of the extensions it is given.
	if _, err := chromeSpec(); err != nil {
		return nil, err
	}

	dialer := &net.Dialer{Timeout: timeout}
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			spec, err := chromeSpec()
			if err != nil {
				conn.Close()
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("fetcher: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2:   false,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: timeout,
	}, nil
}
