// Package hydra is a client of the Hydra node API: http queries, transaction
// submission over the websocket, and a reconnecting event stream.
package hydra

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultSecurePort   = 443
	defaultInsecurePort = 80
)

// ConnectionInfo locates a node API. The same host and port serve both
// the websocket and the http endpoints.
type ConnectionInfo struct {
	Host   string
	Port   uint16
	Secure bool
}

// ParseConnectionInfo parses a node url. The scheme may be ws, wss, http or
// https and defaults to ws; the port defaults to 443 for secure schemes and
// to 80 otherwise.
func ParseConnectionInfo(rawURL string) (ConnectionInfo, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "ws://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ConnectionInfo{}, fmt.Errorf("%w: %s", ErrInvalidURL, err)
	}

	var secure bool
	switch strings.ToLower(u.Scheme) {
	case "ws", "http":
	case "wss", "https":
		secure = true
	default:
		return ConnectionInfo{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return ConnectionInfo{}, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, rawURL)
	}

	port := uint16(defaultInsecurePort)
	if secure {
		port = defaultSecurePort
	}
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return ConnectionInfo{}, fmt.Errorf("%w: bad port %q", ErrInvalidURL, p)
		}
		port = uint16(n)
	}

	return ConnectionInfo{Host: host, Port: port, Secure: secure}, nil
}

func (c ConnectionInfo) hostPort() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

// WebsocketURL returns ws[s]://host:port.
func (c ConnectionInfo) WebsocketURL() string {
	scheme := "ws"
	if c.Secure {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s", scheme, c.hostPort())
}

// HTTPURL returns http[s]://host:port.
func (c ConnectionInfo) HTTPURL() string {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.hostPort())
}

func (c ConnectionInfo) String() string {
	return c.WebsocketURL()
}
