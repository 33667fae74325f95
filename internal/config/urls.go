package config

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// URLData is a user-supplied web address after normalization.
type URLData struct {
	URL    *url.URL
	Normal string
	Port   int
}

// NormalizeWebAddress cleans up a user-supplied address: surrounding quotes
// are unwrapped, a missing scheme defaults to http (https when port 443 is
// given explicitly), and the trailing slash is dropped.
func NormalizeWebAddress(val string) (URLData, error) {
	s := strings.TrimSpace(val)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	hadScheme := strings.Contains(s, "://")
	if !hadScheme {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return URLData{}, fmt.Errorf("parsing address %q: %w", val, err)
	}
	if u.Hostname() == "" {
		return URLData{}, fmt.Errorf("address %q has no host", val)
	}

	var port int
	if u.Port() == "" {
		port = 80
		if u.Scheme == "https" {
			port = 443
		}
	} else {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return URLData{}, fmt.Errorf("address %q has invalid port: %w", val, err)
		}
		// an explicit :443 without a scheme means the user wants https
		if port == 443 && !hadScheme {
			u.Scheme = "https"
		}
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	return URLData{URL: u, Normal: u.String(), Port: port}, nil
}

// JoinURL returns a copy of u with the given path segments appended. Empty
// segments are skipped.
func JoinURL(u *url.URL, segments ...string) *url.URL {
	joined := *u
	parts := []string{u.Path}
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	joined.Path = path.Join(parts...)
	return &joined
}

// PortReachable probes a TCP connect to host:port. Courtesy check only; the
// caller warns rather than fails on error.
func PortReachable(host string, port int, timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
	if err != nil {
		return err
	}
	return conn.Close()
}
