package scanner

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	sharedErrors "github.com/khanhnv2901/webgrade/internal/shared/errors"
)

// Target contains the normalized coordinates of the host under scan.
// It is built once per scan and shared read-only across probes.
type Target struct {
	// URL is the normalized absolute URL the scan was requested for.
	URL *url.URL
	// Hostname is the bare host without port.
	Hostname string
	// Scheme is http or https (https when the input had no scheme).
	Scheme string
	// Port is the explicit or scheme-implied port.
	Port string
}

// NewTarget normalizes a raw target string into a Target. Inputs without a
// scheme default to https. Paths and fragments are discarded; probes build
// their own request URLs from the origin.
func NewTarget(raw string) (*Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, sharedErrors.ErrEmptyTarget
	}

	parsed, err := url.Parse(raw)
	// A bare "example.com:8080" parses with scheme "example.com", and a bare
	// hostname parses with no scheme at all. Both get the https default.
	if err != nil || parsed.Scheme == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		parsed, err = url.Parse("https://" + raw)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", sharedErrors.ErrInvalidTarget, raw, err)
		}
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w %q: no hostname", sharedErrors.ErrInvalidTarget, raw)
	}

	port := parsed.Port()
	if port == "" {
		if parsed.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	normalized := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}

	return &Target{
		URL:      normalized,
		Hostname: host,
		Scheme:   parsed.Scheme,
		Port:     port,
	}, nil
}

// Origin returns the scheme://host[:port] base for building request URLs.
func (t *Target) Origin() string {
	return t.URL.String()
}

// Addr returns the host:port dial address for raw socket probes.
func (t *Target) Addr() string {
	return net.JoinHostPort(t.Hostname, t.Port)
}

// PathURL returns the origin joined with the given absolute path.
func (t *Target) PathURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return t.Origin() + path
}
