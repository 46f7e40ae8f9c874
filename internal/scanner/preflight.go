package scanner

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"syscall"
	"time"

	sharedErrors "github.com/khanhnv2901/webgrade/internal/shared/errors"
)

// Preflight performs one fast reachability check before any weighted probe
// runs. Low-level connection failures abort the scan: every downstream probe
// would rediscover the same failure and multiply wall-clock time by the probe
// count. Anything above the connection layer (bad certificates, HTTP errors)
// means the host is reachable but misconfigured, which is exactly what the
// probe set exists to report.
type Preflight struct {
	Timeout time.Duration
}

// Check issues a minimal HEAD request against the target origin. It returns a
// *errors.NetworkError for scan-fatal connectivity failures and nil otherwise.
func (p *Preflight) Check(ctx context.Context, target *Target) error {
	client := &http.Client{
		Timeout: p.Timeout,
		Transport: &http.Transport{
			// Certificate problems are a probe concern, not a reachability
			// concern. The preflight must not fail on them.
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target.Origin(), nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		if netErr := classifyNetworkError(target.Hostname, err); netErr != nil {
			return netErr
		}
		// Reachable but misconfigured (e.g. TLS protocol mismatch): let the
		// probes run and report it.
		return nil
	}
	resp.Body.Close()
	return nil
}

// classifyNetworkError maps low-level transport failures onto NetworkError
// kinds. It returns nil for errors that do not indicate an unreachable host.
func classifyNetworkError(host string, err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &sharedErrors.NetworkError{Kind: sharedErrors.NetworkKindDNS, Host: host, Err: err}
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return &sharedErrors.NetworkError{Kind: sharedErrors.NetworkKindRefused, Host: host, Err: err}
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return &sharedErrors.NetworkError{Kind: sharedErrors.NetworkKindReset, Host: host, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &sharedErrors.NetworkError{Kind: sharedErrors.NetworkKindTimeout, Host: host, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &sharedErrors.NetworkError{Kind: sharedErrors.NetworkKindTimeout, Host: host, Err: err}
	}
	return nil
}
