package scanner

import (
	"fmt"
	"time"

	sharedErrors "github.com/khanhnv2901/webgrade/internal/shared/errors"
)

// Tier gates which probes are enabled for a scan. Free is a strict subset of
// pro.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// ParseTier validates a tier string from flags or config.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierFree:
		return TierFree, nil
	case TierPro:
		return TierPro, nil
	default:
		return "", fmt.Errorf("%w: %q", sharedErrors.ErrUnknownTier, s)
	}
}

// ProbeDescriptor binds a probe instance to its scheduling metadata: the hard
// per-probe timeout cap and the minimum tier that enables it.
type ProbeDescriptor struct {
	Probe Probe
	Cap   time.Duration
	Tier  Tier
}

// Per-probe hard caps. A probe's effective deadline is the minimum of the
// caller-requested timeout and its cap, plus the fixed grace period.
const (
	tlsProbeCap         = 15 * time.Second
	headersProbeCap     = 15 * time.Second
	pathsProbeCap       = 30 * time.Second
	redirectProbeCap    = 20 * time.Second
	cookiesProbeCap     = 10 * time.Second
	dnsProbeCap         = 10 * time.Second
	fingerprintProbeCap = 10 * time.Second
)

// Catalog returns the descriptors enabled for a tier, in canonical section
// order. The fullOverride flag enables every probe regardless of tier. Each
// probe's request timeout is clamped to min(timeout, cap) so no single socket
// operation can outlive the probe's deadline.
func Catalog(tier Tier, fullOverride bool, timeout time.Duration) []ProbeDescriptor {
	all := []ProbeDescriptor{
		{Probe: &TLSInspector{Timeout: clampTimeout(timeout, tlsProbeCap)}, Cap: tlsProbeCap, Tier: TierFree},
		{Probe: &HeaderPolicyEvaluator{Timeout: clampTimeout(timeout, headersProbeCap)}, Cap: headersProbeCap, Tier: TierFree},
		{Probe: NewExposedPathProbe(clampTimeout(timeout, pathsProbeCap)), Cap: pathsProbeCap, Tier: TierFree},
		{Probe: &OpenRedirectProbe{Timeout: clampTimeout(timeout, redirectProbeCap)}, Cap: redirectProbeCap, Tier: TierFree},
		{Probe: &CookieProbe{Timeout: clampTimeout(timeout, cookiesProbeCap)}, Cap: cookiesProbeCap, Tier: TierPro},
		{Probe: &DNSProbe{Timeout: clampTimeout(timeout, dnsProbeCap)}, Cap: dnsProbeCap, Tier: TierPro},
		{Probe: &FingerprintProbe{Timeout: clampTimeout(timeout, fingerprintProbeCap)}, Cap: fingerprintProbeCap, Tier: TierPro},
	}

	if fullOverride || tier == TierPro {
		return all
	}

	enabled := make([]ProbeDescriptor, 0, len(all))
	for _, d := range all {
		if d.Tier == TierFree {
			enabled = append(enabled, d)
		}
	}
	return enabled
}

func clampTimeout(requested, hardCap time.Duration) time.Duration {
	if requested <= 0 || requested > hardCap {
		return hardCap
	}
	return requested
}
