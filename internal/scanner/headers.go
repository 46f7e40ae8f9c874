package scanner

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	sharedErrors "github.com/khanhnv2901/webgrade/internal/shared/errors"
)

// Header check raw weights. The raw scale is fixed at their sum (15) so
// missing bonus headers reduce the ratio rather than the scale.
const (
	hstsWeight        = 4.0
	nosniffWeight     = 3.0
	frameWeight       = 2.0
	referrerWeight    = 2.0
	cspWeight         = 2.0
	permissionsWeight = 1.0
	coopWeight        = 0.5
	corpWeight        = 0.5

	headersRawMax = hstsWeight + nosniffWeight + frameWeight + referrerWeight +
		cspWeight + permissionsWeight + coopWeight + corpWeight
)

// maxHeaderRedirects caps redirect following when fetching headers.
const maxHeaderRedirects = 5

var maxAgeRe = regexp.MustCompile(`max-age\s*=\s*(\d+)`)

// acceptedReferrerPolicies are the values that earn full credit.
var acceptedReferrerPolicies = []string{
	"no-referrer",
	"same-origin",
	"strict-origin",
	"strict-origin-when-cross-origin",
}

// HeaderPolicyEvaluator fetches the target's response headers once (following
// up to maxHeaderRedirects redirects) and scores a fixed battery of
// independently-weighted checks.
type HeaderPolicyEvaluator struct {
	Timeout time.Duration
}

func (h *HeaderPolicyEvaluator) Name() string    { return "headers" }
func (h *HeaderPolicyEvaluator) Weight() float64 { return 25 }

func (h *HeaderPolicyEvaluator) Run(ctx context.Context, target *Target) ProbeResult {
	client := &http.Client{
		Timeout: h.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxHeaderRedirects {
				return sharedErrors.ErrRedirectCapExceeded
			}
			return nil
		},
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.Origin(), nil)
	if err != nil {
		return errorResultf(h, "create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, sharedErrors.ErrRedirectCapExceeded) {
			return errorResultf(h, "target exceeded %d redirects while fetching headers", maxHeaderRedirects)
		}
		return errorResultf(h, "fetch headers: %v", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return evaluateHeaderPolicy(resp.Header)
}

// evaluateHeaderPolicy scores the header battery. Split from Run so tests can
// feed synthetic header sets directly.
func evaluateHeaderPolicy(headers http.Header) ProbeResult {
	var score float64
	findings := make([]Finding, 0, 10)

	csp := headers.Get("Content-Security-Policy")

	s, f := checkHSTS(headers.Get("Strict-Transport-Security"))
	score += s
	findings = append(findings, f)

	s, f = checkContentTypeOptions(headers.Get("X-Content-Type-Options"))
	score += s
	findings = append(findings, f)

	s, f = checkFrameOptions(headers.Get("X-Frame-Options"), csp)
	score += s
	findings = append(findings, f)

	s, f = checkReferrerPolicy(headers.Get("Referrer-Policy"))
	score += s
	findings = append(findings, f)

	s, f = checkCSP(csp)
	score += s
	findings = append(findings, f)

	s, f = checkPermissionsPolicy(headers.Get("Permissions-Policy"))
	score += s
	findings = append(findings, f)

	s, f = checkPresenceBonus("coop", "Cross-Origin-Opener-Policy", headers.Get("Cross-Origin-Opener-Policy"), coopWeight)
	score += s
	findings = append(findings, f)

	s, f = checkPresenceBonus("corp", "Cross-Origin-Resource-Policy", headers.Get("Cross-Origin-Resource-Policy"), corpWeight)
	score += s
	findings = append(findings, f)

	findings = append(findings, disclosureFindings(headers)...)

	return ProbeResult{Score: score, MaxScore: headersRawMax, Findings: findings}
}

// checkHSTS grades Strict-Transport-Security by max-age and directives.
func checkHSTS(value string) (float64, Finding) {
	if value == "" {
		return 0, Finding{
			Name:           "hsts",
			Status:         StatusFail,
			Message:        "Strict-Transport-Security header is absent",
			Recommendation: "Add 'Strict-Transport-Security: max-age=31536000; includeSubDomains; preload'",
		}
	}

	lower := strings.ToLower(value)
	maxAge := 0
	if m := maxAgeRe.FindStringSubmatch(lower); m != nil {
		maxAge, _ = strconv.Atoi(m[1])
	}
	hasSubdomains := strings.Contains(lower, "includesubdomains")
	hasPreload := strings.Contains(lower, "preload")

	switch {
	case maxAge >= 31536000 && hasSubdomains && hasPreload:
		return hstsWeight, Finding{
			Name:    "hsts",
			Status:  StatusPass,
			Message: "HSTS enabled with one-year max-age, includeSubDomains and preload",
			Value:   value,
		}
	case maxAge >= 31536000:
		return 3, Finding{
			Name:           "hsts",
			Status:         StatusWarn,
			Message:        "HSTS enabled but missing includeSubDomains or preload",
			Value:          value,
			Recommendation: "Add 'includeSubDomains' and 'preload' directives",
		}
	case maxAge > 0:
		return 1, Finding{
			Name:           "hsts",
			Status:         StatusWarn,
			Message:        "HSTS max-age is below one year",
			Value:          value,
			Recommendation: "Raise max-age to at least 31536000",
		}
	default:
		return 0, Finding{
			Name:           "hsts",
			Status:         StatusFail,
			Message:        "HSTS is effectively disabled (max-age missing or zero)",
			Value:          value,
			Recommendation: "Set 'max-age=31536000; includeSubDomains; preload'",
		}
	}
}

// checkContentTypeOptions requires exactly nosniff.
func checkContentTypeOptions(value string) (float64, Finding) {
	if strings.EqualFold(strings.TrimSpace(value), "nosniff") {
		return nosniffWeight, Finding{
			Name:    "x_content_type_options",
			Status:  StatusPass,
			Message: "X-Content-Type-Options set to nosniff",
			Value:   value,
		}
	}
	if value == "" {
		return 0, Finding{
			Name:           "x_content_type_options",
			Status:         StatusFail,
			Message:        "X-Content-Type-Options header is absent",
			Recommendation: "Add 'X-Content-Type-Options: nosniff'",
		}
	}
	return 0, Finding{
		Name:           "x_content_type_options",
		Status:         StatusFail,
		Message:        "X-Content-Type-Options has an invalid value",
		Value:          value,
		Recommendation: "Set exactly 'nosniff'",
	}
}

// checkFrameOptions accepts DENY/SAMEORIGIN, or an absent header when CSP
// carries frame-ancestors.
func checkFrameOptions(value, csp string) (float64, Finding) {
	upper := strings.ToUpper(strings.TrimSpace(value))

	if upper == "DENY" || upper == "SAMEORIGIN" {
		return frameWeight, Finding{
			Name:    "x_frame_options",
			Status:  StatusPass,
			Message: "X-Frame-Options restricts framing",
			Value:   value,
		}
	}
	if value == "" {
		if strings.Contains(strings.ToLower(csp), "frame-ancestors") {
			return frameWeight, Finding{
				Name:    "x_frame_options",
				Status:  StatusPass,
				Message: "Framing restricted by CSP frame-ancestors",
			}
		}
		return 0, Finding{
			Name:           "x_frame_options",
			Status:         StatusFail,
			Message:        "No framing protection (X-Frame-Options and CSP frame-ancestors both absent)",
			Recommendation: "Add 'X-Frame-Options: DENY' or a CSP frame-ancestors directive",
		}
	}
	return 1, Finding{
		Name:           "x_frame_options",
		Status:         StatusWarn,
		Message:        "X-Frame-Options has an unusual value",
		Value:          value,
		Recommendation: "Use 'DENY' or 'SAMEORIGIN'",
	}
}

// checkReferrerPolicy grades against the accepted policy allowlist.
func checkReferrerPolicy(value string) (float64, Finding) {
	if value == "" {
		return 0, Finding{
			Name:           "referrer_policy",
			Status:         StatusFail,
			Message:        "Referrer-Policy header is absent",
			Recommendation: "Add 'Referrer-Policy: strict-origin-when-cross-origin' or 'no-referrer'",
		}
	}

	lower := strings.ToLower(strings.TrimSpace(value))
	for _, accepted := range acceptedReferrerPolicies {
		if lower == accepted {
			return referrerWeight, Finding{
				Name:    "referrer_policy",
				Status:  StatusPass,
				Message: "Referrer-Policy uses a privacy-preserving value",
				Value:   value,
			}
		}
	}
	return 1, Finding{
		Name:           "referrer_policy",
		Status:         StatusWarn,
		Message:        "Referrer-Policy value may leak referrer information",
		Value:          value,
		Recommendation: "Use 'strict-origin-when-cross-origin' or 'no-referrer'",
	}
}

// checkCSP is a bonus check: absence costs the bonus but is never penalized
// below zero.
func checkCSP(value string) (float64, Finding) {
	if value == "" {
		return 0, Finding{
			Name:           "csp",
			Status:         StatusWarn,
			Message:        "Content-Security-Policy header is absent",
			Recommendation: "Deploy a CSP with a default-src directive",
		}
	}

	lower := strings.ToLower(value)
	hasDefaultSrc := strings.Contains(lower, "default-src")
	hasUnsafe := strings.Contains(lower, "'unsafe-inline'") || strings.Contains(lower, "'unsafe-eval'")

	if hasDefaultSrc && !hasUnsafe {
		return cspWeight, Finding{
			Name:    "csp",
			Status:  StatusPass,
			Message: "CSP present with default-src and no unsafe directives",
			Value:   value,
		}
	}
	return 1, Finding{
		Name:           "csp",
		Status:         StatusWarn,
		Message:        "CSP present but missing default-src or using unsafe-inline/unsafe-eval",
		Value:          value,
		Recommendation: "Add a default-src directive and remove unsafe-* keywords",
	}
}

// checkPermissionsPolicy is a presence bonus.
func checkPermissionsPolicy(value string) (float64, Finding) {
	if value == "" {
		return 0, Finding{
			Name:           "permissions_policy",
			Status:         StatusWarn,
			Message:        "Permissions-Policy header is absent",
			Recommendation: "Add 'Permissions-Policy' to restrict browser features",
		}
	}
	return permissionsWeight, Finding{
		Name:    "permissions_policy",
		Status:  StatusPass,
		Message: "Permissions-Policy is present",
		Value:   value,
	}
}

// checkPresenceBonus handles COOP/CORP: credit when present, informational
// only when absent.
func checkPresenceBonus(name, header, value string, weight float64) (float64, Finding) {
	if value == "" {
		return 0, Finding{
			Name:    name,
			Status:  StatusInfo,
			Message: header + " header is absent",
		}
	}
	return weight, Finding{
		Name:    name,
		Status:  StatusPass,
		Message: header + " is present",
		Value:   value,
	}
}

var versionDigitRe = regexp.MustCompile(`\d`)

// disclosureFindings emits informational findings for server version leaks.
// These never affect the score; they are reconnaissance data, not a control.
func disclosureFindings(headers http.Header) []Finding {
	findings := []Finding{}
	for _, header := range []string{"Server", "X-Powered-By", "X-AspNet-Version"} {
		value := headers.Get(header)
		if value == "" {
			continue
		}
		if versionDigitRe.MatchString(value) {
			findings = append(findings, Finding{
				Name:           "header_disclosure",
				Status:         StatusInfo,
				Message:        fmt.Sprintf("%s header exposes version information", header),
				Value:          value,
				Recommendation: "Remove or obfuscate the " + header + " header",
			})
		}
	}
	return findings
}
