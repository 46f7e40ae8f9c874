package scanner

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sharedErrors "github.com/khanhnv2901/webgrade/internal/shared/errors"
)

const (
	cookieSecureWeight   = 2.0
	cookieHTTPOnlyWeight = 2.0
	cookieSameSiteWeight = 1.0

	cookiesRawMax = cookieSecureWeight + cookieHTTPOnlyWeight + cookieSameSiteWeight
)

// CookieProbe inspects Set-Cookie headers on the target's landing response
// for missing Secure/HttpOnly/SameSite attributes.
type CookieProbe struct {
	Timeout time.Duration
}

func (c *CookieProbe) Name() string    { return "cookies" }
func (c *CookieProbe) Weight() float64 { return 5 }

func (c *CookieProbe) Run(ctx context.Context, target *Target) ProbeResult {
	client := &http.Client{
		Timeout: c.Timeout,
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
		return errorResultf(c, "create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, sharedErrors.ErrRedirectCapExceeded) {
			return errorResultf(c, "target exceeded %d redirects", maxHeaderRedirects)
		}
		return errorResultf(c, "fetch cookies: %v", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return ProbeResult{
			Score:    cookiesRawMax,
			MaxScore: cookiesRawMax,
			Findings: []Finding{{
				Name:    "cookies",
				Status:  StatusInfo,
				Message: "No cookies set on the landing response",
			}},
		}
	}

	var missingSecure, missingHTTPOnly, missingSameSite []string
	for _, cookie := range cookies {
		if !cookie.Secure {
			missingSecure = append(missingSecure, cookie.Name)
		}
		if !cookie.HttpOnly {
			missingHTTPOnly = append(missingHTTPOnly, cookie.Name)
		}
		if cookie.SameSite == http.SameSiteDefaultMode || cookie.SameSite == 0 {
			missingSameSite = append(missingSameSite, cookie.Name)
		}
	}

	var score float64
	findings := make([]Finding, 0, 3)

	s, f := cookieAttributeFinding("cookie_secure", "Secure", missingSecure, cookieSecureWeight, StatusFail)
	score += s
	findings = append(findings, f)

	s, f = cookieAttributeFinding("cookie_httponly", "HttpOnly", missingHTTPOnly, cookieHTTPOnlyWeight, StatusFail)
	score += s
	findings = append(findings, f)

	s, f = cookieAttributeFinding("cookie_samesite", "SameSite", missingSameSite, cookieSameSiteWeight, StatusWarn)
	score += s
	findings = append(findings, f)

	return ProbeResult{Score: score, MaxScore: cookiesRawMax, Findings: findings}
}

func cookieAttributeFinding(name, attribute string, missing []string, weight float64, failStatus Status) (float64, Finding) {
	if len(missing) == 0 {
		return weight, Finding{
			Name:    name,
			Status:  StatusPass,
			Message: fmt.Sprintf("All cookies carry the %s attribute", attribute),
		}
	}
	return 0, Finding{
		Name:           name,
		Status:         failStatus,
		Message:        fmt.Sprintf("%d cookie(s) missing the %s attribute", len(missing), attribute),
		Value:          strings.Join(missing, ", "),
		Recommendation: fmt.Sprintf("Set the %s attribute on all cookies", attribute),
	}
}
