package scanner

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// redirectMarker is the external canary the probe tries to redirect to.
// example.org is IANA-reserved and never attacker-controlled.
const redirectMarker = "https://example.org"

// maxRedirectParams caps how many candidate parameters are tested.
const maxRedirectParams = 8

// redirectParams are the common open-redirect parameter names, most frequent
// first.
var redirectParams = []string{
	"next", "url", "redirect", "redirect_uri",
	"return", "return_to", "goto", "dest",
}

// OpenRedirectProbe appends each candidate parameter pointing at the external
// marker and checks whether the server redirects off-site. A case counts as
// vulnerable only when the 3xx Location, resolved to an absolute URL, lands
// exactly on the marker's hostname; relative redirects and redirects back to
// the original host are safe.
type OpenRedirectProbe struct {
	Timeout time.Duration
}

func (o *OpenRedirectProbe) Name() string    { return "open_redirect" }
func (o *OpenRedirectProbe) Weight() float64 { return 10 }

func (o *OpenRedirectProbe) Run(ctx context.Context, target *Target) ProbeResult {
	client := &http.Client{
		Timeout: o.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	defer client.CloseIdleConnections()

	markerHost := mustHostname(redirectMarker)
	params := redirectParams
	if len(params) > maxRedirectParams {
		params = params[:maxRedirectParams]
	}

	var tested, vulnerable int
	findings := make([]Finding, 0, len(params))

	for _, param := range params {
		tested++

		requestURL := fmt.Sprintf("%s/?%s=%s", target.Origin(), param, url.QueryEscape(redirectMarker))
		hit, location, err := o.testParam(ctx, client, requestURL, markerHost)
		if err != nil {
			findings = append(findings, Finding{
				Name:    "redirect_param_" + param,
				Status:  StatusWarn,
				Message: fmt.Sprintf("Could not test parameter %q: %v", param, err),
			})
			continue
		}
		if hit {
			vulnerable++
			findings = append(findings, Finding{
				Name:           "redirect_param_" + param,
				Status:         StatusFail,
				Message:        fmt.Sprintf("Parameter %q redirects to an external host", param),
				Value:          location,
				Recommendation: "Validate redirect targets against an allowlist of local paths",
			})
		}
	}

	if vulnerable == 0 {
		findings = append(findings, Finding{
			Name:    "open_redirect",
			Status:  StatusPass,
			Message: fmt.Sprintf("%d redirect parameters tested, none redirect off-site", tested),
		})
	}

	return ProbeResult{
		Score:    float64(tested - vulnerable),
		MaxScore: float64(tested),
		Findings: findings,
	}
}

// testParam issues one request and reports whether the response redirects to
// the marker host. The returned location is the resolved absolute URL.
func (o *OpenRedirectProbe) testParam(ctx context.Context, client *http.Client, requestURL, markerHost string) (bool, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return false, "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return false, "", nil
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return false, "", nil
	}

	parsed, err := url.Parse(location)
	if err != nil {
		return false, "", nil
	}
	resolved := resp.Request.URL.ResolveReference(parsed)

	return resolved.Hostname() == markerHost, resolved.String(), nil
}

func mustHostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u.Hostname()
}
