package scanner

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	fingerprintServerWeight  = 2.5
	fingerprintPoweredWeight = 2.5

	fingerprintRawMax = fingerprintServerWeight + fingerprintPoweredWeight
)

// FingerprintProbe checks whether the server advertises exact software
// versions in its response headers.
type FingerprintProbe struct {
	Timeout time.Duration
}

func (f *FingerprintProbe) Name() string    { return "fingerprint" }
func (f *FingerprintProbe) Weight() float64 { return 5 }

func (f *FingerprintProbe) Run(ctx context.Context, target *Target) ProbeResult {
	client := &http.Client{
		Timeout: f.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402
		},
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.Origin(), nil)
	if err != nil {
		return errorResultf(f, "create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return errorResultf(f, "fetch headers: %v", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	var score float64
	findings := make([]Finding, 0, 2)

	s, finding := gradeDisclosureHeader("server_banner", "Server", resp.Header.Get("Server"), fingerprintServerWeight)
	score += s
	findings = append(findings, finding)

	s, finding = gradeDisclosureHeader("powered_by", "X-Powered-By", resp.Header.Get("X-Powered-By"), fingerprintPoweredWeight)
	score += s
	findings = append(findings, finding)

	return ProbeResult{Score: score, MaxScore: fingerprintRawMax, Findings: findings}
}

// gradeDisclosureHeader scores one banner header: absent earns full credit, a
// bare product name earns partial credit, a version number earns none.
func gradeDisclosureHeader(name, header, value string, weight float64) (float64, Finding) {
	if value == "" {
		return weight, Finding{
			Name:    name,
			Status:  StatusPass,
			Message: header + " header not disclosed",
		}
	}
	if versionDigitRe.MatchString(value) {
		return 0, Finding{
			Name:           name,
			Status:         StatusFail,
			Message:        fmt.Sprintf("%s header exposes a software version", header),
			Value:          value,
			Recommendation: "Remove the version from the " + header + " header",
		}
	}
	return 1.0, Finding{
		Name:           name,
		Status:         StatusWarn,
		Message:        fmt.Sprintf("%s header discloses the product name", header),
		Value:          value,
		Recommendation: "Remove or obfuscate the " + header + " header",
	}
}
