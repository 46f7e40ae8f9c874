package scanner

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strings"
	"time"

	sharedErrors "github.com/khanhnv2901/webgrade/internal/shared/errors"
)

// TLS sub-check raw weights. The probe's raw scale is their sum; the
// aggregator maps it onto the probe weight.
const (
	tlsValidityMax = 2.0
	tlsIssuerMax   = 0.5
	tlsHostnameMax = 1.0
	tlsProtocolMax = 1.5
	tlsCipherMax   = 1.0

	tlsRawMax = tlsValidityMax + tlsIssuerMax + tlsHostnameMax + tlsProtocolMax + tlsCipherMax
)

// TLSInspector performs a single TLS handshake and evaluates the negotiated
// parameters and presented certificate. Chain verification is disabled at the
// transport layer only, so a misconfigured certificate does not abort the
// probe; the raw chain is still captured and scored.
type TLSInspector struct {
	Timeout time.Duration
}

func (t *TLSInspector) Name() string    { return "tls" }
func (t *TLSInspector) Weight() float64 { return 25 }

// Run dials the target and scores validity window, issuer, hostname
// coverage, protocol version, and cipher strength. Any handshake-level
// failure short-circuits to one error finding with the full weight lost.
func (t *TLSInspector) Run(ctx context.Context, target *Target) ProbeResult {
	if target.Scheme != "https" {
		return ProbeResult{
			Score:    0,
			MaxScore: tlsRawMax,
			Findings: []Finding{{
				Name:           "tls_in_use",
				Status:         StatusFail,
				Message:        "Target is served over plain HTTP",
				Recommendation: "Serve the site over HTTPS and redirect HTTP traffic",
			}},
		}
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: t.Timeout},
		Config: &tls.Config{
			ServerName:         target.Hostname,
			InsecureSkipVerify: true, // #nosec G402 -- chain is evaluated manually below
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", target.Addr())
	if err != nil {
		return errorResultf(t, "TLS handshake failed: %v", err)
	}
	state := conn.(*tls.Conn).ConnectionState()
	conn.Close()

	if len(state.PeerCertificates) == 0 {
		return errorResult(t, sharedErrors.ErrNoCertificate.Error())
	}
	cert := state.PeerCertificates[0]

	var score float64
	findings := make([]Finding, 0, 5)

	s, f := checkCertValidity(cert)
	score += s
	findings = append(findings, f)

	s, f = checkCertIssuer(cert)
	score += s
	findings = append(findings, f)

	s, f = checkHostnameCoverage(target.Hostname, cert)
	score += s
	findings = append(findings, f)

	s, f = checkProtocolVersion(state.Version)
	score += s
	findings = append(findings, f)

	s, f = checkCipherStrength(state.CipherSuite)
	score += s
	findings = append(findings, f)

	return ProbeResult{Score: score, MaxScore: tlsRawMax, Findings: findings}
}

// checkCertValidity scores the certificate's remaining lifetime. Credit
// scales toward the full 2.0 as the remaining window approaches 90 days.
func checkCertValidity(cert *x509.Certificate) (float64, Finding) {
	now := time.Now()
	expiry := cert.NotAfter.Format(time.RFC3339)

	if now.After(cert.NotAfter) {
		return 0, Finding{
			Name:           "cert_validity",
			Status:         StatusFail,
			Message:        "Certificate has expired",
			Value:          expiry,
			Recommendation: "Renew the TLS certificate immediately",
		}
	}
	if now.Before(cert.NotBefore) {
		return 0, Finding{
			Name:    "cert_validity",
			Status:  StatusFail,
			Message: "Certificate is not yet valid",
			Value:   cert.NotBefore.Format(time.RFC3339),
		}
	}

	days := cert.NotAfter.Sub(now).Hours() / 24
	switch {
	case days < 7:
		return 0.5, Finding{
			Name:           "cert_validity",
			Status:         StatusFail,
			Message:        fmt.Sprintf("Certificate expires in %d days", int(days)),
			Value:          expiry,
			Recommendation: "Renew the TLS certificate immediately",
		}
	case days < 30:
		return 1.0, Finding{
			Name:           "cert_validity",
			Status:         StatusWarn,
			Message:        fmt.Sprintf("Certificate expires in %d days", int(days)),
			Value:          expiry,
			Recommendation: "Plan certificate renewal",
		}
	default:
		credit := 1.5 + 0.5*minFloat(1, days/90)
		return credit, Finding{
			Name:    "cert_validity",
			Status:  StatusPass,
			Message: fmt.Sprintf("Certificate valid for %d more days", int(days)),
			Value:   expiry,
		}
	}
}

// checkCertIssuer flags self-signed certificates: issuer CN equal to subject
// CN with no issuer organization.
func checkCertIssuer(cert *x509.Certificate) (float64, Finding) {
	selfSigned := cert.Issuer.CommonName == cert.Subject.CommonName &&
		len(cert.Issuer.Organization) == 0

	if selfSigned {
		return 0, Finding{
			Name:           "cert_issuer",
			Status:         StatusWarn,
			Message:        "Certificate appears to be self-signed",
			Value:          cert.Issuer.CommonName,
			Recommendation: "Use a certificate issued by a trusted CA",
		}
	}
	return tlsIssuerMax, Finding{
		Name:    "cert_issuer",
		Status:  StatusPass,
		Message: "Certificate issued by a CA",
		Value:   cert.Issuer.CommonName,
	}
}

// checkHostnameCoverage matches the requested hostname against the subject CN
// and every SAN DNS entry.
func checkHostnameCoverage(hostname string, cert *x509.Certificate) (float64, Finding) {
	candidates := make([]string, 0, len(cert.DNSNames)+1)
	if cert.Subject.CommonName != "" {
		candidates = append(candidates, cert.Subject.CommonName)
	}
	candidates = append(candidates, cert.DNSNames...)

	for _, pattern := range candidates {
		if matchesCertPattern(hostname, pattern) {
			return tlsHostnameMax, Finding{
				Name:    "hostname_coverage",
				Status:  StatusPass,
				Message: "Certificate covers the requested hostname",
				Value:   pattern,
			}
		}
	}

	return 0, Finding{
		Name:           "hostname_coverage",
		Status:         StatusFail,
		Message:        fmt.Sprintf("Certificate does not cover %s", hostname),
		Value:          strings.Join(candidates, ", "),
		Recommendation: "Reissue the certificate with the correct hostname or SAN entries",
	}
}

// matchesCertPattern compares a hostname against one certificate name. A
// wildcard pattern *.<suffix> matches only hostnames with exactly one extra
// label beyond the suffix; cross-level matches are rejected.
func matchesCertPattern(hostname, pattern string) bool {
	hostname = strings.ToLower(strings.TrimSuffix(hostname, "."))
	pattern = strings.ToLower(strings.TrimSuffix(pattern, "."))

	if !strings.HasPrefix(pattern, "*.") {
		return hostname == pattern
	}

	suffix := pattern[2:]
	if suffix == "" {
		return false
	}
	if !strings.HasSuffix(hostname, "."+suffix) {
		return false
	}
	label := strings.TrimSuffix(hostname, "."+suffix)
	return label != "" && !strings.Contains(label, ".")
}

// checkProtocolVersion scores the negotiated TLS version.
func checkProtocolVersion(version uint16) (float64, Finding) {
	switch version {
	case tls.VersionTLS13:
		return tlsProtocolMax, Finding{
			Name:    "protocol_version",
			Status:  StatusPass,
			Message: "TLS 1.3 negotiated",
			Value:   "TLS 1.3",
		}
	case tls.VersionTLS12:
		return 1.0, Finding{
			Name:           "protocol_version",
			Status:         StatusWarn,
			Message:        "TLS 1.2 negotiated",
			Value:          "TLS 1.2",
			Recommendation: "Enable TLS 1.3 for improved security and performance",
		}
	default:
		return 0, Finding{
			Name:           "protocol_version",
			Status:         StatusFail,
			Message:        "Obsolete TLS version negotiated",
			Value:          tlsVersionString(version),
			Recommendation: "Disable TLS 1.1 and below; enable TLS 1.2 and 1.3",
		}
	}
}

// checkCipherStrength passes modern AEAD families (AES-256, GCM, ChaCha20)
// and downgrades everything else to half credit.
func checkCipherStrength(suite uint16) (float64, Finding) {
	name := tls.CipherSuiteName(suite)
	upper := strings.ToUpper(name)

	if strings.Contains(upper, "AES_256") ||
		strings.Contains(upper, "GCM") ||
		strings.Contains(upper, "CHACHA20") {
		return tlsCipherMax, Finding{
			Name:    "cipher_strength",
			Status:  StatusPass,
			Message: "Strong cipher suite negotiated",
			Value:   name,
		}
	}
	return 0.5, Finding{
		Name:           "cipher_strength",
		Status:         StatusWarn,
		Message:        "Cipher suite is not in the modern AEAD family",
		Value:          name,
		Recommendation: "Prefer AES-GCM or ChaCha20-Poly1305 cipher suites",
	}
}

// tlsVersionString converts a TLS version constant to a display string.
func tlsVersionString(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return fmt.Sprintf("Unknown (0x%04x)", version)
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
