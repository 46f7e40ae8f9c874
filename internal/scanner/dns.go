package scanner

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

const (
	dnsSPFWeight   = 2.0
	dnsDMARCWeight = 2.0
	dnsNSWeight    = 1.0

	dnsRawMax = dnsSPFWeight + dnsDMARCWeight + dnsNSWeight
)

// DNSProbe checks mail-spoofing posture (SPF, DMARC) and nameserver
// redundancy for the target's domain. Lookup failures degrade individual
// checks; they never fail the probe.
type DNSProbe struct {
	Timeout time.Duration
}

func (d *DNSProbe) Name() string    { return "dns" }
func (d *DNSProbe) Weight() float64 { return 5 }

func (d *DNSProbe) Run(ctx context.Context, target *Target) ProbeResult {
	resolver := &net.Resolver{PreferGo: true}
	domain := strings.TrimPrefix(target.Hostname, "www.")

	var score float64
	findings := make([]Finding, 0, 3)

	s, f := d.checkSPF(ctx, resolver, domain)
	score += s
	findings = append(findings, f)

	s, f = d.checkDMARC(ctx, resolver, domain)
	score += s
	findings = append(findings, f)

	s, f = d.checkNSRedundancy(ctx, resolver, domain)
	score += s
	findings = append(findings, f)

	return ProbeResult{Score: score, MaxScore: dnsRawMax, Findings: findings}
}

func (d *DNSProbe) checkSPF(ctx context.Context, resolver *net.Resolver, domain string) (float64, Finding) {
	lookupCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	records, err := resolver.LookupTXT(lookupCtx, domain)
	if err != nil {
		return 0, Finding{
			Name:    "spf",
			Status:  StatusWarn,
			Message: fmt.Sprintf("TXT lookup for %s failed: %v", domain, err),
		}
	}

	for _, record := range records {
		if strings.HasPrefix(strings.ToLower(record), "v=spf1") {
			return dnsSPFWeight, Finding{
				Name:    "spf",
				Status:  StatusPass,
				Message: "SPF record present",
				Value:   record,
			}
		}
	}
	return 0, Finding{
		Name:           "spf",
		Status:         StatusWarn,
		Message:        "No SPF record found",
		Recommendation: "Publish a 'v=spf1' TXT record to limit mail spoofing",
	}
}

func (d *DNSProbe) checkDMARC(ctx context.Context, resolver *net.Resolver, domain string) (float64, Finding) {
	lookupCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	records, err := resolver.LookupTXT(lookupCtx, "_dmarc."+domain)
	if err != nil {
		return 0, Finding{
			Name:           "dmarc",
			Status:         StatusWarn,
			Message:        "No DMARC record found",
			Recommendation: "Publish a '_dmarc' TXT record with at least 'p=none'",
		}
	}

	for _, record := range records {
		if strings.HasPrefix(strings.ToLower(record), "v=dmarc1") {
			return dnsDMARCWeight, Finding{
				Name:    "dmarc",
				Status:  StatusPass,
				Message: "DMARC record present",
				Value:   record,
			}
		}
	}
	return 0, Finding{
		Name:           "dmarc",
		Status:         StatusWarn,
		Message:        "TXT record at _dmarc exists but is not a DMARC policy",
		Recommendation: "Publish a valid 'v=DMARC1' policy",
	}
}

func (d *DNSProbe) checkNSRedundancy(ctx context.Context, resolver *net.Resolver, domain string) (float64, Finding) {
	lookupCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	records, err := resolver.LookupNS(lookupCtx, domain)
	if err != nil {
		return 0, Finding{
			Name:    "ns_redundancy",
			Status:  StatusWarn,
			Message: fmt.Sprintf("NS lookup for %s failed: %v", domain, err),
		}
	}

	switch {
	case len(records) >= 2:
		return dnsNSWeight, Finding{
			Name:    "ns_redundancy",
			Status:  StatusPass,
			Message: fmt.Sprintf("%d nameservers configured", len(records)),
		}
	case len(records) == 1:
		return 0.5, Finding{
			Name:           "ns_redundancy",
			Status:         StatusWarn,
			Message:        "Only one nameserver configured",
			Recommendation: "Configure at least two nameservers for redundancy",
		}
	default:
		return 0, Finding{
			Name:    "ns_redundancy",
			Status:  StatusWarn,
			Message: "No nameservers found",
		}
	}
}
