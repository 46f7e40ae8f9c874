package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/khanhnv2901/webgrade/internal/scanner"
)

func TestRenderReport(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	report := &scanner.Report{
		URL:          "https://example.com",
		Hostname:     "example.com",
		ScannedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ScanDuration: 1234,
		Grade:        "B",
		Score:        63.5,
		MaxScore:     90,
		Tier:         "free",
		SectionOrder: []string{"tls", "headers"},
		Sections: map[string]scanner.Section{
			"tls": {
				Score:    20,
				MaxScore: 25,
				Grade:    "A",
				Checks: []scanner.Finding{
					{Name: "protocol_version", Status: scanner.StatusPass, Message: "TLS 1.3 negotiated"},
				},
			},
			"headers": {
				Score:    10,
				MaxScore: 25,
				Grade:    "D",
				Checks: []scanner.Finding{
					{Name: "hsts", Status: scanner.StatusFail, Message: "Strict-Transport-Security is not set"},
					{Name: "header_disclosure", Status: scanner.StatusInfo, Message: "Server header reveals a version", Value: "nginx/1.18.0"},
				},
			},
		},
		Summary: scanner.Summary{Passed: 1, Warnings: 0, Failed: 1, Info: 1},
	}

	var buf bytes.Buffer
	renderReport(&buf, report)
	out := buf.String()

	for _, want := range []string{
		"Target:   https://example.com",
		"free tier",
		"Grade:    B  (63.5 / 90.0)",
		"tls: A (20.0 / 25.0)",
		"headers: D (10.0 / 25.0)",
		"PASS",
		"protocol_version",
		"FAIL",
		"[nginx/1.18.0]",
		"Summary: 1 passed, 0 warnings, 1 failed, 1 informational",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q\n%s", want, out)
		}
	}

	// Section order in the output follows SectionOrder.
	if strings.Index(out, "tls:") > strings.Index(out, "headers:") {
		t.Error("sections rendered out of order")
	}
}
