package scanner

import (
	"context"
	"fmt"
)

// Status classifies the outcome of a single check within a probe.
type Status string

const (
	StatusPass  Status = "pass"
	StatusWarn  Status = "warn"
	StatusFail  Status = "fail"
	StatusInfo  Status = "info"
	StatusError Status = "error"
)

// Finding is the smallest reported unit: one check outcome with an optional
// piece of evidence and an optional remediation hint. Findings are never
// mutated after a probe returns them.
type Finding struct {
	Name           string `json:"name"`
	Status         Status `json:"status"`
	Message        string `json:"message"`
	Value          string `json:"value,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// ProbeResult carries the raw score a probe earned against its own raw scale,
// plus the ordered findings that explain it. The aggregator later normalizes
// Score/MaxScore onto the probe's declared weight.
type ProbeResult struct {
	Score    float64
	MaxScore float64
	Findings []Finding
}

// Probe is the contract every security check implements. A probe performs its
// own network I/O, never shares mutable state with sibling probes, and returns
// exactly one ProbeResult per invocation. Probes must honor ctx cancellation
// on every outbound operation.
type Probe interface {
	// Name returns the stable section key for this probe (e.g. "tls").
	Name() string

	// Weight returns the probe's share of the composite score.
	Weight() float64

	// Run executes the probe against the target. Implementations convert
	// their own failures into findings; they do not return errors.
	Run(ctx context.Context, target *Target) ProbeResult
}

// errorResult builds the single-finding result used when a probe fails
// wholesale: zero credit against the probe's full weight.
func errorResult(p Probe, reason string) ProbeResult {
	return ProbeResult{
		Score:    0,
		MaxScore: p.Weight(),
		Findings: []Finding{{
			Name:    p.Name(),
			Status:  StatusError,
			Message: reason,
		}},
	}
}

// errorResultf is errorResult with formatting.
func errorResultf(p Probe, format string, args ...interface{}) ProbeResult {
	return errorResult(p, fmt.Sprintf(format, args...))
}
