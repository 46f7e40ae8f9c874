package scanner

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

// stubProbe is a controllable test double for the Probe contract.
type stubProbe struct {
	name   string
	weight float64
	result ProbeResult
	run    func(ctx context.Context, target *Target) ProbeResult
}

func (s *stubProbe) Name() string    { return s.name }
func (s *stubProbe) Weight() float64 { return s.weight }

func (s *stubProbe) Run(ctx context.Context, target *Target) ProbeResult {
	if s.run != nil {
		return s.run(ctx, target)
	}
	return s.result
}

func mustTarget(t *testing.T, raw string) *Target {
	t.Helper()
	target, err := NewTarget(raw)
	if err != nil {
		t.Fatalf("NewTarget(%q): %v", raw, err)
	}
	return target
}

func testOrchestrator(timeout, grace time.Duration) *Orchestrator {
	return &Orchestrator{
		Timeout: timeout,
		Grace:   grace,
		Logger:  zap.NewNop().Sugar(),
	}
}

func TestOrchestrator_EverySectionPresentAndOrdered(t *testing.T) {
	target := mustTarget(t, "https://example.com")
	descs := []ProbeDescriptor{
		{Probe: &stubProbe{name: "alpha", weight: 10, result: ProbeResult{Score: 1, MaxScore: 1}}, Cap: time.Second},
		{Probe: &stubProbe{name: "beta", weight: 20, result: ProbeResult{Score: 1, MaxScore: 2}}, Cap: time.Second},
		{Probe: &stubProbe{name: "gamma", weight: 30, result: ProbeResult{Score: 0, MaxScore: 1}}, Cap: time.Second},
	}

	report := testOrchestrator(time.Second, 100*time.Millisecond).Run(context.Background(), target, TierFree, descs)

	if len(report.Sections) != len(descs) {
		t.Fatalf("expected %d sections, got %d", len(descs), len(report.Sections))
	}
	wantOrder := []string{"alpha", "beta", "gamma"}
	for i, name := range report.SectionOrder {
		if name != wantOrder[i] {
			t.Fatalf("section order = %v, want %v", report.SectionOrder, wantOrder)
		}
	}
	if report.MaxScore != 60 {
		t.Fatalf("composite max = %v, want 60", report.MaxScore)
	}
}

func TestOrchestrator_PanickingProbeIsIsolated(t *testing.T) {
	target := mustTarget(t, "https://example.com")
	descs := []ProbeDescriptor{
		{Probe: &stubProbe{name: "boom", weight: 10, run: func(ctx context.Context, target *Target) ProbeResult {
			panic("kaboom")
		}}, Cap: time.Second},
		{Probe: &stubProbe{name: "calm", weight: 10, result: ProbeResult{Score: 1, MaxScore: 1}}, Cap: time.Second},
	}

	report := testOrchestrator(time.Second, 100*time.Millisecond).Run(context.Background(), target, TierFree, descs)

	if len(report.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(report.Sections))
	}

	boom := report.Sections["boom"]
	if boom.Score != 0 {
		t.Errorf("panicked probe score = %v, want 0", boom.Score)
	}
	if len(boom.Checks) != 1 || boom.Checks[0].Status != StatusError {
		t.Errorf("expected exactly one error finding, got %+v", boom.Checks)
	}

	calm := report.Sections["calm"]
	if calm.Score != 10 {
		t.Errorf("sibling probe affected by panic: score = %v, want 10", calm.Score)
	}
}

func TestOrchestrator_HangingProbeHitsDeadline(t *testing.T) {
	target := mustTarget(t, "https://example.com")
	descs := []ProbeDescriptor{
		{Probe: &stubProbe{name: "hang", weight: 10, run: func(ctx context.Context, target *Target) ProbeResult {
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			return ProbeResult{Score: 1, MaxScore: 1}
		}}, Cap: 20 * time.Millisecond},
	}

	start := time.Now()
	report := testOrchestrator(20*time.Millisecond, 10*time.Millisecond).Run(context.Background(), target, TierFree, descs)
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Fatalf("orchestrator stalled on hung probe: %v", elapsed)
	}

	section, ok := report.Sections["hang"]
	if !ok {
		t.Fatal("hung probe produced no section")
	}
	if section.Score != 0 {
		t.Errorf("hung probe score = %v, want 0", section.Score)
	}
	if len(section.Checks) != 1 || section.Checks[0].Status != StatusError {
		t.Errorf("expected exactly one error finding, got %+v", section.Checks)
	}
}

func TestOrchestrator_DeadlineIsMinOfGlobalAndCap(t *testing.T) {
	target := mustTarget(t, "https://example.com")

	var sawDeadline time.Duration
	descs := []ProbeDescriptor{
		{Probe: &stubProbe{name: "peek", weight: 1, run: func(ctx context.Context, target *Target) ProbeResult {
			if dl, ok := ctx.Deadline(); ok {
				sawDeadline = time.Until(dl)
			}
			return ProbeResult{Score: 1, MaxScore: 1}
		}}, Cap: 50 * time.Millisecond},
	}

	// Global timeout far above the cap: cap + grace must win.
	testOrchestrator(10*time.Second, 25*time.Millisecond).Run(context.Background(), target, TierFree, descs)

	if sawDeadline <= 0 || sawDeadline > 80*time.Millisecond {
		t.Fatalf("probe deadline = %v, want <= cap+grace (75ms)", sawDeadline)
	}
}
