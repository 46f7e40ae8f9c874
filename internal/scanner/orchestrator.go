package scanner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	consts "github.com/khanhnv2901/webgrade/internal/shared/constants"
)

// Orchestrator fans out the enabled probes concurrently and folds their
// results into a Report. It never emits a Report until every probe has either
// settled or exhausted its individual deadline, and it never lets one probe's
// failure cancel a sibling.
type Orchestrator struct {
	// Timeout is the caller-requested per-probe timeout; each probe's
	// effective deadline is min(Timeout, probe cap) + Grace.
	Timeout time.Duration
	// Grace is the fixed slack added to every deadline.
	Grace time.Duration
	// Logger receives per-probe progress; defaults to a no-op logger.
	Logger *zap.SugaredLogger
}

// NewOrchestrator returns an orchestrator with the default grace period.
func NewOrchestrator(timeout time.Duration, logger *zap.SugaredLogger) *Orchestrator {
	if timeout <= 0 {
		timeout = consts.DefaultScanTimeout
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Orchestrator{
		Timeout: timeout,
		Grace:   consts.ProbeGracePeriod,
		Logger:  logger,
	}
}

// Run executes every descriptor's probe against the target and returns the
// composed Report. Sections appear in descriptor order regardless of
// completion order, and len(Report.Sections) always equals len(descs).
func (o *Orchestrator) Run(ctx context.Context, target *Target, tier Tier, descs []ProbeDescriptor) *Report {
	startedAt := time.Now()
	results := make([]ProbeResult, len(descs))

	var wg sync.WaitGroup
	for i, d := range descs {
		wg.Add(1)
		go func(i int, d ProbeDescriptor) {
			defer wg.Done()
			results[i] = o.runProbe(ctx, target, d)
		}(i, d)
	}
	wg.Wait()

	return buildReport(target, tier, descs, results, startedAt)
}

// runProbe races one probe against its deadline. Panics and timeouts are
// converted into a single error-finding result so the probe still yields
// exactly one section.
func (o *Orchestrator) runProbe(ctx context.Context, target *Target, d ProbeDescriptor) ProbeResult {
	deadline := o.Timeout
	if d.Cap < deadline {
		deadline = d.Cap
	}
	deadline += o.Grace

	probeCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	started := time.Now()
	ch := make(chan ProbeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				o.Logger.Errorw("probe panicked", "probe", d.Probe.Name(), "panic", r)
				ch <- errorResultf(d.Probe, "probe panicked: %v", r)
			}
		}()
		ch <- d.Probe.Run(probeCtx, target)
	}()

	select {
	case res := <-ch:
		o.Logger.Debugw("probe settled",
			"probe", d.Probe.Name(),
			"score", res.Score,
			"max_score", res.MaxScore,
			"duration_ms", time.Since(started).Milliseconds())
		return res
	case <-probeCtx.Done():
		// The probe goroutine is abandoned here; its own socket timeouts
		// guarantee it unwinds shortly after, and the buffered channel lets
		// its late result be dropped without leaking the goroutine forever.
		o.Logger.Warnw("probe timed out", "probe", d.Probe.Name(), "deadline", deadline)
		return errorResultf(d.Probe, "probe timed out after %s", deadline)
	}
}
