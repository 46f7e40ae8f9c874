package scanner

import (
	"context"
	"time"

	"go.uber.org/zap"

	consts "github.com/khanhnv2901/webgrade/internal/shared/constants"
)

// Options configure one scan.
type Options struct {
	// Timeout is the per-probe timeout requested by the caller.
	Timeout time.Duration
	// Tier selects the enabled probe set.
	Tier Tier
	// FullOverride enables every probe regardless of tier.
	FullOverride bool
}

// Scanner ties the pipeline together: target normalization, connectivity
// preflight, concurrent probe orchestration, score aggregation.
type Scanner struct {
	opts   Options
	logger *zap.SugaredLogger
}

// New creates a Scanner. A nil logger is replaced with a no-op logger.
func New(opts Options, logger *zap.SugaredLogger) *Scanner {
	if opts.Timeout <= 0 {
		opts.Timeout = consts.DefaultScanTimeout
	}
	if opts.Tier == "" {
		opts.Tier = TierFree
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Scanner{opts: opts, logger: logger}
}

// Scan runs the full pipeline against a raw target URL. It returns a
// *errors.NetworkError when the preflight finds the host unreachable; in that
// case no Report is produced.
func (s *Scanner) Scan(ctx context.Context, rawURL string) (*Report, error) {
	target, err := NewTarget(rawURL)
	if err != nil {
		return nil, err
	}

	preflight := &Preflight{Timeout: s.opts.Timeout}
	if err := preflight.Check(ctx, target); err != nil {
		return nil, err
	}

	descs := Catalog(s.opts.Tier, s.opts.FullOverride, s.opts.Timeout)
	s.logger.Infow("starting scan",
		"target", target.Origin(),
		"tier", s.opts.Tier,
		"probes", len(descs))

	orch := NewOrchestrator(s.opts.Timeout, s.logger)
	report := orch.Run(ctx, target, s.opts.Tier, descs)

	s.logger.Infow("scan complete",
		"target", target.Origin(),
		"score", report.Score,
		"max_score", report.MaxScore,
		"grade", report.Grade,
		"duration_ms", report.ScanDuration)

	return report, nil
}
