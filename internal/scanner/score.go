package scanner

import (
	"math"
	"time"
)

// GradeFor converts a score/maxScore ratio into a letter grade. The same
// thresholds apply at section and composite level.
func GradeFor(ratio float64) string {
	switch {
	case ratio >= 0.95:
		return "A+"
	case ratio >= 0.85:
		return "A"
	case ratio >= 0.70:
		return "B"
	case ratio >= 0.55:
		return "C"
	case ratio >= 0.40:
		return "D"
	default:
		return "F"
	}
}

// normalizeScore maps a probe's raw score onto its declared weight. Probes
// with an empty raw scale earn nothing.
func normalizeScore(score, maxScore, weight float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	normalized := (score / maxScore) * weight
	if normalized > weight {
		normalized = weight
	}
	if normalized < 0 {
		normalized = 0
	}
	return normalized
}

// roundScore rounds for display to one decimal place without ever exceeding
// the given ceiling.
func roundScore(v, ceiling float64) float64 {
	rounded := math.Round(v*10) / 10
	if rounded > ceiling {
		return ceiling
	}
	return rounded
}

// buildReport folds probe results into the final Report. Results arrive in
// the same canonical order as the descriptors; the fold is single-threaded
// and lock-free because every probe has already settled.
func buildReport(target *Target, tier Tier, descs []ProbeDescriptor, results []ProbeResult, startedAt time.Time) *Report {
	report := &Report{
		URL:          target.Origin(),
		Hostname:     target.Hostname,
		ScannedAt:    startedAt.UTC(),
		Sections:     make(map[string]Section, len(descs)),
		SectionOrder: make([]string, 0, len(descs)),
		Tier:         tier,
	}

	var compositeScore, compositeMax float64
	for i, d := range descs {
		res := results[i]
		weight := d.Probe.Weight()
		normalized := normalizeScore(res.Score, res.MaxScore, weight)

		ratio := 0.0
		if weight > 0 {
			ratio = normalized / weight
		}

		report.Sections[d.Probe.Name()] = Section{
			Score:    roundScore(normalized, weight),
			MaxScore: weight,
			Grade:    GradeFor(ratio),
			Checks:   res.Findings,
		}
		report.SectionOrder = append(report.SectionOrder, d.Probe.Name())

		compositeScore += normalized
		compositeMax += weight

		for _, f := range res.Findings {
			switch f.Status {
			case StatusPass:
				report.Summary.Passed++
			case StatusWarn:
				report.Summary.Warnings++
			case StatusFail, StatusError:
				report.Summary.Failed++
			case StatusInfo:
				report.Summary.Info++
			}
		}
	}

	report.Score = roundScore(compositeScore, compositeMax)
	report.MaxScore = compositeMax
	if compositeMax > 0 {
		report.Grade = GradeFor(compositeScore / compositeMax)
	} else {
		report.Grade = GradeFor(0)
	}
	report.ScanDuration = float64(time.Since(startedAt).Milliseconds())

	return report
}
