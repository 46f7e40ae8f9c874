package scanner

import "time"

// Section is one probe's slice of the report: the probe's score normalized
// onto its weight, its letter grade, and the findings behind it.
type Section struct {
	Score    float64   `json:"score"`
	MaxScore float64   `json:"maxScore"`
	Grade    string    `json:"grade"`
	Checks   []Finding `json:"checks"`
}

// Summary counts findings across all sections by status. Error findings are
// counted as failed.
type Summary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Failed   int `json:"failed"`
	Info     int `json:"info"`
}

// Report is the complete, renderer-agnostic output of one scan. Renderers
// (terminal, JSON) consume it without mutating it.
type Report struct {
	URL       string    `json:"url"`
	Hostname  string    `json:"hostname"`
	ScannedAt time.Time `json:"scannedAt"`
	// ScanDuration is the wall-clock duration of the scan in milliseconds.
	ScanDuration float64            `json:"scanDuration"`
	Grade        string             `json:"grade"`
	Score        float64            `json:"score"`
	MaxScore     float64            `json:"maxScore"`
	Sections     map[string]Section `json:"sections"`
	Summary      Summary            `json:"summary"`
	Tier         Tier               `json:"tier"`

	// SectionOrder preserves the canonical enabled-probe order for renderers;
	// the JSON contract exposes sections as a map.
	SectionOrder []string `json:"-"`
}
