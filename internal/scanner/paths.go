package scanner

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	consts "github.com/khanhnv2901/webgrade/internal/shared/constants"
)

// Severity tags catalog entries. Critical and high are scored binary,
// medium earns partial credit, low and info are reported but never scored.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// severityWeights are the raw points a scored entry contributes.
var severityWeights = map[Severity]float64{
	SeverityCritical: 3,
	SeverityHigh:     2,
	SeverityMedium:   1,
}

// sensitivePath is one catalog entry: a path worth probing, its severity,
// and the content expectations the soft-404 classifier enforces.
type sensitivePath struct {
	Path     string
	Severity Severity
	Label    string
	// WantsHTML marks paths whose legitimate content is an HTML page
	// (admin panels, status pages). For every other entry an HTML body is
	// the signature of a catch-all route.
	WantsHTML bool
	// Verify is an optional content-shape fingerprint applied to the
	// lowercased body before the entry may count as exposed.
	Verify func(string) bool
}

// pathCatalog is the fixed set of probed paths, ordered by severity for
// reporting.
var pathCatalog = []sensitivePath{
	{Path: "/.env", Severity: SeverityCritical, Label: "Environment file", Verify: verifyEnvFile},
	{Path: "/.git/HEAD", Severity: SeverityCritical, Label: "Git HEAD reference", Verify: verifyGitRef},
	{Path: "/id_rsa", Severity: SeverityCritical, Label: "SSH private key", Verify: verifyPrivateKey},
	{Path: "/.env.local", Severity: SeverityHigh, Label: "Local environment file", Verify: verifyEnvFile},
	{Path: "/.git/config", Severity: SeverityHigh, Label: "Git configuration", Verify: verifyGitConfig},
	{Path: "/.htpasswd", Severity: SeverityHigh, Label: "htpasswd credentials", Verify: verifyHTPasswd},
	{Path: "/backup.sql", Severity: SeverityHigh, Label: "SQL backup dump", Verify: verifySQLDump},
	{Path: "/docker-compose.yml", Severity: SeverityHigh, Label: "Compose definition", Verify: verifyCompose},
	{Path: "/phpinfo.php", Severity: SeverityHigh, Label: "phpinfo page", WantsHTML: true, Verify: verifyPHPInfo},
	{Path: "/phpmyadmin/", Severity: SeverityHigh, Label: "phpMyAdmin panel", WantsHTML: true, Verify: verifyMarker("phpmyadmin")},
	{Path: "/dump.sql", Severity: SeverityMedium, Label: "SQL dump", Verify: verifySQLDump},
	{Path: "/Dockerfile", Severity: SeverityMedium, Label: "Dockerfile", Verify: verifyDockerfile},
	{Path: "/package.json", Severity: SeverityMedium, Label: "Node manifest", Verify: verifyManifest},
	{Path: "/composer.json", Severity: SeverityMedium, Label: "Composer manifest", Verify: verifyManifest},
	{Path: "/admin/", Severity: SeverityMedium, Label: "Admin panel", WantsHTML: true, Verify: verifyLoginPanel},
	{Path: "/wp-admin/", Severity: SeverityMedium, Label: "WordPress admin", WantsHTML: true, Verify: verifyMarker("wp-login", "wordpress")},
	{Path: "/server-status", Severity: SeverityMedium, Label: "Apache status page", WantsHTML: true, Verify: verifyMarker("apache server status", "server uptime")},
	{Path: "/.gitignore", Severity: SeverityLow, Label: "Git ignore file"},
	{Path: "/.DS_Store", Severity: SeverityLow, Label: "macOS metadata file"},
	{Path: "/.well-known/security.txt", Severity: SeverityInfo, Label: "security.txt"},
}

const (
	// pathBatchSize bounds concurrent requests so the probe cannot exhaust
	// the target's (or its own) connection budget.
	pathBatchSize = 4
	// pathRequestsPerSecond paces the catalog sweep.
	pathRequestsPerSecond = 8
	// unreliableErrorRatio is the fraction of scored checks that may fail to
	// connect before the whole result is flagged unreliable.
	unreliableErrorRatio = 0.8
)

// pathOutcome is the per-entry record collected by the sweep workers.
type pathOutcome struct {
	entry     sensitivePath
	exposed   bool
	status    int
	effective int
	connErr   error
}

// ExposedPathProbe sweeps a fixed catalog of sensitive paths in bounded
// concurrent batches and classifies each response through the soft-404
// classifier before it may count as exposed.
type ExposedPathProbe struct {
	Timeout time.Duration
	catalog []sensitivePath
	limiter *rate.Limiter
}

// NewExposedPathProbe builds the probe with the default catalog and pacing.
func NewExposedPathProbe(timeout time.Duration) *ExposedPathProbe {
	return &ExposedPathProbe{
		Timeout: timeout,
		catalog: pathCatalog,
		limiter: rate.NewLimiter(rate.Limit(pathRequestsPerSecond), pathBatchSize),
	}
}

func (p *ExposedPathProbe) Name() string    { return "exposed_paths" }
func (p *ExposedPathProbe) Weight() float64 { return 30 }

func (p *ExposedPathProbe) Run(ctx context.Context, target *Target) ProbeResult {
	client := &http.Client{
		Timeout: p.Timeout,
		Transport: &http.Transport{
			TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, // #nosec G402
			MaxConnsPerHost:     pathBatchSize,
			MaxIdleConnsPerHost: pathBatchSize,
		},
	}
	defer client.CloseIdleConnections()

	outcomes := make([]pathOutcome, len(p.catalog))
	sem := make(chan struct{}, pathBatchSize)
	var wg sync.WaitGroup

	for i, entry := range p.catalog {
		wg.Add(1)
		go func(i int, entry sensitivePath) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := p.limiter.Wait(ctx); err != nil {
				outcomes[i] = pathOutcome{entry: entry, connErr: err}
				return
			}
			outcomes[i] = p.probePath(ctx, client, target, entry)
		}(i, entry)
	}
	wg.Wait()

	return p.score(outcomes)
}

// probePath fetches one catalog entry and classifies the response.
func (p *ExposedPathProbe) probePath(ctx context.Context, client *http.Client, target *Target, entry sensitivePath) pathOutcome {
	outcome := pathOutcome{entry: entry}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.PathURL(entry.Path), nil)
	if err != nil {
		outcome.connErr = err
		return outcome
	}

	resp, err := client.Do(req)
	if err != nil {
		outcome.connErr = err
		return outcome
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, consts.BodyCaptureLimitBytes))

	outcome.status = resp.StatusCode
	outcome.effective = effectiveStatus(entry, resp.StatusCode, string(body))
	outcome.exposed = outcome.effective >= 200 && outcome.effective < 300
	return outcome
}

// score folds outcomes into the probe result. Critical/high entries are
// binary pass/fail, medium entries earn half credit when exposed, low/info
// entries are reported without score effect.
func (p *ExposedPathProbe) score(outcomes []pathOutcome) ProbeResult {
	var score, maxScore float64
	var scoredChecks, connErrors int
	findings := make([]Finding, 0, len(outcomes))

	for _, out := range outcomes {
		weight, scored := severityWeights[out.entry.Severity]
		if scored {
			maxScore += weight
			scoredChecks++
		}

		if out.connErr != nil {
			if scored {
				connErrors++
				// Unreachable is not evidence of exposure; keep the credit.
				score += weight
			}
			findings = append(findings, Finding{
				Name:    findingName(out.entry),
				Status:  StatusError,
				Message: fmt.Sprintf("%s: request failed: %v", out.entry.Label, out.connErr),
				Value:   out.entry.Path,
			})
			continue
		}

		switch {
		case !out.exposed && scored:
			score += weight
			findings = append(findings, Finding{
				Name:    findingName(out.entry),
				Status:  StatusPass,
				Message: fmt.Sprintf("%s is not exposed", out.entry.Label),
				Value:   out.entry.Path,
			})
		case !out.exposed:
			findings = append(findings, Finding{
				Name:    findingName(out.entry),
				Status:  StatusInfo,
				Message: fmt.Sprintf("%s is not exposed", out.entry.Label),
				Value:   out.entry.Path,
			})
		case out.entry.Severity == SeverityMedium:
			score += weight * 0.5
			findings = append(findings, Finding{
				Name:           findingName(out.entry),
				Status:         StatusWarn,
				Message:        fmt.Sprintf("%s is publicly accessible", out.entry.Label),
				Value:          out.entry.Path,
				Recommendation: "Restrict access to " + out.entry.Path,
			})
		case scored:
			findings = append(findings, Finding{
				Name:           findingName(out.entry),
				Status:         StatusFail,
				Message:        fmt.Sprintf("%s is publicly accessible", out.entry.Label),
				Value:          out.entry.Path,
				Recommendation: "Remove " + out.entry.Path + " from the web root or block access to it",
			})
		default:
			findings = append(findings, Finding{
				Name:    findingName(out.entry),
				Status:  StatusInfo,
				Message: fmt.Sprintf("%s is publicly accessible", out.entry.Label),
				Value:   out.entry.Path,
			})
		}
	}

	// A sweep where most scored requests never connected says nothing about
	// exposure; flag it instead of implying a clean scan.
	if scoredChecks > 0 && float64(connErrors) > unreliableErrorRatio*float64(scoredChecks) {
		findings = append([]Finding{{
			Name:    "sweep_reliability",
			Status:  StatusError,
			Message: fmt.Sprintf("%d of %d path checks failed to connect; results are unreliable", connErrors, scoredChecks),
		}}, findings...)
	}

	return ProbeResult{Score: score, MaxScore: maxScore, Findings: findings}
}

func findingName(entry sensitivePath) string {
	return "path " + entry.Path
}
