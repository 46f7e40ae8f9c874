// Package scanner implements the webgrade probe-orchestration and scoring
// engine.
//
// Architecture overview:
//
//   - Probes implement the Probe interface (Name, Weight, Run) for one
//     security concern each: TLS parameters, response-header policy,
//     exposed sensitive paths, open redirects, cookies, DNS posture, and
//     server fingerprinting.
//   - Preflight runs one fast reachability check before any weighted probe;
//     only low-level connection failures (DNS, refused, reset, timeout) abort
//     the scan, surfaced as a typed NetworkError.
//   - Orchestrator fans the enabled probes out concurrently, races each
//     against its own deadline, isolates panics and timeouts into error
//     findings, and waits for every probe to settle before composing the
//     Report in canonical section order.
//   - The score fold normalizes each probe's raw scale onto its declared
//     weight; letter grades are a pure function of the score/maxScore ratio
//     at both section and composite level.
//   - The soft-404 classifier keeps the exposed-path sweep honest against
//     permissive servers: catch-all SPA routes, generic error pages, and
//     fingerprint-less admin paths are all downgraded to effective 404s.
//
// Probes share no mutable state; every probe owns its HTTP client and
// returns an independent ProbeResult. The Report is a plain data structure
// consumed read-only by renderers in cmd/.
package scanner
