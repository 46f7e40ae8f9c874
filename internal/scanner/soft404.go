package scanner

import (
	"regexp"
	"strings"
)

// minSignificantBodyLength is the shortest body that can count as real
// content; anything smaller is treated as a soft 404.
const minSignificantBodyLength = 10

var (
	titleRe   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	headingRe = regexp.MustCompile(`(?is)<h[12][^>]*>(.*?)</h[12]>`)
)

// notFoundMarkers are generic "this is really a 404" signatures looked for in
// page titles and top-level headings.
var notFoundMarkers = []string{"404", "not found", "error"}

// effectiveStatus converts a raw (status, body) pair into the status the
// response semantically deserves. Permissive and catch-all servers answer 200
// for everything; only responses that survive every downgrade rule here count
// as genuinely exposed.
func effectiveStatus(entry sensitivePath, status int, body string) int {
	// Non-2xx passes through untouched; 3xx is never exposure.
	if status < 200 || status >= 300 {
		return status
	}

	trimmed := strings.TrimSpace(body)
	if len(trimmed) < minSignificantBodyLength {
		return 404
	}

	lower := strings.ToLower(trimmed)
	if hasNotFoundMarker(lower) {
		return 404
	}

	html := looksLikeHTML(lower)
	// A catch-all SPA route answers HTML for every path. If the path denotes
	// a non-HTML artifact (.env, .git/HEAD, a dump) an HTML body is a miss.
	if !entry.WantsHTML && html {
		return 404
	}

	// Paths with a content fingerprint must prove their shape: an admin panel
	// needs its login/tool marker, an env file needs key=value lines.
	if entry.Verify != nil && !entry.Verify(lower) {
		return 404
	}

	return status
}

// hasNotFoundMarker reports whether the page title or a top-level heading
// carries a generic not-found/error signature. The body must already be
// lowercased.
func hasNotFoundMarker(lowerBody string) bool {
	segments := []string{}
	if m := titleRe.FindStringSubmatch(lowerBody); m != nil {
		segments = append(segments, m[1])
	}
	for _, m := range headingRe.FindAllStringSubmatch(lowerBody, 3) {
		segments = append(segments, m[1])
	}
	for _, seg := range segments {
		for _, marker := range notFoundMarkers {
			if strings.Contains(seg, marker) {
				return true
			}
		}
	}
	return false
}

// looksLikeHTML sniffs the leading bytes for an HTML document signature. The
// body must already be lowercased.
func looksLikeHTML(lowerBody string) bool {
	head := lowerBody
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "<html") ||
		strings.Contains(head, "<head") ||
		strings.Contains(head, "<body")
}

// Content-shape fingerprints. Each receives a lowercased body and reports
// whether it matches the artifact the path claims to be.

var (
	envLineRe     = regexp.MustCompile(`(?m)^\s*[a-z_][a-z0-9_]*\s*=`)
	dockerVerbRe  = regexp.MustCompile(`(?m)^\s*(from|run|cmd|copy|entrypoint|workdir|expose)\s`)
	htpasswdRe    = regexp.MustCompile(`(?m)^[^:\s]+:\S+`)
	gitObjectIDRe = regexp.MustCompile(`^[0-9a-f]{40}`)
)

func verifyEnvFile(body string) bool {
	return envLineRe.MatchString(body)
}

func verifyGitRef(body string) bool {
	return strings.HasPrefix(body, "ref:") || gitObjectIDRe.MatchString(body)
}

func verifyGitConfig(body string) bool {
	return strings.Contains(body, "[core]")
}

func verifyManifest(body string) bool {
	return strings.Contains(body, `"name"`) &&
		(strings.Contains(body, `"version"`) ||
			strings.Contains(body, `"dependencies"`) ||
			strings.Contains(body, `"require"`))
}

func verifyDockerfile(body string) bool {
	return dockerVerbRe.MatchString(body)
}

func verifyCompose(body string) bool {
	return strings.Contains(body, "services:")
}

func verifyHTPasswd(body string) bool {
	return htpasswdRe.MatchString(body)
}

func verifyPrivateKey(body string) bool {
	return strings.Contains(body, "private key")
}

func verifySQLDump(body string) bool {
	return strings.Contains(body, "create table") || strings.Contains(body, "insert into")
}

func verifyPHPInfo(body string) bool {
	return strings.Contains(body, "php version") || strings.Contains(body, "phpinfo")
}

// verifyLoginPanel accepts a page only when it shows a credential prompt.
func verifyLoginPanel(body string) bool {
	return strings.Contains(body, `type="password"`) ||
		strings.Contains(body, "type='password'") ||
		(strings.Contains(body, "<form") && strings.Contains(body, "login"))
}

// verifyMarker builds a fingerprint requiring any of the given tool-name
// markers in the body.
func verifyMarker(markers ...string) func(string) bool {
	return func(body string) bool {
		for _, m := range markers {
			if strings.Contains(body, m) {
				return true
			}
		}
		return false
	}
}
