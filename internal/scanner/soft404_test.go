package scanner

import "testing"

func catalogEntry(t *testing.T, path string) sensitivePath {
	t.Helper()
	for _, entry := range pathCatalog {
		if entry.Path == path {
			return entry
		}
	}
	t.Fatalf("no catalog entry for %s", path)
	return sensitivePath{}
}

func TestEffectiveStatus_NonTwoHundredPassesThrough(t *testing.T) {
	entry := catalogEntry(t, "/.env")
	for _, status := range []int{301, 302, 403, 404, 500} {
		if got := effectiveStatus(entry, status, "anything goes here"); got != status {
			t.Errorf("status %d changed to %d", status, got)
		}
	}
}

func TestEffectiveStatus_GenericNotFoundTitle(t *testing.T) {
	body := "<title>404 Not Found</title>"
	for _, entry := range pathCatalog {
		if got := effectiveStatus(entry, 200, body); got != 404 {
			t.Errorf("%s: generic 404 title not downgraded (got %d)", entry.Path, got)
		}
	}
}

func TestEffectiveStatus_TinyBody(t *testing.T) {
	entry := catalogEntry(t, "/.env")
	if got := effectiveStatus(entry, 200, "ok"); got != 404 {
		t.Errorf("tiny body: got %d, want 404", got)
	}
}

func TestEffectiveStatus_EnvFile(t *testing.T) {
	entry := catalogEntry(t, "/.env")

	if got := effectiveStatus(entry, 200, "FOO=bar\nBAZ=qux"); got != 200 {
		t.Errorf("real env body: got %d, want 200", got)
	}

	html := `<!DOCTYPE html><html><head><title>My App</title></head><body>welcome</body></html>`
	if got := effectiveStatus(entry, 200, html); got != 404 {
		t.Errorf("HTML body for env path: got %d, want 404", got)
	}
}

func TestEffectiveStatus_SPACatchAllRoute(t *testing.T) {
	// A catch-all SPA answers the same HTML app shell for every path. No
	// non-HTML artifact may count as exposed from it.
	shell := `<!doctype html><html><head><title>app</title></head><body><div id="root"></div></body></html>`
	for _, path := range []string{"/.env", "/.git/HEAD", "/backup.sql", "/Dockerfile", "/package.json"} {
		entry := catalogEntry(t, path)
		if got := effectiveStatus(entry, 200, shell); got != 404 {
			t.Errorf("%s: SPA shell accepted as exposure (got %d)", path, got)
		}
	}
}

func TestEffectiveStatus_AdminPanelNeedsFingerprint(t *testing.T) {
	entry := catalogEntry(t, "/admin/")

	generic := `<html><head><title>Welcome</title></head><body><p>hello, this page is fine</p></body></html>`
	if got := effectiveStatus(entry, 200, generic); got != 404 {
		t.Errorf("generic page accepted as admin panel (got %d)", got)
	}

	login := `<html><head><title>Admin</title></head><body><form method="post"><input type="password" name="pw"></form></body></html>`
	if got := effectiveStatus(entry, 200, login); got != 200 {
		t.Errorf("login panel not accepted (got %d)", got)
	}
}

func TestEffectiveStatus_GitRef(t *testing.T) {
	entry := catalogEntry(t, "/.git/HEAD")

	if got := effectiveStatus(entry, 200, "ref: refs/heads/main\n"); got != 200 {
		t.Errorf("git HEAD body rejected (got %d)", got)
	}
	if got := effectiveStatus(entry, 200, "this is some random text content"); got != 404 {
		t.Errorf("random text accepted as git HEAD (got %d)", got)
	}
}

func TestVerifyFingerprints(t *testing.T) {
	cases := []struct {
		name   string
		verify func(string) bool
		body   string
		want   bool
	}{
		{"env match", verifyEnvFile, "database_url=postgres://x", true},
		{"env no match", verifyEnvFile, "just words here", false},
		{"compose match", verifyCompose, "version: '3'\nservices:\n  web:", true},
		{"compose no match", verifyCompose, "some yaml: true", false},
		{"dockerfile match", verifyDockerfile, "from alpine:3.20\nrun apk add curl", true},
		{"dockerfile no match", verifyDockerfile, "a plain text file about docker", false},
		{"manifest match", verifyManifest, `{"name": "app", "version": "1.0.0"}`, true},
		{"manifest no match", verifyManifest, `{"title": "not a manifest"}`, false},
		{"htpasswd match", verifyHTPasswd, "admin:$apr1$abcdefgh$123456", true},
		{"sql match", verifySQLDump, "create table users (id int);", true},
		{"key match", verifyPrivateKey, "-----begin rsa private key-----", true},
	}
	for _, tc := range cases {
		if got := tc.verify(tc.body); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
