package scanner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenRedirectProbe_VulnerableParameter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if next := r.URL.Query().Get("next"); next != "" {
			// Blindly reflect the parameter, the classic open redirect.
			w.Header().Set("Location", next+"/")
			w.WriteHeader(http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("landing page content here"))
	}))
	defer ts.Close()

	probe := &OpenRedirectProbe{Timeout: 2 * time.Second}
	res := probe.Run(context.Background(), mustTarget(t, ts.URL))

	tested := float64(len(redirectParams))
	if res.MaxScore != tested {
		t.Fatalf("max score = %v, want %v", res.MaxScore, tested)
	}
	if res.Score != tested-1 {
		t.Fatalf("score = %v, want %v (exactly one vulnerable parameter)", res.Score, tested-1)
	}

	var flagged bool
	for _, f := range res.Findings {
		if f.Name == "redirect_param_next" && f.Status == StatusFail {
			flagged = true
		}
	}
	if !flagged {
		t.Fatal("expected a fail finding for the next parameter")
	}
}

func TestOpenRedirectProbe_LocalRedirectIsSafe(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			// Redirect to a local login page regardless of the parameter.
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	probe := &OpenRedirectProbe{Timeout: 2 * time.Second}
	res := probe.Run(context.Background(), mustTarget(t, ts.URL))

	if res.Score != res.MaxScore {
		t.Fatalf("relative redirect flagged as vulnerable: score = %v of %v", res.Score, res.MaxScore)
	}

	for _, f := range res.Findings {
		if f.Status == StatusFail {
			t.Fatalf("unexpected fail finding: %+v", f)
		}
	}
}

func TestOpenRedirectProbe_SameHostAbsoluteRedirectIsSafe(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			http.Redirect(w, r, ts.URL+"/home", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	probe := &OpenRedirectProbe{Timeout: 2 * time.Second}
	res := probe.Run(context.Background(), mustTarget(t, ts.URL))

	if res.Score != res.MaxScore {
		t.Fatalf("same-host redirect flagged: score = %v of %v", res.Score, res.MaxScore)
	}
}

func TestOpenRedirectProbe_NonRedirectResponses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("no redirects here at all"))
	}))
	defer ts.Close()

	probe := &OpenRedirectProbe{Timeout: 2 * time.Second}
	res := probe.Run(context.Background(), mustTarget(t, ts.URL))

	if res.Score != res.MaxScore {
		t.Fatalf("score = %v, want full %v", res.Score, res.MaxScore)
	}

	// A clean run carries the single summary pass finding.
	if len(res.Findings) != 1 || res.Findings[0].Status != StatusPass {
		t.Fatalf("expected one pass finding, got %+v", res.Findings)
	}
}
