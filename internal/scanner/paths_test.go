package scanner

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func pathsRawMax() float64 {
	var max float64
	for _, entry := range pathCatalog {
		max += severityWeights[entry.Severity]
	}
	return max
}

func TestExposedPathProbe_CleanHost(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	probe := NewExposedPathProbe(2 * time.Second)
	res := probe.Run(context.Background(), mustTarget(t, ts.URL))

	if math.Abs(res.Score-res.MaxScore) > 1e-9 {
		t.Fatalf("clean host: score = %v, want full %v", res.Score, res.MaxScore)
	}
	if math.Abs(res.MaxScore-pathsRawMax()) > 1e-9 {
		t.Fatalf("max score = %v, want %v", res.MaxScore, pathsRawMax())
	}
	for _, f := range res.Findings {
		if f.Status == StatusFail || f.Status == StatusWarn {
			t.Errorf("clean host produced %s finding: %+v", f.Status, f)
		}
	}
}

func TestExposedPathProbe_ExposedEnvFile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/.env" {
			w.Write([]byte("DB_HOST=localhost\nDB_PASS=hunter2\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	probe := NewExposedPathProbe(2 * time.Second)
	res := probe.Run(context.Background(), mustTarget(t, ts.URL))

	// Critical exposure is binary: the full 3 points are lost.
	if math.Abs(res.Score-(pathsRawMax()-3)) > 1e-9 {
		t.Fatalf("score = %v, want %v", res.Score, pathsRawMax()-3)
	}

	var found bool
	for _, f := range res.Findings {
		if f.Value == "/.env" && f.Status == StatusFail {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a fail finding for /.env")
	}
}

func TestExposedPathProbe_MediumSeverityPartialCredit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/Dockerfile" {
			w.Write([]byte("FROM alpine:3.20\nRUN apk add --no-cache curl\nCMD [\"sh\"]\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	probe := NewExposedPathProbe(2 * time.Second)
	res := probe.Run(context.Background(), mustTarget(t, ts.URL))

	// Medium weight is 1; exposure earns 0.5 instead of 1.0.
	if math.Abs(res.Score-(pathsRawMax()-0.5)) > 1e-9 {
		t.Fatalf("score = %v, want %v", res.Score, pathsRawMax()-0.5)
	}

	var warned bool
	for _, f := range res.Findings {
		if f.Value == "/Dockerfile" && f.Status == StatusWarn {
			warned = true
		}
	}
	if !warned {
		t.Fatal("expected a warn finding for /Dockerfile")
	}
}

func TestExposedPathProbe_CatchAllServerScoresClean(t *testing.T) {
	shell := `<!doctype html><html><head><title>app</title></head><body><div id="root">single page app shell</div></body></html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(shell))
	}))
	defer ts.Close()

	probe := NewExposedPathProbe(2 * time.Second)
	res := probe.Run(context.Background(), mustTarget(t, ts.URL))

	if math.Abs(res.Score-res.MaxScore) > 1e-9 {
		t.Fatalf("catch-all host penalized: score = %v of %v", res.Score, res.MaxScore)
	}
}

func TestExposedPathProbe_UnreachableHostFlagsUnreliable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	probe := NewExposedPathProbe(500 * time.Millisecond)
	res := probe.Run(context.Background(), mustTarget(t, addr))

	if len(res.Findings) == 0 {
		t.Fatal("expected findings")
	}
	top := res.Findings[0]
	if top.Name != "sweep_reliability" || top.Status != StatusError {
		t.Fatalf("expected top-line reliability error, got %+v", top)
	}
	if !strings.Contains(top.Message, "unreliable") {
		t.Fatalf("unexpected message: %s", top.Message)
	}
}
