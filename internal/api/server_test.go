package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/pdfoutline/internal/config"
	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/pipeline"
	"github.com/dgallion1/pdfoutline/internal/stats"
	"github.com/dgallion1/pdfoutline/internal/testpdf"
)

const testKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:         testKey,
		WorkerCount:    2,
		MaxQueueSize:   8,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
		ExtractTimeout: 5 * time.Second,
		StatsWindow:    time.Hour,
	}
	log := slog.New(slog.DiscardHandler)
	orch := pipeline.NewOrchestrator(cfg, outline.New(), stats.NewExtraction(cfg.StatsWindow), log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, log, cfg)
}

type upload struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, field string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		fw, err := mw.CreateFormFile(field, f.name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(f.data)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func do(t *testing.T, s *Server, method, target, field string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if len(files) > 0 {
		body, ctype := multipartBody(t, field, files...)
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", ctype)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func samplePDF() []byte {
	b := testpdf.New()
	b.AddPage().
		Text(72, 100, 20, true, "Annual Report").
		Text(72, 200, 12, false, "Plain body text that is long enough to be ordinary prose here.")
	return b.Bytes()
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + testKey, http.StatusUnauthorized},
		{"wrong key", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + testKey, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats/extract", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestOutlineSyncJSON(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/outline", "file", upload{"guide.md", []byte("# Setup\n\n## Install\n")})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res outline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Title != "guide" || len(res.Outline) != 2 || res.Outline[1].Level != outline.H2 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestOutlineSyncFormats(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		format   string
		wantType string
		wantBody string
	}{
		{"markdown", "text/markdown", "# Annual Report"},
		{"html", "text/html", "<h1>Annual Report</h1>"},
		{"json", "application/json", `"title":"Annual Report"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/outline?format="+tt.format, "file", upload{"report.pdf", samplePDF()})
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.wantType) {
				t.Errorf("expected content type %s, got %s", tt.wantType, ct)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body missing %q:\n%s", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestOutlineSyncRejects(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		target string
		file   upload
		want   int
	}{
		{"bad format", "/api/outline?format=pdf", upload{"a.md", []byte("# A")}, http.StatusBadRequest},
		{"unsupported type", "/api/outline", upload{"a.xlsx", []byte("x")}, http.StatusBadRequest},
		{"too large", "/api/outline", upload{"a.md", bytes.Repeat([]byte("x"), 1<<20+1)}, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, "file", tt.file)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestOutlineSyncMissingFile(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/outline", "other", upload{"a.md", []byte("# A")})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOutlineSyncUnparseablePDF(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/outline", "file", upload{"broken.pdf", []byte("not a pdf at all")})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var res outline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Failed() || res.Outline == nil || len(res.Outline) != 0 {
		t.Errorf("expected an error result with empty outline, got %+v", res)
	}
}

func waitForJob(t *testing.T, s *Server, id string) pipeline.JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := do(t, s, http.MethodGet, "/api/outline/jobs/"+id, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status poll returned %d", rec.Code)
		}
		var snap pipeline.JobSnapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatal(err)
		}
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return pipeline.JobSnapshot{}
}

func TestSubmitJobAndPoll(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/outline/jobs", "file", upload{"report.pdf", samplePDF()})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatal(err)
	}
	id, _ := accepted["job_id"].(string)
	if id == "" || accepted["poll_url"] != "/api/outline/jobs/"+id {
		t.Fatalf("unexpected accept body %v", accepted)
	}

	snap := waitForJob(t, s, id)
	if snap.Status != pipeline.StatusCompleted || snap.Result == nil || snap.Result.Title != "Annual Report" {
		t.Errorf("unexpected job state %+v", snap)
	}

	// Identical bytes are served from the finished job.
	rec = do(t, s, http.MethodPost, "/api/outline/jobs", "file", upload{"copy.pdf", samplePDF()})
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatal(err)
	}
	again := waitForJob(t, s, accepted["job_id"].(string))
	if again.Phase != pipeline.PhaseCached {
		t.Errorf("expected cached phase, got %s", again.Phase)
	}
}

func TestBatchSubmit(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/outline/batch", "files",
		upload{"a.md", []byte("# A\n")},
		upload{"b.txt", []byte("plain")},
		upload{"c.html", []byte("<h1>C</h1>")},
	)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Jobs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(body.Jobs))
	}
	if body.Jobs[1]["error"] == nil {
		t.Errorf("expected unsupported file error, got %v", body.Jobs[1])
	}
	for _, i := range []int{0, 2} {
		id, _ := body.Jobs[i]["job_id"].(string)
		if id == "" {
			t.Fatalf("entry %d not queued: %v", i, body.Jobs[i])
		}
		if snap := waitForJob(t, s, id); snap.Status != pipeline.StatusCompleted {
			t.Errorf("job %d ended %s/%s", i, snap.Status, snap.Phase)
		}
	}
}

func TestBatchSubmitRequiresFiles(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/outline/batch", "file", upload{"a.md", []byte("# A")})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestJobNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/outline/jobs/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"job not found"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestExtractStats(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/outline", "file", upload{"a.md", []byte("# A\n\n## B\n")})
	do(t, s, http.MethodPost, "/api/outline", "file", upload{"bad.pdf", []byte("junk")})

	rec := do(t, s, http.MethodGet, "/api/stats/extract", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Stats stats.Snapshot `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Stats.Count != 2 || body.Stats.Failed != 1 {
		t.Errorf("unexpected stats %+v", body.Stats)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"/etc/passwd.pdf", "passwd.pdf"},
		{`C:\Users\me\doc.pdf`, "doc.pdf"},
		{"a..b.md", "a_b.md"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
