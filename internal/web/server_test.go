package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/recipedb/nutriload/internal/core"
)

type fakeLister struct {
	runs []core.RunSummary
	err  error
}

func (f *fakeLister) RecentRuns(ctx context.Context, limit int) ([]core.RunSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	s := NewServer(":0", nil)
	rr := doRequest(t, s, "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestProgressSnapshot(t *testing.T) {
	s := NewServer(":0", nil)
	s.SetProgress(core.Progress{RowsRead: 1200, BytesRead: 4096, BytesTotal: 8192, Percent: 50})

	rr := doRequest(t, s, "/api/progress")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var got core.Progress
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RowsRead != 1200 || got.Percent != 50 {
		t.Errorf("progress = %+v", got)
	}
}

func TestReport_NotReadyThenReady(t *testing.T) {
	s := NewServer(":0", nil)

	if rr := doRequest(t, s, "/api/report"); rr.Code != http.StatusNotFound {
		t.Fatalf("status before completion = %d, want 404", rr.Code)
	}

	s.SetReport(&core.Report{RunID: "abc", Stats: core.Stats{RowsInserted: 5}})
	rr := doRequest(t, s, "/api/report")
	if rr.Code != http.StatusOK {
		t.Fatalf("status after completion = %d, want 200", rr.Code)
	}
	var got core.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "abc" || got.Stats.RowsInserted != 5 {
		t.Errorf("report = %+v", got)
	}
}

func TestRuns(t *testing.T) {
	lister := &fakeLister{runs: []core.RunSummary{
		{ID: "1", File: "a.csv", Status: "completed"},
		{ID: "2", File: "b.csv", Status: "completed"},
	}}
	s := NewServer(":0", lister)

	rr := doRequest(t, s, "/api/runs?limit=1")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var got []core.RunSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("runs = %+v, want first run only", got)
	}
}

func TestRuns_BadLimit(t *testing.T) {
	s := NewServer(":0", &fakeLister{})
	if rr := doRequest(t, s, "/api/runs?limit=-3"); rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestRuns_ListerError(t *testing.T) {
	s := NewServer(":0", &fakeLister{err: errors.New("boom")})
	if rr := doRequest(t, s, "/api/runs"); rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestRuns_NoLister(t *testing.T) {
	s := NewServer(":0", nil)
	if rr := doRequest(t, s, "/api/runs"); rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}
