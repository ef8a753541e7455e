package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bchwatch/internal/inspect"
)

func TestResultsRoundTrip(t *testing.T) {
	s := New()
	s.RecordResult(&inspect.Result{Pool: "alpha", JobID: "j1", Height: 658466, HeightKnown: true})
	s.RecordFailure("beta", "dial", errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Pools []PoolStatus `json:"pools"`
		Count int          `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 || len(body.Pools) != 2 {
		t.Fatalf("count = %d", body.Count)
	}
	// Sorted by pool name.
	if body.Pools[0].Pool != "alpha" || !body.Pools[0].OK {
		t.Errorf("pool 0: %+v", body.Pools[0])
	}
	if body.Pools[1].Pool != "beta" || body.Pools[1].OK || body.Pools[1].ErrorKind != "dial" {
		t.Errorf("pool 1: %+v", body.Pools[1])
	}
}

func TestSinglePoolResult(t *testing.T) {
	s := New()
	s.RecordResult(&inspect.Result{Pool: "alpha", JobID: "j1"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/alpha", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var st PoolStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Result == nil || st.Result.JobID != "j1" {
		t.Errorf("status: %+v", st)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing pool status = %d", rec.Code)
	}
}

func TestFailureReplacedBySuccess(t *testing.T) {
	s := New()
	s.RecordFailure("alpha", "no-job", errors.New("timed out"))
	s.RecordResult(&inspect.Result{Pool: "alpha", JobID: "j2"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/results/alpha", nil))
	var st PoolStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if !st.OK || st.Error != "" || st.Result.JobID != "j2" {
		t.Errorf("status: %+v", st)
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	New().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
