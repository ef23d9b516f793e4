package projector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProjectSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req projectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Vectors) != 2 {
			t.Fatalf("len(req.Vectors) = %d, want 2", len(req.Vectors))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(projectResponse{
			Points: []Point2D{{X: 1, Y: 2}, {X: 3, Y: 4}},
		})
	}))
	defer srv.Close()

	p := NewHTTPProjector(srv.URL)
	got := p.Project(context.Background(), [][]float32{{0.1, 0.2}, {0.3, 0.4}})

	want := []Point2D{{X: 1, Y: 2}, {X: 3, Y: 4}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Project() = %+v, want %+v", got, want)
	}
}

func TestProjectFailureYieldsZeroedPoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPProjector(srv.URL)
	got := p.Project(context.Background(), [][]float32{{0.1}, {0.2}, {0.3}})

	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	for i, pt := range got {
		if pt != (Point2D{}) {
			t.Errorf("got[%d] = %+v, want zero value", i, pt)
		}
	}
}

func TestProjectLengthMismatchYieldsZeroedPoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(projectResponse{
			Points: []Point2D{{X: 1, Y: 1}},
		})
	}))
	defer srv.Close()

	p := NewHTTPProjector(srv.URL)
	got := p.Project(context.Background(), [][]float32{{0.1}, {0.2}, {0.3}})

	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3 (defensive zeroing on length mismatch)", len(got))
	}
}

func TestProjectEmptyInput(t *testing.T) {
	p := NewHTTPProjector("http://unused.invalid")
	got := p.Project(context.Background(), nil)
	if len(got) != 0 {
		t.Errorf("Project(nil) = %+v, want empty", got)
	}
}
