package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientRoundTrips(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(SubmitResponse{Job: Job{ID: "j1", SubmitterID: req.Submitter, URL: req.URL}, Message: "queued"})
	})
	mux.HandleFunc("GET /api/queue", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(QueueStatus{Total: 1, Positions: []int{1}, Message: r.URL.Query().Get("submitter")})
	})
	mux.HandleFunc("POST /api/cancel", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(CancelResponse{Removed: 2})
	})
	mux.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "5" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(EventsResponse{Events: []Event{{ID: 1, Message: "Queued link: x"}}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, "secret", time.Second)
	ctx := context.Background()

	submitted, err := client.Submit(ctx, "cli", "https://a")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitted.Job.URL != "https://a" || submitted.Job.SubmitterID != "cli" {
		t.Fatalf("unexpected submit response %+v", submitted)
	}

	status, err := client.Queue(ctx, "cli user")
	if err != nil {
		t.Fatalf("Queue: %v", err)
	}
	if status.Message != "cli user" || status.Total != 1 {
		t.Fatalf("unexpected queue status %+v", status)
	}

	cancelled, err := client.Cancel(ctx, "cli")
	if err != nil || cancelled.Removed != 2 {
		t.Fatalf("Cancel = %+v, %v", cancelled, err)
	}

	events, err := client.Events(ctx, 5)
	if err != nil || len(events) != 1 {
		t.Fatalf("Events = %+v, %v", events, err)
	}
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"url is required"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).Submit(context.Background(), "cli", "")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusBadRequest || statusErr.Message != "url is required" {
		t.Fatalf("unexpected error %+v", statusErr)
	}
}

func TestClientDaemonUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	err := NewClient(addr, "", time.Second).Health(context.Background())
	if !errors.Is(err, ErrDaemonUnavailable) {
		t.Fatalf("expected ErrDaemonUnavailable, got %v", err)
	}
}
