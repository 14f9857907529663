package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"tubelift/internal/api"
	"tubelift/internal/config"
	"tubelift/internal/queue"
	"tubelift/internal/testsupport"
	"tubelift/internal/workflow"
)

const testAPIToken = "cli-secret"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	api        *fakeAPI
}

// fakeAPI answers the daemon endpoints the CLI uses and records what it saw.
type fakeAPI struct {
	mu          sync.Mutex
	submissions []api.SubmitRequest
	cancels     []string
	queries     []string
	status      api.DaemonStatus
	events      []api.Event
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+testAPIToken {
		writeTestJSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/jobs":
		var req api.SubmitRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !strings.HasPrefix(req.URL, "http") {
			writeTestJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "not a link"})
			return
		}
		f.submissions = append(f.submissions, req)
		writeTestJSON(w, http.StatusAccepted, api.SubmitResponse{
			Job:     api.Job{ID: fmt.Sprintf("job-%d", len(f.submissions)), SubmitterID: req.Submitter, URL: req.URL},
			Message: workflow.QueuedMessage,
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/queue":
		submitter := r.URL.Query().Get("submitter")
		f.queries = append(f.queries, submitter)
		var positions []int
		for i, s := range f.submissions {
			if s.Submitter == submitter {
				positions = append(positions, i+1)
			}
		}
		message := workflow.StatusMessage(queue.Status{Total: len(f.submissions), Positions: positions})
		writeTestJSON(w, http.StatusOK, api.QueueStatus{Total: len(f.submissions), Positions: positions, Message: message})
	case r.Method == http.MethodPost && r.URL.Path == "/api/cancel":
		var req api.CancelRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.cancels = append(f.cancels, req.Submitter)
		removed := 0
		kept := f.submissions[:0]
		for _, s := range f.submissions {
			if s.Submitter == req.Submitter {
				removed++
				continue
			}
			kept = append(kept, s)
		}
		f.submissions = kept
		writeTestJSON(w, http.StatusOK, api.CancelResponse{Removed: removed, Message: workflow.CancelMessage(removed)})
	case r.Method == http.MethodGet && r.URL.Path == "/api/status":
		writeTestJSON(w, http.StatusOK, f.status)
	case r.Method == http.MethodGet && r.URL.Path == "/api/events":
		writeTestJSON(w, http.StatusOK, api.EventsResponse{Events: f.events})
	default:
		http.NotFound(w, r)
	}
}

func writeTestJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	t.Setenv("TUBELIFT_API_TOKEN", "")
	t.Setenv("YANDEX_DISK_TOKEN", "")
	t.Setenv("MATRIX_ACCESS_TOKEN", "")
	t.Setenv("USER", "tester")

	fake := &fakeAPI{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("yt-dlp", "ffmpeg"))
	cfg.Paths.APIBind = server.URL
	cfg.Paths.APIToken = testAPIToken

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, api: fake}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ntemp_dir = %q\nlog_dir = %q\napi_bind = %q\napi_token = %q\n\n"+
			"[storage]\nbackend = %q\ndirectory_path = %q\npublic_base_url = %q\nyandex_token = %q\n",
		cfg.Paths.TempDir,
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
		cfg.Paths.APIToken,
		cfg.Storage.Backend,
		cfg.Storage.DirectoryPath,
		cfg.Storage.PublicBaseURL,
		cfg.Storage.YandexToken,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", substr, output)
	}
}
