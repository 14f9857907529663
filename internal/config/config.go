package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	TempDir  string `toml:"temp_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Fetcher contains yt-dlp download settings.
type Fetcher struct {
	Format            string `toml:"format"`
	MergeOutputFormat string `toml:"merge_output_format"`
	TitleMaxLength    int    `toml:"title_max_length"`
	AllowPlaylists    bool   `toml:"allow_playlists"`
}

// Storage selects and configures the upload backend.
type Storage struct {
	Backend        string `toml:"backend"`
	UploadDir      string `toml:"upload_dir"`
	YandexToken    string `toml:"yandex_token"`
	YandexBaseURL  string `toml:"yandex_base_url"`
	RequestTimeout int    `toml:"request_timeout"`
	DirectoryPath  string `toml:"directory_path"`
	PublicBaseURL  string `toml:"public_base_url"`
}

// Matrix contains the chat transport credentials used for notifications and
// the command front end.
type Matrix struct {
	Enabled       bool   `toml:"enabled"`
	HomeserverURL string `toml:"homeserver_url"`
	UserID        string `toml:"user_id"`
	AccessToken   string `toml:"access_token"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Workflow contains configuration for the pipeline orchestrator.
type Workflow struct {
	ProgressStep          int `toml:"progress_step"`
	ProgressMinIntervalMS int `toml:"progress_min_interval_ms"`
	StepTimeoutSeconds    int `toml:"step_timeout_seconds"`
}

// EventLog contains configuration for the append-only event log.
type EventLog struct {
	TextPath     string `toml:"text_path"`
	DatabasePath string `toml:"database_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for tubelift.
//
// Configuration sections by subsystem:
//   - Paths: temp download directory, log directory, and API bind address
//   - Fetcher: yt-dlp format selection
//   - Storage: upload backend (yandex or directory)
//   - Matrix: chat transport for notifications and commands
//   - Notifications: ntfy fallback transport
//   - Workflow: progress throttling and per-step timeout
//   - EventLog: text and SQLite event sinks
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Fetcher       Fetcher       `toml:"fetcher"`
	Storage       Storage       `toml:"storage"`
	Matrix        Matrix        `toml:"matrix"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	EventLog      EventLog      `toml:"event_log"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tubelift.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.TempDir, c.Paths.LogDir}
	if c.Storage.Backend == StorageDirectory {
		dirs = append(dirs, c.Storage.DirectoryPath)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// YtDlpBinary returns the yt-dlp executable name resolved from PATH.
func (c *Config) YtDlpBinary() string {
	return "yt-dlp"
}

// StepTimeout returns the per-step pipeline timeout, or zero when disabled.
func (c *Config) StepTimeout() time.Duration {
	if c == nil || c.Workflow.StepTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Workflow.StepTimeoutSeconds) * time.Second
}

// ProgressMinInterval returns the minimum spacing between progress edits.
func (c *Config) ProgressMinInterval() time.Duration {
	if c == nil || c.Workflow.ProgressMinIntervalMS <= 0 {
		return 0
	}
	return time.Duration(c.Workflow.ProgressMinIntervalMS) * time.Millisecond
}

// LockPath returns the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "tubelift.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
