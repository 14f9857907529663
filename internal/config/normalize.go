package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetcher()
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeMatrix()
	c.normalizeNotifications()
	c.normalizeWorkflow()
	if err := c.normalizeEventLog(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if value, ok := os.LookupEnv("TUBELIFT_API_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Paths.APIToken = value
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeFetcher() {
	c.Fetcher.Format = strings.TrimSpace(c.Fetcher.Format)
	if c.Fetcher.Format == "" {
		c.Fetcher.Format = defaultFetchFormat
	}
	c.Fetcher.MergeOutputFormat = strings.ToLower(strings.TrimSpace(c.Fetcher.MergeOutputFormat))
	if c.Fetcher.MergeOutputFormat == "" {
		c.Fetcher.MergeOutputFormat = defaultMergeOutputFormat
	}
	if c.Fetcher.TitleMaxLength <= 0 {
		c.Fetcher.TitleMaxLength = defaultTitleMaxLength
	}
}

func (c *Config) normalizeStorage() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	c.Storage.UploadDir = strings.TrimSpace(c.Storage.UploadDir)
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = defaultUploadDir
	}
	if !strings.HasPrefix(c.Storage.UploadDir, "/") {
		c.Storage.UploadDir = "/" + c.Storage.UploadDir
	}
	c.Storage.UploadDir = strings.TrimRight(c.Storage.UploadDir, "/")
	if value, ok := os.LookupEnv("YANDEX_DISK_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Storage.YandexToken = value
	}
	c.Storage.YandexToken = strings.TrimSpace(c.Storage.YandexToken)
	c.Storage.YandexBaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.YandexBaseURL), "/")
	if c.Storage.YandexBaseURL == "" {
		c.Storage.YandexBaseURL = defaultYandexBaseURL
	}
	if c.Storage.RequestTimeout <= 0 {
		c.Storage.RequestTimeout = defaultStorageRequestTimeout
	}
	if strings.TrimSpace(c.Storage.DirectoryPath) == "" {
		c.Storage.DirectoryPath = defaultDirectoryPath
	}
	var err error
	if c.Storage.DirectoryPath, err = expandPath(c.Storage.DirectoryPath); err != nil {
		return fmt.Errorf("storage.directory_path: %w", err)
	}
	c.Storage.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.PublicBaseURL), "/")
	return nil
}

func (c *Config) normalizeMatrix() {
	if value, ok := os.LookupEnv("MATRIX_ACCESS_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Matrix.AccessToken = value
	}
	c.Matrix.AccessToken = strings.TrimSpace(c.Matrix.AccessToken)
	c.Matrix.HomeserverURL = strings.TrimRight(strings.TrimSpace(c.Matrix.HomeserverURL), "/")
	c.Matrix.UserID = strings.TrimSpace(c.Matrix.UserID)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyRequestTimeout
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.ProgressStep <= 0 {
		c.Workflow.ProgressStep = defaultProgressStep
	}
	if c.Workflow.ProgressMinIntervalMS < 0 {
		c.Workflow.ProgressMinIntervalMS = 0
	}
	if c.Workflow.StepTimeoutSeconds < 0 {
		c.Workflow.StepTimeoutSeconds = 0
	}
}

func (c *Config) normalizeEventLog() error {
	var err error
	if strings.TrimSpace(c.EventLog.TextPath) == "" {
		c.EventLog.TextPath = filepath.Join(c.Paths.LogDir, defaultEventTextFile)
	}
	if c.EventLog.TextPath, err = expandPath(c.EventLog.TextPath); err != nil {
		return fmt.Errorf("event_log.text_path: %w", err)
	}
	if strings.TrimSpace(c.EventLog.DatabasePath) == "" {
		c.EventLog.DatabasePath = filepath.Join(c.Paths.LogDir, defaultEventDatabase)
	}
	if c.EventLog.DatabasePath, err = expandPath(c.EventLog.DatabasePath); err != nil {
		return fmt.Errorf("event_log.database_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
