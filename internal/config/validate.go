package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatrix(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case StorageYandex:
		if c.Storage.YandexToken == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("storage.yandex_token is required. Set YANDEX_DISK_TOKEN env var or edit %s (create with 'tubelift config init')", defaultPath)
		}
		if _, err := url.ParseRequestURI(c.Storage.YandexBaseURL); err != nil {
			return fmt.Errorf("storage.yandex_base_url: %w", err)
		}
	case StorageDirectory:
		if strings.TrimSpace(c.Storage.DirectoryPath) == "" {
			return errors.New("storage.directory_path must be set when storage.backend is directory")
		}
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (expected %q or %q)", c.Storage.Backend, StorageYandex, StorageDirectory)
	}
	return nil
}

// validatePaths keeps temp_dir apart from directories holding files the
// daemon must not sweep at startup.
func (c *Config) validatePaths() error {
	temp := strings.TrimSpace(c.Paths.TempDir)
	if temp == "" {
		return errors.New("paths.temp_dir must be set")
	}
	temp = filepath.Clean(temp)
	if log := strings.TrimSpace(c.Paths.LogDir); log != "" && filepath.Clean(log) == temp {
		return errors.New("paths.temp_dir must differ from paths.log_dir")
	}
	if c.Storage.Backend == StorageDirectory && filepath.Clean(strings.TrimSpace(c.Storage.DirectoryPath)) == temp {
		return errors.New("paths.temp_dir must differ from storage.directory_path")
	}
	return nil
}

func (c *Config) validateMatrix() error {
	if !c.Matrix.Enabled {
		return nil
	}
	if c.Matrix.HomeserverURL == "" {
		return errors.New("matrix.homeserver_url must be set when matrix.enabled is true")
	}
	if c.Matrix.UserID == "" {
		return errors.New("matrix.user_id must be set when matrix.enabled is true")
	}
	if c.Matrix.AccessToken == "" {
		return errors.New("matrix.access_token must be set when matrix.enabled is true")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.ProgressStep > 100 {
		return errors.New("workflow.progress_step must be between 1 and 100")
	}
	return nil
}
