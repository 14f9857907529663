package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"tubelift/internal/api"
	"tubelift/internal/config"
)

const apiTimeout = 10 * time.Second

type commandContext struct {
	configFlag    *string
	apiFlag       *string
	submitterFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, apiFlag, submitterFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		apiFlag:       apiFlag,
		submitterFlag: submitterFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) apiAddress() string {
	if c.apiFlag != nil {
		if addr := strings.TrimSpace(*c.apiFlag); addr != "" {
			return addr
		}
	}
	if cfg := c.configValue(); cfg != nil {
		return cfg.Paths.APIBind
	}
	return ""
}

func (c *commandContext) apiClient() (*api.Client, error) {
	addr := c.apiAddress()
	if addr == "" {
		return nil, errors.New("daemon API address is not configured; set paths.api_bind or pass --api")
	}
	var token string
	if cfg := c.configValue(); cfg != nil {
		token = cfg.Paths.APIToken
	}
	return api.NewClient(addr, token, apiTimeout), nil
}

// submitter resolves the identity the CLI acts as. Queue positions and
// cancellation are scoped to it, so it must be stable across invocations.
func (c *commandContext) submitter() string {
	if c.submitterFlag != nil {
		if id := strings.TrimSpace(*c.submitterFlag); id != "" {
			return id
		}
	}
	if user := strings.TrimSpace(os.Getenv("USER")); user != "" {
		return "cli:" + user
	}
	return "cli"
}

func wrapAPIError(err error, addr string) error {
	if errors.Is(err, api.ErrDaemonUnavailable) {
		return fmt.Errorf("connect to daemon at %s: not reachable; start it with `tubelift daemon`", addr)
	}
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
