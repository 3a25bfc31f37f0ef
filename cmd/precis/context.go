package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"precis/internal/config"
)

// commandContext resolves configuration exactly once per invocation and
// shares it across subcommands. Validated and inspection loads are cached
// separately: run demands a complete setup, while status and friends must
// still work when the credential is missing.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	inspectOnce sync.Once
	inspect     *config.Config
	inspectPath string
	inspectErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) flagPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// ensureConfig loads and validates the configuration, creating the workspace
// directories. Missing credentials or unusable paths are fatal here.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.flagPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// inspectConfig loads the configuration without validation so read-only
// commands can describe an incomplete setup instead of refusing to run.
func (c *commandContext) inspectConfig() (*config.Config, string, error) {
	c.inspectOnce.Do(func() {
		cfg, path, _, err := config.LoadUnvalidated(c.flagPath())
		if err != nil {
			c.inspectErr = err
			return
		}
		c.inspect = cfg
		c.inspectPath = path
	})
	return c.inspect, c.inspectPath, c.inspectErr
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
