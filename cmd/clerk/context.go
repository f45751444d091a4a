package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"clerk/internal/clients"
	"clerk/internal/config"
	"clerk/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = fmt.Errorf("ensure directories: %w", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// logger builds the application logger for cmd. Quiet commands keep info
// records out of the terminal, where the run's own progress lines already
// say the same thing; the log file still receives them.
func (c *commandContext) logger(cmd *cobra.Command, cfg *config.Config, quiet bool) (*slog.Logger, error) {
	opts := []logging.ConsoleOption{logging.ConsoleWriter(cmd.ErrOrStderr())}
	if quiet {
		opts = append(opts, logging.ConsoleMinLevel(slog.LevelWarn))
	}
	logger, err := logging.NewFromConfig(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func (c *commandContext) loadRegistry(cfg *config.Config, logger *slog.Logger) (*clients.Registry, error) {
	reg, err := clients.LoadFile(cfg.Paths.ClientsFile, logger)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	return reg, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

