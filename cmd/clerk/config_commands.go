package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clerk/internal/config"
	"clerk/internal/preflight"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the clerk configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		pathFlag  string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(pathFlag)
			if err != nil {
				return err
			}
			if err := ensureWritableTarget(target, overwrite); err != nil {
				return err
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit source_dir and dest_dir, then register clients with `clerk clients add`.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Where to write the file (default: the standard config location)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// initTarget resolves where `config init` writes, falling back to the
// default config location when no path is given.
func initTarget(raw string) (string, error) {
	if raw = strings.TrimSpace(raw); raw != "" {
		expanded, err := config.ExpandPath(raw)
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", raw, err)
		}
		return expanded, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("default config path: %w", err)
	}
	return path, nil
}

func ensureWritableTarget(target string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if overwrite {
		return nil
	}
	_, err := os.Stat(target)
	switch {
	case err == nil:
		return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("stat %s: %w", target, err)
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and check the configured directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			if strings.TrimSpace(cfg.Paths.SourceDir) == "" || strings.TrimSpace(cfg.Paths.DestDir) == "" {
				fmt.Fprintln(out, "Source or destination not set; skipping directory checks")
				return nil
			}
			checks := preflight.RunAll(cfg, 0)
			printDirectoryReport(out, cfg, checks, shouldColorize(out))
			return preflight.Err(checks)
		},
	}
}

func printDirectoryReport(out io.Writer, cfg *config.Config, checks []preflight.Result, colorize bool) {
	lines := append([]string{""}, renderSectionHeader("Directories", colorize)...)
	lines = append(lines, renderPreflight(checks, colorize)...)
	for _, info := range []struct{ label, value string }{
		{"Clients file", cfg.Paths.ClientsFile},
		{"History", cfg.HistoryPath()},
		{"Log file", cfg.LogFilePath()},
	} {
		lines = append(lines, renderStatusLine(info.label, statusInfo, info.value, colorize))
	}
	fmt.Fprintln(out, strings.Join(lines, "\n"))
}
