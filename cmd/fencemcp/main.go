// fencemcp serves sandboxed filesystem, edit, and command tools over MCP
// stdio. Boundary roots come from positional arguments, --root flags, the
// FENCEMCP_ROOTS environment variable, or a YAML config file; with none of
// those the process working directory becomes the single root.
package main

import (
	"fmt"
	"io"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/c3mb0/fencemcp/internal/boundary"
	"github.com/c3mb0/fencemcp/internal/config"
	"github.com/c3mb0/fencemcp/internal/runner"
	"github.com/c3mb0/fencemcp/internal/server"
)

const version = "0.2.0"

func main() {
	if err := newApp().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cobra.Command {
	root := &cobra.Command{
		Use:           "fencemcp [dir ...]",
		Short:         "Sandboxed filesystem and exec tools over MCP stdio",
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveAction,
	}
	flags := root.PersistentFlags()
	flags.StringSlice("root", nil, "boundary root directory (repeatable)")
	flags.String("config", "", "YAML config file")
	flags.String("log-file", "", "log file path (logging disabled when empty)")
	flags.Bool("debug", false, "log at debug level")
	flags.Bool("compat", false, "plain-text tool results for clients without structured output support")
	flags.Duration("exec-timeout", runner.DefaultTimeout, "default exec_run deadline")
	flags.Bool("single-instance", false, "replace a previously running fencemcp process")

	serve := &cobra.Command{
		Use:   "serve [dir ...]",
		Short: "Serve MCP over stdio",
		Long: `Serve MCP over stdio.

Expected to be executed by an MCP client, not by a human.`,
		Args: cobra.ArbitraryArgs,
		RunE: serveAction,
	}
	ver := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
	root.AddCommand(serve, ver)
	return root
}

func serveAction(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := initLogger(cfg.Debug, cfg.LogFile)
	if err != nil {
		return err
	}

	var bounds *boundary.Set
	if len(cfg.Roots) == 0 {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return cwdErr
		}
		bounds, err = boundary.NewSingle(cwd)
	} else {
		bounds, err = boundary.New(cfg.Roots)
	}
	if err != nil {
		return err
	}

	if cfg.SingleInstance {
		cleanup, siErr := ensureSingleInstance()
		if siErr != nil {
			return siErr
		}
		defer cleanup()
	}

	logger.Info().Strs("roots", bounds.Roots()).Str("work_root", bounds.WorkRoot()).Bool("compat", cfg.Compat).Str("version", version).Msg("fencemcp starting")

	s := server.New(version, cfg, bounds, logger)
	if err := mcpserver.ServeStdio(s); err != nil {
		logger.Error().Err(err).Msg("server error")
		return err
	}
	logger.Info().Msg("fencemcp stopped")
	return nil
}

// buildConfig layers the configuration sources: defaults, then the YAML
// file, then FENCEMCP_* environment variables, then flags and positional
// arguments. Boolean and duration flags only override when set explicitly.
func buildConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	flags := cmd.Flags()

	if path, _ := flags.GetString("config"); path != "" {
		fileCfg, err := config.LoadFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	cfg = cfg.Merge(config.FromEnv())

	var flagCfg config.Config
	flagCfg.Roots, _ = flags.GetStringSlice("root")
	flagCfg.Roots = append(flagCfg.Roots, args...)
	flagCfg.LogFile, _ = flags.GetString("log-file")
	cfg = cfg.Merge(flagCfg)

	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("compat") {
		cfg.Compat, _ = flags.GetBool("compat")
	}
	if flags.Changed("single-instance") {
		cfg.SingleInstance, _ = flags.GetBool("single-instance")
	}
	if flags.Changed("exec-timeout") {
		cfg.ExecTimeout, _ = flags.GetDuration("exec-timeout")
	}
	return cfg, nil
}

// initLogger builds the process logger. The stdio transport owns stdout, so
// logs go to the named file in append mode, or nowhere when unset.
func initLogger(debug bool, logFilePath string) (zerolog.Logger, error) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var output io.Writer = io.Discard
	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("open log file: %w", err)
		}
		output = file
	}

	return zerolog.New(output).With().Timestamp().Logger(), nil
}
