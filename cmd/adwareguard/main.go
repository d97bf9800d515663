package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"adwareguard/internal/config"
	"adwareguard/internal/detection/agent"
	"adwareguard/internal/domain/models"
	"adwareguard/internal/domain/services"
	"adwareguard/internal/infrastructure/cache"
	"adwareguard/internal/sources"
	"adwareguard/pkg/logger"
)

// exitNeedsRoot signals the management tool that the cache directory was not
// writable and the scan must be re-run with elevated privileges.
const exitNeedsRoot = 13

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			fmt.Fprintln(os.Stderr, "Please run as root!")
			os.Exit(exitNeedsRoot)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath     string
		verbose        bool
		stdoutReport   bool
		removeMode     bool
		quarantineMode bool
	)

	cmd := &cobra.Command{
		Use:   "adwareguard [management-tool arguments...]",
		Short: "Identify and optionally remediate known adware files",
		Long: "Identifies files associated with known adware from curated remote lists\n" +
			"plus a heuristic for the renamed-agent launchd family. With no mode flag\n" +
			"it prints an extension attribute report for the device management tool.",
		// Management tools pass fixed positional arguments to every
		// script they run; accept and ignore them.
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := models.ModeExtensionAttribute
			switch {
			case stdoutReport:
				mode = models.ModeReport
			case removeMode:
				mode = models.ModeRemove
			case quarantineMode:
				mode = models.ModeQuarantine
			}
			return run(cmd.Context(), configPath, verbose, mode)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print log messages to stdout as well as syslog")
	cmd.Flags().BoolVarP(&stdoutReport, "stdout", "s", false, "print standard report")
	cmd.Flags().BoolVarP(&removeMode, "remove", "r", false, "remove offending files")
	cmd.Flags().BoolVarP(&quarantineMode, "quarantine", "q", false, "move offending files to quarantine location")
	cmd.MarkFlagsMutuallyExclusive("stdout", "remove", "quarantine")

	return cmd
}

func run(ctx context.Context, configPath string, verbose bool, mode models.ScanMode) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:     cfg.Logger.Level,
		Format:    cfg.Logger.Format,
		Syslog:    cfg.Logger.Syslog,
		SyslogTag: cfg.App.Name,
		Verbose:   verbose,
	})

	fsys := afero.NewOsFs()

	fileCache, err := cache.New(fsys, cfg.Cache.Dir, log)
	if err != nil {
		return err
	}
	log.Info().
		Str("app", cfg.App.Name).
		Str("version", cfg.App.Version).
		Str("cache_root", fileCache.Root()).
		Msg("starting adwareguard")

	registry := sources.NewRegistry(log)
	for _, url := range cfg.Fetch.Sources {
		if err := registry.Register(sources.NewFeedConnector(url, fileCache, log, cfg.Fetch.Timeout)); err != nil {
			return err
		}
	}

	scanner := services.NewScanner(
		fsys,
		registry,
		agent.New(fsys, log),
		services.NewMatcher(fsys, log),
		services.NewRemediator(fsys, fileCache, log),
		log,
	)

	report, err := scanner.Run(ctx, mode)
	if err != nil {
		return err
	}

	if report.Output != "" {
		fmt.Print(report.Output)
		if !strings.HasSuffix(report.Output, "\n") {
			fmt.Println()
		}
	}
	return nil
}
