package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DavidVonDerau/merged-lands/internal/adapters/filesystem"
	"github.com/DavidVonDerau/merged-lands/internal/adapters/imagesink"
	"github.com/DavidVonDerau/merged-lands/internal/adapters/logging"
	"github.com/DavidVonDerau/merged-lands/internal/app"
	"github.com/DavidVonDerau/merged-lands/internal/ports"
)

var (
	debugColors bool
	noReport    bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge the load order's landscape edits into one plugin",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fs := filesystem.New()

		opts := []logging.ConsoleLoggerOption{
			logging.WithOutput(cmd.ErrOrStderr()),
		}
		if verbose {
			opts = append(opts, logging.WithLevel(ports.LevelDebug))
		}
		if jsonLogs {
			opts = append(opts, logging.WithJSONFormat(true))
		}
		logger := logging.NewConsoleLogger(opts...)
		ctx := ports.ContextWithLogger(cmd.Context(), logger)

		data, err := fs.ReadFile(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
		cfg, err := app.ParseConfig(data)
		if err != nil {
			return err
		}
		if debugColors {
			cfg.DebugColors = true
		}

		svc := app.NewService(fs, logger)
		res, err := svc.Run(ctx, cfg)
		if err != nil {
			printError(err)
			return err
		}

		outPath := cfg.Output
		if !filepath.IsAbs(outPath) {
			outPath = filepath.Join(cfg.DataDir, outPath)
		}
		if err := fs.WriteFile(outPath, res.OutputBytes, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}

		if !noReport && cfg.ReportDir != "" {
			sink := imagesink.New(fs, cfg.ReportDir, cfg.ImageScale)
			if err := sink.Write(res.Images); err != nil {
				return err
			}
		}

		printSummary(cmd.OutOrStdout(), outPath, res)
		return nil
	},
}

func init() {
	mergeCmd.Flags().BoolVar(&debugColors, "debug-colors", false, "paint conflict severities into vertex colors")
	mergeCmd.Flags().BoolVar(&noReport, "no-report", false, "skip writing report images")
	rootCmd.AddCommand(mergeCmd)
}
