package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"snapsort/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceFlag    string
		outputFlag    string
		modeFlag      string
		policyFlag    string
		thresholdFlag int
		fastFlag      bool
		dryRunFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan a photo tree, remove duplicates, and file keepers by capture date",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			cfg := *loaded
			if strings.TrimSpace(sourceFlag) != "" {
				cfg.Paths.SourceDir = sourceFlag
			}
			if strings.TrimSpace(outputFlag) != "" {
				cfg.Paths.OutputDir = outputFlag
				cfg.Paths.QuarantineDir = ""
			}
			if strings.TrimSpace(modeFlag) != "" {
				cfg.Detector.Mode = modeFlag
			}
			if strings.TrimSpace(policyFlag) != "" {
				cfg.Organizer.OnDuplicate = policyFlag
			}
			if cmd.Flags().Changed("threshold") {
				cfg.Detector.DistanceThreshold = thresholdFlag
			}
			if cmd.Flags().Changed("fast-digest") {
				cfg.Detector.FastDigest = fastFlag
			}

			if strings.TrimSpace(cfg.Paths.SourceDir) == "" {
				return errors.New("no source directory: pass --source or set paths.source_dir in the config")
			}
			if err := cfg.Normalize(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := ctx.newLogger(&cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			runner := pipeline.New(&cfg, logger, dryRunFlag)
			summary, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderSummary(out, summary, shouldColorize(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "Directory tree to scan for photos")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Timeline root to file keepers under")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "Duplicate detection mode (exact or perceptual)")
	cmd.Flags().StringVar(&policyFlag, "on-duplicate", "", "What to do with duplicates (quarantine or delete)")
	cmd.Flags().IntVar(&thresholdFlag, "threshold", 0, "Maximum perceptual hash distance treated as a duplicate")
	cmd.Flags().BoolVar(&fastFlag, "fast-digest", false, "Hash only the head and tail of each file plus its size")
	cmd.Flags().BoolVarP(&dryRunFlag, "dry-run", "n", false, "Report planned operations without touching any file")

	return cmd
}
