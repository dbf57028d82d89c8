package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vadseg/internal/batch"
	"vadseg/internal/config"
	"vadseg/internal/manifest"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	var (
		input         string
		outPath       string
		splitDuration float64
		windowLength  float64
		label         string
	)

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Split long manifest entries into bounded chunks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("split-duration") {
				splitDuration = cfg.Manifest.SplitDuration
			}
			if !cmd.Flags().Changed("window-length") {
				windowLength = cfg.Smoothing.WindowLength
			}
			if !cmd.Flags().Changed("label") {
				label = cfg.Manifest.Label
			}

			input, err = config.ExpandPath(input)
			if err != nil {
				return err
			}
			if outPath != "" {
				if outPath, err = config.ExpandPath(outPath); err != nil {
					return err
				}
			}

			store := ctx.openStore(logger)
			if store != nil {
				defer store.Close()
			}

			summary, err := batch.PrepareManifest(cmd.Context(), batch.ManifestOptions{
				Input:   input,
				OutPath: outPath,
				Params: manifest.SplitParams{
					Label:         label,
					SplitDuration: splitDuration,
					WindowLength:  windowLength,
				},
				Decoder: manifest.WAVDecoder{},
				Logger:  logger,
				Store:   store,
			})
			if summary != nil {
				printSummary(cmd, summary)
				if summary.Failed > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Undecodable entries listed in %s/error.log\n", summary.OutDir)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Input manifest file (one JSON entry per line)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output manifest path (default: <input>_split)")
	cmd.Flags().Float64Var(&splitDuration, "split-duration", 0, "Maximum clip seconds per emitted entry")
	cmd.Flags().Float64Var(&windowLength, "window-length", 0, "Back-pad for non-initial chunks in seconds")
	cmd.Flags().StringVar(&label, "label", "", "Label stamped on every emitted entry")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
