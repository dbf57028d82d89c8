package main

import (
	"github.com/spf13/cobra"

	"vadseg/internal/batch"
	"vadseg/internal/postprocess"
)

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var (
		predDir        string
		outDir         string
		workers        int
		rttm           bool
		onset          float64
		offset         float64
		padOnset       float64
		padOffset      float64
		minDurationOn  float64
		minDurationOff float64
		scale          string
		frameLength    float64
	)

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Extract speech segment tables from prediction files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}

			pp := cfg.Postprocessing
			if !cmd.Flags().Changed("onset") {
				onset = pp.Onset
			}
			if !cmd.Flags().Changed("offset") {
				offset = pp.Offset
			}
			if !cmd.Flags().Changed("pad-onset") {
				padOnset = pp.PadOnset
			}
			if !cmd.Flags().Changed("pad-offset") {
				padOffset = pp.PadOffset
			}
			if !cmd.Flags().Changed("min-duration-on") {
				minDurationOn = pp.MinDurationOn
			}
			if !cmd.Flags().Changed("min-duration-off") {
				minDurationOff = pp.MinDurationOff
			}
			if !cmd.Flags().Changed("scale") {
				scale = pp.Scale
			}
			if !cmd.Flags().Changed("frame-length") {
				frameLength = pp.FrameLength
			}
			if !cmd.Flags().Changed("rttm") {
				rttm = cfg.Batch.RTTMOutput
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Batch.Workers
			}

			predDir, err = resolveDir(predDir)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = batch.DefaultSegmentOutDir(predDir)
			} else if outDir, err = resolveDir(outDir); err != nil {
				return err
			}
			if err := checkBatchDirs(cmd, predDir, outDir); err != nil {
				return err
			}

			store := ctx.openStore(logger)
			if store != nil {
				defer store.Close()
			}

			params := postprocess.Params{
				Onset:             onset,
				Offset:            offset,
				PadOnset:          padOnset,
				PadOffset:         padOffset,
				MinDurationOn:     minDurationOn,
				MinDurationOff:    minDurationOff,
				FilterSpeechFirst: pp.FilterSpeechFirst,
				Scale:             postprocess.Scale(scale),
				FrameLength:       frameLength,
			}
			summary, err := batch.SegmentTables(cmd.Context(), batch.SegmentOptions{
				Options: batch.Options{
					PredDir: predDir,
					OutDir:  outDir,
					Workers: workers,
					Logger:  logger,
					Store:   store,
				},
				Params: params,
				RTTM:   rttm,
			})
			if summary != nil {
				printSummary(cmd, summary)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&predDir, "pred-dir", "", "Directory containing prediction files")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory (default: <pred-dir>/seg_output)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent workers")
	cmd.Flags().BoolVar(&rttm, "rttm", false, "Write RTTM tables instead of plain start/end rows")
	cmd.Flags().Float64Var(&onset, "onset", 0, "Score above which a segment opens")
	cmd.Flags().Float64Var(&offset, "offset", 0, "Score below which a segment closes")
	cmd.Flags().Float64Var(&padOnset, "pad-onset", 0, "Seconds added before each segment start")
	cmd.Flags().Float64Var(&padOffset, "pad-offset", 0, "Seconds added after each segment end")
	cmd.Flags().Float64Var(&minDurationOn, "min-duration-on", 0, "Drop segments shorter than this many seconds")
	cmd.Flags().Float64Var(&minDurationOff, "min-duration-off", 0, "Absorb gaps shorter than this many seconds")
	cmd.Flags().StringVar(&scale, "scale", "", "Threshold scale: absolute, relative, or percentile")
	cmd.Flags().Float64Var(&frameLength, "frame-length", 0, "Seconds per prediction frame")
	_ = cmd.MarkFlagRequired("pred-dir")
	return cmd
}
