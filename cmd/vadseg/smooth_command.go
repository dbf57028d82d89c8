package main

import (
	"github.com/spf13/cobra"

	"vadseg/internal/batch"
	"vadseg/internal/smoothing"
)

func newSmoothCommand(ctx *commandContext) *cobra.Command {
	var (
		predDir      string
		outDir       string
		workers      int
		method       string
		overlap      float64
		windowLength float64
		shiftLength  float64
		frameLength  float64
	)

	cmd := &cobra.Command{
		Use:   "smooth",
		Short: "Reconstruct per-frame predictions from overlapping windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("method") {
				method = cfg.Smoothing.Method
			}
			if !cmd.Flags().Changed("overlap") {
				overlap = cfg.Smoothing.Overlap
			}
			if !cmd.Flags().Changed("window-length") {
				windowLength = cfg.Smoothing.WindowLength
			}
			if !cmd.Flags().Changed("shift-length") {
				shiftLength = cfg.Smoothing.ShiftLength
			}
			if !cmd.Flags().Changed("frame-length") {
				frameLength = cfg.Postprocessing.FrameLength
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Batch.Workers
			}

			predDir, err = resolveDir(predDir)
			if err != nil {
				return err
			}
			params := smoothing.Params{
				Overlap:      overlap,
				WindowLength: windowLength,
				ShiftLength:  shiftLength,
				FrameLength:  frameLength,
			}
			if outDir == "" {
				outDir = batch.DefaultSmoothOutDir(predDir, smoothing.Method(method), params.Overlap)
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

			summary, err := batch.Smooth(cmd.Context(), batch.SmoothOptions{
				Options: batch.Options{
					PredDir: predDir,
					OutDir:  outDir,
					Workers: workers,
					Logger:  logger,
					Store:   store,
				},
				Params: params,
				Method: smoothing.Method(method),
			})
			if summary != nil {
				printSummary(cmd, summary)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&predDir, "pred-dir", "", "Directory containing *.frame prediction files")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory (default: <pred-dir>/overlap_smoothing_output_<method>_<overlap>)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent workers")
	cmd.Flags().StringVar(&method, "method", "", "Smoothing method: mean or median")
	cmd.Flags().Float64Var(&overlap, "overlap", 0, "Window overlap fraction in [0, 1)")
	cmd.Flags().Float64Var(&windowLength, "window-length", 0, "Inference window length in seconds")
	cmd.Flags().Float64Var(&shiftLength, "shift-length", 0, "Window shift in seconds")
	cmd.Flags().Float64Var(&frameLength, "frame-length", 0, "Seconds per prediction frame")
	_ = cmd.MarkFlagRequired("pred-dir")
	return cmd
}
