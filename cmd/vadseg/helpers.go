package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vadseg/internal/batch"
	"vadseg/internal/config"
	"vadseg/internal/fileutil"
	"vadseg/internal/preflight"
)

// checkBatchDirs resolves the output directory, creates it, and runs the
// preflight checks before any worker starts.
func checkBatchDirs(cmd *cobra.Command, predDir, outDir string) error {
	if err := fileutil.EnsureDir(outDir); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	results := preflight.RunAll(predDir, outDir)
	if preflight.AllPassed(results) {
		return nil
	}
	out := cmd.ErrOrStderr()
	for _, res := range results {
		if !res.Passed {
			fmt.Fprintf(out, "preflight: %s: %s\n", res.Name, res.Detail)
		}
	}
	return fmt.Errorf("preflight checks failed")
}

func resolveDir(path string) (string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", err
	}
	return expanded, nil
}

func printSummary(cmd *cobra.Command, summary *batch.Summary) {
	out := cmd.OutOrStdout()
	rows := [][]string{{
		summary.RunID,
		strconv.Itoa(summary.Total),
		strconv.Itoa(summary.Succeeded),
		strconv.Itoa(summary.Failed),
		summary.Elapsed.Round(time.Millisecond).String(),
	}}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Run", "Inputs", "OK", "Failed", "Elapsed"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight}))
	fmt.Fprintf(out, "Outputs written to %s\n", summary.OutDir)

	if len(summary.Failures) > 0 {
		fmt.Fprintln(out, "Skipped inputs:")
		for _, failure := range summary.Failures {
			fmt.Fprintf(out, "  %s: %v\n", failure.Input, failure.Err)
		}
	}
}
