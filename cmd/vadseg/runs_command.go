package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vadseg/internal/runs"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect batch run history",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func (c *commandContext) withStore(fn func(*runs.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := runs.Open(cfg.Paths.RunsDB)
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runs.Store) error {
				listed, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(listed) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}

				rows := make([][]string, 0, len(listed))
				for _, run := range listed {
					finished := "running"
					if run.FinishedAt != nil {
						finished = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
					}
					rows = append(rows, []string{
						run.ID,
						run.Kind,
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						finished,
						strconv.Itoa(run.Total),
						strconv.Itoa(run.Succeeded),
						strconv.Itoa(run.Failed),
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Run", "Kind", "Started", "Elapsed", "Inputs", "OK", "Failed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-file outcomes of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runs.Store) error {
				files, err := store.RunFiles(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(files) == 0 {
					fmt.Fprintf(out, "No records for run %s\n", args[0])
					return nil
				}

				rows := make([][]string, 0, len(files))
				for _, rec := range files {
					detail := rec.Output
					if rec.Status == runs.StatusFailed {
						detail = rec.ErrorMessage
					}
					rows = append(rows, []string{
						rec.Input,
						rec.Status,
						rec.Elapsed.Round(time.Millisecond).String(),
						detail,
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Input", "Status", "Elapsed", "Output / Error"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
				return nil
			})
		},
	}
}
