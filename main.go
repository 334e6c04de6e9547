package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"library-batch/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	cfg := library.LoadConfig()
	logger := library.NewLogger(cfg.Env)

	var (
		archiveFlag bool
		dbPath      string
		quiet       bool
	)

	root := &cobra.Command{
		Use:           "library-batch",
		Short:         "Batch library circulation replay tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run <itemsFile> <usersFile> <commandsFile> <outputFile>",
		Short: "Replay a command log against catalog and user files",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemsFile, usersFile, commandsFile, outputFile := args[0], args[1], args[2], args[3]

			res, err := library.Run(itemsFile, usersFile, commandsFile, outputFile, logger)
			if err != nil {
				return err
			}

			if !quiet && term.IsTerminal(int(os.Stdout.Fd())) {
				printSummary(res)
			}

			if archiveFlag {
				arc, err := library.OpenArchive(dbPath)
				if err != nil {
					return fmt.Errorf("open archive: %w", err)
				}
				defer arc.Close()

				rec := library.NewRunRecord(itemsFile, usersFile, commandsFile, res)
				if err := arc.SaveRun(rec, res); err != nil {
					return fmt.Errorf("archive run: %w", err)
				}
				logger.Info("run archived", "run_id", rec.ID, "db", dbPath)
			}
			return nil
		},
	}
	runCmd.Flags().BoolVar(&archiveFlag, "archive", cfg.Archive, "archive the completed run into the history database")
	runCmd.Flags().StringVar(&dbPath, "db", cfg.DBPath, "path to the history database")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the run summary")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect archived runs",
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			arc, err := library.OpenArchive(dbPath)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer arc.Close()

			rows, err := arc.Runs()
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No archived runs.")
				return nil
			}

			fmt.Printf("%-36s %-20s %-8s %-30s %s\n", "Run ID", "Started", "Commands", "Commands File", "Fingerprint")
			fmt.Println(strings.Repeat("-", 110))
			for _, r := range rows {
				fmt.Printf("%-36s %-20s %-8d %-30s %s\n",
					r.ID,
					r.StartedAt.Format("2006-01-02 15:04:05"),
					r.CommandCount,
					truncateString(r.CommandsFile, 30),
					truncateString(r.CommandsFP, 16))
			}
			return nil
		},
	}

	loansCmd := &cobra.Command{
		Use:   "loans <runID>",
		Short: "List the loan journal of an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arc, err := library.OpenArchive(dbPath)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer arc.Close()

			rows, err := arc.Loans(args[0])
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No loans recorded for this run.")
				return nil
			}

			fmt.Printf("%-5s %-10s %-10s %-8s %s\n", "Seq", "User", "Item", "Action", "Date")
			fmt.Println(strings.Repeat("-", 50))
			for _, l := range rows {
				fmt.Printf("%-5d %-10s %-10s %-8s %s\n", l.Seq, l.UserID, l.ItemID, l.Action, l.EventDate)
			}
			return nil
		},
	}

	historyCmd.AddCommand(runsCmd, loansCmd)
	historyCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DBPath, "path to the history database")
	root.AddCommand(runCmd, historyCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printSummary(res *library.RunResult) {
	s := res.Stats
	fmt.Printf("Replay finished in %s\n", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
	fmt.Printf("%-10s %-8s %-8s %-9s %-8s %-7s %s\n", "Commands", "Borrows", "Returns", "Payments", "Refused", "Errors", "Unknown")
	fmt.Println(strings.Repeat("-", 65))
	fmt.Printf("%-10d %-8d %-8d %-9d %-8d %-7d %d\n", s.Commands, s.Borrows, s.Returns, s.Payments, s.Refused, s.Errors, s.Unknown)

	users := res.Library.UsersSorted()
	withPenalty := 0
	for _, u := range users {
		if u.Penalty > 0 {
			withPenalty++
		}
	}
	if withPenalty == 0 {
		return
	}

	fmt.Printf("\n%-10s %-25s %-10s %s\n", "User", "Name", "Category", "Penalty")
	fmt.Println(strings.Repeat("-", 55))
	for _, u := range users {
		if u.Penalty == 0 {
			continue
		}
		fmt.Printf("%-10s %-25s %-10s $%d\n", u.ID, truncateString(u.Name, 25), u.Category, u.Penalty)
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
