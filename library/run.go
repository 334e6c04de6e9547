package library

import (
	"fmt"
	"log/slog"
	"time"
)

// RunResult is everything a replay leaves behind besides the report file.
type RunResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Stats      Stats
	Journal    []LoanEvent
	Library    *Library
}

// Run performs one full batch replay: load users, load items, drain the
// command file, then flush and close the report. Load and command errors are
// soft (reported in the output file); only a report file that cannot be
// created or written aborts the run.
func Run(itemsFile, usersFile, commandsFile, outputFile string, log *slog.Logger) (*RunResult, error) {
	rep, err := CreateReport(outputFile)
	if err != nil {
		return nil, err
	}

	lib := NewLibrary()
	proc := NewProcessor(lib, rep, log)

	started := time.Now()
	proc.LoadUsers(usersFile)
	proc.LoadItems(itemsFile)
	proc.ReplayCommands(commandsFile)
	finished := time.Now()

	if err := rep.Close(); err != nil {
		return nil, fmt.Errorf("close report: %w", err)
	}

	stats := proc.Stats()
	log.Info("replay complete",
		"commands", stats.Commands,
		"borrows", stats.Borrows,
		"returns", stats.Returns,
		"refused", stats.Refused,
		"output", outputFile)

	return &RunResult{
		StartedAt:  started,
		FinishedAt: finished,
		Stats:      stats,
		Journal:    proc.Journal(),
		Library:    lib,
	}, nil
}
