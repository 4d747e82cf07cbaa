package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/deck-sim/deck-sim/sched"
)

var (
	// CLI flags shared by the subcommands
	logLevel  string // Log verbosity level
	deckPath  string // Path to the YAML deck file
	startDate string // Simulation start, overrides the deck header
	strict    bool   // Escalate name pattern misses to hard errors
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "deck-sim",
	Short: "Schedule engine for reservoir simulation decks",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// buildSchedule loads the deck and processes it into a timeline.
func buildSchedule() (*sched.Schedule, *sched.Deck, *sched.ErrorGuard, error) {
	deck, header, err := sched.LoadDeckFile(deckPath)
	if err != nil {
		return nil, nil, nil, err
	}
	start := header.Start
	if startDate != "" {
		start, err = time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	parseCtx := sched.NewParseContext()
	if !strict {
		parseCtx.Update(sched.ParseInvalidName, sched.PolicyWarn)
	}

	schedule := sched.NewSchedule(start, header.Grid, header.Units, sched.NewHandlerRegistry(), parseCtx)
	guard, err := schedule.Process(deck)
	return schedule, deck, guard, err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&deckPath, "deck", "", "Path to the YAML deck file")
	rootCmd.PersistentFlags().StringVar(&startDate, "start", "", "Simulation start date (YYYY-MM-DD), overrides the deck header")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Treat well/group name pattern misses as errors")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checksumCmd)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
