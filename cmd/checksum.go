package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// checksumCmd processes the deck twice and compares the timeline digests.
// Equal digests confirm that processing is deterministic and that no map
// iteration order leaks into the result, which is the same property a
// parallel run relies on.
var checksumCmd = &cobra.Command{
	Use:   "checksum",
	Short: "Verify deterministic processing by comparing two runs",
	Run: func(cmd *cobra.Command, args []string) {
		if deckPath == "" {
			logrus.Fatal("No deck file provided, use --deck")
		}

		first, _, _, err := buildSchedule()
		if err != nil {
			logrus.Fatalf("Deck processing failed: %v", err)
		}
		second, _, _, err := buildSchedule()
		if err != nil {
			logrus.Fatalf("Deck processing failed on second pass: %v", err)
		}

		a := first.Checksum()
		b := second.Checksum()
		fmt.Printf("run 1: %#016x\nrun 2: %#016x\n", a, b)
		if a != b {
			logrus.Fatal("Checksum mismatch: schedule processing is not deterministic")
		}
		logrus.Info("Checksums match")
	},
}
