package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/deck-sim/deck-sim/sched"
)

// runCmd builds the schedule from a deck and reports the timeline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process a deck into a schedule timeline",
	Run: func(cmd *cobra.Command, args []string) {
		if deckPath == "" {
			logrus.Fatal("No deck file provided, use --deck")
		}

		schedule, deck, guard, err := buildSchedule()
		if err != nil {
			logrus.Fatalf("Deck processing failed: %v", err)
		}
		for _, w := range guard.Warnings() {
			logrus.Warn(w)
		}

		logrus.Infof("Processed %d keywords into %d report steps", len(deck.Keywords), schedule.Steps())
		for step := 0; step < schedule.Steps(); step++ {
			st := schedule.StateAt(step)
			fmt.Printf("step %3d  %s  wells=%d groups=%d events=%s\n",
				step,
				st.StartTime.Format("2006-01-02 15:04:05"),
				st.Wells().Len(),
				st.Groups().Len(),
				eventSummary(st))
		}

		final := schedule.Back()
		for _, name := range final.Wells().Names() {
			w := final.Well(name)
			role := "producer"
			if w.IsInjector() {
				role = "injector"
			}
			fmt.Printf("well %-10s group=%-10s status=%-5s %s connections=%d\n",
				name, w.Group, w.Status, role, len(w.Connections.Conns))
		}
	},
}

// eventSummary renders the step's fired event kinds compactly.
func eventSummary(st *sched.ScheduleState) string {
	type bit struct {
		kind sched.EventKind
		tag  string
	}
	bits := []bit{
		{sched.EventNewWell, "new-well"},
		{sched.EventWellStatusChange, "status"},
		{sched.EventCompletionChange, "completion"},
		{sched.EventProductionUpdate, "prod"},
		{sched.EventInjectionUpdate, "inj"},
		{sched.EventWellSwitchedInjectorProducer, "switch"},
		{sched.EventNewGroup, "new-group"},
		{sched.EventGroupChange, "group"},
		{sched.EventGeoModifier, "geo"},
		{sched.EventTuningChange, "tuning"},
		{sched.EventVFPChange, "vfp"},
		{sched.EventUDQChange, "udq"},
	}
	out := ""
	for _, b := range bits {
		if st.Events.HasEvent(b.kind) {
			if out != "" {
				out += ","
			}
			out += b.tag
		}
	}
	if out == "" {
		return "-"
	}
	return out
}
