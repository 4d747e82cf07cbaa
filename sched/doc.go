// Package sched builds and queries the dynamic input schedule of a
// reservoir simulation deck.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - state.go: ScheduleState, the full dynamic state at one report step
//   - schedule.go: the timeline, one copy-on-write state per report step,
//     built by a single walk over the deck
//   - dispatch.go: the keyword handler registry and its error contract
//
// # Architecture
//
// The deck model (deck.go) is what an external lexer produces: keywords,
// records, typed items. Handlers (handlers*.go) translate keyword
// occurrences into revisions of immutable entity values (well.go,
// group.go, network.go); entities live in insertion-ordered stores
// (store.go) that fork cheaply at report step boundaries. Every actual
// state change is logged in per-step event bitmasks (events.go), which is
// what a simulator polls to decide what to rebuild.
//
// Sub-packages:
//   - sched/serial/: one-traversal pack/unpack/checksum framework used for
//     restart round-trips and cross-run consistency digests
//   - sched/action/: ACTIONX trigger condition compilation and evaluation
//
// # Conventions
//
// Entities bound in a store are immutable: handlers copy the value, revise
// the copy, and rebind it in the current step only. Update methods return
// whether anything changed, and events fire only on a real change, so
// re-issuing an identical keyword is a no-op. Defaulted deck items keep
// the previous value rather than resetting it.
package sched
