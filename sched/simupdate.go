package sched

// SimulatorUpdate is the digest of one batch of keywords that a running
// simulator needs in order to update its own data structures, used when
// keywords arrive mid-run through an ACTIONX block.
type SimulatorUpdate struct {
	affectedWells       map[string]struct{}
	WellStructureChanged bool
	TranUpdate           bool
}

func NewSimulatorUpdate() *SimulatorUpdate {
	return &SimulatorUpdate{affectedWells: make(map[string]struct{})}
}

// AffectWell marks the named well as touched by the batch.
func (u *SimulatorUpdate) AffectWell(name string) {
	u.affectedWells[name] = struct{}{}
}

// Affected reports whether the named well was touched.
func (u *SimulatorUpdate) Affected(name string) bool {
	_, ok := u.affectedWells[name]
	return ok
}

// Wells returns the touched well names. Order is not guaranteed; callers
// needing determinism should sort.
func (u *SimulatorUpdate) Wells() []string {
	out := make([]string, 0, len(u.affectedWells))
	for name := range u.affectedWells {
		out = append(out, name)
	}
	return out
}

// Reset clears the digest between batches.
func (u *SimulatorUpdate) Reset() {
	u.affectedWells = make(map[string]struct{})
	u.WellStructureChanged = false
	u.TranUpdate = false
}
