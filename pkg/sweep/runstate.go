package sweep

// RunState carries the scratch state of a single sweep run: the frozen
// valid owner set and the physical table names already processed. A
// RunState is created at the start of a run and discarded at the end;
// it is never shared between runs, so stale-owner decisions and dedupe
// skips cannot leak from one run into the next.
type RunState struct {
	validOwners map[string]struct{}
	touched     map[string]struct{}
}

func newRunState(owners map[string]struct{}) *RunState {
	return &RunState{
		validOwners: owners,
		touched:     make(map[string]struct{}),
	}
}

// ValidOwner reports whether owner exactly matches a member of the
// frozen owner set. Matching is case sensitive with no normalization;
// an empty owner is valid only if the catalog somehow produced one.
func (rs *RunState) ValidOwner(owner string) bool {
	_, ok := rs.validOwners[owner]
	return ok
}

// Touched reports whether the physical table was already processed in
// this run.
func (rs *RunState) Touched(table string) bool {
	_, ok := rs.touched[table]
	return ok
}

// MarkTouched records that the physical table has been processed.
func (rs *RunState) MarkTouched(table string) {
	rs.touched[table] = struct{}{}
}
