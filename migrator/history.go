package migrator

// NetState maps migration IDs to the number of times they were applied minus
// the number of times they were rolled back. A migration that was migrated
// consistently has a net state of 0 (not applied) or 1 (applied).
type NetState map[ID]int

// Of returns the net state of the migration with the given ID.
func (s NetState) Of(id ID) int {
	return s[id]
}

// Reconcile folds the history events into a NetState. Only the number of up
// and down events per ID is considered, not their order.
func Reconcile(events []HistoryEvent) NetState {
	state := make(NetState)
	for _, ev := range events {
		if ev.Up {
			state[ev.ID]++
		} else {
			state[ev.ID]--
		}
	}

	return state
}
