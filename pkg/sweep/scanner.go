package sweep

import (
	"context"
	"sort"

	"github.com/scour-hq/scour/pkg/cache"
)

// scanStale streams the (id, owner) projection of table and collects
// the ids whose owner is not in the run's frozen owner set. Only ids
// and the distinct offending owners are buffered; row content never is.
// A missing table scans as zero rows, so stale and owners come back
// empty with a nil error.
func (s *Sweeper) scanStale(ctx context.Context, state *RunState, table string, kind cache.TableKind) (stale []string, owners []string, scanned int, err error) {
	ownerSet := make(map[string]struct{})

	err = s.store.ScanRows(ctx, table, kind.IDColumn(), kind.OwnerColumn(), func(row cache.Row) error {
		scanned++
		if state.ValidOwner(row.Owner) {
			return nil
		}
		stale = append(stale, row.ID)
		ownerSet[row.Owner] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, nil, scanned, err
	}

	owners = make([]string, 0, len(ownerSet))
	for owner := range ownerSet {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	return stale, owners, scanned, nil
}
