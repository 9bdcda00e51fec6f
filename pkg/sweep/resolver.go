package sweep

import (
	"fmt"
	"sort"

	"github.com/scour-hq/scour/pkg/registry"
)

// ownership is the frozen output of resolving a catalog snapshot: the
// set of agent types whose rows survive the run, and the authoritative
// data types whose tables the run will visit.
type ownership struct {
	owners    map[string]struct{}
	dataTypes []string
}

// resolveOwnership derives the valid owner set and the data type
// universe from a single catalog snapshot. It is called exactly once
// per run; everything downstream works from the returned value so a
// concurrent catalog reload cannot split one run across two views.
//
// Owners are the agent types of caching-capable agents. Data types are
// the names each such agent is authoritative for, deduplicated and
// sorted so runs visit tables in a deterministic order.
func resolveOwnership(catalog *registry.Catalog) (*ownership, error) {
	agents := catalog.CachingAgents()
	if len(agents) == 0 {
		// An empty owner set would classify every cached row as
		// orphaned. Refuse to sweep rather than empty the store.
		return nil, fmt.Errorf("catalog defines no caching agents")
	}

	owners := make(map[string]struct{}, len(agents))
	typeSet := make(map[string]struct{})
	for _, agent := range agents {
		owners[agent.Type] = struct{}{}
		for _, dt := range agent.DataTypes {
			if dt.Authoritative {
				typeSet[dt.Name] = struct{}{}
			}
		}
	}

	dataTypes := make([]string, 0, len(typeSet))
	for name := range typeSet {
		dataTypes = append(dataTypes, name)
	}
	sort.Strings(dataTypes)

	return &ownership{owners: owners, dataTypes: dataTypes}, nil
}
