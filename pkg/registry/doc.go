// Package registry tracks the caching agents that are currently allowed to
// own rows in the cache store.
//
// # Catalog
//
// The catalog is a YAML file listing providers, each provider listing its
// agents. An agent declares whether it produces cached data (caching: true)
// and which data types it produces, each flagged authoritative or derived:
//
//	providers:
//	  - name: aws-prod
//	    agents:
//	      - type: aws/serverGroupCachingAgent
//	        caching: true
//	        data_types:
//	          - name: serverGroups
//	            authoritative: true
//	          - name: applications
//	            authoritative: false
//
// The agent type string is the owner identifier the agents write into the
// cache tables. The sweeper treats any row whose owner is not listed here
// as orphaned, so the catalog is the single source of truth for what
// survives a sweep.
//
// # Live Reload
//
// Registry holds an immutable catalog snapshot behind a lock. A Watcher can
// observe the catalog file with fsnotify and swap in a freshly loaded
// snapshot on change, so agents can be added or retired without restarting
// the sweeper. A sweep run reads one snapshot at its start and never sees a
// mid-run swap.
package registry
