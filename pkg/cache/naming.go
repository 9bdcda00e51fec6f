package cache

import "fmt"

// Namer derives physical table names from logical data-type names. Both
// derivations must be pure and deterministic: the sweeper calls them
// repeatedly within a run and relies on identical inputs producing identical
// names.
type Namer interface {
	// PrimaryTable returns the physical name of the primary-record table
	// for dataType.
	PrimaryTable(dataType string) string

	// RelationshipTable returns the physical name of the relationship
	// table for dataType.
	RelationshipTable(dataType string) string
}

// TableNaming is the default naming scheme. It prefixes every table with a
// fixed identifier and schema version so multiple cache generations can
// coexist in one database.
type TableNaming struct {
	// Prefix is the leading identifier of every derived table name.
	Prefix string

	// SchemaVersion is the cache schema generation baked into the name.
	SchemaVersion int
}

// DefaultNaming returns the naming scheme used when none is configured:
// prefix "cache", schema version 1.
func DefaultNaming() TableNaming {
	return TableNaming{Prefix: "cache", SchemaVersion: 1}
}

// PrimaryTable derives the primary-record table name:
// <prefix>_v<version>_<sanitized dataType>.
func (n TableNaming) PrimaryTable(dataType string) string {
	return fmt.Sprintf("%s_v%d_%s", n.Prefix, n.SchemaVersion, sanitizeName(dataType))
}

// RelationshipTable derives the relationship table name: the primary name
// plus a "_rel" suffix.
func (n TableNaming) RelationshipTable(dataType string) string {
	return n.PrimaryTable(dataType) + "_rel"
}

// sanitizeName maps a logical data-type name onto the SQL identifier
// charset, replacing every rune outside [A-Za-z0-9_] with an underscore.
// The mapping is lossy: "aws:serverGroups" and "aws/serverGroups" derive
// the same physical table.
func sanitizeName(name string) string {
	out := make([]byte, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, byte(r))
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
