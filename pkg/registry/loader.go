package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadCatalog reads and validates a catalog file. It returns an error for a
// missing or unparseable file and for catalogs that fail validation, since a
// defective catalog must abort a sweep rather than shrink the owner set.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %q: %w", path, err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %q: %w", path, err)
	}

	if err := validateCatalog(&catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog %q: %w", path, err)
	}

	return &catalog, nil
}

// validateCatalog rejects catalogs that would make a sweep unsafe or
// ambiguous. An empty catalog is rejected: it would classify every cached
// row as orphaned.
func validateCatalog(catalog *Catalog) error {
	if len(catalog.Providers) == 0 {
		return fmt.Errorf("no providers defined")
	}

	seenAgents := make(map[string]string)
	for i, provider := range catalog.Providers {
		if provider.Name == "" {
			return fmt.Errorf("provider %d has no name", i)
		}

		for _, agent := range provider.Agents {
			if agent.Type == "" {
				return fmt.Errorf("provider %q has an agent with no type", provider.Name)
			}
			if prev, ok := seenAgents[agent.Type]; ok {
				return fmt.Errorf("agent type %q declared by both %q and %q", agent.Type, prev, provider.Name)
			}
			seenAgents[agent.Type] = provider.Name

			seenTypes := make(map[string]bool)
			for _, dt := range agent.DataTypes {
				if dt.Name == "" {
					return fmt.Errorf("agent %q declares a data type with no name", agent.Type)
				}
				if seenTypes[dt.Name] {
					return fmt.Errorf("agent %q declares data type %q twice", agent.Type, dt.Name)
				}
				seenTypes[dt.Name] = true
			}
		}
	}

	return nil
}
