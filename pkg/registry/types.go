package registry

// DataTypeSpec declares one data type an agent produces.
type DataTypeSpec struct {
	// Name is the logical data-type name, e.g. "serverGroups". Physical
	// table names are derived from it.
	Name string `yaml:"name"`

	// Authoritative marks this agent as the canonical producer of the data
	// type. Derived copies (authoritative: false) do not protect rows from
	// collection on their own.
	Authoritative bool `yaml:"authoritative"`
}

// Agent describes one configured agent of a provider.
type Agent struct {
	// Type is the agent identifier written into the owner column of every
	// row the agent caches. Unique across the whole catalog.
	Type string `yaml:"type"`

	// Caching reports whether the agent produces cached data at all.
	// Non-caching agents contribute neither owners nor data types.
	Caching bool `yaml:"caching"`

	// DataTypes lists the data types the agent produces.
	DataTypes []DataTypeSpec `yaml:"data_types"`
}

// Provider groups the agents of one upstream account or installation.
type Provider struct {
	Name   string  `yaml:"name"`
	Agents []Agent `yaml:"agents"`
}

// Catalog is one complete parsed catalog file.
type Catalog struct {
	Providers []Provider `yaml:"providers"`
}

// CachingAgents returns every agent in the catalog that produces cached
// data, in catalog order.
func (c *Catalog) CachingAgents() []Agent {
	var agents []Agent
	for _, provider := range c.Providers {
		for _, agent := range provider.Agents {
			if agent.Caching {
				agents = append(agents, agent)
			}
		}
	}
	return agents
}

// AgentCount returns the total number of agents across all providers.
func (c *Catalog) AgentCount() int {
	n := 0
	for _, provider := range c.Providers {
		n += len(provider.Agents)
	}
	return n
}
