package engine

import (
	"sort"
	"sync"
)

// SchematicDescription describes one schematic of a collection.
type SchematicDescription struct {
	// Name identifies the schematic within its collection.
	Name string

	// Description is a human-readable summary.
	Description string

	// Factory is the key of the registered RuleFactory.
	Factory string

	// Schema is CUE source constraining the schematic options. Empty means
	// options are passed through untouched.
	Schema string

	// Aliases are alternative names resolving to this schematic.
	Aliases []string

	// Hidden schematics are omitted from listings but still callable.
	Hidden bool
}

// CollectionDescription describes a named set of schematics.
type CollectionDescription struct {
	Name       string
	Version    string
	Schematics map[string]SchematicDescription
}

// Collection is a registered collection. Schematics are built lazily by the
// engine and cached here, so each name is constructed once.
type Collection struct {
	description CollectionDescription

	mu         sync.Mutex
	schematics map[string]*Schematic
	aliases    map[string]string
}

func newCollection(desc CollectionDescription) *Collection {
	aliases := make(map[string]string)
	for name, sd := range desc.Schematics {
		for _, alias := range sd.Aliases {
			aliases[alias] = name
		}
	}
	return &Collection{
		description: desc,
		schematics:  make(map[string]*Schematic),
		aliases:     aliases,
	}
}

// Description returns the collection description.
func (c *Collection) Description() CollectionDescription {
	return c.description
}

// Names returns the names of all visible schematics, sorted.
func (c *Collection) Names() []string {
	names := make([]string, 0, len(c.description.Schematics))
	for name, sd := range c.description.Schematics {
		if sd.Hidden {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolve maps name or alias to its schematic description.
func (c *Collection) resolve(name string) (SchematicDescription, bool) {
	if sd, ok := c.description.Schematics[name]; ok {
		if sd.Name == "" {
			sd.Name = name
		}
		return sd, true
	}
	if target, ok := c.aliases[name]; ok {
		return c.resolve(target)
	}
	return SchematicDescription{}, false
}
