package domain

// Persona is one selectable character identity: a canonical display name,
// the alias strings that resolve to it, and the unit the character belongs
// to (used by the list command).
type Persona struct {
	Name    string   `yaml:"name" json:"name"`
	Group   string   `yaml:"group" json:"group"`
	Aliases []string `yaml:"aliases" json:"aliases"`
}

// PersonaCatalog is the closed persona set supplied at startup. It is built
// once and read-only afterwards.
type PersonaCatalog struct {
	personas []Persona
	byGroup  map[string][]string
	groups   []string
}

// NewPersonaCatalog copies the given personas into an immutable catalog,
// preserving declaration order for names and first-seen order for groups.
func NewPersonaCatalog(personas []Persona) *PersonaCatalog {
	c := &PersonaCatalog{
		personas: append([]Persona(nil), personas...),
		byGroup:  make(map[string][]string),
	}
	for _, p := range c.personas {
		if _, seen := c.byGroup[p.Group]; !seen {
			c.groups = append(c.groups, p.Group)
		}
		c.byGroup[p.Group] = append(c.byGroup[p.Group], p.Name)
	}
	return c
}

// Personas returns the catalog entries in declaration order.
func (c *PersonaCatalog) Personas() []Persona {
	return append([]Persona(nil), c.personas...)
}

// Names returns every canonical persona name in declaration order.
func (c *PersonaCatalog) Names() []string {
	names := make([]string, 0, len(c.personas))
	for _, p := range c.personas {
		names = append(names, p.Name)
	}
	return names
}

// Groups returns the unit names in first-seen order.
func (c *PersonaCatalog) Groups() []string {
	return append([]string(nil), c.groups...)
}

// Members returns the canonical names belonging to a unit.
func (c *PersonaCatalog) Members(group string) []string {
	return append([]string(nil), c.byGroup[group]...)
}
