package venue

import "sort"

// Venue describes one tradeable liquidity source.
type Venue struct {
	Name              string `mapstructure:"name"`
	Identifier        string `mapstructure:"identifier"`
	Chain             string `mapstructure:"chain"`
	Enabled           bool   `mapstructure:"enabled"`
	Priority          int    `mapstructure:"priority"`
	RouterAddress     string `mapstructure:"router_address"`
	FactoryAddress    string `mapstructure:"factory_address"`
	SupportsFlashloan bool   `mapstructure:"supports_flashloan"`
	AvgLatencyMS      int    `mapstructure:"avg_latency_ms"`
}

// Stats summarises registry contents.
type Stats struct {
	Total     int
	Enabled   int
	Disabled  int
	ByChain   map[string]int
	Flashloan int
}

// Registry holds the venue set a scan run works against. Registries are
// plain values owned by their caller; there is no process-wide instance.
type Registry struct {
	venues []Venue
	byID   map[string]int
}

// NewRegistry builds a registry from an explicit venue list. A later entry
// with a duplicate identifier replaces the earlier one.
func NewRegistry(venues ...Venue) *Registry {
	r := &Registry{byID: make(map[string]int, len(venues))}
	for _, v := range venues {
		r.put(v)
	}
	return r
}

func (r *Registry) put(v Venue) {
	if idx, ok := r.byID[v.Identifier]; ok {
		r.venues[idx] = v
		return
	}
	r.byID[v.Identifier] = len(r.venues)
	r.venues = append(r.venues, v)
}

// Register adds a venue, replacing any existing entry with the same
// identifier. Used to patch the built-in set from configuration.
func (r *Registry) Register(v Venue) {
	r.put(v)
}

// Len reports the number of registered venues.
func (r *Registry) Len() int {
	return len(r.venues)
}

// ByIdentifier looks a venue up by its identifier.
func (r *Registry) ByIdentifier(id string) (Venue, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Venue{}, false
	}
	return r.venues[idx], true
}

// Active returns enabled venues, optionally filtered by chain and minimum
// priority, sorted by priority descending and capped at max (0 = no cap).
func (r *Registry) Active(chain string, minPriority, max int) []Venue {
	out := make([]Venue, 0, len(r.venues))
	for _, v := range r.venues {
		if !v.Enabled {
			continue
		}
		if chain != "" && v.Chain != chain {
			continue
		}
		if v.Priority < minPriority {
			continue
		}
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})

	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// WithFlashloan returns enabled venues that can source a flashloan, optionally
// filtered by chain.
func (r *Registry) WithFlashloan(chain string) []Venue {
	out := make([]Venue, 0)
	for _, v := range r.venues {
		if !v.Enabled || !v.SupportsFlashloan {
			continue
		}
		if chain != "" && v.Chain != chain {
			continue
		}
		out = append(out, v)
	}
	return out
}

// SetEnabled flips one venue on or off. It reports whether the identifier
// was known.
func (r *Registry) SetEnabled(id string, enabled bool) bool {
	idx, ok := r.byID[id]
	if !ok {
		return false
	}
	r.venues[idx].Enabled = enabled
	return true
}

// SetEnabledBulk flips several venues at once and reports how many
// identifiers were known.
func (r *Registry) SetEnabledBulk(ids []string, enabled bool) int {
	changed := 0
	for _, id := range ids {
		if r.SetEnabled(id, enabled) {
			changed++
		}
	}
	return changed
}

// Statistics summarises the registry.
func (r *Registry) Statistics() Stats {
	s := Stats{Total: len(r.venues), ByChain: make(map[string]int)}
	for _, v := range r.venues {
		if !v.Enabled {
			s.Disabled++
			continue
		}
		s.Enabled++
		s.ByChain[v.Chain]++
		if v.SupportsFlashloan {
			s.Flashloan++
		}
	}
	return s
}
