// Package registry maintains the catalog of registered test units, keyed
// by zero-padded numeric ID.
package registry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/storageward/s3-acceptor/types"
)

// Range is an inclusive numeric ID range owned by one group.
type Range struct {
	Min int
	Max int
}

// Contains reports whether id falls inside the range.
func (r Range) Contains(id int) bool { return id >= r.Min && id <= r.Max }

// DefaultGroups is the versioned group -> ID range table. Ranges are
// authoritative: a unit registered under a group whose range does not
// contain its ID is excluded from the catalog.
func DefaultGroups() map[string]Range {
	return map[string]Range{
		"basic":      {Min: 1, Max: 99},
		"multipart":  {Min: 100, Max: 199},
		"versioning": {Min: 200, Max: 299},
		"errors":     {Min: 300, Max: 399},
		"edge":       {Min: 400, Max: 499},
	}
}

// Entry is one test unit registration: a group, a name whose leading digit
// run is the unit's numeric ID, and the entry point.
type Entry struct {
	Group string
	Name  string
	Fn    types.TestFunc
}

var (
	registeredMu sync.Mutex
	registered   []Entry
)

// Add records a test unit registration. It is called from init functions
// of the packages that provide test units; the entries are consumed when a
// Registry is constructed with Registered().
func Add(group, name string, fn types.TestFunc) {
	registeredMu.Lock()
	defer registeredMu.Unlock()
	registered = append(registered, Entry{Group: group, Name: name, Fn: fn})
}

// Registered returns a copy of all registrations recorded so far.
func Registered() []Entry {
	registeredMu.Lock()
	defer registeredMu.Unlock()
	out := make([]Entry, len(registered))
	copy(out, registered)
	return out
}

// Config contains registry construction parameters. The group table is
// injected rather than read from a package global so synthetic tables can
// be supplied.
type Config struct {
	Groups  map[string]Range
	Entries []Entry
	Log     zerolog.Logger
}

// Registry is the immutable catalog of discovered test units.
type Registry struct {
	groups map[string]Range
	byKey  map[string]types.TestUnit
}

// New builds a catalog from the configured entries. Overlapping group
// ranges are a construction error; everything else degrades to exclusion
// or a logged warning, never a failure.
func New(cfg Config) (*Registry, error) {
	if len(cfg.Groups) == 0 {
		return nil, fmt.Errorf("group range table is required")
	}
	if err := checkOverlap(cfg.Groups); err != nil {
		return nil, err
	}

	r := &Registry{
		groups: cfg.Groups,
		byKey:  make(map[string]types.TestUnit),
	}

	// Sort by name so duplicate resolution is deterministic: the
	// lexicographically first registration wins.
	entries := make([]Entry, len(cfg.Entries))
	copy(entries, cfg.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	for _, e := range entries {
		rng, ok := cfg.Groups[e.Group]
		if !ok {
			// Absence of an optional category is expected.
			cfg.Log.Debug().Str("group", e.Group).Str("name", e.Name).
				Msg("skipping registration for unknown group")
			continue
		}
		id, ok := parseLeadingID(e.Name)
		if !ok {
			cfg.Log.Warn().Str("name", e.Name).Msg("registration name has no leading numeric ID, excluded")
			continue
		}
		if !rng.Contains(id) {
			cfg.Log.Warn().Str("name", e.Name).Int("id", id).Str("group", e.Group).
				Msgf("ID outside group range [%d,%d], excluded", rng.Min, rng.Max)
			continue
		}
		key := PadID(id)
		if existing, dup := r.byKey[key]; dup {
			cfg.Log.Warn().Str("id", key).Str("kept", existing.Name).Str("dropped", e.Name).
				Msg("duplicate test ID, keeping first registration in sorted order")
			continue
		}
		r.byKey[key] = types.TestUnit{
			ID:    id,
			Key:   key,
			Name:  e.Name,
			Group: e.Group,
			Fn:    e.Fn,
		}
	}

	cfg.Log.Debug().Int("units", len(r.byKey)).Msg("registry loaded")
	return r, nil
}

func checkOverlap(groups map[string]Range) error {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, a := range names {
		ra := groups[a]
		if ra.Min > ra.Max {
			return fmt.Errorf("group %s has inverted range [%d,%d]", a, ra.Min, ra.Max)
		}
		for _, b := range names[i+1:] {
			rb := groups[b]
			if ra.Min <= rb.Max && rb.Min <= ra.Max {
				return fmt.Errorf("group ranges overlap: %s [%d,%d] and %s [%d,%d]",
					a, ra.Min, ra.Max, b, rb.Min, rb.Max)
			}
		}
	}
	return nil
}

// PadID renders a numeric ID as the catalog's 3-digit key.
func PadID(id int) string { return fmt.Sprintf("%03d", id) }

// NormalizeID converts any numeric string, padded or not, to the 3-digit
// catalog key. "16", "016" and "0016" all normalize to "016".
func NormalizeID(s string) (string, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 0 {
		return "", fmt.Errorf("invalid test ID %q", s)
	}
	return PadID(id), nil
}

// parseLeadingID extracts the leading digit run of a registration name.
func parseLeadingID(name string) (int, bool) {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(name[:i])
	if err != nil {
		return 0, false
	}
	return id, true
}

// GetByID looks up a unit by numeric ID string. Unpadded, padded and
// over-padded forms of the same value resolve to the same unit.
func (r *Registry) GetByID(id string) (types.TestUnit, bool) {
	key, err := NormalizeID(id)
	if err != nil {
		return types.TestUnit{}, false
	}
	unit, ok := r.byKey[key]
	return unit, ok
}

// GetByGroup returns the units of a group ordered by ID.
func (r *Registry) GetByGroup(name string) []types.TestUnit {
	var units []types.TestUnit
	for _, u := range r.byKey {
		if u.Group == name {
			units = append(units, u)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units
}

// GetAll returns every unit in the catalog ordered by ID.
func (r *Registry) GetAll() []types.TestUnit {
	units := make([]types.TestUnit, 0, len(r.byKey))
	for _, u := range r.byKey {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units
}

// Groups returns the group names present in the range table, sorted.
func (r *Registry) Groups() []string {
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
