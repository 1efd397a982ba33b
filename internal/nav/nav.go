// Package nav owns which single display region of a page view is active.
package nav

import (
	"errors"
	"fmt"
	"slices"

	"github.com/agnivade/levenshtein"
)

// Region identifies one of a fixed set of mutually exclusive display areas.
type Region string

// None is the state before the first activation and after Reset.
const None Region = ""

// ErrUnknownRegion is returned when Activate is given an identifier outside the
// machine's region set.
var ErrUnknownRegion = errors.New("unknown region")

// UnknownRegionError names the rejected region and the closest known one.
type UnknownRegionError struct {
	Region     Region
	Suggestion Region
}

func (e *UnknownRegionError) Error() string {
	if e.Suggestion != None {
		return fmt.Sprintf("unknown region %q (did you mean %q?)", e.Region, e.Suggestion)
	}
	return fmt.Sprintf("unknown region %q", e.Region)
}

func (e *UnknownRegionError) Is(target error) bool { return target == ErrUnknownRegion }

// Listener observes transitions. prev may be None.
type Listener func(prev, next Region)

// Machine is a finite state machine over a fixed region set. It is not safe
// for concurrent use; page views drive it from their Update loop.
type Machine struct {
	regions   []Region
	active    Region
	listeners []Listener
}

func NewMachine(regions ...Region) *Machine {
	return &Machine{regions: slices.Clone(regions)}
}

// Regions returns the machine's region set in declaration order.
func (m *Machine) Regions() []Region { return slices.Clone(m.regions) }

// Active reports the active region; ok is false before the first activation.
func (m *Machine) Active() (Region, bool) {
	return m.active, m.active != None
}

// IsActive reports whether r is the active region.
func (m *Machine) IsActive(r Region) bool {
	return r != None && m.active == r
}

// Known reports whether r belongs to the region set.
func (m *Machine) Known(r Region) bool {
	return r != None && slices.Contains(m.regions, r)
}

// Activate makes r the only active region. Activating the already active region
// is a no-op that notifies nobody. An unknown r leaves the state untouched.
func (m *Machine) Activate(r Region) error {
	if !m.Known(r) {
		return &UnknownRegionError{Region: r, Suggestion: m.closest(r)}
	}
	if m.active == r {
		return nil
	}
	prev := m.active
	m.active = r
	m.notify(prev, r)
	return nil
}

// Reset returns the machine to no-region-active.
func (m *Machine) Reset() {
	if m.active == None {
		return
	}
	prev := m.active
	m.active = None
	m.notify(prev, None)
}

// OnChange registers l for every transition, including Reset.
func (m *Machine) OnChange(l Listener) {
	if l == nil {
		return
	}
	m.listeners = append(m.listeners, l)
}

// Next activates the region after the active one, wrapping around. With nothing
// active it activates the first region.
func (m *Machine) Next() Region { return m.step(1) }

// Prev is Next in the other direction.
func (m *Machine) Prev() Region { return m.step(-1) }

func (m *Machine) step(delta int) Region {
	if len(m.regions) == 0 {
		return None
	}
	idx := slices.Index(m.regions, m.active)
	switch {
	case idx < 0 && delta > 0:
		idx = 0
	case idx < 0:
		idx = len(m.regions) - 1
	default:
		idx = (idx + delta + len(m.regions)) % len(m.regions)
	}
	_ = m.Activate(m.regions[idx])
	return m.active
}

func (m *Machine) notify(prev, next Region) {
	for _, l := range m.listeners {
		l(prev, next)
	}
}

// closest suggests a known region within a small edit distance of r.
func (m *Machine) closest(r Region) Region {
	if r == None {
		return None
	}
	best, bestDist := None, -1
	for _, known := range m.regions {
		d := levenshtein.ComputeDistance(string(r), string(known))
		if bestDist < 0 || d < bestDist {
			best, bestDist = known, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(r)/3) {
		return None
	}
	return best
}
