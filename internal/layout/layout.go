// Package layout infers building, floor and unit from free-form property names and groups
// properties into a building map. The result is advisory: names that match no known form are
// kept in an unconventional bucket instead of being guessed at.
package layout

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/iho/propledger/internal/domain"
)

// Location is the parsed position of one property.
type Location struct {
	Building     string `json:"building,omitempty"`
	Floor        string `json:"floor,omitempty"`
	Unit         string `json:"unit,omitempty"`
	Conventional bool   `json:"conventional"`
}

var (
	// B2-F3-U12, BLDG 2 - F 3 - U 12
	codedForm = regexp.MustCompile(`(?i)^b(?:ldg)?\s*([a-z0-9]+)\s*-\s*f\s*(\d+)\s*-\s*u\s*([a-z0-9]+)$`)

	// Building A Floor 2 Unit 5, Block C / 3rd Floor / Flat 7
	wordForm = regexp.MustCompile(`(?i)^(?:building|bldg|block|tower)\s+([a-z0-9]+)[\s,/-]+` +
		`(?:floor\s+(\d+)|(\d+)(?:st|nd|rd|th)?\s+floor)[\s,/-]+` +
		`(?:unit|flat|apt|apartment|room)\s+([a-z0-9]+)$`)

	// A-201: floor from the hundreds
	shortForm = regexp.MustCompile(`(?i)^([a-z])\s*-?\s*(\d{3,4})$`)
)

// Parse infers the location encoded in a property name.
func Parse(name string) Location {
	name = strings.TrimSpace(name)

	if m := codedForm.FindStringSubmatch(name); m != nil {
		return conventional(m[1], m[2], m[3])
	}

	if m := wordForm.FindStringSubmatch(name); m != nil {
		floor := m[2]
		if floor == "" {
			floor = m[3]
		}
		return conventional(m[1], floor, m[4])
	}

	if m := shortForm.FindStringSubmatch(name); m != nil {
		n, err := strconv.Atoi(m[2])
		if err == nil {
			return conventional(m[1], strconv.Itoa(n/100), m[2])
		}
	}

	return Location{}
}

func conventional(building, floor, unit string) Location {
	if n, err := strconv.Atoi(floor); err == nil {
		floor = strconv.Itoa(n)
	}
	return Location{
		Building:     strings.ToUpper(building),
		Floor:        floor,
		Unit:         strings.ToUpper(unit),
		Conventional: true,
	}
}

// Unit is one property placed in the layout.
type Unit struct {
	PropertyID string `json:"property_id"`
	Name       string `json:"name"`
	Unit       string `json:"unit,omitempty"`
}

// Floor groups the units on one floor.
type Floor struct {
	Floor string `json:"floor"`
	Units []Unit `json:"units"`
}

// Building groups the floors of one building.
type Building struct {
	Building string  `json:"building"`
	Floors   []Floor `json:"floors"`
}

// Layout is the grouped building map.
type Layout struct {
	Buildings      []Building `json:"buildings"`
	Unconventional []Unit     `json:"unconventional"`
}

// Group parses every property name and nests the results building -> floor -> unit, each level
// in natural order. Unparseable names keep their input order in Unconventional.
func Group(properties []domain.Property) Layout {
	buildings := make(map[string]map[string][]Unit)
	out := Layout{Buildings: []Building{}, Unconventional: []Unit{}}

	for _, p := range properties {
		loc := Parse(p.Name)
		if !loc.Conventional {
			out.Unconventional = append(out.Unconventional, Unit{PropertyID: p.ID, Name: p.Name})
			continue
		}

		floors, ok := buildings[loc.Building]
		if !ok {
			floors = make(map[string][]Unit)
			buildings[loc.Building] = floors
		}
		floors[loc.Floor] = append(floors[loc.Floor], Unit{PropertyID: p.ID, Name: p.Name, Unit: loc.Unit})
	}

	for _, b := range sortedKeys(buildings) {
		building := Building{Building: b, Floors: []Floor{}}
		for _, f := range sortedKeys(buildings[b]) {
			units := buildings[b][f]
			sort.SliceStable(units, func(i, j int) bool {
				return naturalLess(units[i].Unit, units[j].Unit)
			})
			building.Floors = append(building.Floors, Floor{Floor: f, Units: units})
		}
		out.Buildings = append(out.Buildings, building)
	}

	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return naturalLess(keys[i], keys[j]) })
	return keys
}

// naturalLess orders numbers numerically and puts them before non-numeric labels.
func naturalLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
