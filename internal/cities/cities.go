// Package cities provides the static city/coordinate table used to anchor
// freight searches to a lat/lng the upstream API accepts.
package cities

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed cities.yaml
var citiesYAML []byte

type City struct {
	Name string  `yaml:"name" json:"name"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lng  float64 `yaml:"lng" json:"lng"`
}

type Coordinates struct {
	Lat float64
	Lng float64
}

type DB struct {
	states map[string][]City
}

// Common prefix abbreviations seen in carrier postings.
var abbreviations = map[string]string{
	"jct":   "junction",
	"junct": "junction",
	"ft":    "fort",
	"st":    "saint",
	"mt":    "mount",
}

func Load() (*DB, error) {
	var doc struct {
		States map[string][]City `yaml:"states"`
	}
	if err := yaml.Unmarshal(citiesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parsing embedded city table: %w", err)
	}
	if len(doc.States) == 0 {
		return nil, fmt.Errorf("embedded city table is empty")
	}

	return &DB{states: doc.States}, nil
}

// States returns the known state codes in sorted order.
func (db *DB) States() []string {
	states := make([]string, 0, len(db.states))
	for state := range db.states {
		states = append(states, state)
	}
	sort.Strings(states)

	return states
}

// CitiesByState returns the cities known for a state code.
func (db *DB) CitiesByState(state string) []City {
	return db.states[strings.ToUpper(strings.TrimSpace(state))]
}

// CityCoordinates resolves a city/state pair to coordinates. Matching is
// case-insensitive and tolerates common abbreviations ("Ft Worth") and
// truncated names, since postings are free-form text.
func (db *DB) CityCoordinates(city, state string) (Coordinates, bool) {
	cities := db.CitiesByState(state)
	if len(cities) == 0 {
		return Coordinates{}, false
	}

	name := strings.ToLower(strings.TrimSpace(city))
	if name == "" {
		return Coordinates{}, false
	}

	for _, c := range cities {
		if strings.ToLower(c.Name) == name {
			return Coordinates{Lat: c.Lat, Lng: c.Lng}, true
		}
	}

	for abbrev, full := range abbreviations {
		if !strings.HasPrefix(name, abbrev+" ") && !strings.HasPrefix(name, abbrev+". ") {
			continue
		}
		expanded := full + " " + strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(name, abbrev+". "), abbrev+" "))
		for _, c := range cities {
			if strings.ToLower(c.Name) == expanded {
				return Coordinates{Lat: c.Lat, Lng: c.Lng}, true
			}
		}
	}

	for _, c := range cities {
		known := strings.ToLower(c.Name)
		if strings.HasPrefix(known, name) || strings.HasPrefix(name, known) {
			return Coordinates{Lat: c.Lat, Lng: c.Lng}, true
		}
	}

	return Coordinates{}, false
}
