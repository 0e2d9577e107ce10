package seed

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixtures is a hand-written data set, usually kept in a YAML file:
//
//	users:
//	  - username: giulia
//	    email: giulia@example.com
//	    password: viaggio123
//	    posts:
//	      - title: Lisbona
//	        description: Tram 28
//	        physical_effort: 2
//	        tags: [mare, città]
type Fixtures struct {
	Users []FixtureUser `yaml:"users"`
}

type FixtureUser struct {
	Username string        `yaml:"username"`
	Email    string        `yaml:"email"`
	Password string        `yaml:"password"`
	Posts    []FixturePost `yaml:"posts"`
}

// FixturePost mirrors the fields accepted by the posts API. Values are kept
// as written so they go through the same coercion as request input.
type FixturePost struct {
	Title          string   `yaml:"title"`
	Description    string   `yaml:"description"`
	Location       string   `yaml:"location"`
	Latitude       string   `yaml:"latitude"`
	Longitude      string   `yaml:"longitude"`
	Mood           string   `yaml:"mood"`
	PositiveNote   string   `yaml:"positive_note"`
	NegativeNote   string   `yaml:"negative_note"`
	PhysicalEffort string   `yaml:"physical_effort"`
	EconomicEffort string   `yaml:"economic_effort"`
	ActualCost     string   `yaml:"actual_cost"`
	MediaURL       string   `yaml:"media_url"`
	Tags           []string `yaml:"tags"`
}

// LoadFixtures decodes fixtures, rejecting unknown keys.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &fx, nil
}

// LoadFixturesFile reads fixtures from path.
func LoadFixturesFile(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return LoadFixtures(bytes.NewReader(raw))
}
