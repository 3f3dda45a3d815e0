package mock

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the initial content of the fake API
type Seed struct {
	Departments []Department `yaml:"departments"`
	Users       []User       `yaml:"users"`
	Templates   []Template   `yaml:"templates"`
}

// DefaultSeed returns the built-in departments, users and templates
func DefaultSeed() (*Seed, error) {
	return ParseSeed(defaultSeed)
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (*Seed, error) {
	seed := &Seed{}
	if err := yaml.Unmarshal(data, seed); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	return seed, nil
}

func (s *Seed) validate() error {
	departments := make(map[int64]bool)
	for _, d := range s.Departments {
		departments[d.ID] = true
	}
	users := make(map[string]bool)
	for _, u := range s.Users {
		if u.ID <= 0 || u.Username == "" {
			return fmt.Errorf("seed user needs an id and a username")
		}
		if _, ok := roleNumbers[u.Role]; !ok {
			return fmt.Errorf("seed user %s: unknown role %q", u.Username, u.Role)
		}
		if !departments[u.DepartmentID] {
			return fmt.Errorf("seed user %s: unknown department %d", u.Username, u.DepartmentID)
		}
		if users[u.Username] {
			return fmt.Errorf("seed user %s is listed twice", u.Username)
		}
		users[u.Username] = true
	}
	for i := range s.Templates {
		t := &s.Templates[i]
		if t.ID <= 0 || t.Name == "" {
			return fmt.Errorf("seed template needs an id and a name")
		}
		for di := range t.Days {
			for ai := range t.Days[di].Activities {
				if t.Days[di].Activities[ai].State == "" {
					t.Days[di].Activities[ai].State = "Active"
				}
			}
		}
	}
	return nil
}
