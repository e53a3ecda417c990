// Package catalog holds the seed data every new user starts from.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"selfcc/care-app/internal/domain"
)

//go:embed seed.yaml
var seedYAML []byte

// Catalog is the parsed seed file.
type Catalog struct {
	Plan struct {
		Exercises []seedExercise `yaml:"exercises"`
	} `yaml:"plan"`
	Buddies []domain.Buddy `yaml:"buddies"`
}

type seedExercise struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Reps        int    `yaml:"reps"`
	Sets        int    `yaml:"sets"`
	Icon        string `yaml:"icon"`
	Description string `yaml:"description"`
}

// Default parses the embedded seed file.
func Default() (*Catalog, error) {
	return Parse(seedYAML)
}

// Parse decodes a seed document. A catalog without exercises is rejected since a
// plan with nothing in it can't start a session.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Plan.Exercises) == 0 {
		return nil, errors.New("catalog has no exercises")
	}
	for i, ex := range c.Plan.Exercises {
		if ex.ID == "" || ex.Name == "" {
			return nil, fmt.Errorf("catalog exercise %d: id and name are required", i)
		}
	}
	return &c, nil
}

// Exercises returns a fresh copy of the week-one exercises.
func (c *Catalog) Exercises() []domain.Exercise {
	out := make([]domain.Exercise, len(c.Plan.Exercises))
	for i, ex := range c.Plan.Exercises {
		out[i] = domain.Exercise{
			ID:          ex.ID,
			Name:        ex.Name,
			Reps:        ex.Reps,
			Sets:        ex.Sets,
			Icon:        ex.Icon,
			Description: ex.Description,
		}
	}
	return out
}

// BuddyList returns a copy of the seeded buddies.
func (c *Catalog) BuddyList() []domain.Buddy {
	out := make([]domain.Buddy, len(c.Buddies))
	copy(out, c.Buddies)
	return out
}
