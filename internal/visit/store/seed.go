package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"visitflow/internal/visit/models"
)

// Seed is the reference data file loaded at startup: pavilions, visitors and routes.
type Seed struct {
	Pavilions []models.Pavilion `yaml:"pavilions"`
	Visitors  []models.Visitor  `yaml:"visitors"`
	Routes    []models.Route    `yaml:"routes"`
}

type seedWriter interface {
	SavePavilion(ctx context.Context, pavilion *models.Pavilion) error
	SaveVisitor(ctx context.Context, visitor *models.Visitor) error
	SaveRoute(ctx context.Context, route *models.Route) error
}

// DecodeSeed parses a YAML seed document.
func DecodeSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		if err == io.EOF {
			return &seed, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &seed, nil
}

// LoadSeedFile reads the seed at path and writes it to the store.
func LoadSeedFile(ctx context.Context, path string, w seedWriter, now time.Time) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	seed, err := DecodeSeed(f)
	if err != nil {
		return nil, err
	}
	if err := seed.Apply(ctx, w, now); err != nil {
		return nil, err
	}
	return seed, nil
}

// Apply validates every entry through the model constructors and saves it. Pavilions go
// first so routes can reference them.
func (s *Seed) Apply(ctx context.Context, w seedWriter, now time.Time) error {
	for _, p := range s.Pavilions {
		if p.ID.IsNil() {
			return fmt.Errorf("seed pavilion %q: id is required", p.Name)
		}
		pavilion, err := models.NewPavilion(p.ID, p.Name, p.Latitude, p.Longitude, now)
		if err != nil {
			return fmt.Errorf("seed pavilion %q: %w", p.Name, err)
		}
		if err := w.SavePavilion(ctx, pavilion); err != nil {
			return fmt.Errorf("seed pavilion %q: %w", p.Name, err)
		}
	}
	for _, v := range s.Visitors {
		if v.ID.IsNil() {
			return fmt.Errorf("seed visitor %q: id is required", v.Name)
		}
		visitor, err := models.NewVisitor(v.ID, v.Name, v.Document, now)
		if err != nil {
			return fmt.Errorf("seed visitor %q: %w", v.Name, err)
		}
		if err := w.SaveVisitor(ctx, visitor); err != nil {
			return fmt.Errorf("seed visitor %q: %w", v.Name, err)
		}
	}
	for _, r := range s.Routes {
		if r.ID.IsNil() {
			return fmt.Errorf("seed route %q: id is required", r.Name)
		}
		route, err := models.NewRoute(r.ID, r.Name, r.Checkpoints, now)
		if err != nil {
			return fmt.Errorf("seed route %q: %w", r.Name, err)
		}
		if err := w.SaveRoute(ctx, route); err != nil {
			return fmt.Errorf("seed route %q: %w", r.Name, err)
		}
	}
	return nil
}
