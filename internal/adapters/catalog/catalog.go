// Package catalog loads the spreads and tariffs a reading can be built from.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plootony/MISTY/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type file struct {
	Spreads []domain.Spread `yaml:"spreads"`
	Tariffs []domain.Tariff `yaml:"tariffs"`
}

// Catalog is an immutable, validated set of spreads and tariffs.
type Catalog struct {
	spreads []domain.Spread
	byID    map[string]domain.Spread
	tariffs map[string]domain.Tariff
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML catalog.
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		spreads: f.Spreads,
		byID:    make(map[string]domain.Spread, len(f.Spreads)),
		tariffs: make(map[string]domain.Tariff, len(f.Tariffs)),
	}
	for _, s := range f.Spreads {
		if s.ID == "" {
			return nil, fmt.Errorf("spread %q: missing id", s.Name)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("spread %q: duplicate id", s.ID)
		}
		if s.CardsCount < 1 {
			return nil, fmt.Errorf("spread %q: cards_count must be positive", s.ID)
		}
		if len(s.Positions) != s.CardsCount {
			return nil, fmt.Errorf("spread %q: %d positions for %d cards", s.ID, len(s.Positions), s.CardsCount)
		}
		c.byID[s.ID] = s
	}
	for _, t := range f.Tariffs {
		for _, id := range t.Spreads {
			if _, ok := c.byID[id]; !ok {
				return nil, fmt.Errorf("tariff %q: unknown spread %q", t.ID, id)
			}
		}
		c.tariffs[t.ID] = t
	}
	if _, ok := c.tariffs[domain.DefaultTariff]; !ok {
		return nil, fmt.Errorf("catalog has no %q tariff", domain.DefaultTariff)
	}
	return c, nil
}

// Spreads returns spreads in catalog order.
func (c *Catalog) Spreads() []domain.Spread {
	out := make([]domain.Spread, len(c.spreads))
	copy(out, c.spreads)
	return out
}

func (c *Catalog) Spread(id string) (domain.Spread, error) {
	s, ok := c.byID[id]
	if !ok {
		return domain.Spread{}, fmt.Errorf("%w: %s", domain.ErrSpreadNotFound, id)
	}
	return s, nil
}

func (c *Catalog) Tariff(id string) (domain.Tariff, error) {
	t, ok := c.tariffs[id]
	if !ok {
		return domain.Tariff{}, fmt.Errorf("%w: %s", domain.ErrTariffNotFound, id)
	}
	return t, nil
}
