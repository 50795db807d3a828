// Package catalog holds the immutable list of offerings the storefront sells.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/fjod/growthshop/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

type offeringYAML struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Platform     string `yaml:"platform"`
	Category     string `yaml:"category"`
	Price        string `yaml:"price"`
	UnitValue    int64  `yaml:"unit_value"`
	UnitLabel    string `yaml:"unit_label"`
	Description  string `yaml:"description"`
	ImageURL     string `yaml:"image_url"`
	DeliveryTime string `yaml:"delivery_time"`
}

type catalogYAML struct {
	Offerings []offeringYAML `yaml:"offerings"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	offerings []domain.Offering
	byID      map[string]int
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file; an empty path means the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var raw catalogYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		offerings: make([]domain.Offering, 0, len(raw.Offerings)),
		byID:      make(map[string]int, len(raw.Offerings)),
	}
	for i, o := range raw.Offerings {
		offering, err := o.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: offering #%d: %v", ErrInvalidCatalog, i, err)
		}
		if _, dup := c.byID[offering.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate offering id %q", ErrInvalidCatalog, offering.ID)
		}
		c.byID[offering.ID] = len(c.offerings)
		c.offerings = append(c.offerings, offering)
	}
	return c, nil
}

func (o offeringYAML) toDomain() (domain.Offering, error) {
	if o.ID == "" {
		return domain.Offering{}, errors.New("missing id")
	}
	platform := domain.Platform(o.Platform)
	if !platform.Valid() {
		return domain.Offering{}, fmt.Errorf("%s: unknown platform %q", o.ID, o.Platform)
	}
	category := domain.Category(o.Category)
	if !category.Valid() {
		return domain.Offering{}, fmt.Errorf("%s: unknown category %q", o.ID, o.Category)
	}
	price, err := decimal.NewFromString(o.Price)
	if err != nil {
		return domain.Offering{}, fmt.Errorf("%s: bad price %q: %v", o.ID, o.Price, err)
	}
	if price.IsNegative() {
		return domain.Offering{}, fmt.Errorf("%s: negative price", o.ID)
	}
	if o.UnitValue <= 0 {
		return domain.Offering{}, fmt.Errorf("%s: unit value must be positive", o.ID)
	}
	return domain.Offering{
		ID:           o.ID,
		Name:         o.Name,
		Platform:     platform,
		Category:     category,
		Price:        price,
		UnitValue:    o.UnitValue,
		UnitLabel:    o.UnitLabel,
		Description:  o.Description,
		ImageURL:     o.ImageURL,
		DeliveryTime: o.DeliveryTime,
	}, nil
}

func (c *Catalog) Lookup(id string) (domain.Offering, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Offering{}, false
	}
	return c.offerings[i], true
}

// All returns a copy in file order.
func (c *Catalog) All() []domain.Offering {
	out := make([]domain.Offering, len(c.offerings))
	copy(out, c.offerings)
	return out
}
