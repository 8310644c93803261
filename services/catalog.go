package services

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// ErrUnknownService is returned for a service id that is not in the catalog.
var ErrUnknownService = errors.New("unknown catalog service")

// PricingTier is one row of the price scale printed below a service.
type PricingTier struct {
	Quantity int    `json:"quantity"`
	Price    Money  `json:"price"`
	Label    string `json:"label"`
}

// CatalogEntry is the static default data of one service kind.
type CatalogEntry struct {
	ID           string
	Name         string
	SubName      string
	Link         string
	DefaultPrice Money
	Description  []BulletNode
	PricingTiers []PricingTier
}

type catalogFileEntry struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	SubName      string  `yaml:"sub_name"`
	Link         string  `yaml:"link"`
	DefaultPrice float64 `yaml:"default_price"`
	Description  []any   `yaml:"description"`
	PricingTiers []struct {
		Quantity int     `yaml:"quantity"`
		Price    float64 `yaml:"price"`
		Label    string  `yaml:"label"`
	} `yaml:"pricing_tiers"`
}

// Catalog is the read-only set of service kinds a proposal can offer.
type Catalog struct {
	entries map[string]CatalogEntry
	order   []string
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw []catalogFileEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{entries: make(map[string]CatalogEntry, len(raw))}
	for i, r := range raw {
		if r.ID == "" {
			return nil, fmt.Errorf("parse catalog: entry %d has no id", i)
		}
		if _, dup := c.entries[r.ID]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate id %q", r.ID)
		}

		entry := CatalogEntry{
			ID:           r.ID,
			Name:         r.Name,
			SubName:      r.SubName,
			Link:         r.Link,
			DefaultPrice: MoneyFromFloat(r.DefaultPrice),
			Description:  ParseBullets(r.Description),
		}
		for _, t := range r.PricingTiers {
			entry.PricingTiers = append(entry.PricingTiers, PricingTier{
				Quantity: t.Quantity,
				Price:    MoneyFromFloat(t.Price),
				Label:    t.Label,
			})
		}

		c.entries[r.ID] = entry
		c.order = append(c.order, r.ID)
	}
	return c, nil
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(embeddedCatalog)
}

// LoadCatalog reads a catalog from path, or the built-in one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// Lookup returns a copy of the entry for id.
func (c *Catalog) Lookup(id string) (CatalogEntry, bool) {
	e, ok := c.entries[id]
	if !ok {
		return CatalogEntry{}, false
	}
	e.Description = CloneTree(e.Description)
	e.PricingTiers = append([]PricingTier(nil), e.PricingTiers...)
	return e, true
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.order)
}

// IDs returns the entry ids in file order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// SortedEntries returns all entries ordered by display name using German collation.
func (c *Catalog) SortedEntries() []CatalogEntry {
	names := make([]string, 0, len(c.order))
	byName := make(map[string][]string, len(c.order))
	for _, id := range c.order {
		name := c.entries[id].Name
		if _, seen := byName[name]; !seen {
			names = append(names, name)
		}
		byName[name] = append(byName[name], id)
	}

	collate.New(language.German).SortStrings(names)

	out := make([]CatalogEntry, 0, len(c.order))
	for _, name := range names {
		for _, id := range byName[name] {
			e, _ := c.Lookup(id)
			out = append(out, e)
		}
	}
	return out
}
