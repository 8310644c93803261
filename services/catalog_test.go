package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}
	if c.Len() != 29 {
		t.Errorf("Len() = %d, want 29", c.Len())
	}

	// Every priced kind and every delivery entry must exist in the catalog.
	for id := range pricingRules {
		if _, ok := c.Lookup(id); !ok {
			t.Errorf("pricing rule %q has no catalog entry", id)
		}
	}
	for id := range deliveryTable {
		if _, ok := c.Lookup(id); !ok {
			t.Errorf("delivery entry %q has no catalog entry", id)
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}

	bird, ok := c.Lookup("exterior-bird")
	if !ok {
		t.Fatal("exterior-bird not found")
	}
	if len(bird.PricingTiers) != 3 || bird.PricingTiers[1].Price != Euros(149) {
		t.Errorf("bird tiers = %+v", bird.PricingTiers)
	}
	if !strings.Contains(bird.Description[0].Text, QuantityToken) {
		t.Errorf("description should keep the quantity token, got %q", bird.Description[0].Text)
	}

	terrace, _ := c.Lookup("terrace")
	if len(terrace.Description) == 0 || len(terrace.Description[0].Children) == 0 {
		t.Errorf("terrace description should be nested, got %+v", terrace.Description)
	}

	// Lookup hands out copies.
	bird.Description[0].Text = "changed"
	again, _ := c.Lookup("exterior-bird")
	if again.Description[0].Text == "changed" {
		t.Error("Lookup() returned shared description memory")
	}

	if _, ok := c.Lookup("nope"); ok {
		t.Error("Lookup(nope) should fail")
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing id", "- name: x\n"},
		{"duplicate id", "- id: a\n  name: A\n- id: a\n  name: B\n"},
		{"not yaml list", "id: a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "- id: custom-kind\n  name: Sonderleistung\n  default_price: 49.5\n  description:\n    - 'Zeile {{QUANTITY}}'\n    - text: Gruppe\n      children: [a, b]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	e, ok := c.Lookup("custom-kind")
	if !ok {
		t.Fatal("entry not found")
	}
	if e.DefaultPrice != MoneyFromFloat(49.5) {
		t.Errorf("DefaultPrice = %d", e.DefaultPrice)
	}
	want := []BulletNode{Leaf("Zeile {{QUANTITY}}"), Node("Gruppe", Leaf("a"), Leaf("b"))}
	if !bulletsEqual(e.Description, want) {
		t.Errorf("Description = %+v, want %+v", e.Description, want)
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if c, err := LoadCatalog(""); err != nil || c.Len() != 29 {
		t.Errorf("LoadCatalog(\"\") = %v, %v; want built-in catalog", c, err)
	}
}

func TestSortedEntries(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}

	sorted := c.SortedEntries()
	if len(sorted) != c.Len() {
		t.Fatalf("SortedEntries() returned %d entries, want %d", len(sorted), c.Len())
	}
	if sorted[0].ID != "2d-floor-view" {
		t.Errorf("first entry = %q, want 2d-floor-view", sorted[0].ID)
	}
	if sorted[len(sorted)-1].ID != "timelapse-exterior" {
		t.Errorf("last entry = %q, want timelapse-exterior", sorted[len(sorted)-1].ID)
	}
}
