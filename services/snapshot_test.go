package services

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func buildSnapshotAssembler(t *testing.T) *Assembler {
	t.Helper()
	a := newTestAssembler(t)
	a.SetClient(ClientInfo{CompanyName: "Bau GmbH", City: "Konstanz"})
	a.SetProject(ProjectInfo{ProjectName: "Seeblick", BuildingType: "EFH", OfferDate: testClock})
	a.AddService("exterior-ground")
	a.UpdateService("exterior-ground", ServiceUpdate{Quantity: intPtr(2)})
	a.AddService("terrace")
	_ = a.SetDescriptionText("terrace", "- Eigene Terrasse\n-- Südseite\n")
	a.SetDiscount(Discount{Kind: DiscountPercentage, Value: 5, Description: "Treuerabatt"})
	a.AddImage(ImageAttachment{Title: "Lage", FileName: "lage.png", FileSize: 10, Data: "data:image/png;base64,AAAA"})
	a.SetTerm("payment", "14 Tage netto")
	return a
}

func TestSnapshot_RoundTrip(t *testing.T) {
	a := buildSnapshotAssembler(t)

	data, err := a.Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	b := newTestAssembler(t)
	if err := b.Restore(data); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	got, want := b.Proposal(), a.Proposal()
	if got.Client != want.Client {
		t.Errorf("Client = %+v, want %+v", got.Client, want.Client)
	}
	if got.Project.ProjectName != want.Project.ProjectName || !got.Project.OfferDate.Equal(want.Project.OfferDate) {
		t.Errorf("Project = %+v, want %+v", got.Project, want.Project)
	}
	if len(got.Services) != len(want.Services) {
		t.Fatalf("len(Services) = %d, want %d", len(got.Services), len(want.Services))
	}
	for i := range want.Services {
		g, w := got.Services[i], want.Services[i]
		if g.ID != w.ID || g.Quantity != w.Quantity || g.TotalPrice != w.TotalPrice || g.Detached != w.Detached {
			t.Errorf("service %d = %+v, want %+v", i, g, w)
		}
		if !bulletsEqual(g.Description, w.Description) {
			t.Errorf("service %d description = %+v, want %+v", i, g.Description, w.Description)
		}
	}
	if got.Discount != want.Discount {
		t.Errorf("Discount = %+v, want %+v", got.Discount, want.Discount)
	}
	if got.Images[0].Data != "data:image/png;base64,AAAA" {
		t.Error("image data lost in full snapshot")
	}
	if got.Terms["payment"] != "14 Tage netto" {
		t.Errorf("Terms = %v", got.Terms)
	}
	if b.Totals() != a.Totals() || b.Delivery() != a.Delivery() {
		t.Error("derived values differ after restore")
	}
}

func TestSnapshot_DetachedSurvivesRestore(t *testing.T) {
	data, err := buildSnapshotAssembler(t).Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	b := newTestAssembler(t)
	if err := b.Restore(data); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	b.UpdateService("terrace", ServiceUpdate{Quantity: intPtr(3)})
	svc, _ := b.Proposal().ServiceByID("terrace")
	if svc.Description[0].Text != "Eigene Terrasse" {
		t.Errorf("restored edit was overwritten: %q", svc.Description[0].Text)
	}
}

func TestSnapshot_Compact(t *testing.T) {
	data, err := buildSnapshotAssembler(t).SerializeCompact()
	if err != nil {
		t.Fatalf("SerializeCompact() error = %v", err)
	}
	if strings.Contains(string(data), "base64") {
		t.Error("compact snapshot still holds image data")
	}

	p, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	if len(p.Images) != 1 || p.Images[0].FileName != "lage.png" || p.Images[0].Data != "" {
		t.Errorf("Images = %+v", p.Images)
	}
}

func TestSnapshot_Version(t *testing.T) {
	data, err := newTestAssembler(t).Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["version"] != float64(SnapshotVersion) {
		t.Errorf("version = %v, want %d", raw["version"], SnapshotVersion)
	}
}

func TestDeserialize_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{not json"},
		{"empty object", "{}"},
		{"wrong services type", `{"version":1,"clientInfo":{},"projectInfo":{},"services":"x"}`},
		{"service without id", `{"version":1,"clientInfo":{},"projectInfo":{},"services":[{"quantity":1}]}`},
		{"negative quantity", `{"version":1,"clientInfo":{},"projectInfo":{},"services":[{"id":"interior","quantity":-1}]}`},
		{"bad discount kind", `{"version":1,"clientInfo":{},"projectInfo":{},"services":[],"discount":{"type":"gift"}}`},
		{"future version", `{"version":99,"clientInfo":{},"projectInfo":{},"services":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize([]byte(tt.data))
			if !errors.Is(err, ErrCorruptSnapshot) {
				t.Errorf("Deserialize() error = %v, want ErrCorruptSnapshot", err)
			}
		})
	}
}

func TestDeserialize_LegacyStringBullets(t *testing.T) {
	data := `{"version":1,"clientInfo":{},"projectInfo":{},"services":[` +
		`{"id":"interior","quantity":2,"description":["eins",{"text":"zwei","children":["a"]}]}]}`

	p, err := Deserialize([]byte(data))
	if err != nil {
		t.Fatalf("Deserialize() error = %v", err)
	}
	want := []BulletNode{Leaf("eins"), Node("zwei", Leaf("a"))}
	if !bulletsEqual(p.Services[0].Description, want) {
		t.Errorf("Description = %+v, want %+v", p.Services[0].Description, want)
	}
}

func TestRestore_KeepsStateOnError(t *testing.T) {
	a := buildSnapshotAssembler(t)
	before := a.Totals()

	if err := a.Restore([]byte("garbage")); err == nil {
		t.Fatal("Restore() should fail")
	}
	if a.Totals() != before {
		t.Error("failed Restore() changed the assembler")
	}
}
