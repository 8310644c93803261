package services

import (
	"errors"
	"testing"
)

// sampleTree is a three-level description used across the tree tests.
func sampleTree() []BulletNode {
	return []BulletNode{
		Node("Außenansichten",
			Leaf("Perspektive Nord"),
			Node("Perspektive Süd",
				Leaf("mit Garten"),
			),
		),
		Leaf("Format: 2.500 x 1.500 px"),
	}
}

// bulletsEqual compares trees structurally, treating nil and empty children alike.
func bulletsEqual(a, b []BulletNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Text != b[i].Text || !bulletsEqual(a[i].Children, b[i].Children) {
			return false
		}
	}
	return true
}

func TestParseBullets(t *testing.T) {
	items := []any{
		"plain",
		map[string]any{"text": "object", "children": []any{"child", map[string]any{"text": "nested"}}},
		map[any]any{"text": "yaml map"},
		map[string]any{"children": []any{"no text"}},
		42,
	}

	got := ParseBullets(items)
	want := []BulletNode{
		Leaf("plain"),
		Node("object", Leaf("child"), Leaf("nested")),
		Leaf("yaml map"),
	}
	if !bulletsEqual(got, want) {
		t.Errorf("ParseBullets() = %+v, want %+v", got, want)
	}
}

func TestParseBulletsJSON(t *testing.T) {
	data := []byte(`["eins", {"text": "zwei", "children": ["a", "b"]}]`)

	got, err := ParseBulletsJSON(data)
	if err != nil {
		t.Fatalf("ParseBulletsJSON() error = %v", err)
	}
	want := []BulletNode{Leaf("eins"), Node("zwei", Leaf("a"), Leaf("b"))}
	if !bulletsEqual(got, want) {
		t.Errorf("ParseBulletsJSON() = %+v, want %+v", got, want)
	}

	if _, err := ParseBulletsJSON([]byte(`{"text": 1}`)); err == nil {
		t.Error("expected error for non-array input")
	}
}

func TestCloneTree_Independent(t *testing.T) {
	orig := sampleTree()
	clone := CloneTree(orig)

	clone[0].Children[1].Children[0].Text = "changed"
	if orig[0].Children[1].Children[0].Text != "mit Garten" {
		t.Error("mutating the clone changed the original")
	}
	if CloneTree(nil) != nil {
		t.Error("CloneTree(nil) should be nil")
	}
}

func TestBulletAt(t *testing.T) {
	tree := sampleTree()

	tests := []struct {
		name    string
		path    Path
		want    string
		wantErr bool
	}{
		{"root", Path{1}, "Format: 2.500 x 1.500 px", false},
		{"nested", Path{0, 1, 0}, "mit Garten", false},
		{"out of range", Path{5}, "", true},
		{"too deep", Path{1, 0}, "", true},
		{"negative", Path{-1}, "", true},
		{"empty", Path{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BulletAt(tree, tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrPathNotFound) {
					t.Errorf("BulletAt(%v) error = %v, want ErrPathNotFound", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BulletAt(%v) error = %v", tt.path, err)
			}
			if got.Text != tt.want {
				t.Errorf("BulletAt(%v) = %q, want %q", tt.path, got.Text, tt.want)
			}
		})
	}
}

func TestInsertChild(t *testing.T) {
	tree := sampleTree()

	out, err := InsertChild(tree, Path{1})
	if err != nil {
		t.Fatalf("InsertChild() error = %v", err)
	}
	if len(out[1].Children) != 1 || out[1].Children[0].Text != NewBulletText {
		t.Errorf("new child = %+v, want one placeholder child", out[1].Children)
	}
	if len(tree[1].Children) != 0 {
		t.Error("InsertChild modified the input tree")
	}
}

func TestInsertChild_DepthLimit(t *testing.T) {
	tree := []BulletNode{Node("a", Node("b", Node("c", Leaf("d"))))}

	if _, err := InsertChild(tree, Path{0, 0, 0}); err != nil {
		t.Errorf("child at level 3 should be allowed, got %v", err)
	}
	_, err := InsertChild(tree, Path{0, 0, 0, 0})
	if !errors.Is(err, ErrMaxDepth) {
		t.Errorf("child at level 4: error = %v, want ErrMaxDepth", err)
	}
}

func TestInsertSibling(t *testing.T) {
	tree := sampleTree()

	out, err := InsertSibling(tree, Path{0, 0})
	if err != nil {
		t.Fatalf("InsertSibling() error = %v", err)
	}
	kids := out[0].Children
	if len(kids) != 3 {
		t.Fatalf("expected 3 children, got %d", len(kids))
	}
	if kids[1].Text != NewBulletText || kids[2].Text != "Perspektive Süd" {
		t.Errorf("sibling not inserted after index 0: %+v", kids)
	}
	if len(tree[0].Children) != 2 {
		t.Error("InsertSibling modified the input tree")
	}
}

func TestUpdateText(t *testing.T) {
	tree := sampleTree()

	out, err := UpdateText(tree, Path{0, 1, 0}, "mit Pool")
	if err != nil {
		t.Fatalf("UpdateText() error = %v", err)
	}
	if out[0].Children[1].Children[0].Text != "mit Pool" {
		t.Errorf("text not updated: %+v", out)
	}
	if tree[0].Children[1].Children[0].Text != "mit Garten" {
		t.Error("UpdateText modified the input tree")
	}

	_, err = UpdateText(tree, Path{0, 9}, "x")
	var pe *PathError
	if !errors.As(err, &pe) || !errors.Is(err, ErrPathNotFound) {
		t.Errorf("missing path: error = %v, want *PathError wrapping ErrPathNotFound", err)
	}
}

func TestRemoveBullet(t *testing.T) {
	tree := sampleTree()

	out, err := RemoveBullet(tree, Path{0, 1, 0})
	if err != nil {
		t.Fatalf("RemoveBullet() error = %v", err)
	}
	if out[0].Children[1].Children != nil {
		t.Errorf("emptied children should be nil, got %+v", out[0].Children[1].Children)
	}

	out, err = RemoveBullet(tree, Path{0})
	if err != nil {
		t.Fatalf("RemoveBullet() error = %v", err)
	}
	if len(out) != 1 || out[0].Text != "Format: 2.500 x 1.500 px" {
		t.Errorf("subtree not removed: %+v", out)
	}
	if len(tree) != 2 {
		t.Error("RemoveBullet modified the input tree")
	}
}

func TestTreeDepth(t *testing.T) {
	tests := []struct {
		name string
		tree []BulletNode
		want int
	}{
		{"empty", nil, -1},
		{"flat", []BulletNode{Leaf("a"), Leaf("b")}, 0},
		{"sample", sampleTree(), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TreeDepth(tt.tree); got != tt.want {
				t.Errorf("TreeDepth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFlattenBullets(t *testing.T) {
	got := FlattenBullets(sampleTree())
	want := []string{
		"• Außenansichten",
		"  ○ Perspektive Nord",
		"  ○ Perspektive Süd",
		"    ▪ mit Garten",
		"• Format: 2.500 x 1.500 px",
	}
	if len(got) != len(want) {
		t.Fatalf("FlattenBullets() returned %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPathString(t *testing.T) {
	if got := (Path{0, 2, 1}).String(); got != "[0 → 2 → 1]" {
		t.Errorf("Path.String() = %q, want %q", got, "[0 → 2 → 1]")
	}
}
