package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tiendc/go-deepcopy"
)

// MaxBulletLevel is the deepest level a bullet may sit at. Level 0 is the
// top of a description, so a description holds at most four levels.
const MaxBulletLevel = 3

// NewBulletText is the text given to bullets created by InsertChild and
// InsertSibling.
const NewBulletText = "[Enter detail here]"

var (
	// ErrPathNotFound is returned when a path does not address a node.
	ErrPathNotFound = errors.New("bullet path not found")
	// ErrMaxDepth is returned when a mutation would nest below MaxBulletLevel.
	ErrMaxDepth = errors.New("bullet depth limit reached")
)

// BulletNode is one line of a service description together with its sub-points.
type BulletNode struct {
	Text     string       `json:"text" yaml:"text"`
	Children []BulletNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// Leaf returns a node without children.
func Leaf(text string) BulletNode {
	return BulletNode{Text: text}
}

// Node returns a node with the given children.
func Node(text string, children ...BulletNode) BulletNode {
	return BulletNode{Text: text, Children: children}
}

// IsLeaf reports whether the node has no children.
func (n BulletNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// UnmarshalJSON accepts both the object form and the legacy bare string form.
func (n *BulletNode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = BulletNode{Text: s}
		return nil
	}

	var obj struct {
		Text     string       `json:"text"`
		Children []BulletNode `json:"children"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("bullet node: %w", err)
	}
	*n = BulletNode{Text: obj.Text, Children: obj.Children}
	if len(n.Children) == 0 {
		n.Children = nil
	}
	return nil
}

// Path addresses a node by the zero-based child index at each level.
type Path []int

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return "[" + strings.Join(parts, " → ") + "]"
}

// PathError describes a failed tree mutation.
type PathError struct {
	Op   string
	Path Path
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// ParseBullets normalizes decoded description items into BulletNodes.
// Items may be strings, BulletNodes, or maps with "text" and "children" keys
// as produced by JSON or YAML decoders. Items of any other type are skipped.
// Depth is not limited here.
func ParseBullets(items []any) []BulletNode {
	out := make([]BulletNode, 0, len(items))
	for _, item := range items {
		node, ok := parseBullet(item)
		if ok {
			out = append(out, node)
		}
	}
	return out
}

func parseBullet(item any) (BulletNode, bool) {
	switch v := item.(type) {
	case string:
		return Leaf(v), true
	case BulletNode:
		return CloneBullet(v), true
	case map[string]any:
		return bulletFromFields(v["text"], v["children"])
	case map[any]any:
		return bulletFromFields(v["text"], v["children"])
	}
	return BulletNode{}, false
}

func bulletFromFields(text, children any) (BulletNode, bool) {
	s, ok := text.(string)
	if !ok {
		return BulletNode{}, false
	}
	node := Leaf(s)
	if list, ok := children.([]any); ok && len(list) > 0 {
		node.Children = ParseBullets(list)
		if len(node.Children) == 0 {
			node.Children = nil
		}
	}
	return node, true
}

// ParseBulletsJSON decodes a JSON array of description items.
func ParseBulletsJSON(data []byte) ([]BulletNode, error) {
	var nodes []BulletNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("parse bullets: %w", err)
	}
	return nodes, nil
}

// CloneBullet returns a deep copy of n.
func CloneBullet(n BulletNode) BulletNode {
	var out BulletNode
	if err := deepcopy.Copy(&out, n); err != nil {
		out = BulletNode{Text: n.Text}
		for _, c := range n.Children {
			out.Children = append(out.Children, CloneBullet(c))
		}
	}
	return out
}

// CloneTree returns a deep copy of tree.
func CloneTree(tree []BulletNode) []BulletNode {
	if tree == nil {
		return nil
	}
	out := make([]BulletNode, len(tree))
	for i := range tree {
		out[i] = CloneBullet(tree[i])
	}
	return out
}

// BulletAt returns the node addressed by path.
func BulletAt(tree []BulletNode, path Path) (BulletNode, error) {
	if len(path) == 0 {
		return BulletNode{}, &PathError{Op: "get", Path: path, Err: ErrPathNotFound}
	}
	level := tree
	for depth, idx := range path {
		if idx < 0 || idx >= len(level) {
			return BulletNode{}, &PathError{Op: "get", Path: path, Err: ErrPathNotFound}
		}
		if depth == len(path)-1 {
			return level[idx], nil
		}
		level = level[idx].Children
	}
	return BulletNode{}, &PathError{Op: "get", Path: path, Err: ErrPathNotFound}
}

// editSiblings copies the spine down to the slice that holds the node at
// path and hands that slice to fn. The input tree is never modified.
func editSiblings(tree []BulletNode, path Path, fn func(siblings []BulletNode, idx int) ([]BulletNode, error)) ([]BulletNode, error) {
	if len(path) == 0 {
		return nil, ErrPathNotFound
	}
	idx := path[0]
	if idx < 0 || idx >= len(tree) {
		return nil, ErrPathNotFound
	}

	out := make([]BulletNode, len(tree))
	copy(out, tree)

	if len(path) == 1 {
		return fn(out, idx)
	}

	children, err := editSiblings(tree[idx].Children, path[1:], fn)
	if err != nil {
		return nil, err
	}
	out[idx].Children = children
	if len(out[idx].Children) == 0 {
		out[idx].Children = nil
	}
	return out, nil
}

// InsertChild appends a new placeholder bullet as the last child of the node
// at path. It returns ErrMaxDepth when the new bullet would sit below
// MaxBulletLevel.
func InsertChild(tree []BulletNode, path Path) ([]BulletNode, error) {
	if len(path) > MaxBulletLevel {
		return nil, &PathError{Op: "insert child", Path: path, Err: ErrMaxDepth}
	}
	out, err := editSiblings(tree, path, func(siblings []BulletNode, idx int) ([]BulletNode, error) {
		children := make([]BulletNode, len(siblings[idx].Children), len(siblings[idx].Children)+1)
		copy(children, siblings[idx].Children)
		siblings[idx].Children = append(children, Leaf(NewBulletText))
		return siblings, nil
	})
	if err != nil {
		return nil, &PathError{Op: "insert child", Path: path, Err: err}
	}
	return out, nil
}

// InsertSibling inserts a new placeholder bullet directly after the node at path.
func InsertSibling(tree []BulletNode, path Path) ([]BulletNode, error) {
	out, err := editSiblings(tree, path, func(siblings []BulletNode, idx int) ([]BulletNode, error) {
		next := make([]BulletNode, 0, len(siblings)+1)
		next = append(next, siblings[:idx+1]...)
		next = append(next, Leaf(NewBulletText))
		next = append(next, siblings[idx+1:]...)
		return next, nil
	})
	if err != nil {
		return nil, &PathError{Op: "insert sibling", Path: path, Err: err}
	}
	return out, nil
}

// UpdateText replaces the text of the node at path.
func UpdateText(tree []BulletNode, path Path, text string) ([]BulletNode, error) {
	out, err := editSiblings(tree, path, func(siblings []BulletNode, idx int) ([]BulletNode, error) {
		siblings[idx].Text = text
		return siblings, nil
	})
	if err != nil {
		return nil, &PathError{Op: "update text", Path: path, Err: err}
	}
	return out, nil
}

// RemoveBullet deletes the node at path together with its subtree.
func RemoveBullet(tree []BulletNode, path Path) ([]BulletNode, error) {
	out, err := editSiblings(tree, path, func(siblings []BulletNode, idx int) ([]BulletNode, error) {
		next := make([]BulletNode, 0, len(siblings)-1)
		next = append(next, siblings[:idx]...)
		next = append(next, siblings[idx+1:]...)
		return next, nil
	})
	if err != nil {
		return nil, &PathError{Op: "remove", Path: path, Err: err}
	}
	return out, nil
}

// TreeDepth returns the level of the deepest node, or -1 for an empty tree.
func TreeDepth(tree []BulletNode) int {
	depth := -1
	for _, n := range tree {
		d := 0
		if len(n.Children) > 0 {
			d = TreeDepth(n.Children) + 1
		}
		if d > depth {
			depth = d
		}
	}
	return depth
}

// bulletGlyphs are the list markers used per level in plain-text output.
var bulletGlyphs = []string{"•", "○", "▪", "·"}

// FlattenBullets renders a tree as indented lines with level-specific markers.
func FlattenBullets(tree []BulletNode) []string {
	var lines []string
	var walk func(nodes []BulletNode, level int)
	walk = func(nodes []BulletNode, level int) {
		glyph := bulletGlyphs[min(level, len(bulletGlyphs)-1)]
		for _, n := range nodes {
			lines = append(lines, strings.Repeat("  ", level)+glyph+" "+n.Text)
			walk(n.Children, level+1)
		}
	}
	walk(tree, 0)
	return lines
}
