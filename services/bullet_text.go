package services

import (
	"regexp"
	"strings"
)

// dashLinePattern matches one indent-text line: a run of dashes then the
// text, which may be empty.
var dashLinePattern = regexp.MustCompile(`^(-+)\s*(.*)$`)

// ToIndentText serializes a tree into dash-indented lines, one node per
// line in pre-order. A node at level L is written with L+1 dashes.
func ToIndentText(tree []BulletNode) string {
	var b strings.Builder
	var walk func(nodes []BulletNode, level int)
	walk = func(nodes []BulletNode, level int) {
		for _, n := range nodes {
			b.WriteString(strings.Repeat("-", level+1))
			b.WriteString(" ")
			b.WriteString(n.Text)
			b.WriteString("\n")
			walk(n.Children, level+1)
		}
	}
	walk(tree, 0)
	return b.String()
}

// FromIndentText parses dash-indented text back into a tree.
//
// A line without leading dashes becomes a top-level leaf holding the whole
// trimmed line. Lines deeper than MaxBulletLevel are dropped; the lines
// after them attach to whatever is left on the level stack.
func FromIndentText(text string) []BulletNode {
	type draft struct {
		text     string
		children []*draft
	}
	root := &draft{}
	type frame struct {
		level int
		node  *draft
	}
	stack := []frame{{level: -1, node: root}}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		m := dashLinePattern.FindStringSubmatch(line)
		if m == nil {
			root.children = append(root.children, &draft{text: line})
			continue
		}

		level := len(m[1]) - 1
		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		if level > MaxBulletLevel {
			continue
		}

		node := &draft{text: strings.TrimSpace(m[2])}
		parent := stack[len(stack)-1].node
		parent.children = append(parent.children, node)
		stack = append(stack, frame{level: level, node: node})
	}

	var build func(ds []*draft) []BulletNode
	build = func(ds []*draft) []BulletNode {
		if len(ds) == 0 {
			return nil
		}
		out := make([]BulletNode, len(ds))
		for i, d := range ds {
			out[i] = BulletNode{Text: d.text, Children: build(d.children)}
		}
		return out
	}

	nodes := build(root.children)
	if nodes == nil {
		return []BulletNode{}
	}
	return nodes
}
