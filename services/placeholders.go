package services

import (
	"strconv"
	"strings"
)

// Tokens recognised in catalog description text.
const (
	QuantityToken    = "{{QUANTITY}}"
	ProjectNameToken = "{{PROJECT_NAME}}"
)

// DefaultProjectName is substituted when no project name is known yet.
const DefaultProjectName = "Das Projekt"

// PlaceholderContext holds the values substituted into description tokens.
type PlaceholderContext struct {
	Quantity    int
	ProjectName string
}

func (c PlaceholderContext) projectName() string {
	if strings.TrimSpace(c.ProjectName) == "" {
		return DefaultProjectName
	}
	return c.ProjectName
}

// Substitute returns a copy of tree with every quantity and project name
// token replaced. The input tree is left untouched.
func Substitute(tree []BulletNode, ctx PlaceholderContext) []BulletNode {
	out := CloneTree(tree)
	substituteInPlace(out, ctx)
	return out
}

func substituteInPlace(nodes []BulletNode, ctx PlaceholderContext) {
	for i := range nodes {
		nodes[i].Text = SubstituteText(nodes[i].Text, ctx)
		substituteInPlace(nodes[i].Children, ctx)
	}
}

// SubstituteText replaces the tokens in a single line of text.
func SubstituteText(text string, ctx PlaceholderContext) string {
	text = strings.ReplaceAll(text, QuantityToken, strconv.Itoa(ctx.Quantity))
	return strings.ReplaceAll(text, ProjectNameToken, ctx.projectName())
}

// IsPlaceholderLeaf reports whether text is a bare marker that the user
// still has to fill in: "xxx", "xx" or "…" in any case.
func IsPlaceholderLeaf(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "xxx", "xx", "…":
		return true
	}
	return false
}

// ContainsUnresolvedToken reports whether text still carries an upper-case
// XX/XXX marker, quoted or not.
func ContainsUnresolvedToken(text string) bool {
	return strings.Contains(text, "XXX") ||
		strings.Contains(text, "XX") ||
		strings.Contains(text, "„XXX\"")
}

// containsTemplateToken reports whether text still holds a substitution token.
func containsTemplateToken(text string) bool {
	return strings.Contains(text, QuantityToken) || strings.Contains(text, ProjectNameToken)
}

// TreeHasTemplateTokens reports whether any node text still holds a
// substitution token.
func TreeHasTemplateTokens(tree []BulletNode) bool {
	for _, n := range tree {
		if containsTemplateToken(n.Text) || TreeHasTemplateTokens(n.Children) {
			return true
		}
	}
	return false
}

// PendingInput is a bullet that still needs manual input.
type PendingInput struct {
	Path Path   `json:"path"`
	Text string `json:"text"`
}

// FindPendingInputs lists every placeholder leaf in tree in pre-order.
func FindPendingInputs(tree []BulletNode) []PendingInput {
	var found []PendingInput
	var walk func(nodes []BulletNode, prefix Path)
	walk = func(nodes []BulletNode, prefix Path) {
		for i, n := range nodes {
			p := append(append(Path{}, prefix...), i)
			if IsPlaceholderLeaf(n.Text) {
				found = append(found, PendingInput{Path: p, Text: n.Text})
			}
			walk(n.Children, p)
		}
	}
	walk(tree, nil)
	return found
}
