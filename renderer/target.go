package renderer

import (
	"bytes"
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/etnz/rebalance"
	md "github.com/nao1215/markdown"
)

// TargetsMarkdown renders the normalized target weights.
func TargetsMarkdown(a *rebalance.Allocation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Target Allocation")

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Product", "Tag", "Overall"},
	}
	for _, t := range a.Targets() {
		table.Rows = append(table.Rows, []string{t.Name(), t.ID, t.Weight.String()})
	}
	doc.Table(table)
	return doc.String()
}

// TargetTree renders the category hierarchy. Categories show their rounded overall weight,
// leaves their tag and exact weight.
func TargetTree(a *rebalance.Allocation) string {
	root := tree.Root("Target")
	for _, n := range a.Root().Children {
		root.Child(nodeTree(n))
	}
	for _, t := range a.Root().Targets {
		root.Child(leaf(t))
	}
	return root.String()
}

func nodeTree(n *rebalance.Node) *tree.Tree {
	t := tree.Root(fmt.Sprintf("%s (%.0f%%)", n.Label, math.Round(float64(n.Overall))))
	for _, c := range n.Children {
		t.Child(nodeTree(c))
	}
	for _, tg := range n.Targets {
		t.Child(leaf(tg))
	}
	return t
}

func leaf(t *rebalance.Target) string {
	if t.Product == "" {
		return fmt.Sprintf("%s %v", t.ID, t.Weight)
	}
	return fmt.Sprintf("%s: %s %v", t.Product, t.ID, t.Weight)
}
