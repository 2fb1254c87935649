package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rebalance/renderer"
	"github.com/google/subcommands"
)

type targetCmd struct {
	tree bool
}

func (*targetCmd) Name() string     { return "target" }
func (*targetCmd) Synopsis() string { return "display the normalized target allocation" }
func (*targetCmd) Usage() string {
	return `rebal target [-tree=false]

  Displays the overall weight of every instrument of the target allocation, and the tree of
  its categories.
`
}

func (c *targetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.tree, "tree", true, "also display the category tree")
}

func (c *targetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadAllocation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading target: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.TargetsMarkdown(a))
	if c.tree {
		fmt.Println(renderer.TargetTree(a))
	}
	return subcommands.ExitSuccess
}
