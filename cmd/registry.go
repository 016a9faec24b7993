package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/etnz/apcaledger"
	"github.com/google/subcommands"
)

type registryCmd struct {
	stdout, stderr io.Writer
}

func (*registryCmd) Name() string     { return "registry" }
func (*registryCmd) Synopsis() string { return "checks a registry file and lists its symbols" }
func (*registryCmd) Usage() string {
	return `apca-ledger registry <registry.json>

  Reads the registry file and prints its symbols with their name, in
  alphabetical order.
`
}

func (c *registryCmd) SetFlags(f *flag.FlagSet) {}

func (c *registryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	if c.stderr == nil {
		c.stderr = os.Stderr
	}
	if f.NArg() != 1 {
		fmt.Fprintln(c.stderr, "Error: expected the registry file as only argument")
		return subcommands.ExitUsageError
	}
	registry, err := apcaledger.LoadRegistry(f.Arg(0))
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	for _, symbol := range registry.Symbols() {
		name, _ := registry.Lookup(symbol)
		fmt.Fprintf(tw, "%s\t%s\n", symbol, name)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
