package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/apcaledger/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	stdout, stderr io.Writer
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "shows documentation" }
func (*topicCmd) Usage() string {
	return `apca-ledger topic [<topic>...]

  Shows the documentation of the topics, or the list of topics.
  "*" shows them all.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	if c.stderr == nil {
		c.stderr = os.Stderr
	}
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{docs.Index}
	}

	var b strings.Builder
	for _, topic := range topics {
		content, err := docs.Topic(topic)
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	printMarkdown(c.stdout, b.String())
	return subcommands.ExitSuccess
}
