// Command apca-ledger prints the activities of an Alpaca brokerage account
// as a Ledger journal.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/etnz/apcaledger/cmd"
	"github.com/google/subcommands"
)

func main() {
	cmd.Completion().Complete("apca-ledger")

	commander := subcommands.NewCommander(flag.CommandLine, "apca-ledger")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
