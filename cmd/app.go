// Package cmd implements the apca-ledger command line application.
package cmd

import (
	"flag"

	"github.com/etnz/apcaledger"
	"github.com/etnz/apcaledger/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Version is reported in traces.
var Version = "dev"

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&activitiesCmd{}, "ledger")
	c.Register(&registryCmd{}, "ledger")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var verbosity countFlag

func init() {
	flag.Var(&verbosity, "v", "Increase log verbosity on stderr, repeat for debug logs")
}

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	activities := map[string]complete.Predictor{
		"begin":               predict.Something,
		"force-separate-fees": predict.Nothing,
		"config":              predict.Files("*.yaml"),
		"env-file":            predict.Files("*"),
		"page-size":           predict.Something,
		"requests-per-minute": predict.Something,
		"trace":               predict.Nothing,
		"summary":             predict.Nothing,
		"input":               predict.Files("*.json"),
		"currency":            predict.Something,
	}
	for key := range accountFields(&apcaledger.Accounts{}) {
		activities[accountFlag(key)] = predict.Something
	}
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"activities": {Flags: activities, Args: predict.Files("*.json")},
			"registry":   {Args: predict.Files("*.json")},
			"topic":      {Args: predict.Set(topicNames())},
			"help":       {Args: predict.Set{"activities", "registry", "topic"}},
			"commands":   {},
			"flags":      {},
		},
		Flags: map[string]complete.Predictor{"v": predict.Nothing},
	}
}

func topicNames() []string {
	names, _ := docs.Topics()
	return append(names, "*")
}
