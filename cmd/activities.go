package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/apcaledger"
	"github.com/etnz/apcaledger/alpaca"
	"github.com/etnz/apcaledger/date"
	"github.com/etnz/apcaledger/trace"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type activitiesCmd struct {
	begin             date.Date
	forceSeparateFees bool
	config            string
	envFile           string
	pageSize          int
	requestsPerMinute int
	trace             bool
	summary           bool
	input             string
	currency          string
	// flagAccounts receives the -*-account flags.
	flagAccounts apcaledger.Accounts

	// stdout and stderr default to the process ones.
	stdout, stderr io.Writer
}

func (*activitiesCmd) Name() string { return "activities" }
func (*activitiesCmd) Synopsis() string {
	return "prints the account activities as Ledger journal entries"
}
func (*activitiesCmd) Usage() string {
	return `apca-ledger activities [flags] <registry.json>

  Reads the whole activity feed of an Alpaca account, day by day, and prints
  one Ledger journal entry per activity on stdout.

  Partial fills of an order are merged into a single trade, and the FINRA TAF
  and SEC fees are posted in the entry of the trade they were billed for,
  unless -force-separate-fees is set.

  The registry is a JSON object mapping each traded symbol to the name used
  as entry narration, e.g. {"AAPL": "Apple Inc."}.

  Credentials are read from the environment:
    APCA_API_KEY_ID and APCA_API_SECRET_KEY, or APCA_API_OAUTH_TOKEN
    APCA_API_BASE_URL (defaults to the paper trading API)
  -env-file loads them from a .env file first, without overriding the
  environment.

  Account names are read from the -config YAML file, e.g.
    brokerage: Assets:Alpaca:Cash
    sec_fee: Expenses:Fees:SEC
  and then from the -*-account flags.

  -input replays a JSON array of activities, as returned by the API,
  instead of reading the account.
`
}

func (c *activitiesCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.begin, "begin", "Skip activities before this date (YYYY-MM-DD).")
	f.BoolVar(&c.forceSeparateFees, "force-separate-fees", false, "Print every fee as its own entry instead of in its trade entry.")
	f.StringVar(&c.config, "config", "", "YAML file of account names.")
	f.StringVar(&c.envFile, "env-file", "", "Load APCA_API_* variables from this .env file.")
	f.IntVar(&c.pageSize, "page-size", 100, "Number of activities per request.")
	f.IntVar(&c.requestsPerMinute, "requests-per-minute", 0, "Maximum request rate, defaults to the API limit.")
	f.BoolVar(&c.trace, "trace", false, "Print traces on stderr.")
	f.BoolVar(&c.summary, "summary", false, "Print a summary of the run on stderr.")
	f.StringVar(&c.input, "input", "", "Read activities from this JSON dump of the feed instead of the API.")
	f.StringVar(&c.currency, "currency", "USD", "Account currency, with -input.")

	c.flagAccounts = apcaledger.DefaultAccounts()
	for key, p := range accountFields(&c.flagAccounts) {
		f.StringVar(p, accountFlag(key), *p, fmt.Sprintf("Ledger account for %s postings.", strings.ReplaceAll(key, "_", " ")))
	}
}

// accountFlag returns the flag name of an account configuration key.
func accountFlag(key string) string { return strings.ReplaceAll(key, "_", "-") + "-account" }

// accountFields maps the configuration keys of accounts to their field.
func accountFields(a *apcaledger.Accounts) map[string]*string {
	return map[string]*string{
		"investment":    &a.Investment,
		"brokerage":     &a.Brokerage,
		"brokerage_fee": &a.BrokerageFee,
		"dividend":      &a.Dividend,
		"sec_fee":       &a.SECFee,
		"finra_taf":     &a.FINRATAF,
		"interest":      &a.Interest,
		"transfer":      &a.Transfer,
	}
}

// accounts returns the account names: defaults, then the config file, then
// the account flags explicitly set in f.
func (c *activitiesCmd) accounts(f *flag.FlagSet) (apcaledger.Accounts, error) {
	accounts := apcaledger.DefaultAccounts()
	if c.config != "" {
		file, err := os.Open(c.config)
		if err != nil {
			return apcaledger.Accounts{}, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()
		accounts, err = apcaledger.DecodeAccounts(file, accounts)
		if err != nil {
			return apcaledger.Accounts{}, fmt.Errorf("failed to read config file %s: %w", c.config, err)
		}
	}
	byFlag := make(map[string]*string)
	for key, p := range accountFields(&accounts) {
		byFlag[accountFlag(key)] = p
	}
	f.Visit(func(fl *flag.Flag) {
		if p, ok := byFlag[fl.Name]; ok {
			*p = fl.Value.String()
		}
	})
	return accounts, nil
}

func (c *activitiesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if err := c.run(ctx, f); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *activitiesCmd) run(ctx context.Context, f *flag.FlagSet) (err error) {
	log := newLogger(c.stderr, verbosity)
	defer log.Sync()

	if c.trace {
		if err := trace.Init(c.stderr, Version); err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer trace.Shutdown(ctx)
	}

	registry, err := apcaledger.LoadRegistry(f.Arg(0))
	if err != nil {
		return err
	}
	accounts, err := c.accounts(f)
	if err != nil {
		return err
	}

	feed, err := c.feed(ctx, log)
	if err != nil {
		return err
	}

	p := &apcaledger.Pipeline{
		Feed:              feed,
		Registry:          registry,
		Accounts:          accounts,
		Begin:             c.begin,
		ForceSeparateFees: c.forceSeparateFees,
		PageSize:          c.pageSize,
		Log:               log,
	}
	if c.summary {
		defer func() {
			if err == nil {
				printMarkdown(c.stderr, p.Summary.Markdown())
			}
		}()
	}
	return p.Run(ctx, c.stdout)
}

// feed returns the dump file feed with -input, or else the Alpaca API.
func (c *activitiesCmd) feed(ctx context.Context, log *zap.Logger) (apcaledger.Feed, error) {
	if c.input != "" {
		file, err := os.Open(c.input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		activities, err := alpaca.DecodeActivities(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file %s: %w", c.input, err)
		}
		return apcaledger.NewMemoryFeed(c.currency, activities), nil
	}

	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}
	config, err := alpaca.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	config.RequestsPerMinute = c.requestsPerMinute
	return alpaca.NewClient(ctx, config, log), nil
}

// printMarkdown renders md for the terminal, or prints it as is when it
// cannot be rendered.
func printMarkdown(w io.Writer, md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			md = out
		}
	}
	fmt.Fprint(w, md)
}
