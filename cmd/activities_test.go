package cmd

import (
	"bytes"
	"context"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/apcaledger"
	"github.com/etnz/apcaledger/alpaca"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const activities = `[
  {"id": "1", "activity_type": "FILL", "transaction_time": "2021-03-01T14:32:00Z", "price": "9.33", "qty": "56",
   "side": "sell", "symbol": "XYZ", "leaves_qty": "0", "cum_qty": "56", "order_id": "o-1"},
  {"id": "2", "activity_type": "FEE", "date": "2021-03-01", "net_amount": "-0.01",
   "description": "TAF fee for proceed of 56 shares (1 trades) on 2021-03-01 by 12345678"},
  {"id": "3", "activity_type": "DIV", "date": "2021-03-02", "net_amount": "1.02", "symbol": "XYZ"}
]`

// fakeAlpaca serves an account in USD with the activities above.
func fakeAlpaca(t *testing.T) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/account":
			w.Write([]byte(`{"id": "acc", "currency": "USD"}`))
		case "/v2/account/activities":
			if r.URL.Query().Get("page_token") == "" {
				w.Write([]byte(activities))
			} else {
				w.Write([]byte(`[]`))
			}
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	t.Setenv(alpaca.EnvBaseURL, server.URL)
	t.Setenv(alpaca.EnvKeyID, "key")
	t.Setenv(alpaca.EnvSecretKey, "secret")
	t.Setenv(alpaca.EnvOAuthToken, "")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute parses args as the flags of c and runs it.
func execute(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return c.Execute(context.Background(), f)
}

func TestActivitiesCmd(t *testing.T) {
	fakeAlpaca(t)
	registry := writeFile(t, "registry.json", `{"XYZ": "XYZ Corp"}`)
	config := writeFile(t, "accounts.yaml", "brokerage: Assets:Cash\nfinra_taf: Expenses:TAF\n")

	var stdout, stderr bytes.Buffer
	c := &activitiesCmd{stdout: &stdout, stderr: &stderr}
	status := execute(t, c, "-config", config, "-finra-taf-account", "Expenses:FINRA", "-requests-per-minute", "60000", "-summary", registry)
	require.Equal(t, subcommands.ExitSuccess, status, stderr.String())

	want := "" +
		"2021-03-01 * XYZ Corp\n" +
		"  Assets:Investments:Alpaca:Stock                                -56 XYZ @ 9.33 USD\n" +
		"  Expenses:FINRA                                                0.01 USD\n" +
		"  Assets:Cash                                                 522.47 USD\n" +
		"\n" +
		"2021-03-02 * XYZ Corp\n" +
		"  Income:Dividend\n" +
		"  Assets:Cash                                                   1.02 USD\n" +
		"\n"
	assert.Equal(t, want, stdout.String())
	assert.Contains(t, stderr.String(), "Reconciliation")
}

func TestActivitiesCmdError(t *testing.T) {
	fakeAlpaca(t)
	registry := writeFile(t, "registry.json", `{}`)

	var stdout, stderr bytes.Buffer
	c := &activitiesCmd{stdout: &stdout, stderr: &stderr}
	status := execute(t, c, "-requests-per-minute", "60000", registry)
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, stderr.String(), "Error: ")
	assert.Contains(t, stderr.String(), "symbol not present in registry")
	assert.Empty(t, stdout.String())
}

func TestActivitiesCmdNoCredentials(t *testing.T) {
	t.Setenv(alpaca.EnvKeyID, "")
	t.Setenv(alpaca.EnvSecretKey, "")
	t.Setenv(alpaca.EnvOAuthToken, "")
	registry := writeFile(t, "registry.json", `{}`)

	var stderr bytes.Buffer
	c := &activitiesCmd{stdout: new(bytes.Buffer), stderr: &stderr}
	assert.Equal(t, subcommands.ExitFailure, execute(t, c, registry))
	assert.Contains(t, stderr.String(), alpaca.EnvKeyID)
}

func TestActivitiesCmdEnvFile(t *testing.T) {
	fakeAlpaca(t)
	// the environment wins over the file.
	env := writeFile(t, ".env", "APCA_API_KEY_ID=other\nAPCA_API_BASE_URL=http://invalid.test\n")
	registry := writeFile(t, "registry.json", `{"XYZ": "XYZ Corp"}`)

	var stdout, stderr bytes.Buffer
	c := &activitiesCmd{stdout: &stdout, stderr: &stderr}
	status := execute(t, c, "-env-file", env, "-requests-per-minute", "60000", registry)
	require.Equal(t, subcommands.ExitSuccess, status, stderr.String())
	assert.Contains(t, stdout.String(), "XYZ Corp")
}

func TestActivitiesCmdUsage(t *testing.T) {
	var stderr bytes.Buffer
	c := &activitiesCmd{stdout: new(bytes.Buffer), stderr: &stderr}
	assert.Equal(t, subcommands.ExitUsageError, execute(t, c))
}

func TestAccountsPrecedence(t *testing.T) {
	config := writeFile(t, "accounts.yaml", "brokerage: Assets:Cash\ndividend: Income:Div\n")
	c := &activitiesCmd{}
	f := flag.NewFlagSet("activities", flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse([]string{"-config", config, "-dividend-account", "Income:Dividends:US"}))

	got, err := c.accounts(f)
	require.NoError(t, err)
	want := apcaledger.DefaultAccounts()
	want.Brokerage = "Assets:Cash"
	want.Dividend = "Income:Dividends:US"
	assert.Equal(t, want, got)
}

func TestAccountsBadConfig(t *testing.T) {
	config := writeFile(t, "accounts.yaml", "cash: Assets:Cash\n")
	c := &activitiesCmd{}
	f := flag.NewFlagSet("activities", flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse([]string{"-config", config}))

	_, err := c.accounts(f)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestActivitiesCmdInput(t *testing.T) {
	t.Setenv(alpaca.EnvKeyID, "")
	t.Setenv(alpaca.EnvSecretKey, "")
	t.Setenv(alpaca.EnvOAuthToken, "")
	input := writeFile(t, "activities.json", activities)
	registry := writeFile(t, "registry.json", `{"XYZ": "XYZ Corp"}`)

	var stdout, stderr bytes.Buffer
	c := &activitiesCmd{stdout: &stdout, stderr: &stderr}
	status := execute(t, c, "-input", input, "-currency", "EUR", "-begin", "2021-03-02", registry)
	require.Equal(t, subcommands.ExitSuccess, status, stderr.String())
	assert.Equal(t, "2021-03-02 * XYZ Corp\n"+
		"  Income:Dividend\n"+
		"  Assets:Alpaca Brokerage                                       1.02 EUR\n\n", stdout.String())
}
