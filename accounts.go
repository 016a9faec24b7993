package apcaledger

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Broker is the narration of entries that are not about a security.
const Broker = "Alpaca Securities LLC"

// Accounts names the ledger accounts postings are made to.
type Accounts struct {
	// Investment holds the shares.
	Investment string `yaml:"investment"`
	// Brokerage holds the uninvested cash.
	Brokerage    string `yaml:"brokerage"`
	BrokerageFee string `yaml:"brokerage_fee"`
	Dividend     string `yaml:"dividend"`
	SECFee       string `yaml:"sec_fee"`
	FINRATAF     string `yaml:"finra_taf"`
	Interest     string `yaml:"interest"`
	// Transfer is the counterpart of cash deposits and withdrawals.
	Transfer string `yaml:"transfer"`
}

// DefaultAccounts returns the account names used when none is configured.
func DefaultAccounts() Accounts {
	return Accounts{
		Investment:   "Assets:Investments:Alpaca:Stock",
		Brokerage:    "Assets:Alpaca Brokerage",
		BrokerageFee: "Expenses:Broker:Fee",
		Dividend:     "Income:Dividend",
		SECFee:       "Expenses:Broker:SEC Fee",
		FINRATAF:     "Expenses:Broker:FINRA TAF",
		Interest:     "Income:Interest",
		Transfer:     "Assets:Transfers",
	}
}

// Fee returns the account a fee category is expensed to.
func (a Accounts) Fee(c FeeCategory) string {
	switch c {
	case TAF:
		return a.FINRATAF
	case REG:
		return a.SECFee
	default:
		return a.BrokerageFee
	}
}

// DecodeAccounts reads account names in YAML from r. Names missing in r keep
// their value in base.
func DecodeAccounts(r io.Reader, base Accounts) (Accounts, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	accounts := base
	if err := dec.Decode(&accounts); err != nil && err != io.EOF {
		return Accounts{}, fmt.Errorf("decoding accounts: %w", err)
	}
	return accounts, nil
}
