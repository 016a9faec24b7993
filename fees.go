package apcaledger

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FeeCategory classifies the fees billed by the broker.
type FeeCategory int

const (
	// TAF is FINRA's trading activity fee, billed per share sold.
	TAF FeeCategory = iota + 1
	// REG is the SEC fee, billed on the proceeds of a sale.
	REG
	// ADR is the custody fee of depositary receipts. It is not tied to a trade.
	ADR
)

func (c FeeCategory) String() string {
	switch c {
	case TAF:
		return "TAF"
	case REG:
		return "REG"
	case ADR:
		return "ADR"
	default:
		return fmt.Sprintf("FeeCategory(%d)", int(c))
	}
}

// amount is a positive decimal number, with optional thousands separators.
const amount = `([0-9][0-9,]*(?:\.[0-9]+)?)`

var (
	tafRegex = regexp.MustCompile(`^TAF fee for proceed of ` + amount + ` shares`)
	regRegex = regexp.MustCompile(`^REG fee for proceed of \$` + amount)
	adrRegex = regexp.MustCompile(`^ADR Fees`)
)

// parseAmount parses a number captured by the amount expression.
func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}

// ClassifiedFee is a fee activity with its category and the trade figures extracted
// from its description.
type ClassifiedFee struct {
	Activity NonTrade
	Category FeeCategory
	Shares   Quantity        // TAF only
	Proceeds decimal.Decimal // REG only
}

// ClassifyFee finds the category of a fee activity from its description.
func ClassifyFee(n NonTrade) (ClassifiedFee, error) {
	if n.Description == "" {
		return ClassifiedFee{}, fmt.Errorf("fee %s has no description: %w", n.ID, ErrMissingField)
	}
	fee := ClassifiedFee{Activity: n}
	switch {
	case tafRegex.MatchString(n.Description):
		v, err := parseAmount(tafRegex.FindStringSubmatch(n.Description)[1])
		if err != nil {
			return ClassifiedFee{}, fmt.Errorf("fee %s: share count in %q: %w", n.ID, n.Description, ErrUnparsableDescription)
		}
		fee.Category, fee.Shares = TAF, Q(v)
	case regRegex.MatchString(n.Description):
		v, err := parseAmount(regRegex.FindStringSubmatch(n.Description)[1])
		if err != nil {
			return ClassifiedFee{}, fmt.Errorf("fee %s: proceeds in %q: %w", n.ID, n.Description, ErrUnparsableDescription)
		}
		fee.Category, fee.Proceeds = REG, v
	case adrRegex.MatchString(n.Description):
		fee.Category = ADR
	default:
		return ClassifiedFee{}, fmt.Errorf("fee %s with description %q: %w", n.ID, n.Description, ErrUnclassifiedFee)
	}
	return fee, nil
}

// TradeRelated reports whether the fee is billed for a specific trade.
func (f ClassifiedFee) TradeRelated() bool { return f.Category == TAF || f.Category == REG }

// matches reports whether the fee could have been billed for t.
func (f ClassifiedFee) matches(t Trade) bool {
	if f.Activity.Symbol != "" && f.Activity.Symbol != t.Symbol {
		return false
	}
	switch f.Category {
	case TAF:
		return t.Quantity.Equal(f.Shares)
	case REG:
		proceeds := t.Price.Mul(t.Quantity.Decimal())
		// the description prints proceeds rounded.
		return proceeds.Round(-f.Proceeds.Exponent()).Equal(f.Proceeds)
	}
	return false
}

// Reconciled is an activity ready to be rendered. It is either a
// ReconciledTrade or a ReconciledNonTrade.
type Reconciled interface {
	Time() time.Time
	isReconciled()
}

// ReconciledTrade is a trade with the fees that were billed for it.
type ReconciledTrade struct {
	Trade Trade
	Fees  []ClassifiedFee
}

func (r ReconciledTrade) Time() time.Time { return r.Trade.TransactionTime }
func (ReconciledTrade) isReconciled()     {}

func (r ReconciledTrade) hasFee(c FeeCategory) bool {
	for _, f := range r.Fees {
		if f.Category == c {
			return true
		}
	}
	return false
}

// ReconciledNonTrade is a non trade activity rendered on its own.
type ReconciledNonTrade struct {
	NonTrade NonTrade
}

func (r ReconciledNonTrade) Time() time.Time { return r.NonTrade.Date }
func (ReconciledNonTrade) isReconciled()     {}

// AssociateFees attaches every TAF and REG fee of a day batch to the trade it
// was billed for.
//
// A fee can come before or after its trade, so all the trades of the batch
// are candidates. The first matching trade that has no fee of that category
// yet wins, or else the first matching trade. Fees that are not trade related
// (ADR) are kept as non trade activities. A trade fee without a matching
// trade is an ErrUnmatchedFee error.
func AssociateFees(batch []Activity) ([]Reconciled, error) {
	out := make([]Reconciled, 0, len(batch))
	var trades []int // positions of trades in out
	var fees []ClassifiedFee
	for _, a := range batch {
		switch a := a.(type) {
		case Trade:
			trades = append(trades, len(out))
			out = append(out, ReconciledTrade{Trade: a})
		case NonTrade:
			if a.Type != Fee {
				out = append(out, ReconciledNonTrade{NonTrade: a})
				continue
			}
			fee, err := ClassifyFee(a)
			if err != nil {
				return nil, err
			}
			if !fee.TradeRelated() {
				out = append(out, ReconciledNonTrade{NonTrade: a})
				continue
			}
			fees = append(fees, fee)
		}
	}

	for _, fee := range fees {
		match := -1
		for _, k := range trades {
			rt := out[k].(ReconciledTrade)
			if !fee.matches(rt.Trade) {
				continue
			}
			if match < 0 {
				match = k
			}
			if !rt.hasFee(fee.Category) {
				match = k
				break
			}
		}
		if match < 0 {
			return nil, fmt.Errorf("%s fee %s %q: %w", fee.Category, fee.Activity.ID, fee.Activity.Description, ErrUnmatchedFee)
		}
		rt := out[match].(ReconciledTrade)
		rt.Fees = append(rt.Fees, fee)
		out[match] = rt
	}
	return out, nil
}

// SeparateFees reconciles a batch without attaching fees to trades: every
// fee is rendered on its own.
func SeparateFees(batch []Activity) []Reconciled {
	out := make([]Reconciled, 0, len(batch))
	for _, a := range batch {
		switch a := a.(type) {
		case Trade:
			out = append(out, ReconciledTrade{Trade: a})
		case NonTrade:
			out = append(out, ReconciledNonTrade{NonTrade: a})
		}
	}
	return out
}
