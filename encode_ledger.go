package apcaledger

import (
	"bufio"
	"fmt"
	"io"
	"regexp"

	"github.com/etnz/apcaledger/date"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// accountWidth is the column width of account names in postings.
const accountWidth = 51

var cashMergerRegex = regexp.MustCompile(`Cash Merger \$` + amount)

// posting is a line of a journal entry. A posting has either shares, an
// amount, or nothing when the amount is left for Ledger to infer.
type posting struct {
	account string
	shares  *Quantity
	symbol  string
	price   Money
	amount  *Money
}

// entry is a journal entry in Ledger's format.
type entry struct {
	day       date.Date
	narration string
	comment   string
	postings  []posting
}

func (e *entry) shares(account string, q Quantity, symbol string, price Money) {
	e.postings = append(e.postings, posting{account: account, shares: &q, symbol: symbol, price: price})
}

func (e *entry) amount(account string, m Money) {
	e.postings = append(e.postings, posting{account: account, amount: &m})
}

func (e *entry) elided(account string) {
	e.postings = append(e.postings, posting{account: account})
}

// encode writes the entry followed by an empty line.
func (e *entry) encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s * %s\n", e.day, e.narration)
	if e.comment != "" {
		fmt.Fprintf(bw, "  ; %s\n", e.comment)
	}
	for _, p := range e.postings {
		switch {
		case p.shares != nil:
			fmt.Fprintf(bw, "  %-*s  %13s %s @ %s\n", accountWidth, p.account, p.shares, p.symbol, p.price)
		case p.amount != nil:
			fmt.Fprintf(bw, "  %-*s    %15s\n", accountWidth, p.account, p.amount)
		default:
			fmt.Fprintf(bw, "  %s\n", p.account)
		}
	}
	bw.WriteString("\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

// Renderer prints reconciled activities as Ledger journal entries.
type Renderer struct {
	Accounts Accounts
	Registry Registry
	Currency string
	Log      *zap.Logger
}

// Render writes the journal entry of rec to w. It reports false when the
// activity has no entry, like acquisitions of nothing or activity types
// that are not accounted for.
func (r *Renderer) Render(w io.Writer, rec Reconciled) (bool, error) {
	var e *entry
	var err error
	switch rec := rec.(type) {
	case ReconciledTrade:
		e, err = r.trade(rec)
	case ReconciledNonTrade:
		e, err = r.nonTrade(rec.NonTrade)
	default:
		return false, fmt.Errorf("unsupported reconciled activity %T", rec)
	}
	if err != nil || e == nil {
		return false, err
	}
	return true, e.encode(w)
}

func (r *Renderer) money(d decimal.Decimal) Money { return M(d, r.Currency) }

func (r *Renderer) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Renderer) trade(rt ReconciledTrade) (*entry, error) {
	t := rt.Trade
	name, err := lookup(r.Registry, t.Symbol)
	if err != nil {
		return nil, fmt.Errorf("trade %s: %w", t.ID, err)
	}
	qty := t.Quantity
	if t.Side.sign() < 0 {
		qty = qty.Neg()
	}
	price := r.money(t.Price)
	total := price.Mul(qty).Neg()

	e := &entry{day: date.Of(t.TransactionTime), narration: name}
	e.shares(r.Accounts.Investment, qty, t.Symbol, price)
	for _, fee := range rt.Fees {
		charged := r.money(fee.Activity.NetAmount)
		e.amount(r.Accounts.Fee(fee.Category), charged.Neg())
		total = total.Add(charged)
	}
	e.amount(r.Accounts.Brokerage, total)
	return e, nil
}

func missing(n NonTrade, field string) error {
	return fmt.Errorf("%s %s has no %s: %w", n.Type, n.ID, field, ErrMissingField)
}

func (r *Renderer) nonTrade(n NonTrade) (*entry, error) {
	e := &entry{day: date.Of(n.Date), narration: Broker, comment: n.Description}
	net := r.money(n.NetAmount)

	switch n.Type {
	case Dividend:
		if n.Symbol == "" {
			return nil, missing(n, "symbol")
		}
		name, err := lookup(r.Registry, n.Symbol)
		if err != nil {
			return nil, fmt.Errorf("dividend %s: %w", n.ID, err)
		}
		e.narration, e.comment = name, ""
		e.elided(r.Accounts.Dividend)
		e.amount(r.Accounts.Brokerage, net)

	case Interest:
		e.elided(r.Accounts.Interest)
		e.amount(r.Accounts.Brokerage, net)

	case CashDeposit, CashWithdrawal:
		e.elided(r.Accounts.Transfer)
		e.amount(r.Accounts.Brokerage, net)

	case PassThruCharge:
		e.elided(r.Accounts.BrokerageFee)
		e.amount(r.Accounts.Brokerage, net)

	case Fee:
		fee, err := ClassifyFee(n)
		if err != nil {
			return nil, err
		}
		if n.Symbol != "" {
			name, err := lookup(r.Registry, n.Symbol)
			if err != nil {
				return nil, fmt.Errorf("fee %s: %w", n.ID, err)
			}
			e.narration = name
		}
		e.amount(r.Accounts.Fee(fee.Category), net.Neg())
		e.amount(r.Accounts.Brokerage, net)

	case Acquisition:
		if n.NetAmount.IsZero() {
			// the broker reports some acquisitions twice, once with nothing.
			r.log().Debug("skipping empty acquisition", zap.String("id", n.ID), zap.String("symbol", n.Symbol))
			return nil, nil
		}
		if n.Symbol == "" {
			return nil, missing(n, "symbol")
		}
		if n.Description == "" {
			return nil, missing(n, "description")
		}
		m := cashMergerRegex.FindStringSubmatch(n.Description)
		if m == nil {
			return nil, fmt.Errorf("acquisition %s: no cash merger price in %q: %w", n.ID, n.Description, ErrUnparsableDescription)
		}
		p, err := parseAmount(m[1])
		if err != nil || p.IsZero() {
			return nil, fmt.Errorf("acquisition %s: invalid cash merger price in %q: %w", n.ID, n.Description, ErrUnparsableDescription)
		}
		name, err := lookup(r.Registry, n.Symbol)
		if err != nil {
			return nil, fmt.Errorf("acquisition %s: %w", n.ID, err)
		}
		price := r.money(p)
		e.narration, e.comment = name, ""
		e.shares(r.Accounts.Investment, net.DivPrice(price).Neg(), n.Symbol, price)
		e.amount(r.Accounts.Brokerage, net)

	case StockSplit:
		if n.Symbol == "" {
			return nil, missing(n, "symbol")
		}
		if n.Price == nil {
			return nil, missing(n, "price")
		}
		if n.Quantity == nil {
			return nil, missing(n, "quantity")
		}
		name, err := lookup(r.Registry, n.Symbol)
		if err != nil {
			return nil, fmt.Errorf("stock split %s: %w", n.ID, err)
		}
		price := r.money(*n.Price)
		e.narration, e.comment = name, ""
		e.shares(r.Accounts.Investment, *n.Quantity, n.Symbol, price)
		e.amount(r.Accounts.Brokerage, price.Mul(*n.Quantity).Neg())

	default:
		r.log().Info("ignoring activity", zap.String("id", n.ID), zap.String("type", n.RawType))
		return nil, nil
	}
	return e, nil
}
