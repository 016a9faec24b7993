package apcaledger

import (
	"fmt"
	"time"

	"github.com/etnz/apcaledger/date"
	"github.com/shopspring/decimal"
)

// Side is the side of a trade.
type Side int

const (
	Buy Side = iota
	Sell
	ShortSell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case ShortSell:
		return "sell_short"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// sign is the direction of the share movement in the investment account.
func (s Side) sign() int64 {
	if s == Buy {
		return 1
	}
	return -1
}

// ActivityType is the kind of a non trade activity.
type ActivityType int

const (
	// Other covers every activity type that is not rendered.
	Other ActivityType = iota
	Dividend
	Fee
	PassThruCharge
	Acquisition
	StockSplit
	CashDeposit
	CashWithdrawal
	Interest
)

var activityTypeNames = [...]string{
	Other:          "other",
	Dividend:       "dividend",
	Fee:            "fee",
	PassThruCharge: "pass-thru charge",
	Acquisition:    "acquisition",
	StockSplit:     "stock split",
	CashDeposit:    "cash deposit",
	CashWithdrawal: "cash withdrawal",
	Interest:       "interest",
}

func (t ActivityType) String() string {
	if t < 0 || int(t) >= len(activityTypeNames) {
		return fmt.Sprintf("ActivityType(%d)", int(t))
	}
	return activityTypeNames[t]
}

// Activity is one record of the account activity feed. It is either a Trade
// or a NonTrade.
type Activity interface {
	// ActivityID returns the feed's identifier of the record, it is also the
	// page token to resume the feed after that record.
	ActivityID() string
	// Time returns the instant the activity happened.
	Time() time.Time

	isActivity()
}

// Trade is an order fill, possibly partial.
type Trade struct {
	ID                 string
	OrderID            string
	Symbol             string
	Side               Side
	Price              decimal.Decimal
	Quantity           Quantity
	CumulativeQuantity Quantity
	UnfilledQuantity   Quantity
	TransactionTime    time.Time
}

func (t Trade) ActivityID() string { return t.ID }
func (t Trade) Time() time.Time    { return t.TransactionTime }
func (Trade) isActivity()          {}

// IsPartial reports whether the order still had unfilled shares after this fill.
func (t Trade) IsPartial() bool { return !t.UnfilledQuantity.IsZero() }

// NonTrade is any activity that is not an order fill: dividends, fees,
// corporate actions, cash movements.
//
// Optional fields are the empty string or nil when the feed did not report
// them.
type NonTrade struct {
	ID          string
	Type        ActivityType
	RawType     string // activity type code as reported by the feed
	Date        time.Time
	NetAmount   decimal.Decimal
	Symbol      string
	Description string
	Price       *decimal.Decimal
	Quantity    *Quantity
}

func (n NonTrade) ActivityID() string { return n.ID }
func (n NonTrade) Time() time.Time    { return n.Date }
func (NonTrade) isActivity()          {}

// Day returns the calendar day of an activity.
func Day(a Activity) date.Date { return date.Of(a.Time()) }
