package alpaca

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/etnz/apcaledger"
	"github.com/etnz/apcaledger/date"
	"github.com/shopspring/decimal"
)

// activityFill is the activity type code of trades. Every other code is a
// non trade activity.
const activityFill = "FILL"

// nonTradeTypes maps activity type codes to the types that are accounted for.
var nonTradeTypes = map[string]apcaledger.ActivityType{
	"DIV":   apcaledger.Dividend,
	"FEE":   apcaledger.Fee,
	"PTC":   apcaledger.PassThruCharge,
	"ACQ":   apcaledger.Acquisition,
	"MA":    apcaledger.Acquisition,
	"SPLIT": apcaledger.StockSplit,
	"SSP":   apcaledger.StockSplit,
	"CSD":   apcaledger.CashDeposit,
	"CSW":   apcaledger.CashWithdrawal,
	"INT":   apcaledger.Interest,
}

var sides = map[string]apcaledger.Side{
	"buy":        apcaledger.Buy,
	"sell":       apcaledger.Sell,
	"sell_short": apcaledger.ShortSell,
}

// wireActivity holds the fields of both kinds of activities as sent by the
// API. Numbers are sent as JSON strings.
type wireActivity struct {
	ID           string `json:"id"`
	ActivityType string `json:"activity_type"`

	// FILL
	TransactionTime time.Time           `json:"transaction_time"`
	Side            string              `json:"side"`
	OrderID         string              `json:"order_id"`
	CumQty          decimal.Decimal     `json:"cum_qty"`
	LeavesQty       decimal.Decimal     `json:"leaves_qty"`
	Price           decimal.NullDecimal `json:"price"`
	Qty             decimal.NullDecimal `json:"qty"`

	// others
	Date        string          `json:"date"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	Symbol      string          `json:"symbol"`
	Description string          `json:"description"`
}

// DecodeActivities decodes a JSON array of activities in the format of the
// activities endpoint, e.g. a dump of the feed.
func DecodeActivities(r io.Reader) ([]apcaledger.Activity, error) {
	var page []json.RawMessage
	if err := json.NewDecoder(r).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding activities: %w", err)
	}
	return decodePage(page)
}

func decodePage(page []json.RawMessage) ([]apcaledger.Activity, error) {
	activities := make([]apcaledger.Activity, 0, len(page))
	for _, raw := range page {
		a, err := decodeActivity(raw)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, nil
}

// decodeActivity decodes one activity of a page.
func decodeActivity(raw json.RawMessage) (apcaledger.Activity, error) {
	var w wireActivity
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decoding activity %s: %w", raw, err)
	}
	if w.ActivityType == activityFill {
		return w.trade()
	}
	return w.nonTrade()
}

func (w wireActivity) trade() (apcaledger.Trade, error) {
	side, ok := sides[w.Side]
	if !ok {
		return apcaledger.Trade{}, fmt.Errorf("fill %s: unknown side %q", w.ID, w.Side)
	}
	if !w.Price.Valid || !w.Qty.Valid {
		return apcaledger.Trade{}, fmt.Errorf("fill %s: no price or quantity", w.ID)
	}
	if w.TransactionTime.IsZero() {
		return apcaledger.Trade{}, fmt.Errorf("fill %s: no transaction time", w.ID)
	}
	return apcaledger.Trade{
		ID:                 w.ID,
		OrderID:            w.OrderID,
		Symbol:             w.Symbol,
		Side:               side,
		Price:              w.Price.Decimal,
		Quantity:           apcaledger.Q(w.Qty.Decimal),
		CumulativeQuantity: apcaledger.Q(w.CumQty),
		UnfilledQuantity:   apcaledger.Q(w.LeavesQty),
		TransactionTime:    w.TransactionTime,
	}, nil
}

func (w wireActivity) nonTrade() (apcaledger.NonTrade, error) {
	on, err := parseDate(w.Date)
	if err != nil {
		return apcaledger.NonTrade{}, fmt.Errorf("%s activity %s: %w", w.ActivityType, w.ID, err)
	}
	n := apcaledger.NonTrade{
		ID:          w.ID,
		Type:        nonTradeTypes[w.ActivityType], // Other when missing
		RawType:     w.ActivityType,
		Date:        on,
		NetAmount:   w.NetAmount,
		Symbol:      w.Symbol,
		Description: strings.TrimSpace(w.Description),
	}
	if w.Price.Valid {
		p := w.Price.Decimal
		n.Price = &p
	}
	if w.Qty.Valid {
		q := apcaledger.Q(w.Qty.Decimal)
		n.Quantity = &q
	}
	return n, nil
}

// parseDate reads the date of non trade activities, sent either as a day or
// as a timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Midnight(), nil
}
