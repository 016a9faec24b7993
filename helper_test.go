package apcaledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// at returns the instant of a "2006-01-02 15:04" string in UTC.
func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func qty(s string) Quantity { return Q(dec(s)) }

// fill returns a fill of order at price.
func fill(id, order, symbol string, side Side, price, quantity, cumulative, unfilled string, when time.Time) Trade {
	return Trade{
		ID:                 id,
		OrderID:            order,
		Symbol:             symbol,
		Side:               side,
		Price:              dec(price),
		Quantity:           qty(quantity),
		CumulativeQuantity: qty(cumulative),
		UnfilledQuantity:   qty(unfilled),
		TransactionTime:    when,
	}
}

func fee(id, symbol, description, net string, when time.Time) NonTrade {
	return NonTrade{ID: id, Type: Fee, RawType: "FEE", Date: when, NetAmount: dec(net), Symbol: symbol, Description: description}
}

// dayActivity returns a dividend on day, identified by id.
func dayActivity(id, day string) NonTrade {
	return NonTrade{ID: id, Type: Dividend, RawType: "DIV", Date: at(day + " 00:00"), NetAmount: dec("1"), Symbol: "T"}
}

func ids(activities []Activity) []string {
	out := make([]string, len(activities))
	for i, a := range activities {
		out[i] = a.ActivityID()
	}
	return out
}

// fakeFeed serves fixed pages of activities, a page ends after the activity
// whose ID is the page token of the next request.
type fakeFeed struct {
	currency string
	pages    [][]Activity
	requests []ActivityRequest
	err      error // returned once pages are exhausted, instead of an empty page
}

func (f *fakeFeed) Currency(context.Context) (string, error) {
	if f.currency == "" {
		return "", fmt.Errorf("no account")
	}
	return f.currency, nil
}

func (f *fakeFeed) Activities(_ context.Context, req ActivityRequest) ([]Activity, error) {
	f.requests = append(f.requests, req)
	i := 0
	if req.PageToken != "" {
		for i < len(f.pages) {
			p := f.pages[i]
			i++
			if len(p) > 0 && p[len(p)-1].ActivityID() == req.PageToken {
				break
			}
		}
	}
	if i >= len(f.pages) {
		return nil, f.err
	}
	return f.pages[i], nil
}
