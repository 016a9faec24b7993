package apcaledger

import (
	"context"
	"fmt"
)

// MemoryFeed is a Feed over activities held in memory, like a dump of an
// account's feed.
type MemoryFeed struct {
	currency   string
	activities []Activity
}

// NewMemoryFeed returns a feed of activities, in ascending order, for an
// account in currency.
func NewMemoryFeed(currency string, activities []Activity) *MemoryFeed {
	return &MemoryFeed{currency: currency, activities: activities}
}

func (f *MemoryFeed) Currency(context.Context) (string, error) { return f.currency, nil }

// Activities returns the page of activities after req.PageToken, or after
// req.After when there is no token.
func (f *MemoryFeed) Activities(_ context.Context, req ActivityRequest) ([]Activity, error) {
	if req.Direction != Ascending {
		return nil, fmt.Errorf("unsupported direction %s", req.Direction)
	}
	start := 0
	if req.PageToken != "" {
		start = -1
		for i, a := range f.activities {
			if a.ActivityID() == req.PageToken {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, fmt.Errorf("unknown page token %q", req.PageToken)
		}
	}
	var page []Activity
	for _, a := range f.activities[start:] {
		if req.PageSize > 0 && len(page) == req.PageSize {
			break
		}
		if !req.After.IsZero() && !a.Time().After(req.After) {
			continue
		}
		page = append(page, a)
	}
	return page, nil
}
