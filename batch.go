package apcaledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Direction is the chronological order in which the feed is paged.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ActivityRequest is the cursor over the activity feed.
type ActivityRequest struct {
	Direction Direction
	After     time.Time // zero means from the beginning of the account
	PageToken string    // ID of the last activity already read
	PageSize  int       // zero lets the feed decide
}

// Feed is the remote account the activities are read from.
type Feed interface {
	// Activities returns the page of activities following req.PageToken.
	// An empty page means that the feed is exhausted.
	Activities(ctx context.Context, req ActivityRequest) ([]Activity, error)
	// Currency returns the currency the account reports amounts in.
	Currency(ctx context.Context) (string, error)
}

// Batcher reads a Feed one calendar day at a time.
//
// Pages do not align with days: a page may end in the middle of a day, or
// hold several days. Batcher keeps reading until it can prove that it holds
// the whole of the oldest buffered day, and keeps what it read beyond that
// day for the next call.
type Batcher struct {
	feed    Feed
	req     ActivityRequest
	pending []Activity
	done    bool
	log     *zap.Logger
}

// NewBatcher returns a Batcher reading feed from req onwards.
func NewBatcher(feed Feed, req ActivityRequest, log *zap.Logger) *Batcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Batcher{feed: feed, req: req, log: log}
}

// Request returns the current cursor.
func (b *Batcher) Request() ActivityRequest { return b.req }

// Pending returns the number of activities read but not returned yet.
func (b *Batcher) Pending() int { return len(b.pending) }

// Next returns the activities of the next calendar day.
//
// done is true once the feed is exhausted, ready then holds whatever was
// left in the buffer (possibly nothing) and later calls return nothing.
func (b *Batcher) Next(ctx context.Context) (ready []Activity, done bool, err error) {
	for {
		if b.done {
			return nil, true, nil
		}
		if n := len(b.pending); n > 0 && Day(b.pending[0]) != Day(b.pending[n-1]) {
			ready, b.pending = SplitDay(b.pending)
			b.log.Debug("day batch ready",
				zap.Stringer("day", Day(ready[0])),
				zap.Int("activities", len(ready)),
				zap.Int("overflow", len(b.pending)))
			return ready, false, nil
		}

		page, err := b.feed.Activities(ctx, b.req)
		if err != nil {
			return nil, false, fmt.Errorf("fetching activities page after %q: %w", b.req.PageToken, err)
		}
		b.log.Debug("fetched activities page", zap.String("page_token", b.req.PageToken), zap.Int("activities", len(page)))
		if len(page) == 0 {
			ready, b.pending = b.pending, nil
			b.done = true
			return ready, true, nil
		}
		b.pending = append(b.pending, page...)
		b.req.PageToken = page[len(page)-1].ActivityID()
	}
}

// SplitDay partitions activities between the ones dated the same day as the
// first one, and the others. Relative order is preserved in both.
func SplitDay(activities []Activity) (ready, overflow []Activity) {
	if len(activities) == 0 {
		return nil, nil
	}
	day := Day(activities[0])
	for _, a := range activities {
		if Day(a) == day {
			ready = append(ready, a)
		} else {
			overflow = append(overflow, a)
		}
	}
	return ready, overflow
}
