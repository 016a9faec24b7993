package apcaledger

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/etnz/apcaledger/date"
	"github.com/etnz/apcaledger/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Pipeline prints the whole activity feed of an account as journal entries.
type Pipeline struct {
	Feed     Feed
	Registry Registry
	Accounts Accounts
	// Begin skips activities dated before it, when not zero.
	Begin date.Date
	// ForceSeparateFees renders every fee as its own entry instead of
	// attaching trade fees to their trade.
	ForceSeparateFees bool
	PageSize          int
	Log               *zap.Logger

	// Summary is filled during Run.
	Summary Summary
}

// request returns the first request of the feed.
func (p *Pipeline) request() ActivityRequest {
	req := ActivityRequest{Direction: Ascending, PageSize: p.PageSize}
	if !p.Begin.IsZero() {
		// After is exclusive.
		req.After = p.Begin.Midnight().Add(-1)
	}
	return req
}

// Run reads the feed day by day and writes the journal entries to w.
//
// It stops at the first error. Entries written before the error are not
// taken back.
func (p *Pipeline) Run(ctx context.Context, w io.Writer) error {
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	log := p.Log
	currency, err := p.Feed.Currency(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve account information: %w", err)
	}
	p.Summary = Summary{Currency: currency, ForcedSeparated: p.ForceSeparateFees}
	renderer := &Renderer{Accounts: p.Accounts, Registry: p.Registry, Currency: currency, Log: log}
	batcher := NewBatcher(p.Feed, p.request(), log)

	for {
		batch, done, err := batcher.Next(ctx)
		if err != nil {
			return fmt.Errorf("failed to retrieve account activities: %w", err)
		}
		if len(batch) > 0 {
			if err := p.process(ctx, w, renderer, batch); err != nil {
				return err
			}
		}
		if done {
			return nil
		}
	}
}

// process reconciles and renders one day batch.
func (p *Pipeline) process(ctx context.Context, w io.Writer, renderer *Renderer, batch []Activity) (err error) {
	day := Day(batch[0])
	_, span := trace.StartSpan(ctx, "apcaledger.batch")
	span.SetAttributes(attribute.String("day", day.String()), attribute.Int("activities", len(batch)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	s := &p.Summary
	s.Batches++
	s.Activities += len(batch)
	if s.First == "" {
		s.First = day.String()
	}
	s.Last = day.String()

	merged, err := MergePartialFills(batch)
	if err != nil {
		return fmt.Errorf("failed to merge fills of %s: %w", day, err)
	}
	s.MergedFills += len(batch) - len(merged)
	for _, a := range merged {
		if t, ok := a.(Trade); ok && t.IsPartial() {
			s.OrphanFills++
			p.Log.Warn("partial fill without terminal fill", zap.String("id", t.ID), zap.String("order", t.OrderID))
		}
	}

	var reconciled []Reconciled
	if p.ForceSeparateFees {
		reconciled = SeparateFees(merged)
	} else {
		reconciled, err = AssociateFees(merged)
		if err != nil {
			return fmt.Errorf("failed to associate fees of %s: %w", day, err)
		}
	}
	slices.SortStableFunc(reconciled, func(a, b Reconciled) int { return a.Time().Compare(b.Time()) })

	for _, rec := range reconciled {
		ok, err := renderer.Render(w, rec)
		if err != nil {
			return fmt.Errorf("failed to render activity of %s: %w", day, err)
		}
		if !ok {
			s.Ignored++
			continue
		}
		switch rec := rec.(type) {
		case ReconciledTrade:
			s.entry("trade")
			s.AttachedFees += len(rec.Fees)
		case ReconciledNonTrade:
			s.entry(rec.NonTrade.Type.String())
		}
	}
	return nil
}
