package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"lifedash/internal/aggregate"
	"lifedash/internal/core"
	"lifedash/internal/normalize"
	"lifedash/internal/sheets"
)

// ErrDreamNotFound is returned for an unknown dream id.
var ErrDreamNotFound = errors.New("dream not found")

// DreamListing is a filtered dream list with saved totals per dream.
type DreamListing struct {
	Dreams  []core.Dream               `json:"dreams"`
	Saved   map[string]decimal.Decimal `json:"saved"`
	Summary core.DreamsSummary         `json:"summary"`
}

// DreamService manages the Dreams and Dream Tracker sheets.
type DreamService struct {
	dreams   *syncedList[core.Dream]
	contribs *syncedList[core.DreamContribution]
	norm     *normalize.Normalizer
	now      func() time.Time
}

func NewDreamService(store sheets.Store, dreamSheet, trackerSheet string, norm *normalize.Normalizer, recorder WriteRecorder) *DreamService {
	return &DreamService{
		dreams: newSyncedList(DomainDream, dreamSheet, store,
			func(d core.Dream) string { return d.DreamID },
			norm.Dreams, recorder),
		contribs: newSyncedList(DomainContribution, trackerSheet, store,
			func(c core.DreamContribution) string { return c.SerialNo },
			norm.Contributions, recorder),
		norm: norm,
		now:  time.Now,
	}
}

// refreshBoth fetches both sheets in parallel. Neither list changes unless
// both fetches succeed.
func (s *DreamService) refreshBoth(ctx context.Context) ([]core.Dream, []core.DreamContribution, error) {
	dSeq, cSeq := s.dreams.coll.BeginFetch(), s.contribs.coll.BeginFetch()
	var (
		dRecs []core.Dream
		cRecs []core.DreamContribution
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.dreams.store.FetchRows(gctx, s.dreams.sheet)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", s.dreams.sheet, err)
		}
		dRecs = s.dreams.parse(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := s.contribs.store.FetchRows(gctx, s.contribs.sheet)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", s.contribs.sheet, err)
		}
		cRecs = s.contribs.parse(rows)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	s.dreams.apply(ctx, dSeq, dRecs)
	s.contribs.apply(ctx, cSeq, cRecs)
	return s.dreams.snapshot(), s.contribs.snapshot(), nil
}

func (s *DreamService) List(ctx context.Context, f aggregate.DreamFilter) (DreamListing, error) {
	dreams, contribs, err := s.refreshBoth(ctx)
	if err != nil {
		return DreamListing{}, err
	}
	return DreamListing{
		Dreams:  f.Apply(dreams),
		Saved:   aggregate.SavedByDream(contribs),
		Summary: aggregate.DreamsSummary(dreams, contribs),
	}, nil
}

// Progress returns one dream with its contributions.
func (s *DreamService) Progress(ctx context.Context, dreamID string) (core.DreamProgress, error) {
	dreams, contribs, err := s.refreshBoth(ctx)
	if err != nil {
		return core.DreamProgress{}, err
	}
	for _, d := range dreams {
		if d.DreamID == dreamID {
			return aggregate.DreamProgress(d, contribs), nil
		}
	}
	return core.DreamProgress{}, fmt.Errorf("%s: %w", dreamID, ErrDreamNotFound)
}

func (s *DreamService) Create(ctx context.Context, d core.DreamDraft) (core.Dream, error) {
	if err := d.Validate(); err != nil {
		return core.Dream{}, fmt.Errorf("invalid dream: %w", err)
	}
	now := s.now().In(s.norm.Location())
	pending := s.norm.PendingDream(d, newTempKey(), now)
	return s.dreams.write(ctx, pending, normalize.DreamInsert(d, now), normalize.ConfirmDream)
}

// Contribute adds an amount to a known dream. The dream name is taken from
// the dream list when the draft leaves it empty.
func (s *DreamService) Contribute(ctx context.Context, d core.ContributionDraft) (core.DreamContribution, error) {
	if d.DreamName == "" {
		for _, dr := range s.dreams.snapshot() {
			if dr.DreamID == d.DreamID {
				d.DreamName = dr.DreamName
				break
			}
		}
	}
	if err := d.Validate(); err != nil {
		return core.DreamContribution{}, fmt.Errorf("invalid contribution: %w", err)
	}
	now := s.now().In(s.norm.Location())
	pending := s.norm.PendingContribution(d, newTempKey(), now)
	return s.contribs.write(ctx, pending, normalize.ContributionInsert(d, now), normalize.ConfirmContribution)
}

func (s *DreamService) Busy() bool {
	return s.dreams.coll.Busy() || s.contribs.coll.Busy()
}
