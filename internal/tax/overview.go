package tax

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/repairshop-api/internal/common"
	"github.com/noah-isme/repairshop-api/internal/db"
	dbgen "github.com/noah-isme/repairshop-api/internal/db/gen"
)

// GetTaxDueOverview returns unpaid tax for the current month, quarter and year. The three
// sums run concurrently and the result is cached until the next write or the cache TTL.
func (s *Service) GetTaxDueOverview(ctx context.Context) (DueOverview, error) {
	now := s.now()
	key := s.dueKey(now)

	var out DueOverview
	hit, err := s.cache.Get(ctx, key, &out)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("tax due cache read")
	}
	if hit {
		return out, nil
	}

	out.Month.Start, out.Month.End = MonthWindow(now, s.loc)
	out.Quarter.Start, out.Quarter.End = QuarterWindow(now, s.loc)
	out.Year.Start, out.Year.End = YearWindow(now, s.loc)

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range []*Window{&out.Month, &out.Quarter, &out.Year} {
		g.Go(func() error {
			sum, err := s.queries.SumUnpaidTax(gctx, dbgen.SumUnpaidTaxParams{
				FromDate: db.Timestamptz(w.Start),
				ToDate:   db.Timestamptz(w.End),
			})
			if err != nil {
				return err
			}
			w.Unpaid = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return DueOverview{}, s.fail("sum unpaid tax", err)
	}

	if err := s.cache.Set(ctx, key, out); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("tax due cache write")
	}
	return out, nil
}

func (s *Service) dueKey(now time.Time) string {
	return s.cache.Key("tax", "due", now.In(s.loc).Format(common.DateLayout))
}

func (s *Service) invalidateDue(ctx context.Context) {
	key := s.dueKey(s.now())
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("tax due cache invalidate")
	}
}
