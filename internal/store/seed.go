package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paytrack/internal/model"
	"github.com/theirongolddev/paytrack/internal/schedule"
)

// ErrNotEmpty is returned by Seed when the store already holds obligations.
var ErrNotEmpty = errors.New("store is not empty")

type seedRow struct {
	id       string
	kind     model.Kind
	dueDay   int
	period   model.Period
	paidDate string
}

var seedRows = []seedRow{
	{"bodega-001", model.KindBodega, 1, model.Monthly, "2024-12-01"},
	{"admin-001", model.KindAdmin, 10, model.Monthly, "2024-12-07"},
	{"cuota-001", model.KindCuota, 5, model.Monthly, "2024-12-04"},
	{"agua-001", model.KindAgua, 25, model.Bimonthly, ""},
	{"luz-001", model.KindLuz, 18, model.Monthly, "2024-12-18"},
	{"directv-001", model.KindDirecTV, 22, model.Monthly, ""},
}

// SeedObligations returns the bootstrap household bills. Amounts are left
// unspecified.
func SeedObligations(now time.Time) []model.Obligation {
	out := make([]model.Obligation, 0, len(seedRows))
	for _, r := range seedRows {
		o := model.Obligation{
			ID:        r.id,
			Category:  model.MustBuiltin(r.kind),
			Amount:    decimal.Zero,
			DueDay:    r.dueDay,
			Period:    r.period,
			CreatedAt: now,
		}
		if r.paidDate != "" {
			t, err := time.ParseInLocation(schedule.DayLayout, r.paidDate, now.Location())
			if err != nil {
				panic(err)
			}
			o.Paid = true
			o.PaidDate = &t
		}
		out = append(out, o)
	}
	return out
}

// Seed loads the bootstrap obligations. It refuses a non-empty store
// unless force is set, in which case existing obligations are replaced.
func (s *Store) Seed(ctx context.Context, now time.Time, force bool) ([]model.Obligation, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && !force {
		return nil, ErrNotEmpty
	}
	obs := SeedObligations(now)
	if err := s.ReplaceAll(ctx, obs); err != nil {
		return nil, err
	}
	return obs, nil
}
