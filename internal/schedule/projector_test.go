package schedule

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/paytrack/internal/model"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDay(s, time.UTC)
	require.NoError(t, err)
	return d
}

func obligation(dueDay int, period model.Period, paid bool) model.Obligation {
	return model.Obligation{
		ID:       "test",
		Category: model.MustBuiltin(model.KindAgua),
		DueDay:   dueDay,
		Period:   period,
		Paid:     paid,
	}
}

func TestProject(t *testing.T) {
	tests := []struct {
		name    string
		ob      model.Obligation
		today   string
		wantDue string
		want    int
	}{
		{"bimonthly even month shifts forward", obligation(25, model.Bimonthly, false), "2024-12-01", "2025-01-25", 55},
		{"bimonthly odd month stays", obligation(25, model.Bimonthly, false), "2025-01-10", "2025-01-25", 15},
		{"bimonthly odd month overdue", obligation(25, model.Bimonthly, false), "2025-01-30", "2025-01-25", -5},
		{"monthly overdue", obligation(5, model.Monthly, false), "2024-03-10", "2024-03-05", -5},
		{"due today", obligation(18, model.Monthly, false), "2024-12-18", "2024-12-18", 0},
		{"monthly upcoming", obligation(22, model.Monthly, false), "2024-12-18", "2024-12-22", 4},
		{"paid counts to next cycle", obligation(18, model.Monthly, true), "2024-12-18", "2025-01-18", 31},
		{"paid early never negative", obligation(10, model.Monthly, true), "2024-12-20", "2025-01-10", 21},
		{"paid bimonthly ignores parity", obligation(25, model.Bimonthly, true), "2024-12-01", "2025-02-25", 86},
		{"day 31 overflows in april", obligation(31, model.Monthly, false), "2024-04-10", "2024-05-01", 21},
		{"day 30 overflows in leap february", obligation(30, model.Monthly, false), "2024-02-10", "2024-03-01", 20},
		{"day 29 overflows in common february", obligation(29, model.Monthly, false), "2023-02-10", "2023-03-01", 19},
		{"bimonthly september day 31 lands in october", obligation(31, model.Bimonthly, false), "2025-09-01", "2025-10-01", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr, err := Projector{}.Project(tt.ob, day(t, tt.today))
			require.NoError(t, err)
			assert.Equal(t, tt.want, pr.Days)
			assert.Equal(t, tt.wantDue, pr.Due.Format(DayLayout))
		})
	}
}

func TestProject_LegacyRollover(t *testing.T) {
	p := Projector{LegacyRollover: true}

	pr, err := p.Project(obligation(5, model.Monthly, false), day(t, "2024-03-10"))
	require.NoError(t, err)
	assert.Equal(t, 26, pr.Days)
	assert.Equal(t, "2024-04-05", pr.Due.Format(DayLayout))

	pr, err = p.Project(obligation(25, model.Bimonthly, false), day(t, "2025-01-30"))
	require.NoError(t, err)
	assert.Equal(t, 54, pr.Days)
	assert.Equal(t, "2025-03-25", pr.Due.Format(DayLayout))

	// Not yet elapsed: identical to the default projector.
	pr, err = p.Project(obligation(18, model.Monthly, false), day(t, "2024-12-18"))
	require.NoError(t, err)
	assert.Equal(t, 0, pr.Days)
}

func TestDaysUntilDue_IgnoresTimeOfDay(t *testing.T) {
	ob := obligation(5, model.Monthly, false)
	morning := time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)
	night := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)

	a, err := DaysUntilDue(ob, morning)
	require.NoError(t, err)
	b, err := DaysUntilDue(ob, night)
	require.NoError(t, err)
	assert.Equal(t, -5, a)
	assert.Equal(t, a, b)
}

func TestDaysUntilDue_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// DST ends 2024-11-03 and starts 2024-03-10 in New York.
	fall, err := DaysUntilDue(obligation(10, model.Monthly, false), time.Date(2024, 11, 1, 12, 0, 0, 0, ny))
	require.NoError(t, err)
	assert.Equal(t, 9, fall)

	spring, err := DaysUntilDue(obligation(15, model.Monthly, false), time.Date(2024, 3, 5, 12, 0, 0, 0, ny))
	require.NoError(t, err)
	assert.Equal(t, 10, spring)
}

func TestDaysUntilDue_UnpaidMonthlyCountsDownDaily(t *testing.T) {
	ob := obligation(18, model.Monthly, false)
	start := day(t, "2025-01-01")

	prev, err := DaysUntilDue(ob, start)
	require.NoError(t, err)
	assert.Equal(t, 17, prev)

	for i := 1; i < 31; i++ {
		today := start.AddDate(0, 0, i)
		got, err := DaysUntilDue(ob, today)
		require.NoError(t, err)
		assert.Equal(t, prev-1, got, "on %s", today.Format(DayLayout))
		if today.Day() == 18 {
			assert.Zero(t, got)
		}
		prev = got
	}
}

func TestDaysUntilDue_PaidNeverNegative(t *testing.T) {
	start := day(t, "2024-01-01")
	for _, period := range []model.Period{model.Monthly, model.Bimonthly} {
		for dueDay := 1; dueDay <= 31; dueDay++ {
			ob := obligation(dueDay, period, true)
			for i := 0; i < 731; i++ {
				today := start.AddDate(0, 0, i)
				got, err := DaysUntilDue(ob, today)
				require.NoError(t, err)
				if got < 0 {
					t.Fatalf("period=%d dueDay=%d today=%s: days = %d, want >= 0",
						period, dueDay, today.Format(DayLayout), got)
				}
			}
		}
	}
}

func TestDaysUntilDue_Idempotent(t *testing.T) {
	ob := obligation(25, model.Bimonthly, false)
	today := day(t, "2024-12-01")

	first, err := DaysUntilDue(ob, today)
	require.NoError(t, err)
	second, err := DaysUntilDue(ob, today)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProject_ValidationErrors(t *testing.T) {
	today := day(t, "2024-12-01")
	tests := []struct {
		name  string
		ob    model.Obligation
		field string
	}{
		{"missing due day", obligation(0, model.Monthly, false), "dueDay"},
		{"due day too large", obligation(32, model.Monthly, false), "dueDay"},
		{"zero period", obligation(5, 0, false), "periodMonths"},
		{"quarterly period", obligation(5, 3, false), "periodMonths"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DaysUntilDue(tt.ob, today)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestProject_ZeroToday(t *testing.T) {
	_, err := DaysUntilDue(obligation(5, model.Monthly, false), time.Time{})
	var cerr *ClockError
	assert.True(t, errors.As(err, &cerr))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-12-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDay("12/01/2024", time.UTC)
	var cerr *ClockError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "12/01/2024", cerr.Input)
}

func TestToday(t *testing.T) {
	got, err := Today(FixedClock{T: time.Date(2024, 12, 18, 15, 4, 5, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, day(t, "2024-12-18"), got)

	_, err = Today(FixedClock{})
	var cerr *ClockError
	assert.True(t, errors.As(err, &cerr))
}
