package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		year, month, day int
		wantY            int
		wantM            time.Month
		wantD            int
	}{
		{2024, 12, 25, 2024, time.December, 25},
		{2024, 13, 25, 2025, time.January, 25},
		{2024, 14, 31, 2025, time.March, 3},
		{2024, 4, 31, 2024, time.May, 1},
		{2024, 2, 31, 2024, time.March, 2},
		{2023, 2, 31, 2023, time.March, 3},
		{2024, 0, 15, 2023, time.December, 15},
		{2024, 1, 0, 2023, time.December, 31},
	}

	for _, tt := range tests {
		y, m, d := Normalize(tt.year, tt.month, tt.day)
		assert.Equal(t, tt.wantY, y, "Normalize(%d, %d, %d) year", tt.year, tt.month, tt.day)
		assert.Equal(t, tt.wantM, m, "Normalize(%d, %d, %d) month", tt.year, tt.month, tt.day)
		assert.Equal(t, tt.wantD, d, "Normalize(%d, %d, %d) day", tt.year, tt.month, tt.day)
	}
}

// Normalize must agree with the standard library's own overflow handling.
func TestNormalize_MatchesTimeDate(t *testing.T) {
	for year := 2023; year <= 2025; year++ {
		for month := -2; month <= 15; month++ {
			for d := 1; d <= 31; d++ {
				want := time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
				y, m, dd := Normalize(year, month, d)
				if y != want.Year() || m != want.Month() || dd != want.Day() {
					t.Fatalf("Normalize(%d, %d, %d) = %d-%02d-%02d, want %s",
						year, month, d, y, m, dd, want.Format(DayLayout))
				}
			}
		}
	}
}

func TestAddMonths(t *testing.T) {
	y, m := AddMonths(2024, time.December, 1)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.January, m)

	y, m = AddMonths(2024, time.January, -1)
	assert.Equal(t, 2023, y)
	assert.Equal(t, time.December, m)

	y, m = AddMonths(2024, time.November, 2)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.January, m)
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2023, time.February))
	assert.Equal(t, 28, DaysIn(1900, time.February))
	assert.Equal(t, 29, DaysIn(2000, time.February))
	assert.Equal(t, 30, DaysIn(2024, time.April))
	assert.Equal(t, 31, DaysIn(2024, time.December))
}
