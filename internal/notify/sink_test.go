package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memMarker map[string]bool

func (m memMarker) MarkNotified(_ context.Context, tag string, day time.Time) (bool, error) {
	key := tag + "@" + day.Format("2006-01-02")
	if m[key] {
		return false, nil
	}
	m[key] = true
	return true, nil
}

func (m memMarker) UnmarkNotified(_ context.Context, tag string, day time.Time) error {
	delete(m, tag+"@"+day.Format("2006-01-02"))
	return nil
}

func TestDeduperSendsOncePerDay(t *testing.T) {
	var got []Notification
	d := Deduper{
		Next: SinkFunc(func(_ context.Context, n Notification) error {
			got = append(got, n)
			return nil
		}),
		Log: memMarker{},
	}

	day1 := time.Date(2024, 12, 18, 0, 0, 0, 0, time.UTC)
	n := Notification{ObligationID: "luz-001", Tag: "payment-luz-001-2024-12-18", On: day1}

	require.NoError(t, d.Notify(context.Background(), n))
	assert.ErrorIs(t, d.Notify(context.Background(), n), ErrDuplicate)

	n.On = day1.AddDate(0, 0, 1)
	require.NoError(t, d.Notify(context.Background(), n))
	assert.Len(t, got, 2)
}

func TestDeduperRetriesAfterFailedDelivery(t *testing.T) {
	noDisplay := errors.New("notify-send: no display")
	fail := true
	var got []Notification
	d := Deduper{
		Next: SinkFunc(func(_ context.Context, n Notification) error {
			if fail {
				return noDisplay
			}
			got = append(got, n)
			return nil
		}),
		Log: memMarker{},
	}

	day := time.Date(2025, 1, 24, 0, 0, 0, 0, time.UTC)
	n := Notification{ObligationID: "agua-001", Tag: "payment-agua-001-2025-01-25", On: day}

	assert.ErrorIs(t, d.Notify(context.Background(), n), noDisplay)

	fail = false
	require.NoError(t, d.Notify(context.Background(), n), "a failed delivery must not use up the day")
	assert.Len(t, got, 1)
	assert.ErrorIs(t, d.Notify(context.Background(), n), ErrDuplicate)
}

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	m := Multi{
		SinkFunc(func(context.Context, Notification) error { calls++; return boom }),
		SinkFunc(func(context.Context, Notification) error { calls++; return nil }),
	}

	err := m.Notify(context.Background(), Notification{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := LogSink{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	require.NoError(t, s.Notify(context.Background(), Notification{
		ObligationID: "agua-001",
		Status:       "due_today",
		Title:        "💰 Payment reminder",
		Message:      "Agua is due TODAY!",
	}))
	assert.Contains(t, buf.String(), "obligation=agua-001")
	assert.Contains(t, buf.String(), "status=due_today")
}
