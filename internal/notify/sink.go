// Package notify delivers payment reminders.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// Notification is one reminder for one obligation.
type Notification struct {
	ObligationID string    `json:"obligation_id"`
	Status       string    `json:"status"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Tag          string    `json:"tag"`
	Due          time.Time `json:"due"`
	On           time.Time `json:"on"` // day the reminder was evaluated
}

// Sink receives notifications.
type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n Notification) error

// Notify implements Sink.
func (f SinkFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// LogSink writes notifications to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

// Notify implements Sink.
func (s LogSink) Notify(ctx context.Context, n Notification) error {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, n.Message,
		"title", n.Title,
		"obligation", n.ObligationID,
		"status", n.Status,
		"tag", n.Tag,
	)
	return nil
}

// ExecSink runs an external notifier, e.g. notify-send, with the title and
// message as its last two arguments.
type ExecSink struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// Notify implements Sink.
func (s ExecSink) Notify(ctx context.Context, n Notification) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, s.Args...), n.Title, n.Message)
	cmd := exec.CommandContext(ctx, s.Command, args...) //nolint:gosec // command comes from the local user's config
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notify: %s: %w: %s", s.Command, err, out)
	}
	return nil
}

// Multi fans a notification out to every sink and joins their errors.
type Multi []Sink

// Notify implements Sink.
func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Marker records which tags were delivered on which day.
type Marker interface {
	// MarkNotified records tag for day and reports whether it was new.
	MarkNotified(ctx context.Context, tag string, day time.Time) (bool, error)
	// UnmarkNotified forgets tag for day so a later sweep can retry it.
	UnmarkNotified(ctx context.Context, tag string, day time.Time) error
}

// Deduper forwards a notification at most once per tag per day. The tag is
// claimed before delivery and released again when delivery fails.
type Deduper struct {
	Next Sink
	Log  Marker
}

// ErrDuplicate is returned when a notification was already delivered today.
var ErrDuplicate = errors.New("notify: already delivered today")

// Notify implements Sink.
func (d Deduper) Notify(ctx context.Context, n Notification) error {
	fresh, err := d.Log.MarkNotified(ctx, n.Tag, n.On)
	if err != nil {
		return fmt.Errorf("notify: recording %s: %w", n.Tag, err)
	}
	if !fresh {
		return ErrDuplicate
	}
	if err := d.Next.Notify(ctx, n); err != nil {
		if uerr := d.Log.UnmarkNotified(ctx, n.Tag, n.On); uerr != nil {
			return errors.Join(err, fmt.Errorf("notify: releasing %s: %w", n.Tag, uerr))
		}
		return err
	}
	return nil
}
