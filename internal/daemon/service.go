// Package daemon provides the long-running reminder service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/paytrack/internal/alert"
	"github.com/theirongolddev/paytrack/internal/model"
	"github.com/theirongolddev/paytrack/internal/notify"
	"github.com/theirongolddev/paytrack/internal/schedule"
)

// Delivery modes.
const (
	ModeHourly = "hourly"
	ModeDaily  = "daily"
)

// Source lists the current obligations.
type Source interface {
	List(ctx context.Context) ([]model.Obligation, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Source    Source
	Sink      notify.Sink   // nil disables delivery
	Marker    notify.Marker // nil disables per-day dedupe
	Clock     schedule.Clock
	Projector schedule.Projector
	Threshold int
	Mode      string
	Hour      int // delivery hour in daily mode
	Logger    *slog.Logger

	Interval     time.Duration
	Addr         string
	EventsBuffer int
}

// NextDue is the closest unpaid obligation.
type NextDue struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Due    time.Time `json:"due"`
	Days   int       `json:"days"`
	Status string    `json:"status"`
}

// Snapshot is a compact obligation state for status/event payloads.
type Snapshot struct {
	At     time.Time    `json:"at"`
	Total  int          `json:"total"`
	Counts alert.Counts `json:"counts"`
	Next   *NextDue     `json:"next,omitempty"`
}

// Delta captures per-status count changes between polls.
type Delta struct {
	Pending  int `json:"pending"`
	Urgent   int `json:"urgent"`
	DueToday int `json:"due_today"`
	Overdue  int `json:"overdue"`
	Paid     int `json:"paid"`
}

func (d Delta) isZero() bool {
	return d == Delta{}
}

// Event types.
const (
	EventSnapshot    = "snapshot"
	EventStatusDelta = "status_delta"
	EventReminder    = "reminder"
)

// Event is emitted when the obligation state changes or a reminder is sent.
type Event struct {
	ID        int64                `json:"id"`
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Snapshot  Snapshot             `json:"snapshot"`
	Delta     Delta                `json:"delta"`
	Reminder  *notify.Notification `json:"reminder,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Mode            string    `json:"mode"`
	Threshold       int       `json:"threshold_days"`
	Summary         Snapshot  `json:"summary"`
	Delivered       int64     `json:"delivered"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// SweepResult is the outcome of one pass over the obligations.
type SweepResult struct {
	Today       time.Time
	Evaluations []alert.Evaluation
	Reminders   []notify.Notification
	Delivered   []notify.Notification
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *slog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	delivered   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Hour
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.Clock == nil {
		cfg.Clock = schedule.SystemClock{}
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeHourly
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		log:       logger.With("component", "daemon"),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.Info("daemon started", "addr", s.cfg.Addr, "interval", s.cfg.Interval, "mode", s.cfg.Mode)

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// deliverNow reports whether reminders go out at now. Daily mode only
// delivers during the configured hour.
func (s *Service) deliverNow(now time.Time) bool {
	if s.cfg.Sink == nil {
		return false
	}
	return s.cfg.Mode != ModeDaily || now.Hour() == s.cfg.Hour
}

// Sweep evaluates every obligation once and delivers due reminders when
// deliver is set. Obligations that fail to evaluate are reported in the
// error but do not stop the rest.
func (s *Service) Sweep(ctx context.Context, deliver bool) (SweepResult, error) {
	today, err := schedule.Today(s.cfg.Clock)
	if err != nil {
		return SweepResult{}, err
	}
	obs, err := s.cfg.Source.List(ctx)
	if err != nil {
		return SweepResult{Today: today}, fmt.Errorf("listing obligations: %w", err)
	}
	// The source may be mutated concurrently; work on a private copy.
	obs = append([]model.Obligation(nil), obs...)

	evals, evalErr := alert.Evaluate(s.cfg.Projector, obs, today, s.cfg.Threshold)
	alert.SortByUrgency(evals)

	res := SweepResult{
		Today:       today,
		Evaluations: evals,
		Reminders:   alert.Reminders(evals, today, s.cfg.Threshold),
	}
	if !deliver || s.cfg.Sink == nil {
		return res, evalErr
	}

	var sink notify.Sink = s.cfg.Sink
	if s.cfg.Marker != nil {
		sink = notify.Deduper{Next: sink, Log: s.cfg.Marker}
	}

	errs := []error{evalErr}
	for _, n := range res.Reminders {
		err := sink.Notify(ctx, n)
		switch {
		case errors.Is(err, notify.ErrDuplicate):
			s.log.Debug("reminder already sent today", "tag", n.Tag)
		case err != nil:
			errs = append(errs, err)
		default:
			res.Delivered = append(res.Delivered, n)
		}
	}
	return res, errors.Join(errs...)
}

func (s *Service) pollOnce(ctx context.Context) {
	now := s.cfg.Clock.Now()
	res, err := s.Sweep(ctx, s.deliverNow(now))
	if err != nil {
		s.log.Error("sweep failed", "error", err)
	}

	s.mu.Lock()
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
	if res.Today.IsZero() {
		s.mu.Unlock()
		return
	}

	snap := snapshotFromEvaluations(res.Evaluations, now)
	prev := s.snapshot
	prevExists := s.hasSnapshot
	s.hasSnapshot = true
	s.snapshot = snap
	s.delivered += int64(len(res.Delivered))

	var events []Event
	if !prevExists {
		events = append(events, Event{Type: EventSnapshot, Timestamp: now, Snapshot: snap})
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		events = append(events, Event{Type: EventStatusDelta, Timestamp: now, Snapshot: snap, Delta: delta})
	}
	for i := range res.Delivered {
		events = append(events, Event{Type: EventReminder, Timestamp: now, Snapshot: snap, Reminder: &res.Delivered[i]})
	}
	for i := range events {
		s.nextEventID++
		events[i].ID = s.nextEventID
	}
	s.mu.Unlock()

	for _, ev := range events {
		s.publishEvent(ev)
	}
	if len(res.Delivered) > 0 {
		s.log.Info("reminders delivered", "count", len(res.Delivered))
	}
}

func snapshotFromEvaluations(evals []alert.Evaluation, at time.Time) Snapshot {
	snap := Snapshot{At: at, Total: len(evals), Counts: alert.Count(evals)}
	for _, e := range evals {
		if e.Obligation.Paid {
			continue
		}
		if snap.Next == nil || e.Days() < snap.Next.Days {
			snap.Next = &NextDue{
				ID:     e.Obligation.ID,
				Name:   e.Obligation.Name(),
				Due:    e.Projection.Due,
				Days:   e.Days(),
				Status: e.Result.Status.String(),
			}
		}
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Pending:  curr.Counts.Pending - prev.Counts.Pending,
		Urgent:   curr.Counts.Urgent - prev.Counts.Urgent,
		DueToday: curr.Counts.DueToday - prev.Counts.DueToday,
		Overdue:  curr.Counts.Overdue - prev.Counts.Overdue,
		Paid:     curr.Counts.Paid - prev.Counts.Paid,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Mode:            s.cfg.Mode,
		Threshold:       s.cfg.Threshold,
		Summary:         s.snapshot,
		Delivered:       s.delivered,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
