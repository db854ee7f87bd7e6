// Package store provides SQLite-backed persistence for obligations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/paytrack/internal/model"
	"github.com/theirongolddev/paytrack/internal/schedule"

	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound is returned when no obligation matches an id.
	ErrNotFound = errors.New("obligation not found")
	// ErrAmbiguousID is returned when an id prefix matches more than one obligation.
	ErrAmbiguousID = errors.New("id prefix matches more than one obligation")
	// ErrExists is returned when adding an obligation whose id is taken.
	ErrExists = errors.New("obligation already exists")
)

// Store is the obligation collection.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = `id, kind, custom_name, custom_symbol, amount, due_day, period_months,
	paid, paid_date, paid_amount, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanObligation(row scanner) (model.Obligation, error) {
	var o model.Obligation
	var kind, name, symbol, amount, createdAt string
	var period, paid int
	var paidDate, paidAmount sql.NullString
	if err := row.Scan(&o.ID, &kind, &name, &symbol, &amount, &o.DueDay, &period,
		&paid, &paidDate, &paidAmount, &createdAt); err != nil {
		return o, err
	}

	cat, err := model.ParseCategory(kind, name, symbol)
	if err != nil {
		return o, fmt.Errorf("obligation %s: %w", o.ID, err)
	}
	o.Category = cat
	o.Period = model.Period(period)
	o.Paid = paid != 0

	if o.Amount, err = decimal.NewFromString(amount); err != nil {
		return o, fmt.Errorf("obligation %s: amount: %w", o.ID, err)
	}
	if paidAmount.Valid {
		a, err := decimal.NewFromString(paidAmount.String)
		if err != nil {
			return o, fmt.Errorf("obligation %s: paid amount: %w", o.ID, err)
		}
		o.PaidAmount = &a
	}
	if paidDate.Valid {
		if t, ok := parseTime(paidDate.String); ok {
			o.PaidDate = &t
		}
	}
	o.CreatedAt, _ = parseTime(createdAt)
	return o, nil
}

func parseTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(schedule.DayLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// List returns every obligation in insertion order.
func (s *Store) List(ctx context.Context) ([]model.Obligation, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM obligations ORDER BY position, id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Count returns the number of stored obligations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM obligations").Scan(&n)
	return n, err
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func get(ctx context.Context, q queryer, id string) (model.Obligation, error) {
	o, err := scanObligation(q.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM obligations WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return o, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return o, err
}

// Get returns the obligation with the exact id.
func (s *Store) Get(ctx context.Context, id string) (model.Obligation, error) {
	return get(ctx, s.db, id)
}

// Resolve finds an obligation by exact id or by a unique id prefix.
func (s *Store) Resolve(ctx context.Context, idOrPrefix string) (model.Obligation, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return model.Obligation{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	o, err := s.Get(ctx, idOrPrefix)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return o, err
	}

	all, err := s.List(ctx)
	if err != nil {
		return model.Obligation{}, err
	}
	var matches []model.Obligation
	for _, c := range all {
		if strings.HasPrefix(c.ID, idOrPrefix) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return model.Obligation{}, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return model.Obligation{}, fmt.Errorf("%w: %s", ErrAmbiguousID, idOrPrefix)
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func customFields(c model.Category) (name, symbol string) {
	if c.IsCustom() {
		return c.Name(), c.Symbol()
	}
	return "", ""
}

func paidFields(o model.Obligation) (paidDate, paidAmount any) {
	if o.PaidDate != nil {
		paidDate = formatTime(*o.PaidDate)
	}
	if o.PaidAmount != nil {
		paidAmount = o.PaidAmount.String()
	}
	return paidDate, paidAmount
}

func insert(ctx context.Context, ex execer, o model.Obligation, position int) error {
	name, symbol := customFields(o.Category)
	paidDate, paidAmount := paidFields(o)
	_, err := ex.ExecContext(ctx, `INSERT INTO obligations
		(id, position, kind, custom_name, custom_symbol, amount, due_day, period_months,
		 paid, paid_date, paid_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, position, string(o.Category.Kind), name, symbol, o.Amount.String(),
		o.DueDay, int(o.Period), boolInt(o.Paid), paidDate, paidAmount, formatTime(o.CreatedAt),
	)
	return err
}

// Add appends o to the collection. An empty id is filled with a fresh one.
func (s *Store) Add(ctx context.Context, o model.Obligation) (model.Obligation, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	if err := o.Validate(); err != nil {
		return o, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return o, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := get(ctx, tx, o.ID); err == nil {
		return o, fmt.Errorf("%w: %s", ErrExists, o.ID)
	} else if !errors.Is(err, ErrNotFound) {
		return o, err
	}

	var next int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), 0) + 1 FROM obligations").Scan(&next); err != nil {
		return o, err
	}
	if err := insert(ctx, tx, o, next); err != nil {
		return o, err
	}
	return o, tx.Commit()
}

// Update applies patch to the obligation with id and returns the result.
// The stored row is left unchanged if the patched obligation is invalid.
func (s *Store) Update(ctx context.Context, id string, patch model.Patch) (model.Obligation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Obligation{}, err
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := get(ctx, tx, id)
	if err != nil {
		return model.Obligation{}, err
	}
	next := patch.Apply(cur)
	if err := next.Validate(); err != nil {
		return cur, err
	}

	name, symbol := customFields(next.Category)
	paidDate, paidAmount := paidFields(next)
	_, err = tx.ExecContext(ctx, `UPDATE obligations SET
		kind = ?, custom_name = ?, custom_symbol = ?, amount = ?, due_day = ?,
		period_months = ?, paid = ?, paid_date = ?, paid_amount = ?
		WHERE id = ?`,
		string(next.Category.Kind), name, symbol, next.Amount.String(), next.DueDay,
		int(next.Period), boolInt(next.Paid), paidDate, paidAmount, id,
	)
	if err != nil {
		return cur, err
	}
	return next, tx.Commit()
}

// Delete removes the obligation with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM obligations WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ReplaceAll swaps the whole collection for obs, keeping their order.
// Nothing is written if any obligation is invalid.
func (s *Store) ReplaceAll(ctx context.Context, obs []model.Obligation) error {
	seen := make(map[string]bool, len(obs))
	for _, o := range obs {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("obligation %s: %w", o.ID, err)
		}
		if o.ID == "" || seen[o.ID] {
			return fmt.Errorf("obligation %q: %w", o.ID, ErrExists)
		}
		seen[o.ID] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM obligations"); err != nil {
		return err
	}
	for i, o := range obs {
		if o.CreatedAt.IsZero() {
			o.CreatedAt = time.Now()
		}
		if err := insert(ctx, tx, o, i+1); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MarkNotified records that the reminder tag was delivered on day. It
// reports false when the tag was already recorded for that day.
func (s *Store) MarkNotified(ctx context.Context, tag string, day time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO notifications (tag, day, sent_at) VALUES (?, ?, ?)",
		tag, day.Format(schedule.DayLayout), formatTime(time.Now()))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UnmarkNotified removes the record for tag on day.
func (s *Store) UnmarkNotified(ctx context.Context, tag string, day time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE tag = ? AND day = ?", tag, day.Format(schedule.DayLayout))
	return err
}

// PruneNotifications drops delivery records for days before cutoff.
func (s *Store) PruneNotifications(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE day < ?", cutoff.Format(schedule.DayLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Meta returns the value stored under key, or "" when unset.
func (s *Store) Meta(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetMeta stores value under key.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}
