package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/paytrack/internal/model"
)

// Remote is the document endpoint. *Client implements it.
type Remote interface {
	Fetch(ctx context.Context) (Document, string, error)
	Put(ctx context.Context, doc Document, version string) (string, error)
}

// Local is the obligation store as seen by sync.
type Local interface {
	List(ctx context.Context) ([]model.Obligation, error)
	ReplaceAll(ctx context.Context, obs []model.Obligation) error
	Meta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
}

// Meta keys kept in the local store.
const (
	MetaVersion  = "sync.version"
	MetaSyncedAt = "sync.synced_at"
)

// SyncError reports a failed pull or push. Local data is never modified by
// a failed push.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Syncer moves the obligation collection between the local store and the
// remote document. Local data stays authoritative.
type Syncer struct {
	Remote Remote
	Local  Local
	Now    func() time.Time
}

func (s *Syncer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Pull replaces local obligations with the remote document and returns how
// many were loaded.
func (s *Syncer) Pull(ctx context.Context) (int, error) {
	doc, version, err := s.Remote.Fetch(ctx)
	if err != nil {
		return 0, &SyncError{Op: "pull", Err: err}
	}
	obs, err := doc.Obligations()
	if err != nil {
		return 0, &SyncError{Op: "pull", Err: err}
	}
	if err := s.Local.ReplaceAll(ctx, obs); err != nil {
		return 0, &SyncError{Op: "pull", Err: err}
	}
	if err := s.record(ctx, version); err != nil {
		return len(obs), &SyncError{Op: "pull", Err: err}
	}
	return len(obs), nil
}

// Push writes the local collection to the remote document. The stored
// version is used when known, otherwise it is fetched first. When the
// remote changed underneath, its document is reloaded and merged with the
// local one before a single retry; a second conflict is returned.
func (s *Syncer) Push(ctx context.Context) error {
	obs, err := s.Local.List(ctx)
	if err != nil {
		return &SyncError{Op: "push", Err: err}
	}

	version, err := s.Local.Meta(ctx, MetaVersion)
	if err != nil {
		return &SyncError{Op: "push", Err: err}
	}
	if version == "" {
		if version, err = s.remoteVersion(ctx); err != nil {
			return &SyncError{Op: "push", Err: err}
		}
	}

	next, err := s.Remote.Put(ctx, FromObligations(obs, s.now()), version)
	if errors.Is(err, ErrConflict) {
		var merged []model.Obligation
		merged, version, err = s.reload(ctx, obs)
		if err != nil {
			return &SyncError{Op: "push", Err: err}
		}
		if next, err = s.Remote.Put(ctx, FromObligations(merged, s.now()), version); err != nil {
			return &SyncError{Op: "push", Err: err}
		}
		if len(merged) != len(obs) {
			if err := s.Local.ReplaceAll(ctx, merged); err != nil {
				return &SyncError{Op: "push", Err: err}
			}
		}
	}
	if err != nil {
		return &SyncError{Op: "push", Err: err}
	}

	if err := s.record(ctx, next); err != nil {
		return &SyncError{Op: "push", Err: err}
	}
	return nil
}

// reload fetches the current remote document and merges it into local.
func (s *Syncer) reload(ctx context.Context, local []model.Obligation) ([]model.Obligation, string, error) {
	doc, version, err := s.Remote.Fetch(ctx)
	if errors.Is(err, ErrNotFound) {
		return local, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	remote, err := doc.Obligations()
	if err != nil {
		return nil, "", err
	}
	return Merge(local, remote), version, nil
}

// Merge combines two collections by id. Local records win for ids both
// hold; records only the remote has are appended in remote order.
func Merge(local, remote []model.Obligation) []model.Obligation {
	seen := make(map[string]bool, len(local))
	out := make([]model.Obligation, 0, len(local)+len(remote))
	for _, o := range local {
		seen[o.ID] = true
		out = append(out, o)
	}
	for _, o := range remote {
		if !seen[o.ID] {
			seen[o.ID] = true
			out = append(out, o)
		}
	}
	return out
}

// remoteVersion returns the current version token, or "" when the
// document does not exist yet.
func (s *Syncer) remoteVersion(ctx context.Context) (string, error) {
	_, version, err := s.Remote.Fetch(ctx)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return version, err
}

func (s *Syncer) record(ctx context.Context, version string) error {
	if err := s.Local.SetMeta(ctx, MetaVersion, version); err != nil {
		return err
	}
	return s.Local.SetMeta(ctx, MetaSyncedAt, s.now().UTC().Format(time.RFC3339))
}
