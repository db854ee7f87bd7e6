package remote

import (
	"context"
	"crypto/sha1" //nolint:gosec // mirrors git blob ids in the fake server
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/paytrack/internal/model"
)

// fakeGitHub serves a single file through the contents API.
type fakeGitHub struct {
	mu       sync.Mutex
	content  []byte
	sha      string
	puts     int
	conflict int // number of PUTs to reject with 409
	status   int // forced status for every request
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "token secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	if r.URL.Path != "/repos/acme/bills/contents/data.json" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		if f.content == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		enc := base64.StdEncoding.EncodeToString(f.content)
		// wrap like the real API does
		var wrapped strings.Builder
		for i := 0; i < len(enc); i += 60 {
			end := min(i+60, len(enc))
			wrapped.WriteString(enc[i:end] + "\n")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sha": f.sha, "content": wrapped.String(), "encoding": "base64",
		})
	case http.MethodPut:
		f.puts++
		var req putRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if f.conflict > 0 || req.SHA != f.sha {
			if f.conflict > 0 {
				f.conflict--
			}
			w.WriteHeader(http.StatusConflict)
			return
		}
		content, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.set(content)
		_ = json.NewEncoder(w).Encode(map[string]any{"content": map[string]string{"sha": f.sha}})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeGitHub) set(content []byte) {
	sum := sha1.Sum(content) //nolint:gosec
	f.content = content
	f.sha = hex.EncodeToString(sum[:])
}

func newClient(t *testing.T, f *fakeGitHub) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c := NewClient(Options{Owner: "acme", Repo: "bills", Token: "secret", BaseURL: srv.URL + "/"})
	require.NotNil(t, c)
	return c
}

type memLocal struct {
	obs  []model.Obligation
	meta map[string]string
}

func (m *memLocal) List(context.Context) ([]model.Obligation, error) { return m.obs, nil }

func (m *memLocal) ReplaceAll(_ context.Context, obs []model.Obligation) error {
	m.obs = obs
	return nil
}

func (m *memLocal) Meta(_ context.Context, key string) (string, error) { return m.meta[key], nil }

func (m *memLocal) SetMeta(_ context.Context, key, value string) error {
	if m.meta == nil {
		m.meta = map[string]string{}
	}
	m.meta[key] = value
	return nil
}

const originalFile = `{
  "services": [
    {"id": "bodega-001", "type": "bodega", "name": "Bodega", "amount": 0, "dueDay": 1, "periodMonths": 1, "paid": true, "paidDate": "2024-12-01"},
    {"id": "agua-001", "type": "agua", "name": "Agua", "amount": 45000, "dueDay": 25, "periodMonths": 2, "paid": false, "paidDate": null},
    {"id": "x1", "type": "otro", "amount": 1200.5, "dueDay": 3, "periodMonths": 1, "paid": true,
     "paidDate": "2025-01-03T14:00:00.000Z", "paidAmount": 1200.5, "customName": "Gimnasio", "customEmoji": "🏋️",
     "createdAt": "2024-11-30T10:00:00.000Z"}
  ],
  "lastUpdated": "2025-01-03T14:00:00.000Z"
}`

func TestNewClient_RequiresCoordinates(t *testing.T) {
	assert.Nil(t, NewClient(Options{Owner: "acme", Repo: "bills"}))
	assert.Nil(t, NewClient(Options{Owner: "acme", Token: "t"}))
	c := NewClient(Options{Owner: "acme", Repo: "bills", Token: " t "})
	require.NotNil(t, c)
	assert.Equal(t, "acme/bills:data.json", c.Location())
}

func TestFetch_DecodesOriginalFormat(t *testing.T) {
	f := &fakeGitHub{}
	f.set([]byte(originalFile))
	c := newClient(t, f)

	doc, sha, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.sha, sha)
	require.Len(t, doc.Services, 3)

	obs, err := doc.Obligations()
	require.NoError(t, err)
	assert.Equal(t, model.Bimonthly, obs[1].Period)
	assert.True(t, obs[1].Amount.Equal(decimal.NewFromInt(45000)))
	assert.Nil(t, obs[1].PaidDate)

	gym := obs[2]
	assert.Equal(t, "Gimnasio", gym.Name())
	require.NotNil(t, gym.PaidAmount)
	assert.True(t, gym.PaidAmount.Equal(decimal.RequireFromString("1200.5")))
	require.NotNil(t, gym.PaidDate)
	assert.Equal(t, 2025, gym.PaidDate.Year())
}

func TestFetch_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusUnprocessableEntity, ErrConflict},
	}
	for _, tt := range tests {
		c := newClient(t, &fakeGitHub{status: tt.status})
		_, _, err := c.Fetch(context.Background())
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}
}

func TestDocumentRejectsUnknownCategory(t *testing.T) {
	doc, err := decodeDocument([]byte(`{"services":[{"id":"a","type":"gas","dueDay":1,"periodMonths":1}]}`))
	require.NoError(t, err)
	_, err = doc.Obligations()
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "category", ve.Field)
}

func TestPull(t *testing.T) {
	f := &fakeGitHub{}
	f.set([]byte(originalFile))
	local := &memLocal{}
	s := &Syncer{Remote: newClient(t, f), Local: local}

	n, err := s.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, local.obs, 3)
	assert.Equal(t, f.sha, local.meta[MetaVersion])
}

func sampleLocal() *memLocal {
	return &memLocal{obs: []model.Obligation{{
		ID:       "luz-001",
		Category: model.MustBuiltin(model.KindLuz),
		Amount:   decimal.NewFromInt(80000),
		DueDay:   18,
		Period:   model.Monthly,
	}}}
}

func TestPush_CreatesMissingDocument(t *testing.T) {
	f := &fakeGitHub{}
	local := sampleLocal()
	now := time.Date(2025, time.January, 20, 12, 0, 0, 0, time.UTC)
	s := &Syncer{Remote: newClient(t, f), Local: local, Now: func() time.Time { return now }}

	require.NoError(t, s.Push(context.Background()))
	assert.Equal(t, f.sha, local.meta[MetaVersion])

	var doc map[string]any
	require.NoError(t, json.Unmarshal(f.content, &doc))
	assert.Equal(t, "2025-01-20T12:00:00Z", doc["lastUpdated"])
	svc := doc["services"].([]any)[0].(map[string]any)
	assert.Equal(t, "luz", svc["type"])
	assert.InDelta(t, 80000, svc["amount"], 0) // bare number, not a string
	assert.Nil(t, svc["paidDate"])
}

func TestPush_ConflictKeepsRemoteOnlyServices(t *testing.T) {
	f := &fakeGitHub{}
	f.set([]byte(originalFile))
	local := sampleLocal()
	local.meta = map[string]string{MetaVersion: "stale"}
	s := &Syncer{Remote: newClient(t, f), Local: local}

	require.NoError(t, s.Push(context.Background()))
	assert.Equal(t, 2, f.puts)
	assert.Equal(t, f.sha, local.meta[MetaVersion])

	doc, err := decodeDocument(f.content)
	require.NoError(t, err)
	remote, err := doc.Obligations()
	require.NoError(t, err)
	require.Len(t, remote, 4, "services written by another device must survive the push")

	byID := map[string]model.Obligation{}
	for _, o := range remote {
		byID[o.ID] = o
	}
	assert.Equal(t, "80000", byID["luz-001"].Amount.String(), "local edit wins for shared ids")
	assert.Contains(t, byID, "bodega-001")
	assert.Contains(t, byID, "agua-001")
	assert.Contains(t, byID, "x1")

	assert.Len(t, local.obs, 4, "local store picks up the merged services")
}

func TestMerge(t *testing.T) {
	a := model.Obligation{ID: "a", Amount: decimal.NewFromInt(1)}
	b := model.Obligation{ID: "b"}
	remoteA := model.Obligation{ID: "a", Amount: decimal.NewFromInt(2)}
	c := model.Obligation{ID: "c"}

	got := Merge([]model.Obligation{a, b}, []model.Obligation{c, remoteA})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "1", got[0].Amount.String())

	assert.Empty(t, Merge(nil, nil))
}

func TestPush_SecondConflictFails(t *testing.T) {
	f := &fakeGitHub{conflict: 2}
	f.set([]byte(originalFile))
	before := f.sha
	local := sampleLocal()
	local.meta = map[string]string{MetaVersion: before}
	s := &Syncer{Remote: newClient(t, f), Local: local}

	err := s.Push(context.Background())
	var se *SyncError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "push", se.Op)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 2, f.puts)

	assert.Len(t, local.obs, 1)
	assert.Equal(t, before, local.meta[MetaVersion])
	assert.Equal(t, before, f.sha)
}

func TestPush_Unauthorized(t *testing.T) {
	f := &fakeGitHub{}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c := NewClient(Options{Owner: "acme", Repo: "bills", Token: "wrong", BaseURL: srv.URL})

	s := &Syncer{Remote: c, Local: sampleLocal()}
	err := s.Push(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}
