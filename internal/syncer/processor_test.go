package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krawl-app/krawl-offline/internal/logging"
	"github.com/krawl-app/krawl-offline/internal/models"
	"github.com/krawl-app/krawl-offline/internal/store"
	"github.com/krawl-app/krawl-offline/internal/store/syncqueue"
)

type recordingClient struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error // keyed by "op entityID"
}

func (c *recordingClient) record(op, entityID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := op + " " + entityID
	c.calls = append(c.calls, key)
	return c.fail[key]
}

func (c *recordingClient) GetTrail(ctx context.Context, id string) (*models.TrailDetail, error) {
	return nil, errors.New("not implemented")
}
func (c *recordingClient) GetGem(ctx context.Context, id string) (*models.GemDetail, error) {
	return nil, errors.New("not implemented")
}
func (c *recordingClient) CreateGem(ctx context.Context, data json.RawMessage) error {
	return c.record("create-gem", "")
}
func (c *recordingClient) CreateTrail(ctx context.Context, data json.RawMessage) error {
	return c.record("create-trail", "")
}
func (c *recordingClient) UpdateGem(ctx context.Context, id string, data json.RawMessage) error {
	return c.record("update-gem", id)
}
func (c *recordingClient) UpdateTrail(ctx context.Context, id string, data json.RawMessage) error {
	return c.record("update-trail", id)
}
func (c *recordingClient) DeleteGem(ctx context.Context, id string) error {
	return c.record("delete-gem", id)
}
func (c *recordingClient) DeleteTrail(ctx context.Context, id string) error {
	return c.record("delete-trail", id)
}
func (c *recordingClient) Ping(ctx context.Context) error { return nil }

type onlineStub bool

func (o onlineStub) IsOnline(ctx context.Context) bool { return bool(o) }

func setupQueue(t *testing.T) syncqueue.Repository {
	t.Helper()
	repos, db, err := store.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.SyncQueue
}

func newTestProcessor(repo syncqueue.Repository, client *recordingClient, online bool) *Processor {
	p := NewProcessor(repo, client, onlineStub(online), logging.NewNop(), nil)
	p.interItemDelay = 0
	p.completedGrace = time.Hour // keep completed rows visible to assertions
	return p
}

func enqueue(t *testing.T, repo syncqueue.Repository, id string, opType models.SyncOpType, entityID string, createdAt time.Time) *models.SyncQueueRecord {
	t.Helper()
	item := &models.SyncQueueRecord{
		ID:        id,
		Type:      opType,
		EntityID:  entityID,
		Data:      []byte(`{"name":"x"}`),
		CreatedAt: createdAt,
		Status:    models.SyncPending,
	}
	require.NoError(t, repo.Put(context.Background(), item))
	return item
}

func TestRetryDelay_DoublesAndCaps(t *testing.T) {
	assert.Equal(t, time.Second, RetryDelay(0))
	assert.Equal(t, 2*time.Second, RetryDelay(1))
	assert.Equal(t, 4*time.Second, RetryDelay(2))
	assert.Equal(t, 32*time.Second, RetryDelay(5))
	assert.Equal(t, time.Minute, RetryDelay(6))
	assert.Equal(t, time.Minute, RetryDelay(20))
	assert.Equal(t, time.Minute, RetryDelay(200))
}

func TestProcessQueue_OfflineIsNoOp(t *testing.T) {
	repo := setupQueue(t)
	client := &recordingClient{}
	p := newTestProcessor(repo, client, false)

	enqueue(t, repo, "q-1", models.SyncCreateGem, "", time.Now().UTC())
	require.NoError(t, p.ProcessQueue(context.Background()))

	assert.Empty(t, client.calls)
	got, err := repo.Get(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncPending, got.Status)
}

func TestProcessQueue_UploadsInCreationOrder(t *testing.T) {
	repo := setupQueue(t)
	client := &recordingClient{}
	p := newTestProcessor(repo, client, true)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	enqueue(t, repo, "q-2", models.SyncUpdateGem, "g-1", base.Add(time.Second))
	enqueue(t, repo, "q-1", models.SyncCreateTrail, "", base)
	enqueue(t, repo, "q-3", models.SyncDeleteTrail, "t-9", base.Add(2*time.Second))

	require.NoError(t, p.ProcessQueue(context.Background()))

	assert.Equal(t, []string{"create-trail ", "update-gem g-1", "delete-trail t-9"}, client.calls)

	for _, id := range []string{"q-1", "q-2", "q-3"} {
		got, err := repo.Get(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, got, id)
		assert.Equal(t, models.SyncCompleted, got.Status, id)
	}
}

func TestProcessQueue_FailureRequeuesWithBackoff(t *testing.T) {
	repo := setupQueue(t)
	client := &recordingClient{fail: map[string]error{"create-gem ": errors.New("server 500")}}
	p := newTestProcessor(repo, client, true)

	enqueue(t, repo, "q-1", models.SyncCreateGem, "", time.Now().UTC())
	require.NoError(t, p.ProcessQueue(context.Background()))

	got, err := repo.Get(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncPending, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, "server 500", got.Error)
	require.NotNil(t, got.LastRetryAt)

	// Immediately re-draining skips the item: it is inside its 1s window.
	require.NoError(t, p.ProcessQueue(context.Background()))
	assert.Len(t, client.calls, 1)

	// Once the window elapses the item is retried.
	p.now = func() time.Time { return time.Now().Add(10 * time.Second) }
	require.NoError(t, p.ProcessQueue(context.Background()))
	assert.Len(t, client.calls, 2)
}

func TestProcessQueue_GivesUpAfterMaxRetries(t *testing.T) {
	repo := setupQueue(t)
	client := &recordingClient{}
	p := newTestProcessor(repo, client, true)

	item := enqueue(t, repo, "q-1", models.SyncCreateGem, "", time.Now().UTC())
	item.RetryCount = 5
	require.NoError(t, repo.Put(context.Background(), item))

	require.NoError(t, p.ProcessQueue(context.Background()))

	assert.Empty(t, client.calls, "terminal item is not uploaded")
	got, err := repo.Get(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncFailed, got.Status)
	assert.Equal(t, "max retries exceeded", got.Error)

	// Failed is terminal: later drains ignore it.
	require.NoError(t, p.ProcessQueue(context.Background()))
	got, err = repo.Get(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncFailed, got.Status)
}

func TestProcessQueue_ReportsResults(t *testing.T) {
	repo := setupQueue(t)
	client := &recordingClient{fail: map[string]error{"delete-gem g-1": errors.New("conflict")}}

	var results []string
	p := NewProcessor(repo, client, onlineStub(true), logging.NewNop(), func(item *models.SyncQueueRecord, err error) {
		if err != nil {
			results = append(results, item.ID+":error")
		} else {
			results = append(results, item.ID+":ok")
		}
	})
	p.interItemDelay = 0
	p.completedGrace = time.Hour

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	enqueue(t, repo, "q-1", models.SyncCreateGem, "", base)
	enqueue(t, repo, "q-2", models.SyncDeleteGem, "g-1", base.Add(time.Second))

	require.NoError(t, p.ProcessQueue(context.Background()))
	assert.Equal(t, []string{"q-1:ok", "q-2:error"}, results)
}

func TestQueue_EnqueueCreatesPendingItem(t *testing.T) {
	repo := setupQueue(t)
	q := NewQueue(repo)
	ctx := context.Background()

	item, err := q.Enqueue(ctx, models.SyncUpdateTrail, "t-1", json.RawMessage(`{"name":"renamed"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, models.SyncPending, item.Status)
	assert.Zero(t, item.RetryCount)

	n, err := q.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.Get(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t-1", got.EntityID)
}

func TestScheduler_SyncNowIsGuarded(t *testing.T) {
	repo := setupQueue(t)
	client := &recordingClient{}
	p := newTestProcessor(repo, client, true)
	s := NewScheduler(p, repo, onlineStub(true), logging.NewNop())

	assert.True(t, s.SyncNow(context.Background()))

	s.syncing.Store(true)
	assert.False(t, s.SyncNow(context.Background()), "concurrent drain is skipped")
	s.syncing.Store(false)

	enqueue(t, repo, "q-1", models.SyncCreateGem, "", time.Now().UTC())
	assert.True(t, s.SyncNow(context.Background()))
	assert.Equal(t, []string{"create-gem "}, client.calls)
}
