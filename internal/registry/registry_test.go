package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spachava753/procreg/internal/catalog"
	"github.com/spachava753/procreg/internal/models"
	"github.com/spachava753/procreg/internal/remote"
)

// fakeRemote answers with the configured functions; nil functions succeed.
type fakeRemote struct {
	startFn func(ctx context.Context, id, launchRef string) error
	stopFn  func(ctx context.Context, id string) error
	listFn  func(ctx context.Context) ([]remote.Process, error)
}

func (f *fakeRemote) Start(ctx context.Context, id, launchRef string) error {
	if f.startFn == nil {
		return nil
	}
	return f.startFn(ctx, id, launchRef)
}

func (f *fakeRemote) Stop(ctx context.Context, id string) error {
	if f.stopFn == nil {
		return nil
	}
	return f.stopFn(ctx, id)
}

func (f *fakeRemote) List(ctx context.Context) ([]remote.Process, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(t *testing.T, svc remote.Service) *Registry {
	t.Helper()
	return New(catalog.Default(), svc, discardLogger())
}

func waitIdle(t *testing.T, r *Registry) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Wait(ctx))
}

func startActive(t *testing.T, r *Registry, category models.Category, name string) string {
	t.Helper()
	id, err := r.Start(context.Background(), category, name)
	require.NoError(t, err)
	waitIdle(t, r)
	inst, ok := r.Get(id)
	require.True(t, ok)
	require.Equal(t, models.StatusActive, inst.Status)
	return id
}

func TestStart_PendingThenActive(t *testing.T) {
	gate := make(chan struct{})
	var gotRef string
	r := newTestRegistry(t, &fakeRemote{
		startFn: func(_ context.Context, _, launchRef string) error {
			gotRef = launchRef
			<-gate
			return nil
		},
	})

	id, err := r.Start(context.Background(), models.CategoryVector, "HNSW")
	require.NoError(t, err)

	inst, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, inst.Status)
	assert.Equal(t, models.StatusPending, r.StatusOf("HNSW"))
	assert.Equal(t, "HNSW", inst.Name)
	assert.Equal(t, models.CategoryVector, inst.Category)

	close(gate)
	waitIdle(t, r)

	inst, ok = r.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.StatusActive, inst.Status)
	assert.Empty(t, inst.ErrorDetail)
	assert.Equal(t, "vector_stores.hnsw", gotRef)
}

func TestStart_FailureKeepsInstance(t *testing.T) {
	r := newTestRegistry(t, &fakeRemote{
		startFn: func(context.Context, string, string) error {
			return &remote.StatusError{Op: "start", StatusCode: 500, Body: "boom"}
		},
	})

	id, err := r.Start(context.Background(), models.CategoryKeyValue, "Redis")
	require.NoError(t, err, "remote failures surface on the instance, not the call")
	waitIdle(t, r)

	inst, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.StatusError, inst.Status)
	assert.Contains(t, inst.ErrorDetail, "HTTP 500")
	assert.Contains(t, inst.ErrorDetail, "boom")
	assert.Len(t, r.ListAll(), 1)
}

func TestStart_UnknownEntry(t *testing.T) {
	var called atomic.Bool
	r := newTestRegistry(t, &fakeRemote{
		startFn: func(context.Context, string, string) error {
			called.Store(true)
			return nil
		},
	})

	_, err := r.Start(context.Background(), models.CategoryGraph, "HNSW")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrUnknownEntry))
	assert.Empty(t, r.ListAll())
	assert.False(t, called.Load())
}

func TestStart_DistinctIDs(t *testing.T) {
	r := newTestRegistry(t, &fakeRemote{})

	a, err := r.Start(context.Background(), models.CategoryVector, "HNSW")
	require.NoError(t, err)
	b, err := r.Start(context.Background(), models.CategoryVector, "HNSW")
	require.NoError(t, err)
	waitIdle(t, r)

	assert.NotEqual(t, a, b)
	all := r.ListAll()
	require.Len(t, all, 2)
	assert.Equal(t, a, all[0].ID)
	assert.Equal(t, b, all[1].ID)
}

func TestStatusOf(t *testing.T) {
	var fail atomic.Bool
	r := newTestRegistry(t, &fakeRemote{
		startFn: func(context.Context, string, string) error {
			if fail.Load() {
				return errors.New("no capacity")
			}
			return nil
		},
	})

	assert.Equal(t, models.StatusIdle, r.StatusOf("Redis"))

	fail.Store(true)
	_, err := r.Start(context.Background(), models.CategoryKeyValue, "Redis")
	require.NoError(t, err)
	waitIdle(t, r)
	fail.Store(false)
	startActive(t, r, models.CategoryKeyValue, "Redis")

	assert.Equal(t, models.StatusError, r.StatusOf("Redis"), "first instance in insertion order wins")
}

func TestStop_Unknown(t *testing.T) {
	r := newTestRegistry(t, &fakeRemote{})

	err := r.Stop(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrUnknownInstance))
}

func TestStop_Success(t *testing.T) {
	var stopped string
	r := newTestRegistry(t, &fakeRemote{
		stopFn: func(_ context.Context, id string) error {
			stopped = id
			return nil
		},
	})
	id := startActive(t, r, models.CategoryVector, "HNSW")

	require.NoError(t, r.Stop(context.Background(), id))

	assert.Equal(t, id, stopped)
	assert.Empty(t, r.ListAll())
	assert.Equal(t, models.StatusIdle, r.StatusOf("HNSW"))
}

func TestStop_FailureThenRetry(t *testing.T) {
	var calls atomic.Int32
	r := newTestRegistry(t, &fakeRemote{
		stopFn: func(context.Context, string) error {
			if calls.Add(1) == 1 {
				return &remote.StatusError{Op: "stop", StatusCode: 502}
			}
			return nil
		},
	})
	id := startActive(t, r, models.CategoryIndex, "Meilisearch")

	err := r.Stop(context.Background(), id)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrRemoteFailure))
	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 502, se.StatusCode)

	inst, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.StatusError, inst.Status)
	assert.Contains(t, inst.ErrorDetail, "HTTP 502")

	require.NoError(t, r.Stop(context.Background(), id), "error instances can be stopped again")
	_, ok = r.Get(id)
	assert.False(t, ok)
}

func TestStop_WhilePending(t *testing.T) {
	gate := make(chan struct{})
	var stopCalled atomic.Bool
	r := newTestRegistry(t, &fakeRemote{
		startFn: func(context.Context, string, string) error {
			<-gate
			return nil
		},
		stopFn: func(context.Context, string) error {
			stopCalled.Store(true)
			return nil
		},
	})

	id, err := r.Start(context.Background(), models.CategoryGraph, "JanusGraph")
	require.NoError(t, err)

	err = r.Stop(context.Background(), id)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrOperationConflict))

	inst, _ := r.Get(id)
	assert.Equal(t, models.StatusPending, inst.Status)
	assert.False(t, stopCalled.Load())

	close(gate)
	waitIdle(t, r)
}

func TestStop_AlreadyInFlight(t *testing.T) {
	entered := make(chan struct{})
	gate := make(chan struct{})
	r := newTestRegistry(t, &fakeRemote{
		stopFn: func(context.Context, string) error {
			close(entered)
			<-gate
			return nil
		},
	})
	id := startActive(t, r, models.CategoryBlockchain, "IPFS")

	firstErr := make(chan error, 1)
	go func() { firstErr <- r.Stop(context.Background(), id) }()
	<-entered

	err := r.Stop(context.Background(), id)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrOperationConflict))

	err = r.Discard(id)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrOperationConflict))

	inst, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.StatusActive, inst.Status, "status is unchanged until the remote answers")

	close(gate)
	require.NoError(t, <-firstErr)
	assert.Empty(t, r.ListAll())
}

func TestStop_CallerCancelDoesNotAbortRemote(t *testing.T) {
	r := newTestRegistry(t, &fakeRemote{
		stopFn: func(ctx context.Context, _ string) error {
			return ctx.Err()
		},
	})
	id := startActive(t, r, models.CategoryVector, "PQ")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, r.Stop(ctx, id))
	assert.Empty(t, r.ListAll())
}

func TestDiscard(t *testing.T) {
	r := newTestRegistry(t, &fakeRemote{
		startFn: func(_ context.Context, _, launchRef string) error {
			if launchRef == "statistical_stores.influxdb" {
				return errors.New("image pull failed")
			}
			return nil
		},
	})

	err := r.Discard("nope")
	assert.True(t, models.IsType(err, models.ErrUnknownInstance))

	active := startActive(t, r, models.CategoryStatistical, "TimescaleDB")
	err = r.Discard(active)
	assert.True(t, models.IsType(err, models.ErrOperationConflict))

	failed, err := r.Start(context.Background(), models.CategoryStatistical, "InfluxDB")
	require.NoError(t, err)
	waitIdle(t, r)

	require.NoError(t, r.Discard(failed))
	_, ok := r.Get(failed)
	assert.False(t, ok)
	_, ok = r.Get(active)
	assert.True(t, ok)
}

func TestStartCategory(t *testing.T) {
	r := newTestRegistry(t, &fakeRemote{})

	ids, err := r.StartCategory(context.Background(), models.CategoryVector)
	require.NoError(t, err)
	require.Len(t, ids, 4)
	waitIdle(t, r)

	var names []string
	for _, id := range ids {
		inst, ok := r.Get(id)
		require.True(t, ok)
		assert.Equal(t, models.StatusActive, inst.Status)
		names = append(names, inst.Name)
	}
	assert.Equal(t, []string{"Annoy", "HNSW", "LSH", "PQ"}, names)

	_, err = r.StartCategory(context.Background(), models.Category("relational"))
	assert.True(t, models.IsType(err, models.ErrUnknownEntry))
}

func TestStopCategory(t *testing.T) {
	var (
		mu      sync.Mutex
		running int
		peak    int
		failID  string
	)
	r := newTestRegistry(t, &fakeRemote{
		stopFn: func(_ context.Context, id string) error {
			mu.Lock()
			running++
			peak = max(peak, running)
			fail := id == failID
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			if fail {
				return errors.New("refused")
			}
			return nil
		},
	})

	ids, err := r.StartCategory(context.Background(), models.CategoryVector)
	require.NoError(t, err)
	waitIdle(t, r)
	other := startActive(t, r, models.CategoryKeyValue, "Redis")

	mu.Lock()
	failID = ids[1]
	mu.Unlock()

	err = r.StopCategory(context.Background(), models.CategoryVector, 2)
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrRemoteFailure))
	assert.Contains(t, err.Error(), "refused")
	assert.LessOrEqual(t, peak, 2)

	all := r.ListAll()
	require.Len(t, all, 2)
	assert.Equal(t, ids[1], all[0].ID)
	assert.Equal(t, models.StatusError, all[0].Status)
	assert.Equal(t, other, all[1].ID, "other categories are untouched")

	require.NoError(t, r.StopCategory(context.Background(), models.CategoryGraph, 0), "nothing to stop")
}

func TestWait_Timeout(t *testing.T) {
	gate := make(chan struct{})
	r := newTestRegistry(t, &fakeRemote{
		startFn: func(context.Context, string, string) error {
			<-gate
			return nil
		},
	})
	require.NoError(t, r.Wait(context.Background()), "nothing in flight")

	_, err := r.Start(context.Background(), models.CategoryVector, "LSH")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)

	close(gate)
	waitIdle(t, r)
}

func TestReset(t *testing.T) {
	gate := make(chan struct{})
	r := newTestRegistry(t, &fakeRemote{
		startFn: func(context.Context, string, string) error {
			<-gate
			return nil
		},
	})

	id, err := r.Start(context.Background(), models.CategoryVector, "Annoy")
	require.NoError(t, err)

	r.Reset()
	assert.Empty(t, r.ListAll())
	assert.False(t, r.Loaded())

	close(gate)
	waitIdle(t, r)

	_, ok := r.Get(id)
	assert.False(t, ok, "a start resolving after Reset must not resurrect the instance")
	assert.Empty(t, r.ListAll())
}
