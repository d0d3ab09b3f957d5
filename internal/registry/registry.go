// Package registry tracks process instances started through a remote service
// and reconciles them with the state the service reports.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/spachava753/procreg/internal/catalog"
	"github.com/spachava753/procreg/internal/models"
	"github.com/spachava753/procreg/internal/remote"
)

// Registry owns the local view of process instances. All methods are safe
// for concurrent use. The mutex is only held for individual reads and
// mutations, never across a remote call.
type Registry struct {
	catalog *catalog.Catalog
	remote  remote.Service
	logger  *slog.Logger
	newID   func(models.CatalogEntry) string
	now     func() time.Time

	refreshGroup singleflight.Group

	mu        sync.Mutex
	instances map[string]*record
	order     []string
	loaded    bool
	lastErr   error
	seq       uint64
	removed   map[string]uint64
	inflight  int
	waiters   []chan struct{}
}

type record struct {
	inst     models.ProcessInstance
	stopping bool
	// seq is the registry sequence number of the last local change.
	seq uint64
}

// New creates an empty Registry backed by cat and svc.
func New(cat *catalog.Catalog, svc remote.Service, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		catalog:   cat,
		remote:    svc,
		logger:    logger,
		newID:     newInstanceID,
		now:       time.Now,
		instances: make(map[string]*record),
		removed:   make(map[string]uint64),
	}
}

// newInstanceID combines the entry identity with a random UUID so that
// repeated starts of the same entry never collide.
func newInstanceID(e models.CatalogEntry) string {
	return fmt.Sprintf("%s-%s-%s", e.Category, e.Name, uuid.NewString())
}

// Catalog returns the catalog the registry resolves entries against.
func (r *Registry) Catalog() *catalog.Catalog {
	return r.catalog
}

// ListAll returns a snapshot of all instances in insertion order.
func (r *Registry) ListAll() []models.ProcessInstance {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.ProcessInstance, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.instances[id].inst)
	}
	return out
}

// Get returns a snapshot of a single instance.
func (r *Registry) Get(id string) (models.ProcessInstance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.instances[id]
	if !ok {
		return models.ProcessInstance{}, false
	}
	return rec.inst, true
}

// StatusOf returns the status of the first instance started from the catalog
// entry called name, or StatusIdle when there is none.
func (r *Registry) StatusOf(name string) models.Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if inst := r.instances[id].inst; inst.Name == name {
			return inst.Status
		}
	}
	return models.StatusIdle
}

// Loaded reports whether at least one refresh has completed successfully.
func (r *Registry) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// LastError returns the error of the most recent refresh, or nil if it
// succeeded.
func (r *Registry) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Reset drops all local state. Remote calls still in flight complete
// without effect.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.instances = make(map[string]*record)
	r.removed = make(map[string]uint64)
	r.order = nil
	r.loaded = false
	r.lastErr = nil
}

// Wait blocks until every start and stop issued so far has resolved, or ctx
// is done.
func (r *Registry) Wait(ctx context.Context) error {
	r.mu.Lock()
	if r.inflight == 0 {
		r.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	r.waiters = append(r.waiters, ch)
	r.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// insert adds inst at the end of the insertion order. Callers hold r.mu.
func (r *Registry) insert(inst models.ProcessInstance) *record {
	rec := &record{inst: inst}
	r.touch(rec)
	r.instances[inst.ID] = rec
	r.order = append(r.order, inst.ID)
	return rec
}

// touch stamps rec with a fresh sequence number. Callers hold r.mu.
func (r *Registry) touch(rec *record) {
	r.seq++
	rec.seq = r.seq
}

// remove deletes id from the collection and remembers when it went away.
// Callers hold r.mu.
func (r *Registry) remove(id string) {
	delete(r.instances, id)
	r.seq++
	r.removed[id] = r.seq
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// lookup returns the record for id only if it is still the same record the
// caller saw earlier. Callers hold r.mu.
func (r *Registry) lookup(id string, want *record) (*record, bool) {
	rec, ok := r.instances[id]
	if !ok || rec != want {
		return nil, false
	}
	return rec, true
}

// begin registers an in-flight remote call. Callers hold r.mu.
func (r *Registry) begin() {
	r.inflight++
}

// done marks an in-flight remote call as resolved and wakes waiters once
// nothing is left.
func (r *Registry) done() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.inflight--
	if r.inflight > 0 {
		return
	}
	for _, ch := range r.waiters {
		close(ch)
	}
	r.waiters = nil
}

func unknownInstance(id string) error {
	return &models.RegistryError{
		Type:    models.ErrUnknownInstance,
		Message: fmt.Sprintf("no instance with id %s", id),
	}
}

func conflict(id, reason string) error {
	return &models.RegistryError{
		Type:    models.ErrOperationConflict,
		Message: fmt.Sprintf("instance %s: %s", id, reason),
	}
}
