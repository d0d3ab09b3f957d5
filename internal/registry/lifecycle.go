package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/spachava753/procreg/internal/models"
)

// Start creates a pending instance for the catalog entry (category, name),
// asks the remote service to launch it in the background and returns the new
// instance id immediately. The remote call is detached from ctx: it cannot be
// cancelled once issued.
func (r *Registry) Start(ctx context.Context, category models.Category, name string) (string, error) {
	entry, ok := r.catalog.Find(category, name)
	if !ok {
		return "", &models.RegistryError{
			Type:    models.ErrUnknownEntry,
			Message: fmt.Sprintf("%s/%s is not in the catalog", category, name),
		}
	}

	inst := models.ProcessInstance{
		ID:        r.newID(entry),
		Name:      entry.Name,
		Category:  entry.Category,
		Status:    models.StatusPending,
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	rec := r.insert(inst)
	r.begin()
	r.mu.Unlock()

	r.logger.Info("starting process", "id", inst.ID, "launch_ref", entry.LaunchRef)

	go r.runStart(context.WithoutCancel(ctx), rec, entry)

	return inst.ID, nil
}

func (r *Registry) runStart(ctx context.Context, rec *record, entry models.CatalogEntry) {
	defer r.done()

	id := rec.inst.ID
	err := r.remote.Start(ctx, id, entry.LaunchRef)

	r.mu.Lock()
	rec, ok := r.lookup(id, rec)
	if ok {
		if err != nil {
			rec.inst.Status = models.StatusError
			rec.inst.ErrorDetail = err.Error()
		} else {
			rec.inst.Status = models.StatusActive
			rec.inst.ErrorDetail = ""
		}
		r.touch(rec)
	}
	r.mu.Unlock()

	switch {
	case !ok:
		r.logger.Debug("start resolved for forgotten instance", "id", id, "error", err)
	case err != nil:
		r.logger.Warn("process start failed", "id", id, "error", err)
	default:
		r.logger.Info("process active", "id", id)
	}
}

// StartCategory starts every catalog entry of category, returning the new ids in
// catalog declaration order.
func (r *Registry) StartCategory(ctx context.Context, category models.Category) ([]string, error) {
	entries := r.catalog.ListByCategory(category)
	if len(entries) == 0 {
		return nil, &models.RegistryError{
			Type:    models.ErrUnknownEntry,
			Message: fmt.Sprintf("no catalog entries in category %s", category),
		}
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		id, err := r.Start(ctx, e.Category, e.Name)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Stop asks the remote service to stop the instance and blocks until it
// answers. The instance is removed only once the remote confirms; on failure
// it is kept in the error state and the remote failure is returned.
func (r *Registry) Stop(ctx context.Context, id string) error {
	r.mu.Lock()
	rec, ok := r.instances[id]
	switch {
	case !ok:
		r.mu.Unlock()
		return unknownInstance(id)
	case rec.inst.Status == models.StatusPending:
		r.mu.Unlock()
		return conflict(id, "start still in flight")
	case rec.stopping:
		r.mu.Unlock()
		return conflict(id, "stop already in flight")
	}
	rec.stopping = true
	r.begin()
	r.mu.Unlock()
	defer r.done()

	r.logger.Info("stopping process", "id", id)
	err := r.remote.Stop(context.WithoutCancel(ctx), id)

	r.mu.Lock()
	rec, ok = r.lookup(id, rec)
	if ok {
		rec.stopping = false
		if err != nil {
			rec.inst.Status = models.StatusError
			rec.inst.ErrorDetail = err.Error()
			r.touch(rec)
		} else {
			r.remove(id)
		}
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("process stop failed", "id", id, "error", err)
		return &models.RegistryError{
			Type:    models.ErrRemoteFailure,
			Message: fmt.Sprintf("stopping %s", id),
			Err:     err,
		}
	}

	r.logger.Info("process stopped", "id", id)
	return nil
}

// StopCategory stops every settled instance of category, running at most
// limit remote stops at a time (limit <= 0 means no limit). Every failure is
// reported in the joined error; one failure does not prevent the others.
func (r *Registry) StopCategory(ctx context.Context, category models.Category, limit int) error {
	r.mu.Lock()
	var ids []string
	for _, id := range r.order {
		rec := r.instances[id]
		if rec.inst.Category == category && rec.inst.Status != models.StatusPending && !rec.stopping {
			ids = append(ids, id)
		}
	}
	r.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = -1
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(limit)
	for _, id := range ids {
		g.Go(func() error {
			if err := r.Stop(ctx, id); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Discard removes an instance that is in the error state.
func (r *Registry) Discard(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.instances[id]
	switch {
	case !ok:
		return unknownInstance(id)
	case rec.stopping:
		return conflict(id, "stop already in flight")
	case rec.inst.Status != models.StatusError:
		return conflict(id, fmt.Sprintf("only failed instances can be discarded, status is %s", rec.inst.Status))
	}

	r.remove(id)
	r.logger.Info("discarded failed instance", "id", id)
	return nil
}
