package registry

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spachava753/procreg/internal/models"
	"github.com/spachava753/procreg/internal/remote"
)

// Refresh fetches the authoritative process list and reconciles local state
// with it:
//   - remote processes unknown locally are added with their reported status
//   - local instances missing remotely are removed, unless still pending
//   - pending instances are never touched
//   - instances with a stop in flight, or that changed locally after the
//     list was requested, are left alone since the list may predate them
//
// Remote statuses other than idle and error are recorded as active, including
// a remote "pending": pending only describes starts issued by this registry.
//
// Concurrent calls are coalesced into a single reconciliation pass whose
// outcome all callers share. The pass itself is detached from ctx; ctx only
// bounds how long this caller waits for it.
func (r *Registry) Refresh(ctx context.Context) error {
	ch := r.refreshGroup.DoChan("refresh", func() (any, error) {
		return nil, r.reconcile(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) reconcile(ctx context.Context) error {
	r.mu.Lock()
	listSeq := r.seq
	r.mu.Unlock()

	procs, err := r.remote.List(ctx)
	if err != nil {
		rerr := &models.RegistryError{
			Type:    models.ErrRemoteFailure,
			Message: "listing remote processes",
			Err:     err,
		}
		r.mu.Lock()
		r.lastErr = rerr
		r.mu.Unlock()
		r.logger.Warn("refresh failed", "error", err)
		return rerr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var added, updated, dropped int
	seen := make(map[string]struct{}, len(procs))
	for _, p := range procs {
		if p.ID == "" {
			r.logger.Debug("ignoring remote process without id", "name", p.Name)
			continue
		}
		seen[p.ID] = struct{}{}

		status, detail := remoteStatus(p)
		rec, ok := r.instances[p.ID]
		if !ok {
			if r.removed[p.ID] > listSeq {
				// Stopped or discarded after the list was requested.
				continue
			}
			r.insert(models.ProcessInstance{
				ID:          p.ID,
				Name:        p.Name,
				Category:    models.Category(p.Category),
				Status:      status,
				ErrorDetail: detail,
			})
			added++
			continue
		}

		// Only settled, healthy instances follow the remote status. Pending
		// ones belong to their start call and local errors stay visible
		// until stopped or discarded.
		if rec.stopping || rec.seq > listSeq || rec.inst.Status == models.StatusPending || rec.inst.Status == models.StatusError {
			continue
		}
		if rec.inst.Status != status {
			rec.inst.Status = status
			rec.inst.ErrorDetail = detail
			updated++
		}
	}

	for _, id := range slices.Clone(r.order) {
		if _, ok := seen[id]; ok {
			continue
		}
		rec := r.instances[id]
		if rec.stopping || rec.seq > listSeq || rec.inst.Status == models.StatusPending {
			continue
		}
		r.remove(id)
		dropped++
	}

	for id, seq := range r.removed {
		if seq <= listSeq {
			delete(r.removed, id)
		}
	}

	r.loaded = true
	r.lastErr = nil

	r.logger.Debug("refresh complete",
		"remote", len(procs),
		"added", added,
		"updated", updated,
		"removed", dropped)
	return nil
}

// remoteStatus maps a status reported by the remote list onto the local
// state machine. The list only contains running processes, so anything that
// is not idle or error counts as active; pending is reserved for starts
// issued by this registry.
func remoteStatus(p remote.Process) (models.Status, string) {
	st, _ := models.ParseStatus(p.Status)
	switch st {
	case models.StatusIdle:
		return models.StatusIdle, ""
	case models.StatusError:
		return models.StatusError, "reported as failed by remote"
	default:
		return models.StatusActive, ""
	}
}

// Poll refreshes immediately and then every interval until ctx is done.
// Failures are logged and polling continues. If fn is non-nil it receives a
// snapshot after every successful refresh.
func (r *Registry) Poll(ctx context.Context, interval time.Duration, fn func([]models.ProcessInstance)) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := r.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Warn("periodic refresh failed", "error", err)
		} else if fn != nil {
			fn(r.ListAll())
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
