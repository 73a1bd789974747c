package status

import (
	"context"
	"fmt"
	"sync"

	"github.com/avialine/groupfare/internal/domain"
	"github.com/avialine/groupfare/internal/repository"
)

type StatusUseCase interface {
	ByCode(ctx context.Context, code string) (int64, error)
	ByID(ctx context.Context, id int64) (*domain.Status, error)
	All(ctx context.Context) ([]domain.Status, error)
	EnsureRequired(ctx context.Context) ([]domain.Status, bool, error)
}

// Registry caches the durable status table in process. Lookups go through the
// cache; any mutation of the table invalidates it. Callers must never hold a
// numeric status ID across registry edits.
type Registry struct {
	repo repository.StatusRepository

	mu     sync.RWMutex
	byCode map[string]domain.Status
	byID   map[int64]domain.Status
	loaded bool
}

func NewRegistry(repo repository.StatusRepository) *Registry {
	return &Registry{repo: repo}
}

func (r *Registry) ByCode(ctx context.Context, code string) (int64, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return 0, err
	}

	r.mu.RLock()
	s, ok := r.byCode[code]
	r.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("code %q: %w", code, domain.ErrStatusConfigMissing)
	}
	return s.ID, nil
}

func (r *Registry) ByID(ctx context.Context, id int64) (*domain.Status, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	s, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrStatusNotFound
	}
	return &s, nil
}

func (r *Registry) All(ctx context.Context) ([]domain.Status, error) {
	return r.repo.List(ctx)
}

// EnsureRequired seeds the canonical defaults when the table is empty and
// backfills any missing required code otherwise. Existing rows are never
// overwritten. The second return reports whether anything was inserted.
func (r *Registry) EnsureRequired(ctx context.Context) ([]domain.Status, bool, error) {
	n, err := r.repo.Count(ctx)
	if err != nil {
		return nil, false, err
	}

	present := make(map[string]bool)
	if n > 0 {
		existing, err := r.repo.List(ctx)
		if err != nil {
			return nil, false, err
		}
		for _, s := range existing {
			present[s.Code] = true
		}
	}

	seeded := false
	for _, def := range domain.DefaultStatuses() {
		if present[def.Code] {
			continue
		}
		s := def
		if err := r.repo.Insert(ctx, &s); err != nil {
			return nil, seeded, err
		}
		seeded = true
	}

	if seeded {
		r.Invalidate()
	}

	statuses, err := r.repo.List(ctx)
	if err != nil {
		return nil, seeded, err
	}
	return statuses, seeded, nil
}

// Invalidate drops the in-process cache; the next lookup reloads.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.loaded = false
	r.byCode = nil
	r.byID = nil
	r.mu.Unlock()
}

func (r *Registry) ensureLoaded(ctx context.Context) error {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return nil
	}

	statuses, err := r.repo.List(ctx)
	if err != nil {
		return err
	}

	byCode := make(map[string]domain.Status, len(statuses))
	byID := make(map[int64]domain.Status, len(statuses))
	for _, s := range statuses {
		byCode[s.Code] = s
		byID[s.ID] = s
	}

	r.mu.Lock()
	r.byCode = byCode
	r.byID = byID
	r.loaded = true
	r.mu.Unlock()
	return nil
}

var _ StatusUseCase = (*Registry)(nil)
