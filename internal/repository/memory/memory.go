// Package memory keeps tenders in process memory. It follows the semantics
// of the postgres repository, revisions and conflicts included, and backs
// STORAGE_DRIVER=memory as well as tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"procurement/internal/models"
)

type Repository struct {
	mu        sync.RWMutex
	tenders   map[string]models.Tender
	revisions map[string][]models.TenderRevision
	now       func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		tenders:   make(map[string]models.Tender),
		revisions: make(map[string][]models.TenderRevision),
		now:       time.Now,
	}
}

func (repo *Repository) GetTenders(ctx context.Context, limit, offset int, statuses []models.TenderStatus) ([]models.Tender, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	wanted := make(map[models.TenderStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	var result []models.Tender
	for _, t := range repo.tenders {
		if len(wanted) > 0 && !wanted[t.Status] {
			continue
		}
		result = append(result, t.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].Id < result[j].Id
	})

	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (repo *Repository) GetTenderByUUID(ctx context.Context, UUID string) (models.Tender, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	t, ok := repo.tenders[UUID]
	if !ok {
		return models.Tender{}, fmt.Errorf("memory.Repository.GetTenderByUUID: no tender found by UUID %s, %w", UUID, models.ErrNoTender)
	}
	return t.Clone(), nil
}

func (repo *Repository) AddTender(ctx context.Context, t models.Tender) (models.Tender, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.tenders[t.Id]; ok {
		return t, fmt.Errorf("memory.Repository.AddTender: tender %s already exists: %w", t.Id, models.ErrConflict)
	}

	result := t.Clone()
	result.Revision = 1
	repo.store(result)
	return result.Clone(), nil
}

// SaveTender replaces the stored tender when t.Revision matches the stored
// revision, otherwise it returns models.ErrConflict.
func (repo *Repository) SaveTender(ctx context.Context, t models.Tender) (models.Tender, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored, ok := repo.tenders[t.Id]
	if !ok {
		return t, fmt.Errorf("memory.Repository.SaveTender: no tender found by UUID %s, %w", t.Id, models.ErrNoTender)
	}
	if stored.Revision != t.Revision {
		return t, fmt.Errorf("memory.Repository.SaveTender: tender %s at revision %d: %w", t.Id, t.Revision, models.ErrConflict)
	}

	result := t.Clone()
	result.Revision = t.Revision + 1
	repo.store(result)
	return result.Clone(), nil
}

func (repo *Repository) GetTenderRevisions(ctx context.Context, UUID string) ([]models.TenderRevision, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	revisions := repo.revisions[UUID]
	if len(revisions) == 0 {
		return nil, fmt.Errorf("memory.Repository.GetTenderRevisions: %w", models.ErrNoTender)
	}

	result := make([]models.TenderRevision, 0, len(revisions))
	for i := len(revisions) - 1; i >= 0; i-- {
		rev := revisions[i]
		rev.Tender = rev.Tender.Clone()
		result = append(result, rev)
	}
	return result, nil
}

func (repo *Repository) DeleteTender(ctx context.Context, tenderId string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	delete(repo.tenders, tenderId)
	delete(repo.revisions, tenderId)
	return nil
}

func (repo *Repository) Close() error {
	return nil
}

// store must be called with the write lock held.
func (repo *Repository) store(t models.Tender) {
	repo.tenders[t.Id] = t
	repo.revisions[t.Id] = append(repo.revisions[t.Id], models.TenderRevision{
		Revision:  t.Revision,
		Status:    t.Status,
		Tender:    t.Clone(),
		CreatedAt: repo.now(),
	})
}
