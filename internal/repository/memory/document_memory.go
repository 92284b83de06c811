package memory

import (
	"context"
	"sync"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

// DocumentMemory is a process-local implementation of repository.DocumentRepository.
// Records are indexed by ID and ordered by insertion; everything is lost on restart.
//
// The mutex only keeps the map and the order slice consistent. Callers that read, modify and
// write back a record get no isolation from each other: the last Update wins.
type DocumentMemory struct {
	mu     sync.RWMutex
	byID   map[int64]*model.Document
	order  []int64
	nextID int64
}

// NewDocumentMemory creates a repository preloaded with seed. IDs continue after the
// highest seeded ID.
func NewDocumentMemory(seed []model.Document) *DocumentMemory {
	r := &DocumentMemory{
		byID:   make(map[int64]*model.Document, len(seed)),
		nextID: 1,
	}
	for i := range seed {
		d := clone(&seed[i])
		r.byID[d.ID] = d
		r.order = append(r.order, d.ID)
		if d.ID >= r.nextID {
			r.nextID = d.ID + 1
		}
	}
	return r
}

var _ repository.DocumentRepository = (*DocumentMemory)(nil)

// Create assigns the next ID and appends the record. IDs are never reused.
func (r *DocumentMemory) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	d := clone(doc)
	d.ID = r.nextID
	r.nextID++
	r.byID[d.ID] = d
	r.order = append(r.order, d.ID)
	return clone(d), nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentMemory) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(d), nil
}

// List returns all documents in insertion order.
func (r *DocumentMemory) List(ctx context.Context) ([]model.Document, error) {
	return r.filter(ctx, func(*model.Document) bool { return true })
}

// ListByStatus returns the documents with the given status in insertion order.
func (r *DocumentMemory) ListByStatus(ctx context.Context, status model.Status) ([]model.Document, error) {
	return r.filter(ctx, func(d *model.Document) bool { return d.Status == status })
}

func (r *DocumentMemory) filter(ctx context.Context, keep func(*model.Document) bool) ([]model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]model.Document, 0, len(r.order))
	for _, id := range r.order {
		d := r.byID[id]
		if keep(d) {
			items = append(items, *clone(d))
		}
	}
	return items, nil
}

// Update replaces the record with the same ID.
func (r *DocumentMemory) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[doc.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	d := clone(doc)
	r.byID[d.ID] = d
	return clone(d), nil
}

// Delete removes a document by ID.
func (r *DocumentMemory) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of stored documents.
func (r *DocumentMemory) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order), nil
}

func clone(d *model.Document) *model.Document {
	c := *d
	if d.FileName != nil {
		name := *d.FileName
		c.FileName = &name
	}
	return &c
}
