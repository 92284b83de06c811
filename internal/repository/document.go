package repository

import (
	"context"
	"errors"

	"docrepo/internal/model"
)

// ErrNotFound is returned when no document has the requested ID.
var ErrNotFound = errors.New("document not found")

// DocumentRepository defines data access for documents.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create assigns the next ID to doc and appends it to the collection.
	// Returns the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*model.Document, error)

	// List returns every document in insertion order.
	List(ctx context.Context) ([]model.Document, error)

	// ListByStatus returns the documents with the given status, preserving insertion order.
	ListByStatus(ctx context.Context, status model.Status) ([]model.Document, error)

	// Update replaces the stored record that has doc.ID. It returns ErrNotFound if none exists.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Delete removes a document by ID. It returns ErrNotFound if none exists.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}
