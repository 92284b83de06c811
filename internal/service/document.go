package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"docrepo/internal/model"
	"docrepo/internal/repository"
	"docrepo/internal/storage"
)

const (
	defaultLevel           = "N/A"
	defaultUploadSubmitter = "Admin"
	defaultCreateSubmitter = "System"

	// putAttempts bounds retries when a generated blob name is already taken.
	putAttempts = 3
)

var tracer = otel.Tracer("docrepo/service")

// FileInput is an uploaded file as received by the transport layer.
type FileInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// Download is an opened blob ready to be streamed to a client. The caller closes Body.
type Download struct {
	Body io.ReadCloser
	// Name is the client-facing file name: the document title plus the blob's extension.
	Name string
	Info storage.ObjectInfo
}

// HealthStatus is the informational payload of the health endpoint.
type HealthStatus struct {
	Status          string `json:"status"`
	DocumentsCount  int    `json:"documentsCount"`
	DocumentsFolder string `json:"documentsFolder"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// List returns all documents in insertion order.
	List(ctx context.Context) ([]model.Document, error)

	// ListPublished returns the published documents in insertion order.
	ListPublished(ctx context.Context) ([]model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id int64) (*model.Document, error)

	// Upload validates the file and metadata, stores the blob under a generated name and
	// records a published document. The blob is removed again if the record cannot be saved.
	Upload(ctx context.Context, in DocumentInput, file *FileInput) (*model.Document, error)

	// Create records a document without a file.
	Create(ctx context.Context, in DocumentInput) (*model.Document, error)

	// Update applies the non-nil fields of patch.
	Update(ctx context.Context, id int64, patch model.DocumentPatch) (*model.Document, error)

	// Approve publishes a document.
	Approve(ctx context.Context, id int64) (*model.Document, error)

	// Reject removes a document and its file.
	Reject(ctx context.Context, id int64) error

	// Delete removes a document and its file.
	Delete(ctx context.Context, id int64) error

	// Download opens the file attached to a document.
	Download(ctx context.Context, id int64) (*Download, error)

	// Open returns a stored blob by its generated name.
	Open(ctx context.Context, fileName string) (io.ReadCloser, storage.ObjectInfo, error)

	// Health reports liveness, the document count and the storage location.
	Health(ctx context.Context) (*HealthStatus, error)
}

// Option customizes a document service.
type Option func(*documentService)

// WithClock overrides the clock used to stamp creation dates. The default is the current UTC time.
func WithClock(now func() time.Time) Option {
	return func(s *documentService) { s.now = now }
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
	log   *zap.Logger
	now   func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, log *zap.Logger, opts ...Option) DocumentService {
	s := &documentService{
		store: store,
		repo:  repo,
		log:   log.With(zap.String("service", "document")),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *documentService) today() string {
	return s.now().Format(model.DateLayout)
}

func (s *documentService) List(ctx context.Context) ([]model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.List")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	return items, nil
}

func (s *documentService) ListPublished(ctx context.Context) ([]model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.ListPublished")
	defer span.End()

	items, err := s.repo.ListByStatus(ctx, model.StatusPublished)
	if err != nil {
		return nil, fail(span, err)
	}
	return items, nil
}

func (s *documentService) Get(ctx context.Context, id int64) (*model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Get", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer span.End()

	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	return doc, nil
}

func (s *documentService) Upload(ctx context.Context, in DocumentInput, file *FileInput) (*model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Upload")
	defer span.End()

	// The file filter runs first, as a transport-level check on what was received.
	if file != nil {
		if err := ValidateFile(file.Filename, file.ContentType, file.Size); err != nil {
			return nil, fail(span, err)
		}
	}
	if err := in.validate(); err != nil {
		return nil, fail(span, err)
	}
	if file == nil || file.Reader == nil {
		return nil, fail(span, ErrFileRequired)
	}

	key, err := s.putBlob(ctx, file)
	if err != nil {
		return nil, fail(span, fmt.Errorf("upload to storage: %w", err))
	}
	span.SetAttributes(attribute.String("document.file_name", key))

	doc := &model.Document{
		Title:       in.Title,
		Description: in.Description,
		Department:  in.Department,
		Level:       orDefault(in.Level, defaultLevel),
		DocType:     in.DocType,
		Status:      model.StatusPublished,
		Date:        s.today(),
		FileName:    &key,
		SubmittedBy: orDefault(in.SubmittedBy, defaultUploadSubmitter),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the blob even if the request context is gone.
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.log.Error("rollback delete failed", zap.String("file", key), zap.Error(delErr))
			return nil, fail(span, fmt.Errorf("save document failed: %v; rollback delete failed: %v", err, delErr))
		}
		return nil, fail(span, fmt.Errorf("save document failed: %w", err))
	}

	s.log.Info("document uploaded",
		zap.Int64("id", stored.ID),
		zap.String("title", stored.Title),
		zap.String("file", key),
	)
	return stored, nil
}

// putBlob stores the file under a fresh ULID-based name, keeping the original extension.
func (s *documentService) putBlob(ctx context.Context, file *FileInput) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	opts := storage.PutObjectOptions{
		Size:        file.Size,
		ContentType: file.ContentType,
		Metadata: map[string]string{
			"original-filename": file.Filename,
		},
	}

	var err error
	for i := 0; i < putAttempts; i++ {
		key := ulid.Make().String() + ext
		if _, err = s.store.Put(ctx, key, file.Reader, opts); err == nil {
			return key, nil
		}
		if !errors.Is(err, storage.ErrObjectExists) {
			return "", err
		}
	}
	return "", err
}

func (s *documentService) Create(ctx context.Context, in DocumentInput) (*model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Create")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, fail(span, err)
	}
	status := model.Status(orDefault(in.Status, string(model.StatusDraft)))
	if !status.Valid() {
		return nil, fail(span, ErrInvalidStatus)
	}

	doc := &model.Document{
		Title:       in.Title,
		Description: in.Description,
		Department:  in.Department,
		Level:       orDefault(in.Level, defaultLevel),
		DocType:     in.DocType,
		Status:      status,
		Date:        s.today(),
		SubmittedBy: orDefault(in.SubmittedBy, defaultCreateSubmitter),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fail(span, fmt.Errorf("save document failed: %w", err))
	}
	return stored, nil
}

// Update applies the patch to the current record and writes it back. Concurrent updates of
// the same document are last-write-wins.
func (s *documentService) Update(ctx context.Context, id int64, patch model.DocumentPatch) (*model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Update", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer span.End()

	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if patch.Status != nil && *patch.Status != "" && !patch.Status.Valid() {
		return nil, fail(span, ErrInvalidStatus)
	}

	// Empty strings leave required fields untouched; description alone may be cleared.
	setIfNotEmpty(&doc.Title, patch.Title)
	if patch.Description != nil {
		doc.Description = *patch.Description
	}
	setIfNotEmpty(&doc.Department, patch.Department)
	setIfNotEmpty(&doc.Level, patch.Level)
	setIfNotEmpty(&doc.DocType, patch.DocType)
	if patch.Status != nil && *patch.Status != "" {
		doc.Status = *patch.Status
	}

	return s.save(ctx, span, doc)
}

func setIfNotEmpty(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func (s *documentService) Approve(ctx context.Context, id int64) (*model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Approve", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer span.End()

	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	doc.Status = model.StatusPublished
	return s.save(ctx, span, doc)
}

func (s *documentService) save(ctx context.Context, span trace.Span, doc *model.Document) (*model.Document, error) {
	updated, err := s.repo.Update(ctx, doc)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(span, ErrNotFound)
		}
		return nil, fail(span, err)
	}
	return updated, nil
}

func (s *documentService) Reject(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "DocumentService.Reject", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer span.End()

	if err := s.remove(ctx, id); err != nil {
		return fail(span, err)
	}
	s.log.Info("document rejected", zap.Int64("id", id))
	return nil
}

func (s *documentService) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "DocumentService.Delete", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer span.End()

	if err := s.remove(ctx, id); err != nil {
		return fail(span, err)
	}
	s.log.Info("document deleted", zap.Int64("id", id))
	return nil
}

// remove deletes the blob first, then the record. A blob that is already gone does not block
// the record removal; any other storage failure keeps the record so its file stays reachable.
func (s *documentService) remove(ctx context.Context, id int64) error {
	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if doc.HasFile() {
		if err := s.store.Delete(ctx, *doc.FileName); err != nil {
			if !errors.Is(err, storage.ErrObjectNotFound) {
				return fmt.Errorf("delete storage: %w", err)
			}
			s.log.Warn("file already missing", zap.Int64("id", id), zap.String("file", *doc.FileName))
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *documentService) Download(ctx context.Context, id int64) (*Download, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Download", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer span.End()

	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, fail(span, err)
	}
	if !doc.HasFile() {
		return nil, fail(span, ErrNotFound)
	}

	body, info, err := s.store.Get(ctx, *doc.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fail(span, ErrNotFound)
		}
		return nil, fail(span, fmt.Errorf("open file: %w", err))
	}
	return &Download{
		Body: body,
		Name: doc.Title + filepath.Ext(*doc.FileName),
		Info: info,
	}, nil
}

func (s *documentService) Open(ctx context.Context, fileName string) (io.ReadCloser, storage.ObjectInfo, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Open", trace.WithAttributes(attribute.String("document.file_name", fileName)))
	defer span.End()

	body, info, err := s.store.Get(ctx, fileName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, storage.ObjectInfo{}, fail(span, ErrNotFound)
		}
		return nil, storage.ObjectInfo{}, fail(span, err)
	}
	return body, info, nil
}

func (s *documentService) Health(ctx context.Context) (*HealthStatus, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Health")
	defer span.End()

	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	return &HealthStatus{
		Status:          "Server is running",
		DocumentsCount:  n,
		DocumentsFolder: s.store.Location(),
	}, nil
}

// find maps the repository's not-found error to the service's.
func (s *documentService) find(ctx context.Context, id int64) (*model.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// fail records err on the span and returns it unchanged.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
