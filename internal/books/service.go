// Package books implements the per-user book collection. Every read and
// write is filtered by (book id, owner id); a book owned by someone else is
// indistinguishable from one that does not exist.
package books

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ayush/personal-library/internal/apperr"
	"github.com/ayush/personal-library/internal/models"
	"github.com/ayush/personal-library/internal/store"
	"github.com/ayush/personal-library/internal/validation"
)

// MaxCoverBytes caps uploaded cover images.
const MaxCoverBytes = 5 << 20

const (
	msgBookNotFound  = "Book not found"
	msgCoverNotFound = "Cover not found"
)

// BookStore defines the interface for book persistence. Every method that
// takes an id also takes the owner id and must match both.
type BookStore interface {
	InsertBook(ctx context.Context, b *models.Book) (*models.Book, error)
	ListBooksByUser(ctx context.Context, userID string) ([]models.Book, error)
	GetBook(ctx context.Context, id, userID string) (*models.Book, error)
	UpdateBook(ctx context.Context, id, userID string, f models.BookFields) (*models.Book, error)
	SetBookCover(ctx context.Context, id, userID, key string) (*models.Book, error)
	DeleteBook(ctx context.Context, id, userID string) (*models.Book, error)
}

// FileStore defines the interface for cover object storage.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, int64, error)
	Remove(ctx context.Context, key string) error
}

// Service holds the book use cases. files may be nil, in which case cover
// operations are unavailable.
type Service struct {
	books  BookStore
	files  FileStore
	logger *slog.Logger
}

func NewService(books BookStore, files FileStore, logger *slog.Logger) *Service {
	return &Service{books: books, files: files, logger: logger}
}

// CoversEnabled reports whether an object store is configured.
func (s *Service) CoversEnabled() bool {
	return s.files != nil
}

// List returns the caller's books, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Book, error) {
	books, err := s.books.ListBooksByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

// Get returns one of the caller's books.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Book, error) {
	book, err := s.books.GetBook(ctx, id, userID)
	if err != nil {
		return nil, storeErr(err, msgBookNotFound)
	}
	return book, nil
}

// Create validates in and stores a book owned by userID.
func (s *Service) Create(ctx context.Context, userID string, in models.BookInput) (*models.Book, error) {
	fields, err := validation.Book(in)
	if err != nil {
		return nil, err
	}
	book := &models.Book{UserID: userID}
	fields.Apply(book)

	created, err := s.books.InsertBook(ctx, book)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return created, nil
}

// Update replaces every mutable field of one of the caller's books.
func (s *Service) Update(ctx context.Context, userID, id string, in models.BookInput) (*models.Book, error) {
	fields, err := validation.Book(in)
	if err != nil {
		return nil, err
	}
	book, err := s.books.UpdateBook(ctx, id, userID, fields)
	if err != nil {
		return nil, storeErr(err, msgBookNotFound)
	}
	return book, nil
}

// Delete removes one of the caller's books and its cover, if any.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	book, err := s.books.DeleteBook(ctx, id, userID)
	if err != nil {
		return storeErr(err, msgBookNotFound)
	}
	if book.CoverObjectKey != "" {
		s.removeObject(ctx, book.CoverObjectKey)
	}
	return nil
}

// PutCover stores data as the cover of one of the caller's books, replacing
// any previous cover.
func (s *Service) PutCover(ctx context.Context, userID, id string, data []byte, contentType string) (*models.Book, error) {
	if s.files == nil {
		return nil, apperr.NotFound(msgCoverNotFound)
	}
	if err := validateCover(data, contentType); err != nil {
		return nil, err
	}

	book, err := s.books.GetBook(ctx, id, userID)
	if err != nil {
		return nil, storeErr(err, msgBookNotFound)
	}

	key := fmt.Sprintf("covers/%s/%s/%s", userID, book.ID, uuid.New().String())
	if err := s.files.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, apperr.Internal(err)
	}

	updated, err := s.books.SetBookCover(ctx, id, userID, key)
	if err != nil {
		s.removeObject(ctx, key)
		return nil, storeErr(err, msgBookNotFound)
	}
	if book.CoverObjectKey != "" {
		s.removeObject(ctx, book.CoverObjectKey)
	}
	return updated, nil
}

// Cover opens the cover of one of the caller's books. The caller closes
// the returned reader.
func (s *Service) Cover(ctx context.Context, userID, id string) (io.ReadCloser, string, int64, error) {
	if s.files == nil {
		return nil, "", 0, apperr.NotFound(msgCoverNotFound)
	}
	book, err := s.books.GetBook(ctx, id, userID)
	if err != nil {
		return nil, "", 0, storeErr(err, msgBookNotFound)
	}
	if book.CoverObjectKey == "" {
		return nil, "", 0, apperr.NotFound(msgCoverNotFound)
	}

	rc, contentType, size, err := s.files.Get(ctx, book.CoverObjectKey)
	if err != nil {
		return nil, "", 0, storeErr(err, msgCoverNotFound)
	}
	return rc, contentType, size, nil
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if err := s.files.Remove(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "cover cleanup failed", slog.String("key", key), slog.Any("error", err))
	}
}

func validateCover(data []byte, contentType string) error {
	switch {
	case len(data) == 0:
		return apperr.Validation(apperr.FieldError{Field: "cover", Message: "Cover image is required"})
	case len(data) > MaxCoverBytes:
		return apperr.Validation(apperr.FieldError{Field: "cover", Message: "Cover image must be at most 5 MiB"})
	case !strings.HasPrefix(contentType, "image/"):
		return apperr.Validation(apperr.FieldError{Field: "cover", Message: "Cover must be an image"})
	}
	return nil
}

func storeErr(err error, notFound string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.Internal(err)
}
