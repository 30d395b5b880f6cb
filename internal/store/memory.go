package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayush/personal-library/internal/models"
)

// MemoryStore keeps users and books in process memory. It backs local
// development (STORE_BACKEND=memory) and tests, with the same uniqueness and
// ownership semantics as the database backends.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.User
	books []models.Book // insertion order, oldest first
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]models.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// --- users ---

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, ErrDuplicate
		}
	}

	rec := *u
	rec.ID = uuid.New().String()
	rec.CreatedAt = s.now()
	rec.UpdatedAt = rec.CreatedAt
	s.users[rec.ID] = rec

	out := rec
	return &out, nil
}

func (s *MemoryStore) UserExists(_ context.Context, username, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// --- books ---

func (s *MemoryStore) InsertBook(_ context.Context, b *models.Book) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := *b
	rec.ID = uuid.New().String()
	rec.CoverObjectKey = ""
	rec.CreatedAt = s.now()
	rec.UpdatedAt = rec.CreatedAt
	s.books = append(s.books, rec)

	out := rec
	return &out, nil
}

func (s *MemoryStore) ListBooksByUser(_ context.Context, userID string) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Book{}
	for i := len(s.books) - 1; i >= 0; i-- {
		if s.books[i].UserID == userID {
			out = append(out, s.books[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) GetBook(_ context.Context, id, userID string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id, userID)
	if i < 0 {
		return nil, ErrNotFound
	}
	out := s.books[i]
	return &out, nil
}

func (s *MemoryStore) UpdateBook(_ context.Context, id, userID string, f models.BookFields) (*models.Book, error) {
	return s.mutate(id, userID, func(b *models.Book) { f.Apply(b) })
}

func (s *MemoryStore) SetBookCover(_ context.Context, id, userID, key string) (*models.Book, error) {
	return s.mutate(id, userID, func(b *models.Book) { b.CoverObjectKey = key })
}

func (s *MemoryStore) DeleteBook(_ context.Context, id, userID string) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id, userID)
	if i < 0 {
		return nil, ErrNotFound
	}
	out := s.books[i]
	s.books = append(s.books[:i], s.books[i+1:]...)
	return &out, nil
}

func (s *MemoryStore) mutate(id, userID string, fn func(*models.Book)) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id, userID)
	if i < 0 {
		return nil, ErrNotFound
	}
	fn(&s.books[i])
	s.books[i].UpdatedAt = s.now()
	out := s.books[i]
	return &out, nil
}

// indexOf applies the ownership filter. Caller holds the lock.
func (s *MemoryStore) indexOf(id, userID string) int {
	for i := range s.books {
		if s.books[i].ID == id && s.books[i].UserID == userID {
			return i
		}
	}
	return -1
}
