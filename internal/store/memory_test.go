package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/personal-library/internal/models"
)

func TestMemoryStoreUserUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u, err := s.CreateUser(ctx, &models.User{Username: "alice", Email: "a@x.com", Password: "hash"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	_, err = s.CreateUser(ctx, &models.User{Username: "alice", Email: "other@x.com", Password: "hash"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = s.CreateUser(ctx, &models.User{Username: "bob", Email: "a@x.com", Password: "hash"})
	assert.ErrorIs(t, err, ErrDuplicate)

	exists, err := s.UserExists(ctx, "nobody", "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.UserExists(ctx, "nobody", "none@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStoreUserLookups(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u, err := s.CreateUser(ctx, &models.User{Username: "alice", Email: "a@x.com", Password: "hash"})
	require.NoError(t, err)

	byEmail, err := s.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.Password)

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = s.GetUserByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreBooksOwnershipFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, err := s.InsertBook(ctx, &models.Book{Title: "A", UserID: "alice"})
	require.NoError(t, err)
	b, err := s.InsertBook(ctx, &models.Book{Title: "B", UserID: "bob"})
	require.NoError(t, err)

	_, err = s.GetBook(ctx, b.ID, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateBook(ctx, b.ID, "alice", models.BookFields{Title: "hijack"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.SetBookCover(ctx, b.ID, "alice", "k")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeleteBook(ctx, b.ID, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	still, err := s.GetBook(ctx, b.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "B", still.Title)

	got, err := s.GetBook(ctx, a.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, title := range []string{"first", "second", "third"} {
		_, err := s.InsertBook(ctx, &models.Book{Title: title, UserID: "alice"})
		require.NoError(t, err)
	}
	_, err := s.InsertBook(ctx, &models.Book{Title: "other", UserID: "bob"})
	require.NoError(t, err)

	list, err := s.ListBooksByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "first", list[2].Title)

	empty, err := s.ListBooksByUser(ctx, "carol")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryStoreUpdateReplacesFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return created }

	b, err := s.InsertBook(ctx, &models.Book{Title: "T", Author: "Au", Genre: "G", UserID: "alice"})
	require.NoError(t, err)
	_, err = s.SetBookCover(ctx, b.ID, "alice", "covers/k")
	require.NoError(t, err)

	later := created.Add(time.Hour)
	s.now = func() time.Time { return later }
	pub := time.Date(1999, 5, 1, 0, 0, 0, 0, time.UTC)

	updated, err := s.UpdateBook(ctx, b.ID, "alice", models.BookFields{
		Title: "T2", Author: "Au2", Genre: "G2", PublicationDate: pub,
	})
	require.NoError(t, err)
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, "Au2", updated.Author)
	assert.Equal(t, "G2", updated.Genre)
	assert.Equal(t, pub, updated.PublicationDate)
	assert.Equal(t, "alice", updated.UserID)
	assert.Equal(t, "covers/k", updated.CoverObjectKey)
	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)
}

func TestMemoryStoreDeleteReturnsRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	b, err := s.InsertBook(ctx, &models.Book{Title: "T", UserID: "alice", CoverObjectKey: "ignored"})
	require.NoError(t, err)
	assert.Empty(t, b.CoverObjectKey)

	deleted, err := s.DeleteBook(ctx, b.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, b.ID, deleted.ID)

	_, err = s.GetBook(ctx, b.ID, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}
