package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/ayush/personal-library/internal/models"
	"github.com/ayush/personal-library/internal/store/migrations"
)

const pgUniqueViolation = "23505"

// PostgresStore persists users and books in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies the embedded goose migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// validUUID guards id parameters so malformed ids read as absent rather
// than as a database error.
func validUUID(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}

// --- users ---

const userColumns = `id::text, username, email, password, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		u.Username, u.Email, u.Password,
	)
	out, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UserExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		username, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if !validUUID(id) {
		return nil, ErrNotFound
	}
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// --- books ---

const bookColumns = `id::text, title, author, genre, publication_date, user_id::text,
	cover_object_key, created_at, updated_at`

func scanBook(row pgx.Row) (*models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.PublicationDate,
		&b.UserID, &b.CoverObjectKey, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}
	return &b, nil
}

func (s *PostgresStore) InsertBook(ctx context.Context, b *models.Book) (*models.Book, error) {
	return scanBook(s.pool.QueryRow(ctx,
		`INSERT INTO books (user_id, title, author, genre, publication_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+bookColumns,
		b.UserID, b.Title, b.Author, b.Genre, b.PublicationDate,
	))
}

func (s *PostgresStore) ListBooksByUser(ctx context.Context, userID string) ([]models.Book, error) {
	out := []models.Book{}
	if !validUUID(userID) {
		return out, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+bookColumns+` FROM books WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetBook(ctx context.Context, id, userID string) (*models.Book, error) {
	if !validUUID(id, userID) {
		return nil, ErrNotFound
	}
	return scanBook(s.pool.QueryRow(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1 AND user_id = $2`, id, userID))
}

func (s *PostgresStore) UpdateBook(ctx context.Context, id, userID string, f models.BookFields) (*models.Book, error) {
	if !validUUID(id, userID) {
		return nil, ErrNotFound
	}
	return scanBook(s.pool.QueryRow(ctx,
		`UPDATE books
		 SET title = $3, author = $4, genre = $5, publication_date = $6, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+bookColumns,
		id, userID, f.Title, f.Author, f.Genre, f.PublicationDate,
	))
}

func (s *PostgresStore) SetBookCover(ctx context.Context, id, userID, key string) (*models.Book, error) {
	if !validUUID(id, userID) {
		return nil, ErrNotFound
	}
	return scanBook(s.pool.QueryRow(ctx,
		`UPDATE books SET cover_object_key = $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+bookColumns,
		id, userID, key,
	))
}

func (s *PostgresStore) DeleteBook(ctx context.Context, id, userID string) (*models.Book, error) {
	if !validUUID(id, userID) {
		return nil, ErrNotFound
	}
	return scanBook(s.pool.QueryRow(ctx,
		`DELETE FROM books WHERE id = $1 AND user_id = $2 RETURNING `+bookColumns,
		id, userID,
	))
}
