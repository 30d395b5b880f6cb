package models

import (
	"encoding/json"
	"time"
)

// Book is a library entry owned by exactly one user.
type Book struct {
	ID              string    `json:"_id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Genre           string    `json:"genre"`
	PublicationDate time.Time `json:"publicationDate"`
	UserID          string    `json:"user"`
	CoverObjectKey  string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HasCover reports whether a cover image is stored for b.
func (b Book) HasCover() bool {
	return b.CoverObjectKey != ""
}

// MarshalJSON replaces the object key with a hasCover flag; the key layout
// stays server side.
func (b Book) MarshalJSON() ([]byte, error) {
	type wire Book
	return json.Marshal(struct {
		wire
		HasCover bool `json:"hasCover"`
	}{wire: wire(b), HasCover: b.HasCover()})
}

// BookInput is the JSON body for POST and PUT /api/books. It has
// no owner field; ownership comes from the verified token.
type BookInput struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	PublicationDate string `json:"publicationDate"`
}

// BookFields are the validated, mutable fields of a Book.
type BookFields struct {
	Title           string
	Author          string
	Genre           string
	PublicationDate time.Time
}

// Apply overwrites every mutable field of b.
func (f BookFields) Apply(b *Book) {
	b.Title = f.Title
	b.Author = f.Author
	b.Genre = f.Genre
	b.PublicationDate = f.PublicationDate
}
