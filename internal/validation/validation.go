// Package validation checks request shapes before any flow logic runs. Each
// validator normalizes its input and returns every failed rule at once.
package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/ayush/personal-library/internal/apperr"
	"github.com/ayush/personal-library/internal/models"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 50
	MaxEmailLen    = 255
	MinPasswordLen = 6

	// bcrypt only hashes the first 72 bytes and rejects longer input.
	MaxPasswordBytes = 72
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// dateLayouts are tried in order for publicationDate.
var dateLayouts = []string{"2006-01-02", time.RFC3339Nano, time.RFC3339}

type collector []apperr.FieldError

func (c *collector) add(field, msg string) {
	*c = append(*c, apperr.FieldError{Field: field, Message: msg})
}

func (c collector) err() error {
	if len(c) == 0 {
		return nil
	}
	return apperr.Validation(c...)
}

// NormalizeEmail trims and lowercases an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email is syntactically acceptable.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Register validates a registration request.
func Register(req models.RegisterRequest) (models.RegisterRequest, error) {
	var errs collector
	out := models.RegisterRequest{
		Username: strings.TrimSpace(req.Username),
		Email:    NormalizeEmail(req.Email),
		Password: req.Password,
	}

	switch {
	case out.Username == "":
		errs.add("username", "Username is required")
	case len([]rune(out.Username)) < MinUsernameLen:
		errs.add("username", "Username must be at least 3 characters long")
	case len([]rune(out.Username)) > MaxUsernameLen:
		errs.add("username", "Username must be at most 50 characters long")
	}
	switch {
	case !ValidEmail(out.Email):
		errs.add("email", "Please include a valid email")
	case len([]rune(out.Email)) > MaxEmailLen:
		errs.add("email", "Email must be at most 255 characters long")
	}
	switch {
	case len(out.Password) < MinPasswordLen:
		errs.add("password", "Password must be at least 6 characters")
	case len(out.Password) > MaxPasswordBytes:
		errs.add("password", "Password must be at most 72 bytes")
	}
	return out, errs.err()
}

// Login validates a login request. Only shape is checked here; credential
// mismatches are reported uniformly by the auth flow.
func Login(req models.LoginRequest) (models.LoginRequest, error) {
	var errs collector
	out := models.LoginRequest{
		Email:    NormalizeEmail(req.Email),
		Password: req.Password,
	}

	if !ValidEmail(out.Email) {
		errs.add("email", "Please include a valid email")
	}
	if out.Password == "" {
		errs.add("password", "Password is required")
	}
	return out, errs.err()
}

// Book validates a create or update body.
func Book(in models.BookInput) (models.BookFields, error) {
	var errs collector
	out := models.BookFields{
		Title:  strings.TrimSpace(in.Title),
		Author: strings.TrimSpace(in.Author),
		Genre:  strings.TrimSpace(in.Genre),
	}

	if out.Title == "" {
		errs.add("title", "Title is required")
	}
	if out.Author == "" {
		errs.add("author", "Author is required")
	}
	if out.Genre == "" {
		errs.add("genre", "Genre is required")
	}

	raw := strings.TrimSpace(in.PublicationDate)
	if raw == "" {
		errs.add("publicationDate", "Publication date is required")
	} else if d, ok := ParseDate(raw); ok {
		out.PublicationDate = d
	} else {
		errs.add("publicationDate", "Publication date must be a valid date")
	}
	return out, errs.err()
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns it in UTC.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
