package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned by every repository when the requested row does not
// exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique key (e.g. user email) already exists.
var ErrDuplicate = errors.New("duplicate")

// Transactor runs fn in a single unit of work. Repositories called with the
// ctx handed to fn join that unit; the ForUpdate lookups lock their rows until
// fn returns. A non-nil error from fn rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Page selects a window of a listing. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
