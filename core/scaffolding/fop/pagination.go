// Package fop holds filtering, ordering and paging primitives shared by the
// repositories.
package fop

import (
	"errors"
	"fmt"
	"strconv"
)

// Page size bounds.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ErrInvalidPage is returned for unusable page size parameters.
var ErrInvalidPage = errors.New("invalid page")

// PageStringCursor represents the requested page: how many records and from
// which opaque token.
type PageStringCursor struct {
	Limit  int
	Cursor string
}

// ParsePageStringCursor validates the raw query values. An empty pageSize
// selects DefaultPageSize.
func ParsePageStringCursor(pageSize string, cursor string) (PageStringCursor, error) {
	limit := DefaultPageSize

	if pageSize != "" {
		var err error
		limit, err = strconv.Atoi(pageSize)
		if err != nil {
			return PageStringCursor{}, fmt.Errorf("%w: page size %q is not a number", ErrInvalidPage, pageSize)
		}
	}

	if limit <= 0 {
		return PageStringCursor{}, fmt.Errorf("%w: page size must be larger than 0", ErrInvalidPage)
	}

	if limit > MaxPageSize {
		return PageStringCursor{}, fmt.Errorf("%w: page size must be at most %d", ErrInvalidPage, MaxPageSize)
	}

	return PageStringCursor{
		Limit:  limit,
		Cursor: cursor,
	}, nil
}

// Page is one slice of an ordered collection. NextCursor is empty at the end
// of the collection.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// HasNext reports whether another page follows.
func (p Page[T]) HasNext() bool {
	return p.NextCursor != ""
}

// Paginate turns the result of a limit+1 query into a page. When the extra
// row is present its key becomes the next cursor; the row itself is left for
// the next page, which the store reads with an inclusive bound.
func Paginate[T any, PK any](rows []T, limit int, key func(T) PK) (Page[T], error) {
	if len(rows) <= limit {
		if rows == nil {
			rows = []T{}
		}
		return Page[T]{Items: rows}, nil
	}

	next, err := Cursor[PK]{PK: key(rows[limit])}.Encode()
	if err != nil {
		return Page[T]{}, err
	}

	return Page[T]{
		Items:      rows[:limit],
		NextCursor: next,
	}, nil
}
