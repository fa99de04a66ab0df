package query

import (
	"fmt"
	"regexp"
	"strings"

	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/store"
	"go.mongodb.org/mongo-driver/bson"
)

type Pagination struct {
	Page  int64
	Limit int64
}

// NewPagination applies defaults to zero values and rejects the rest of the
// out-of-range input.
func NewPagination(page, limit int64) (Pagination, error) {
	if page == 0 {
		page = constants.DefaultPage
	}
	if limit == 0 {
		limit = constants.DefaultPageSize
	}
	p := Pagination{Page: page, Limit: limit}
	return p, p.validate()
}

func (p Pagination) validate() error {
	if p.Page < 1 {
		return errno.ParamErr.WithMessage("page must be a positive integer")
	}
	if p.Limit < 1 || p.Limit > constants.MaxPageSize {
		return errno.ParamErr.WithMessage(fmt.Sprintf("limit must be between 1 and %d", constants.MaxPageSize))
	}
	return nil
}

func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

type Page[T any] struct {
	Docs        []T   `json:"docs"`
	TotalDocs   int64 `json:"totalDocs"`
	Limit       int64 `json:"limit"`
	Page        int64 `json:"page"`
	TotalPages  int64 `json:"totalPages"`
	HasPrevPage bool  `json:"hasPrevPage"`
	HasNextPage bool  `json:"hasNextPage"`
}

func newPage[T any](docs []T, total int64, p Pagination) *Page[T] {
	if docs == nil {
		docs = []T{}
	}
	pages := (total + p.Limit - 1) / p.Limit
	return &Page[T]{
		Docs:        docs,
		TotalDocs:   total,
		Limit:       p.Limit,
		Page:        p.Page,
		TotalPages:  pages,
		HasPrevPage: p.Page > 1,
		HasNextPage: p.Page < pages,
	}
}

// ParseSort maps a (sortBy, sortType) request pair to sort keys. An empty
// sortType is ascending. When sortBy is empty as well the list falls back to
// def, newest first; fields outside allowed are rejected.
func ParseSort(sortBy, sortType, def string, allowed ...string) ([]store.SortKey, error) {
	defaulted := sortBy == ""
	if defaulted {
		sortBy = def
	}
	ok := false
	for _, a := range allowed {
		if a == sortBy {
			ok = true
			break
		}
	}
	if !ok {
		return nil, errno.ParamErr.WithMessage(fmt.Sprintf("cannot sort by %q", sortBy))
	}
	switch strings.ToLower(sortType) {
	case "":
		return []store.SortKey{{Field: sortBy, Desc: defaulted}}, nil
	case constants.SortDesc:
		return []store.SortKey{{Field: sortBy, Desc: true}}, nil
	case constants.SortAsc:
		return []store.SortKey{{Field: sortBy}}, nil
	default:
		return nil, errno.ParamErr.WithMessage("sortType must be asc or desc")
	}
}

// TextSearch matches text as a case-insensitive literal substring of any of
// fields. An empty text matches everything.
func TextSearch(text string, fields ...string) bson.M {
	text = strings.TrimSpace(text)
	if text == "" || len(fields) == 0 {
		return nil
	}
	pattern := regexp.QuoteMeta(text)
	or := make([]bson.M, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: bson.M{"$regex": pattern, "$options": "i"}})
	}
	return bson.M{"$or": or}
}

// And combines filters, skipping empty ones.
func And(filters ...bson.M) bson.M {
	parts := make([]bson.M, 0, len(filters))
	for _, f := range filters {
		if len(f) > 0 {
			parts = append(parts, f)
		}
	}
	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return parts[0]
	}
	return bson.M{"$and": parts}
}
