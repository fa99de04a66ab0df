// Package query composes match, join, reshape and paginate stages over the
// document store and returns typed pages.
package query

import (
	"context"

	"VidTube.com/pkg/store"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

type Cardinality int

const (
	Many Cardinality = iota
	// One collapses the joined list to its first element; an empty join omits the field.
	One
)

// Join attaches rows of From to each row. Match filters the joined rows;
// Joins, Project and Sort shape them before they are attached.
type Join struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Cardinality  Cardinality

	Match     bson.M
	Joins     []Join
	Computed  []store.Field
	Project   []string
	ExcludeID bool
	Sort      []store.SortKey
}

func (j Join) stages() store.Pipeline {
	var nested store.Pipeline
	if len(j.Match) > 0 {
		nested = append(nested, store.Match{Filter: j.Match})
	}
	for _, n := range j.Joins {
		nested = append(nested, n.stages()...)
	}
	if len(j.Computed) > 0 {
		nested = append(nested, store.AddFields{Fields: j.Computed})
	}
	if len(j.Sort) > 0 {
		nested = append(nested, store.Sort{Keys: j.Sort})
	}
	if len(j.Project) > 0 {
		nested = append(nested, store.Project{Fields: j.Project, ExcludeID: j.ExcludeID})
	}
	p := store.Pipeline{store.Lookup{
		From:         j.From,
		LocalField:   j.LocalField,
		ForeignField: j.ForeignField,
		As:           j.As,
		Pipeline:     nested,
	}}
	if j.Cardinality == One {
		p = append(p, store.AddFields{Fields: []store.Field{{Name: j.As, Expr: store.First{Of: store.FieldRef(j.As)}}}})
	}
	return p
}

// Spec describes one query over Collection.
type Spec struct {
	Collection string
	Match      bson.M
	Joins      []Join
	Computed   []store.Field
	Sort       []store.SortKey
	Project    []string
	ExcludeID  bool
}

// Pipeline renders the spec without pagination.
func (s Spec) Pipeline() store.Pipeline {
	return s.pipeline(nil)
}

func (s Spec) pipeline(page *Pagination) store.Pipeline {
	p := store.Pipeline{store.Match{Filter: s.matchFilter()}}
	for _, j := range s.Joins {
		p = append(p, j.stages()...)
	}
	if len(s.Computed) > 0 {
		p = append(p, store.AddFields{Fields: s.Computed})
	}
	if len(s.Sort) > 0 {
		p = append(p, store.Sort{Keys: s.Sort})
	}
	if page != nil {
		p = append(p, store.Skip{N: page.Skip()}, store.Limit{N: page.Limit})
	}
	if len(s.Project) > 0 {
		p = append(p, store.Project{Fields: s.Project, ExcludeID: s.ExcludeID})
	}
	return p
}

func (s Spec) matchFilter() bson.M {
	if s.Match == nil {
		return bson.M{}
	}
	return s.Match
}

type Engine struct {
	store store.Store
}

func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

func (e *Engine) Store() store.Store {
	return e.store
}

// Run returns one page of spec. Joins never filter rows, so the total is
// counted on the match filter alone, concurrently with the page read.
func Run[T any](ctx context.Context, e *Engine, spec Spec, page Pagination) (*Page[T], error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	var (
		docs  []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := e.store.Aggregate(gctx, spec.Collection, spec.pipeline(&page), &docs)
		return errors.Wrapf(err, "aggregate %s", spec.Collection)
	})
	g.Go(func() error {
		n, err := e.store.CountDocuments(gctx, spec.Collection, spec.matchFilter())
		total = n
		return errors.Wrapf(err, "count %s", spec.Collection)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return newPage(docs, total, page), nil
}

// All returns every row of spec.
func All[T any](ctx context.Context, e *Engine, spec Spec) ([]T, error) {
	var docs []T
	if err := e.store.Aggregate(ctx, spec.Collection, spec.Pipeline(), &docs); err != nil {
		return nil, errors.Wrapf(err, "aggregate %s", spec.Collection)
	}
	if docs == nil {
		docs = []T{}
	}
	return docs, nil
}

// First returns the first row of spec or store.ErrNotFound.
func First[T any](ctx context.Context, e *Engine, spec Spec) (*T, error) {
	p := spec.pipeline(&Pagination{Page: 1, Limit: 1})
	var docs []T
	if err := e.store.Aggregate(ctx, spec.Collection, p, &docs); err != nil {
		return nil, errors.Wrapf(err, "aggregate %s", spec.Collection)
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	return &docs[0], nil
}

// JoinOne joins the single row of from whose _id equals local, keeping fields.
func JoinOne(from, local, as string, fields ...string) Join {
	return Join{From: from, LocalField: local, ForeignField: "_id", As: as, Cardinality: One, Project: fields}
}
