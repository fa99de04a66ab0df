package query

import (
	"context"
	"fmt"
	"testing"

	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type row struct {
	ID    primitive.ObjectID `bson:"_id"`
	Title string             `bson:"title"`
	N     int64              `bson:"n"`
	Owner *ownerRow          `bson:"owner,omitempty"`
}

type ownerRow struct {
	Username string `bson:"username"`
	Avatar   string `bson:"avatar"`
}

func seed(t *testing.T, s store.Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := s.Insert(context.Background(), "videos", bson.M{"title": fmt.Sprintf("v%02d", i), "n": i})
		require.NoError(t, err)
	}
}

func TestPaginationLaw(t *testing.T) {
	ctx := context.Background()
	for _, n := range []int{0, 1, 7, 10, 23} {
		s := store.NewMemoryStore()
		seed(t, s, n)
		e := NewEngine(s)
		for _, limit := range []int64{1, 3, 10} {
			for page := int64(1); page <= 5; page++ {
				p, err := Run[row](ctx, e, Spec{Collection: "videos", Sort: []store.SortKey{{Field: "n"}}}, Pagination{Page: page, Limit: limit})
				require.NoError(t, err)

				want := int64(n) - limit*(page-1)
				if want < 0 {
					want = 0
				}
				if want > limit {
					want = limit
				}
				assert.Len(t, p.Docs, int(want), "n=%d limit=%d page=%d", n, limit, page)
				assert.Equal(t, int64(n), p.TotalDocs)
				assert.Equal(t, (int64(n)+limit-1)/limit, p.TotalPages)
				if want > 0 {
					assert.Equal(t, (page-1)*limit, p.Docs[0].N)
				}
			}
		}
	}
}

func TestRunRejectsBadPagination(t *testing.T) {
	e := NewEngine(store.NewMemoryStore())
	_, err := Run[row](context.Background(), e, Spec{Collection: "videos"}, Pagination{Page: 0, Limit: 10})
	assert.ErrorIs(t, err, errno.ParamErr)
}

func TestNewPagination(t *testing.T) {
	p, err := NewPagination(0, 0)
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 1, Limit: 10}, p)

	_, err = NewPagination(-1, 10)
	assert.ErrorIs(t, err, errno.ParamErr)
	_, err = NewPagination(1, 1000)
	assert.ErrorIs(t, err, errno.ParamErr)
	assert.Equal(t, int64(20), Pagination{Page: 3, Limit: 10}.Skip())
}

func TestJoinOneCollapsesAndOmits(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	owner, err := s.Insert(ctx, "users", bson.M{"username": "chai", "avatar": "a.png", "password": "hash"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "videos", bson.M{"title": "owned", "n": 1, "owner": owner})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "videos", bson.M{"title": "orphan", "n": 2, "owner": primitive.NewObjectID()})
	require.NoError(t, err)

	spec := Spec{
		Collection: "videos",
		Joins: []Join{{
			From: "users", LocalField: "owner", ForeignField: "_id", As: "owner",
			Cardinality: One, Project: []string{"username", "avatar"}, ExcludeID: true,
		}},
		Sort: []store.SortKey{{Field: "n"}},
	}
	rows, err := All[row](ctx, NewEngine(s), spec)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Owner)
	assert.Equal(t, "chai", rows[0].Owner.Username)
	assert.Nil(t, rows[1].Owner)

	var raw []bson.M
	require.NoError(t, s.Aggregate(ctx, "videos", spec.Pipeline(), &raw))
	assert.NotContains(t, raw[1], "owner")
	var owned bson.M
	switch o := raw[0]["owner"].(type) {
	case bson.M:
		owned = o
	case bson.D:
		owned = o.Map()
	}
	require.NotNil(t, owned)
	assert.NotContains(t, owned, "password")
	assert.NotContains(t, owned, "_id")
}

func TestFirstNotFound(t *testing.T) {
	_, err := First[row](context.Background(), NewEngine(store.NewMemoryStore()), Spec{Collection: "videos"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTextSearchIsLiteralAndCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	for _, title := range []string{"Go 1.22 release", "Go 1x22 notes", "golang"} {
		_, err := s.Insert(ctx, "videos", bson.M{"title": title, "description": ""})
		require.NoError(t, err)
	}
	e := NewEngine(s)

	rows, err := All[row](ctx, e, Spec{Collection: "videos", Match: TextSearch("1.22", "title", "description")})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Go 1.22 release", rows[0].Title)

	rows, err = All[row](ctx, e, Spec{Collection: "videos", Match: TextSearch("GO", "title")})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	assert.Nil(t, TextSearch("  ", "title"))
}

func TestParseSort(t *testing.T) {
	keys, err := ParseSort("", "", "createdAt", "createdAt", "views")
	require.NoError(t, err)
	assert.Equal(t, []store.SortKey{{Field: "createdAt", Desc: true}}, keys)

	keys, err = ParseSort("views", "", "createdAt", "createdAt", "views")
	require.NoError(t, err)
	assert.Equal(t, []store.SortKey{{Field: "views"}}, keys)

	keys, err = ParseSort("", "asc", "createdAt", "createdAt", "views")
	require.NoError(t, err)
	assert.Equal(t, []store.SortKey{{Field: "createdAt"}}, keys)

	keys, err = ParseSort("views", "desc", "createdAt", "createdAt", "views")
	require.NoError(t, err)
	assert.Equal(t, []store.SortKey{{Field: "views", Desc: true}}, keys)

	keys, err = ParseSort("views", "ASC", "createdAt", "createdAt", "views")
	require.NoError(t, err)
	assert.Equal(t, []store.SortKey{{Field: "views"}}, keys)

	_, err = ParseSort("password", "asc", "createdAt", "createdAt", "views")
	assert.ErrorIs(t, err, errno.ParamErr)
	_, err = ParseSort("views", "sideways", "createdAt", "createdAt", "views")
	assert.ErrorIs(t, err, errno.ParamErr)
}

func TestAnd(t *testing.T) {
	assert.Equal(t, bson.M{}, And(nil, bson.M{}))
	assert.Equal(t, bson.M{"a": 1}, And(bson.M{"a": 1}, nil))
	assert.Equal(t, bson.M{"$and": []bson.M{{"a": 1}, {"b": 2}}}, And(bson.M{"a": 1}, bson.M{"b": 2}))
}

func TestJoinMatchFiltersJoinedRows(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	owner, err := s.Insert(ctx, "users", bson.M{"username": "chai", "active": false})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "videos", bson.M{"title": "clip", "n": 1, "owner": owner})
	require.NoError(t, err)

	join := JoinOne("users", "owner", "owner", "username", "avatar")
	join.Match = bson.M{"active": true}
	rows, err := All[row](ctx, NewEngine(s), Spec{Collection: "videos", Joins: []Join{join}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Owner)

	join.Match = bson.M{"username": "chai"}
	rows, err = All[row](ctx, NewEngine(s), Spec{Collection: "videos", Joins: []Join{join}})
	require.NoError(t, err)
	require.NotNil(t, rows[0].Owner)
	assert.Equal(t, "chai", rows[0].Owner.Username)
}

func TestOrderByIDs(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	docs := []row{{ID: a, Title: "a"}, {ID: b, Title: "b"}}
	rowID := func(r row) primitive.ObjectID { return r.ID }

	got := OrderByIDs([]primitive.ObjectID{b, c, a}, docs, rowID)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Title)
	assert.Equal(t, "a", got[1].Title)

	assert.Empty(t, OrderByIDs(nil, docs, rowID))
}
