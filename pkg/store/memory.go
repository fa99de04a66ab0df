package store

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps every collection in process. Documents keep insertion
// order, which is also the natural order of unsorted reads.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]bson.M
	indexes     map[string][]Index
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]bson.M),
		indexes:     make(map[string][]Index),
	}
}

func (s *MemoryStore) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	f, err := normalizeQuery(filter)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.collections[collection] {
		ok, err := matches(doc, f)
		if err != nil {
			return err
		}
		if ok {
			return decodeDoc(doc, out)
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) FindMany(ctx context.Context, collection string, filter bson.M, opts *FindOptions, out interface{}) error {
	p := Pipeline{Match{Filter: filter}}
	if opts != nil {
		if len(opts.Sort) > 0 {
			p = append(p, Sort{Keys: opts.Sort})
		}
		if opts.Skip > 0 {
			p = append(p, Skip{N: opts.Skip})
		}
		if opts.Limit > 0 {
			p = append(p, Limit{N: opts.Limit})
		}
		if len(opts.Projection) > 0 {
			p = append(p, Project{Fields: opts.Projection})
		}
	}
	return s.Aggregate(ctx, collection, p, out)
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, doc interface{}) (primitive.ObjectID, error) {
	d, err := toDoc(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := d["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		d["_id"] = id
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique(collection, d, -1); err != nil {
		return primitive.NilObjectID, err
	}
	s.collections[collection] = append(s.collections[collection], d)
	return id, nil
}

func (s *MemoryStore) UpdateOne(ctx context.Context, collection string, filter, update bson.M, opts *UpdateOptions) (*UpdateResult, error) {
	upsert := opts != nil && opts.Upsert
	return s.update(collection, filter, update, false, upsert)
}

func (s *MemoryStore) UpdateMany(ctx context.Context, collection string, filter, update bson.M) (*UpdateResult, error) {
	return s.update(collection, filter, update, true, false)
}

func (s *MemoryStore) update(collection string, filter, update bson.M, many, upsert bool) (*UpdateResult, error) {
	f, err := normalizeQuery(filter)
	if err != nil {
		return nil, err
	}
	u, err := normalizeQuery(update)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &UpdateResult{}
	docs := s.collections[collection]
	for i, doc := range docs {
		ok, err := matches(doc, f)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		res.MatchedCount++
		next := cloneDoc(doc)
		if err := applyUpdate(next, u, false); err != nil {
			return nil, err
		}
		if !reflect.DeepEqual(next, doc) {
			if err := s.checkUnique(collection, next, i); err != nil {
				return nil, err
			}
			docs[i] = next
			res.ModifiedCount++
		}
		if !many {
			return res, nil
		}
	}
	if res.MatchedCount == 0 && upsert {
		doc := seedFromFilter(f)
		if err := applyUpdate(doc, u, true); err != nil {
			return nil, err
		}
		id, ok := doc["_id"].(primitive.ObjectID)
		if !ok || id.IsZero() {
			id = primitive.NewObjectID()
			doc["_id"] = id
		}
		if err := s.checkUnique(collection, doc, -1); err != nil {
			return nil, err
		}
		s.collections[collection] = append(docs, doc)
		res.UpsertedID = id
	}
	return res, nil
}

func (s *MemoryStore) DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error) {
	return s.delete(collection, filter, false)
}

func (s *MemoryStore) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	return s.delete(collection, filter, true)
}

func (s *MemoryStore) delete(collection string, filter bson.M, many bool) (int64, error) {
	f, err := normalizeQuery(filter)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	docs := s.collections[collection]
	kept := make([]bson.M, 0, len(docs))
	for _, doc := range docs {
		if many || deleted == 0 {
			ok, err := matches(doc, f)
			if err != nil {
				return 0, err
			}
			if ok {
				deleted++
				continue
			}
		}
		kept = append(kept, doc)
	}
	s.collections[collection] = kept
	return deleted, nil
}

func (s *MemoryStore) CountDocuments(ctx context.Context, collection string, filter bson.M) (int64, error) {
	f, err := normalizeQuery(filter)
	if err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, doc := range s.collections[collection] {
		ok, err := matches(doc, f)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Aggregate(ctx context.Context, collection string, pipeline Pipeline, out interface{}) error {
	s.mu.RLock()
	rows := make([]bson.M, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		rows = append(rows, cloneDoc(doc))
	}
	rows, err := s.run(rows, pipeline)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return decodeRows(rows, out)
}

func (s *MemoryStore) EnsureIndexes(ctx context.Context, collection string, indexes ...Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, idx := range indexes {
		if len(idx.Keys) == 0 {
			return errors.Errorf("index %q on %s has no keys", idx.Name, collection)
		}
		if idx.Unique {
			seen := make(map[string]struct{})
			for _, doc := range s.collections[collection] {
				k := indexKey(doc, idx.Keys)
				if _, dup := seen[k]; dup {
					return errors.Wrapf(ErrDuplicateKey, "build index %s on %s", idx.Name, collection)
				}
				seen[k] = struct{}{}
			}
		}
		s.indexes[collection] = append(s.indexes[collection], idx)
	}
	return nil
}

// checkUnique must be called with the write lock held. skip is the position
// of the document being replaced, or -1 for a new document.
func (s *MemoryStore) checkUnique(collection string, doc bson.M, skip int) error {
	for _, idx := range s.indexes[collection] {
		if !idx.Unique {
			continue
		}
		k := indexKey(doc, idx.Keys)
		for i, other := range s.collections[collection] {
			if i == skip {
				continue
			}
			if indexKey(other, idx.Keys) == k {
				return errors.Wrapf(ErrDuplicateKey, "E11000 %s index %s dup key %s", collection, idx.Name, k)
			}
		}
	}
	return nil
}

// run evaluates a pipeline. Callers hold at least the read lock since
// Lookup reads foreign collections.
func (s *MemoryStore) run(rows []bson.M, pipeline Pipeline) ([]bson.M, error) {
	for _, stage := range pipeline {
		var err error
		switch st := stage.(type) {
		case Match:
			rows, err = s.runMatch(rows, st)
		case Lookup:
			rows, err = s.runLookup(rows, st)
		case AddFields:
			for _, row := range rows {
				for _, f := range st.Fields {
					v, ferr := evalExpr(row, f.Expr)
					if ferr == errMissing {
						unsetPath(row, splitPath(f.Name))
						continue
					}
					if ferr != nil {
						return nil, errors.Wrapf(ferr, "$addFields %s", f.Name)
					}
					setPath(row, splitPath(f.Name), v)
				}
			}
		case Project:
			for i, row := range rows {
				rows[i] = project(row, st.Fields, st.ExcludeID)
			}
		case Sort:
			keys := st.Keys
			sort.SliceStable(rows, func(i, j int) bool {
				return lessByKeys(rows[i], rows[j], keys)
			})
		case Skip:
			if st.N >= int64(len(rows)) {
				rows = rows[:0]
			} else if st.N > 0 {
				rows = rows[st.N:]
			}
		case Limit:
			if st.N > 0 && st.N < int64(len(rows)) {
				rows = rows[:st.N]
			}
		default:
			return nil, errors.Errorf("unsupported stage %T", stage)
		}
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (s *MemoryStore) runMatch(rows []bson.M, m Match) ([]bson.M, error) {
	f, err := normalizeQuery(m.Filter)
	if err != nil {
		return nil, err
	}
	kept := rows[:0]
	for _, row := range rows {
		ok, err := matches(row, f)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

func (s *MemoryStore) runLookup(rows []bson.M, l Lookup) ([]bson.M, error) {
	foreign := s.collections[l.From]
	localParts, foreignParts := splitPath(l.LocalField), splitPath(l.ForeignField)
	for _, row := range rows {
		locals := candidates(row, localParts)
		if len(locals) == 0 {
			locals = []interface{}{nil}
		}
		joined := make([]bson.M, 0)
		for _, f := range foreign {
			if lookupHit(locals, candidates(f, foreignParts)) {
				joined = append(joined, cloneDoc(f))
			}
		}
		if len(l.Pipeline) > 0 {
			var err error
			joined, err = s.run(joined, l.Pipeline)
			if err != nil {
				return nil, errors.Wrapf(err, "$lookup %s", l.From)
			}
		}
		arr := make([]interface{}, len(joined))
		for i, j := range joined {
			arr[i] = j
		}
		setPath(row, splitPath(l.As), arr)
	}
	return rows, nil
}

func lookupHit(locals, foreigns []interface{}) bool {
	if len(foreigns) == 0 {
		foreigns = []interface{}{nil}
	}
	for _, l := range locals {
		if _, isArr := l.([]interface{}); isArr {
			continue
		}
		for _, f := range foreigns {
			if valuesEqual(l, f) {
				return true
			}
		}
	}
	return false
}

func lessByKeys(a, b bson.M, keys []SortKey) bool {
	for _, k := range keys {
		va, _ := getPath(a, splitPath(k.Field))
		vb, _ := getPath(b, splitPath(k.Field))
		c := compareValues(va, vb)
		if c == 0 {
			continue
		}
		if k.Desc {
			return c > 0
		}
		return c < 0
	}
	ia, _ := a["_id"].(primitive.ObjectID)
	ib, _ := b["_id"].(primitive.ObjectID)
	return compareValues(ia, ib) < 0
}

func decodeDoc(doc bson.M, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal row")
	}
	return errors.Wrap(bson.Unmarshal(raw, out), "decode row")
}

// decodeRows decodes rows into out, a pointer to a slice of values or pointers.
func decodeRows(rows []bson.M, out interface{}) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return errors.Errorf("decode target must be a pointer to a slice, got %T", out)
	}
	slice := rv.Elem()
	elemType := slice.Type().Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(rows))
	for _, row := range rows {
		if elemType.Kind() == reflect.Ptr {
			ptr := reflect.New(elemType.Elem())
			if err := decodeDoc(row, ptr.Interface()); err != nil {
				return err
			}
			result = reflect.Append(result, ptr)
			continue
		}
		ptr := reflect.New(elemType)
		if err := decodeDoc(row, ptr.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, ptr.Elem())
	}
	slice.Set(result)
	return nil
}
