package query

import "go.mongodb.org/mongo-driver/bson/primitive"

// OrderByIDs arranges docs in the order of ids. A join returns foreign rows in
// their collection order, so ordered references are restored with this.
// Ids without a doc are skipped.
func OrderByIDs[T any](ids []primitive.ObjectID, docs []T, id func(T) primitive.ObjectID) []T {
	byID := make(map[primitive.ObjectID]T, len(docs))
	for _, d := range docs {
		byID[id(d)] = d
	}
	out := make([]T, 0, len(docs))
	for _, i := range ids {
		if d, ok := byID[i]; ok {
			out = append(out, d)
		}
	}
	return out
}
