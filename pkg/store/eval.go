package store

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toDoc converts any bson-marshalable value (struct, bson.M, bson.D) into the
// normalized document form used by MemoryStore: nested documents are bson.M,
// arrays are []interface{}, integers are int64 and times are primitive.DateTime.
func toDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal document")
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal document")
	}
	doc, _ := normalize(m).(bson.M)
	if doc == nil {
		doc = bson.M{}
	}
	return doc, nil
}

func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.M:
		out := make(bson.M, len(t))
		for k, x := range t {
			out[k] = normalize(x)
		}
		return out
	case map[string]interface{}:
		out := make(bson.M, len(t))
		for k, x := range t {
			out[k] = normalize(x)
		}
		return out
	case bson.D:
		out := make(bson.M, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(t))
		for i, x := range t {
			out[i] = normalize(x)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, x := range t {
			out[i] = normalize(x)
		}
		return out
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case time.Time:
		return primitive.NewDateTimeFromTime(t)
	default:
		return t
	}
}

// normalizeQuery brings a filter or update document into normalized form
// without losing operator documents.
func normalizeQuery(q bson.M) (bson.M, error) {
	if q == nil {
		return bson.M{}, nil
	}
	return toDoc(q)
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// getPath resolves a dotted path the way aggregation expressions do: a path
// that crosses an array of documents yields the array of nested values.
func getPath(v interface{}, parts []string) (interface{}, bool) {
	if len(parts) == 0 {
		return v, true
	}
	switch t := v.(type) {
	case bson.M:
		next, ok := t[parts[0]]
		if !ok {
			return nil, false
		}
		return getPath(next, parts[1:])
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, e := range t {
			if r, ok := getPath(e, parts); ok {
				out = append(out, r)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// candidates lists every value a query predicate on path is tested against:
// arrays contribute themselves and each of their elements.
func candidates(v interface{}, parts []string) []interface{} {
	if len(parts) == 0 {
		if arr, ok := v.([]interface{}); ok {
			out := make([]interface{}, 0, len(arr)+1)
			out = append(out, arr)
			return append(out, arr...)
		}
		return []interface{}{v}
	}
	switch t := v.(type) {
	case bson.M:
		next, ok := t[parts[0]]
		if !ok {
			return nil
		}
		return candidates(next, parts[1:])
	case []interface{}:
		var out []interface{}
		for _, e := range t {
			out = append(out, candidates(e, parts)...)
		}
		return out
	default:
		return nil
	}
}

func setPath(doc bson.M, parts []string, value interface{}) {
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(bson.M)
		if !ok {
			next = bson.M{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

func unsetPath(doc bson.M, parts []string) {
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(bson.M)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, parts[len(parts)-1])
}

func typeRank(v interface{}) int {
	switch v.(type) {
	case nil:
		return 1
	case int64, float64:
		return 2
	case string:
		return 3
	case bson.M:
		return 4
	case []interface{}:
		return 5
	case primitive.Binary:
		return 6
	case primitive.ObjectID:
		return 7
	case bool:
		return 8
	case primitive.DateTime:
		return 9
	default:
		return 10
	}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// compareValues orders two normalized values using the BSON type order
// followed by the natural order within a type.
func compareValues(a, b interface{}) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch x := a.(type) {
	case nil:
		return 0
	case int64, float64:
		fa, fb := toFloat(x), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case string:
		return strings.Compare(x, b.(string))
	case primitive.ObjectID:
		y := b.(primitive.ObjectID)
		return strings.Compare(x.Hex(), y.Hex())
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case primitive.DateTime:
		y := b.(primitive.DateTime)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case []interface{}:
		y := b.([]interface{})
		for i := 0; i < len(x) && i < len(y); i++ {
			if c := compareValues(x[i], y[i]); c != 0 {
				return c
			}
		}
		return len(x) - len(y)
	}
	if reflect.DeepEqual(a, b) {
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func valuesEqual(a, b interface{}) bool {
	if typeRank(a) != typeRank(b) {
		return false
	}
	switch a.(type) {
	case bson.M:
		return reflect.DeepEqual(a, b)
	}
	return compareValues(a, b) == 0
}

func isOperatorDoc(v interface{}) (bson.M, bool) {
	m, ok := v.(bson.M)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

func asList(v interface{}) ([]interface{}, error) {
	switch t := v.(type) {
	case []interface{}:
		return t, nil
	case bson.A:
		return []interface{}(t), nil
	}
	return nil, errors.Errorf("expected array, got %T", v)
}

// matches evaluates a normalized filter against a normalized document.
func matches(doc bson.M, filter bson.M) (bool, error) {
	for key, cond := range filter {
		switch key {
		case "$or", "$and", "$nor":
			subs, err := asList(cond)
			if err != nil {
				return false, errors.Wrapf(err, "%s", key)
			}
			anyMatch, allMatch := false, true
			for _, s := range subs {
				sub, ok := s.(bson.M)
				if !ok {
					return false, errors.Errorf("%s expects documents", key)
				}
				ok, err := matches(doc, sub)
				if err != nil {
					return false, err
				}
				anyMatch = anyMatch || ok
				allMatch = allMatch && ok
			}
			switch key {
			case "$or":
				if !anyMatch {
					return false, nil
				}
			case "$and":
				if !allMatch {
					return false, nil
				}
			case "$nor":
				if anyMatch {
					return false, nil
				}
			}
			continue
		}
		if strings.HasPrefix(key, "$") {
			return false, errors.Errorf("unsupported top-level operator %s", key)
		}
		vals := candidates(doc, splitPath(key))
		ok, err := matchField(vals, cond)
		if err != nil {
			return false, errors.Wrapf(err, "field %s", key)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchEq(vals []interface{}, want interface{}) bool {
	if want == nil && len(vals) == 0 {
		return true
	}
	for _, v := range vals {
		if valuesEqual(v, want) {
			return true
		}
	}
	return false
}

func matchField(vals []interface{}, cond interface{}) (bool, error) {
	ops, isOps := isOperatorDoc(cond)
	if !isOps {
		if re, ok := cond.(primitive.Regex); ok {
			return matchRegex(vals, re.Pattern, re.Options)
		}
		return matchEq(vals, cond), nil
	}
	for op, arg := range ops {
		var ok bool
		var err error
		switch op {
		case "$eq":
			ok = matchEq(vals, arg)
		case "$ne":
			ok = !matchEq(vals, arg)
		case "$in", "$nin":
			list, lerr := asList(arg)
			if lerr != nil {
				return false, lerr
			}
			for _, w := range list {
				if matchEq(vals, w) {
					ok = true
					break
				}
			}
			if op == "$nin" {
				ok = !ok
			}
		case "$gt", "$gte", "$lt", "$lte":
			for _, v := range vals {
				if typeRank(v) != typeRank(arg) {
					continue
				}
				c := compareValues(v, arg)
				if (op == "$gt" && c > 0) || (op == "$gte" && c >= 0) ||
					(op == "$lt" && c < 0) || (op == "$lte" && c <= 0) {
					ok = true
					break
				}
			}
		case "$exists":
			want, _ := arg.(bool)
			ok = (len(vals) > 0) == want
		case "$regex":
			pattern, _ := arg.(string)
			options, _ := ops["$options"].(string)
			ok, err = matchRegex(vals, pattern, options)
		case "$options":
			continue
		default:
			return false, errors.Errorf("unsupported operator %s", op)
		}
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchRegex(vals []interface{}, pattern, options string) (bool, error) {
	if strings.Contains(options, "i") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, errors.Wrap(err, "bad $regex")
	}
	for _, v := range vals {
		if s, ok := v.(string); ok && re.MatchString(s) {
			return true, nil
		}
	}
	return false, nil
}

// applyUpdate mutates doc according to a normalized update document.
func applyUpdate(doc bson.M, update bson.M, inserting bool) error {
	for op, arg := range update {
		fields, ok := arg.(bson.M)
		if !ok {
			return errors.Errorf("%s expects a document", op)
		}
		for path, val := range fields {
			parts := splitPath(path)
			switch op {
			case "$set":
				setPath(doc, parts, val)
			case "$setOnInsert":
				if inserting {
					setPath(doc, parts, val)
				}
			case "$unset":
				unsetPath(doc, parts)
			case "$inc":
				cur, _ := getPath(doc, parts)
				setPath(doc, parts, addNumbers(cur, val))
			case "$push", "$addToSet":
				cur, _ := getPath(doc, parts)
				arr, _ := cur.([]interface{})
				items := []interface{}{val}
				position := -1
				if mod, isMod := val.(bson.M); isMod {
					if each, hasEach := mod["$each"]; hasEach {
						list, err := asList(each)
						if err != nil {
							return err
						}
						items = list
						if p, hasPos := mod["$position"]; hasPos {
							position = int(toFloat(p))
						}
					}
				}
				if op == "$addToSet" {
					fresh := make([]interface{}, 0, len(items))
					for _, it := range items {
						if !matchEq(arr, it) && !matchEq(fresh, it) {
							fresh = append(fresh, it)
						}
					}
					items = fresh
				}
				next := make([]interface{}, 0, len(arr)+len(items))
				if position < 0 || position > len(arr) {
					next = append(append(next, arr...), items...)
				} else {
					next = append(next, arr[:position]...)
					next = append(next, items...)
					next = append(next, arr[position:]...)
				}
				setPath(doc, parts, next)
			case "$pull":
				cur, _ := getPath(doc, parts)
				arr, isArr := cur.([]interface{})
				if !isArr {
					continue
				}
				kept := make([]interface{}, 0, len(arr))
				for _, e := range arr {
					hit, err := matchField([]interface{}{e}, val)
					if err != nil {
						return err
					}
					if !hit {
						kept = append(kept, e)
					}
				}
				setPath(doc, parts, kept)
			default:
				return errors.Errorf("unsupported update operator %s", op)
			}
		}
	}
	return nil
}

func addNumbers(cur, delta interface{}) interface{} {
	ci, cInt := cur.(int64)
	di, dInt := delta.(int64)
	if (cInt || cur == nil) && dInt {
		return ci + di
	}
	return toFloat(cur) + toFloat(delta)
}

// seedFromFilter builds the base document of an upsert from the equality
// predicates of its filter.
func seedFromFilter(filter bson.M) bson.M {
	doc := bson.M{}
	for k, v := range filter {
		if strings.HasPrefix(k, "$") {
			continue
		}
		if _, isOps := isOperatorDoc(v); isOps {
			continue
		}
		setPath(doc, splitPath(k), v)
	}
	return doc
}

// missing marks an expression that produced no value.
var errMissing = errors.New("missing value")

func evalExpr(row bson.M, e Expr) (interface{}, error) {
	switch x := e.(type) {
	case FieldRef:
		v, ok := getPath(row, splitPath(string(x)))
		if !ok {
			return nil, errMissing
		}
		return v, nil
	case Literal:
		return normalize(normalizeLiteral(x.Value)), nil
	case Size:
		v, err := evalExpr(row, x.Of)
		if err == errMissing || v == nil {
			return int64(0), nil
		}
		if err != nil {
			return nil, err
		}
		arr, ok := v.([]interface{})
		if !ok {
			return nil, errors.Errorf("$size expects an array, got %T", v)
		}
		return int64(len(arr)), nil
	case In:
		needle, err := evalExpr(row, x.Value)
		if err == errMissing {
			needle = nil
		} else if err != nil {
			return nil, err
		}
		hay, err := evalExpr(row, x.Array)
		if err == errMissing || hay == nil {
			return false, nil
		}
		if err != nil {
			return nil, err
		}
		arr, ok := hay.([]interface{})
		if !ok {
			return nil, errors.Errorf("$in expects an array, got %T", hay)
		}
		for _, v := range arr {
			if valuesEqual(v, needle) {
				return true, nil
			}
		}
		return false, nil
	case First:
		v, err := evalExpr(row, x.Of)
		if err != nil {
			return nil, err
		}
		arr, ok := v.([]interface{})
		if !ok {
			return v, nil
		}
		if len(arr) == 0 {
			return nil, errMissing
		}
		return arr[0], nil
	}
	return nil, errors.Errorf("unsupported expression %T", e)
}

// normalizeLiteral routes scalar literals through bson so their in-memory
// representation matches stored documents.
func normalizeLiteral(v interface{}) interface{} {
	doc, err := toDoc(bson.M{"v": v})
	if err != nil {
		return v
	}
	return doc["v"]
}

// project keeps only the listed paths of row.
func project(row bson.M, fields []string, excludeID bool) bson.M {
	out := bson.M{}
	if id, ok := row["_id"]; ok && !excludeID {
		out["_id"] = id
	}
	for _, f := range fields {
		parts := splitPath(f)
		v, ok := row[parts[0]]
		if !ok {
			continue
		}
		if len(parts) == 1 {
			out[parts[0]] = v
			continue
		}
		projected, ok := projectValue(v, parts[1:])
		if !ok {
			continue
		}
		out[parts[0]] = mergeProjected(out[parts[0]], projected)
	}
	return out
}

func projectValue(v interface{}, parts []string) (interface{}, bool) {
	switch t := v.(type) {
	case bson.M:
		next, ok := t[parts[0]]
		if !ok {
			return bson.M{}, true
		}
		if len(parts) == 1 {
			return bson.M{parts[0]: next}, true
		}
		sub, ok := projectValue(next, parts[1:])
		if !ok {
			return bson.M{}, true
		}
		return bson.M{parts[0]: sub}, true
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, e := range t {
			if p, ok := projectValue(e, parts); ok {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

func mergeProjected(existing, add interface{}) interface{} {
	switch a := add.(type) {
	case bson.M:
		e, ok := existing.(bson.M)
		if !ok {
			return a
		}
		for k, v := range a {
			e[k] = mergeProjected(e[k], v)
		}
		return e
	case []interface{}:
		e, ok := existing.([]interface{})
		if !ok || len(e) != len(a) {
			return a
		}
		for i := range a {
			e[i] = mergeProjected(e[i], a[i])
		}
		return e
	}
	return add
}

// indexKey renders the values of keys in doc as a comparable string.
func indexKey(doc bson.M, keys []string) string {
	var b strings.Builder
	for _, k := range keys {
		v, ok := getPath(doc, splitPath(k))
		if !ok {
			v = nil
		}
		b.WriteString(canonical(v))
		b.WriteByte('|')
	}
	return b.String()
}

func canonical(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case int64, float64:
		return "n:" + strconv.FormatFloat(toFloat(t), 'g', -1, 64)
	case string:
		return "s:" + strconv.Quote(t)
	case primitive.ObjectID:
		return "o:" + t.Hex()
	case bool:
		return "b:" + strconv.FormatBool(t)
	case primitive.DateTime:
		return "d:" + strconv.FormatInt(int64(t), 10)
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func cloneDoc(doc bson.M) bson.M {
	out, _ := normalize(doc).(bson.M)
	return out
}
