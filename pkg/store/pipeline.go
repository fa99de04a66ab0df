package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Stage is one aggregation stage. The set is closed: Match, Lookup,
// AddFields, Project, Sort, Skip and Limit.
type Stage interface {
	stageDoc() bson.D
}

type Pipeline []Stage

// BSON renders the pipeline in MongoDB syntax.
func (p Pipeline) BSON() mongo.Pipeline {
	out := make(mongo.Pipeline, 0, len(p))
	for _, s := range p {
		out = append(out, s.stageDoc())
	}
	return out
}

type Match struct {
	Filter bson.M
}

func (m Match) stageDoc() bson.D {
	return bson.D{{Key: "$match", Value: m.Filter}}
}

// Lookup attaches the rows of From whose ForeignField equals LocalField under As.
// A non-empty Pipeline post-processes the joined rows.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Pipeline     Pipeline
}

func (l Lookup) stageDoc() bson.D {
	body := bson.D{
		{Key: "from", Value: l.From},
		{Key: "localField", Value: l.LocalField},
		{Key: "foreignField", Value: l.ForeignField},
	}
	if len(l.Pipeline) > 0 {
		body = append(body, bson.E{Key: "pipeline", Value: l.Pipeline.BSON()})
	}
	body = append(body, bson.E{Key: "as", Value: l.As})
	return bson.D{{Key: "$lookup", Value: body}}
}

type Field struct {
	Name string
	Expr Expr
}

type AddFields struct {
	Fields []Field
}

func (a AddFields) stageDoc() bson.D {
	body := bson.D{}
	for _, f := range a.Fields {
		body = append(body, bson.E{Key: f.Name, Value: f.Expr.exprValue()})
	}
	return bson.D{{Key: "$addFields", Value: body}}
}

// Project is an inclusion-only projection. _id is kept unless ExcludeID is set.
type Project struct {
	Fields    []string
	ExcludeID bool
}

func (p Project) stageDoc() bson.D {
	return bson.D{{Key: "$project", Value: projectionDoc(p.Fields, p.ExcludeID)}}
}

type Sort struct {
	Keys []SortKey
}

func (s Sort) stageDoc() bson.D {
	return bson.D{{Key: "$sort", Value: sortDoc(s.Keys)}}
}

type Skip struct {
	N int64
}

func (s Skip) stageDoc() bson.D {
	return bson.D{{Key: "$skip", Value: s.N}}
}

type Limit struct {
	N int64
}

func (l Limit) stageDoc() bson.D {
	return bson.D{{Key: "$limit", Value: l.N}}
}

// Expr is a computed-field expression.
type Expr interface {
	exprValue() interface{}
}

// FieldRef reads a (dotted) path of the current row. A path that crosses an
// array of documents yields the array of the nested values.
type FieldRef string

func (f FieldRef) exprValue() interface{} {
	return "$" + string(f)
}

type Literal struct {
	Value interface{}
}

func (l Literal) exprValue() interface{} {
	return bson.M{"$literal": l.Value}
}

// Size is the length of an array; a missing value counts as empty.
type Size struct {
	Of Expr
}

func (s Size) exprValue() interface{} {
	return bson.M{"$size": bson.M{"$ifNull": bson.A{s.Of.exprValue(), bson.A{}}}}
}

// In reports whether Value is an element of Array; a missing array counts as empty.
type In struct {
	Value Expr
	Array Expr
}

func (i In) exprValue() interface{} {
	return bson.M{"$in": bson.A{i.Value.exprValue(), bson.M{"$ifNull": bson.A{i.Array.exprValue(), bson.A{}}}}}
}

// First collapses an array to its first element. An empty array yields no
// value, so the target field is omitted rather than set.
type First struct {
	Of Expr
}

func (f First) exprValue() interface{} {
	return bson.M{"$first": f.Of.exprValue()}
}
