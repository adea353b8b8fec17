package query

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BSON compiles the predicate into a MongoDB filter document.
// Search terms are escaped, so user input is always matched literally.
func (p Predicate) BSON() bson.D {
	switch p.Op {
	case OpAll:
		switch len(p.Children) {
		case 0:
			return bson.D{}
		case 1:
			return p.Children[0].BSON()
		}
		return bson.D{{Key: "$and", Value: childrenBSON(p.Children)}}
	case OpAny:
		if len(p.Children) == 1 {
			return p.Children[0].BSON()
		}
		return bson.D{{Key: "$or", Value: childrenBSON(p.Children)}}
	case OpEq:
		return bson.D{{Key: p.Field, Value: bson.D{{Key: "$eq", Value: p.Value}}}}
	case OpRange:
		if p.Min == nil && p.Max == nil {
			return bson.D{}
		}
		var bounds bson.D
		if p.Min != nil {
			bounds = append(bounds, bson.E{Key: "$gte", Value: *p.Min})
		}
		if p.Max != nil {
			bounds = append(bounds, bson.E{Key: "$lte", Value: *p.Max})
		}
		return bson.D{{Key: p.Field, Value: bounds}}
	case OpContains:
		term, _ := p.Value.(string)
		return bson.D{{Key: p.Field, Value: bson.D{{Key: "$regex", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(term),
			Options: "i",
		}}}}}
	case OpContainsAll:
		return bson.D{{Key: p.Field, Value: bson.D{{Key: "$all", Value: p.Values}}}}
	}
	return bson.D{}
}

func childrenBSON(children []Predicate) bson.A {
	out := make(bson.A, 0, len(children))
	for _, c := range children {
		out = append(out, c.BSON())
	}
	return out
}
