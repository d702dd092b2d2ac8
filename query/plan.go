package query

import (
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GeoNear restricts the result set to announcements within MaxDistance meters of a point
type GeoNear struct {
	Latitude    float64
	Longitude   float64
	MaxDistance float64
}

// Plan is a compiled announcement search: an optional geo stage, the AND of all
// predicates, a total order and one page.
type Plan struct {
	Geo        *GeoNear
	Predicates []bson.E
	Sort       bson.D
	Page       int
	Limit      int
}

// Skip is the number of matched documents before the requested page. It saturates
// at math.MaxInt64 so a huge page yields an empty page rather than a negative skip.
func (p *Plan) Skip() int64 {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	pages := int64(p.Page - 1)
	if pages > math.MaxInt64/int64(p.Limit) {
		return math.MaxInt64
	}
	return pages * int64(p.Limit)
}

// Filter renders the predicates as a single match document
func (p *Plan) Filter() bson.D {
	if len(p.Predicates) == 0 {
		return bson.D{}
	}
	and := bson.A{}
	for _, pred := range p.Predicates {
		and = append(and, bson.D{pred})
	}
	return bson.D{{Key: "$and", Value: and}}
}

// Pipeline renders the plan as one aggregation. The filtered set is computed once
// and $facet branches it into the count and the requested page.
func (p *Plan) Pipeline() mongo.Pipeline {
	pipeline := mongo.Pipeline{}

	if p.Geo != nil {
		pipeline = append(pipeline, bson.D{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: bson.A{p.Geo.Longitude, p.Geo.Latitude}},
			}},
			{Key: "distanceField", Value: "distance"},
			{Key: "maxDistance", Value: p.Geo.MaxDistance},
			{Key: "spherical", Value: true},
			{Key: "key", Value: "locationAnnouncement"},
		}}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$match", Value: p.Filter()}},
		bson.D{{Key: "$facet", Value: bson.D{
			{Key: "metadata", Value: bson.A{
				bson.D{{Key: "$count", Value: "total"}},
			}},
			{Key: "items", Value: bson.A{
				bson.D{{Key: "$sort", Value: p.Sort}},
				bson.D{{Key: "$skip", Value: p.Skip()}},
				bson.D{{Key: "$limit", Value: int64(p.Limit)}},
			}},
		}}},
	)

	return pipeline
}
