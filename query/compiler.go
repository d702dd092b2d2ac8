// Package query compiles announcement filters into aggregation plans and runs them.
package query

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/models"
)

const (
	// DefaultPage is used when the filter has no page
	DefaultPage = 1
	// DefaultLimit is used when the filter has no limit
	DefaultLimit = 9
	// DefaultSort is used when the filter has no sort
	DefaultSort = models.SortDatePublicationDesc
	// MaxLimit caps the page size of a search
	MaxLimit = 100

	dateLayout = "2006-01-02"
	hourLayout = "15:04"
)

// publicationWindows maps each relative interval to the start of its window
var publicationWindows = map[string]func(now time.Time) time.Time{
	"1h": func(now time.Time) time.Time { return now.Add(-time.Hour) },
	"5h": func(now time.Time) time.Time { return now.Add(-5 * time.Hour) },
	"1d": func(now time.Time) time.Time { return now.AddDate(0, 0, -1) },
	"1w": func(now time.Time) time.Time { return now.AddDate(0, 0, -7) },
	"1M": func(now time.Time) time.Time { return now.AddDate(0, -1, 0) },
}

var sortFields = map[string]bson.E{
	models.SortDateEventAsc:        {Key: "dateEvent", Value: 1},
	models.SortDateEventDesc:       {Key: "dateEvent", Value: -1},
	models.SortDatePublicationAsc:  {Key: "datePublication", Value: 1},
	models.SortDatePublicationDesc: {Key: "datePublication", Value: -1},
}

// Compile turns a filter into a Plan. Unset fields add no predicate. It is pure:
// now anchors relative publication windows and nothing touches the store.
func Compile(f models.AnnouncementFilter, now time.Time) (*Plan, error) {
	plan := &Plan{
		Page:  clamp(f.Page, DefaultPage, math.MaxInt),
		Limit: clamp(f.Limit, DefaultLimit, MaxLimit),
	}

	sortKey := f.Sort
	if sortKey == "" {
		sortKey = DefaultSort
	}
	field, ok := sortFields[sortKey]
	if !ok {
		return nil, apperrors.Validation(fmt.Errorf("unknown sort %q", f.Sort))
	}
	plan.Sort = bson.D{field, {Key: "_id", Value: 1}}

	if f.Latitude != nil && f.Longitude != nil && f.Radius != nil {
		plan.Geo = &GeoNear{Latitude: *f.Latitude, Longitude: *f.Longitude, MaxDistance: *f.Radius}
	}

	add := func(key string, value interface{}) {
		plan.Predicates = append(plan.Predicates, bson.E{Key: key, Value: value})
	}

	if f.NameEvent != "" {
		add("nameEvent", contains(f.NameEvent))
	}
	if f.Description != "" {
		add("description", contains(f.Description))
	}
	if f.AssociationName != "" {
		add("associationName", contains(f.AssociationName))
	}
	if f.Status != "" {
		add("status", f.Status)
	}
	if len(f.Tags) > 0 {
		add("tags", bson.D{{Key: "$in", Value: f.Tags}})
	}

	dateEvent, err := dayRange(f.DateEventFrom, f.DateEventTo)
	if err != nil {
		return nil, err
	}
	if dateEvent != nil {
		add("dateEvent", dateEvent)
	}

	if f.HoursEventFrom != "" && f.HoursEventTo != "" {
		hours, err := hoursWithin(f.HoursEventFrom, f.HoursEventTo)
		if err != nil {
			return nil, err
		}
		add("$expr", hours)
	}

	if window, ok := publicationWindows[f.PublicationInterval]; ok {
		add("datePublication", bson.D{
			{Key: "$gte", Value: window(now)},
			{Key: "$lte", Value: now},
		})
	} else if f.PublicationInterval != "" {
		return nil, apperrors.Validation(fmt.Errorf("unknown publication interval %q", f.PublicationInterval))
	} else {
		published, err := dayRange(f.DatePublicationFrom, f.DatePublicationTo)
		if err != nil {
			return nil, err
		}
		if published != nil {
			add("datePublication", published)
		}
	}

	return plan, nil
}

func clamp(v *int, def, upper int) int {
	switch {
	case v == nil:
		return def
	case *v < 1:
		return 1
	case *v > upper:
		return upper
	}
	return *v
}

// contains is a case-insensitive substring match with the input taken literally
func contains(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// dayRange builds an inclusive calendar day range. The upper bound is exclusive
// midnight of the day after to, so events at any time on that day match.
func dayRange(from, to string) (bson.D, error) {
	var rng bson.D
	if from != "" {
		d, err := time.ParseInLocation(dateLayout, from, time.UTC)
		if err != nil {
			return nil, apperrors.Validation(fmt.Errorf("invalid date %q, expected YYYY-MM-DD", from))
		}
		rng = append(rng, bson.E{Key: "$gte", Value: d})
	}
	if to != "" {
		d, err := time.ParseInLocation(dateLayout, to, time.UTC)
		if err != nil {
			return nil, apperrors.Validation(fmt.Errorf("invalid date %q, expected YYYY-MM-DD", to))
		}
		rng = append(rng, bson.E{Key: "$lt", Value: d.AddDate(0, 0, 1)})
	}
	return rng, nil
}

// hoursWithin matches events whose "HH:MM - HH:MM" range lies inside [from, to].
// Bounds are normalised to zero padded HH:MM so they compare correctly as strings.
func hoursWithin(from, to string) (bson.D, error) {
	bounds := make([]string, 0, 2)
	for _, h := range []string{from, to} {
		t, err := time.Parse(hourLayout, h)
		if err != nil {
			return nil, apperrors.Validation(fmt.Errorf("invalid time %q, expected HH:MM", h))
		}
		bounds = append(bounds, t.Format(hourLayout))
	}
	hours := bson.D{{Key: "$ifNull", Value: bson.A{"$hoursEvent", ""}}}
	return bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "$gte", Value: bson.A{
			bson.D{{Key: "$substrCP", Value: bson.A{hours, 0, 5}}}, bounds[0],
		}}},
		bson.D{{Key: "$lte", Value: bson.A{
			bson.D{{Key: "$substrCP", Value: bson.A{hours, 8, 5}}}, bounds[1],
		}}},
	}}}, nil
}
