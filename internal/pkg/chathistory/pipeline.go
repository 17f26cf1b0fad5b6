package chathistory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrUnknownSortField is returned when a report asks to sort by a field
// that is not part of the projected row shape.
var ErrUnknownSortField = errors.New("unknown sort field")

// Order is the sort direction of the report page.
type Order int

const (
	Ascending  Order = 1
	Descending Order = -1
)

// ParseOrder maps "asc"/"desc" (any case) onto a direction. Anything that
// is not ascending sorts descending.
func ParseOrder(s string) Order {
	if strings.EqualFold(s, "asc") {
		return Ascending
	}
	return Descending
}

// ReportOptions selects the report window and ordering. Dates are calendar
// dates, both ends inclusive.
type ReportOptions struct {
	StartDate string // "2006-01-02" or "2006-01-02 15:04:05"
	EndDate   string
	SortBy    string
	Order     Order
}

// zoneAliases remaps deprecated IANA zone identifiers onto the names the
// server's tz database actually carries.
var zoneAliases = []struct {
	legacy    string
	canonical string
}{
	{"Europe/Kyiv", "Europe/Kiev"},
	{"America/Ciudad_Juarez", "America/Denver"},
}

// sortableFields is the projected row shape; eager validation instead of
// the old silently unsorted page.
var sortableFields = map[string]struct{}{
	"user_id":                    {},
	"name":                       {},
	"total_questions":            {},
	"total_answers_no_citations": {},
	"total_thumbs_up":            {},
	"total_thumbs_down":          {},
	"total_visits":               {},
	"timezone":                   {},
}

const localizedTimeFormat = "%Y-%m-%d %H:%M:%S"

// CanonicalZone resolves a legacy zone alias to its canonical name. Names
// without an alias pass through unchanged.
func CanonicalZone(tz string) string {
	for _, alias := range zoneAliases {
		if tz == alias.legacy {
			return alias.canonical
		}
	}
	return tz
}

// BuildUserReportPipeline constructs the aggregation for the per-user
// activity report:
//
//	localize created_at -> match window -> join users (inner) ->
//	localize last_active_at -> join feedback (left) -> group per user ->
//	project row shape -> facet into a sorted page plus a total count.
//
// The window match compares localized "YYYY-MM-DD HH:MM:SS" strings
// lexicographically, which is sound because the format is fixed-width and
// zero-padded. Bounds are rendered as full day-start/day-end timestamps so
// both calendar dates are inclusive.
func BuildUserReportPipeline(opts ReportOptions, usersColl, feedbackColl string) (mongo.Pipeline, error) {
	lower, upper, err := reportWindow(opts.StartDate, opts.EndDate)
	if err != nil {
		return nil, err
	}

	sortBy := strings.ToLower(opts.SortBy)
	if _, ok := sortableFields[sortBy]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortField, opts.SortBy)
	}

	order := opts.Order
	if order != Descending {
		order = Ascending
	}

	return mongo.Pipeline{
		localizedFieldStage("created_at_localized", "$created_at"),
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "created_at_localized", Value: bson.D{
				{Key: "$gte", Value: lower},
				{Key: "$lte", Value: upper},
			}},
		}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersColl},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "user_id"},
			{Key: "as", Value: "user"},
		}}},
		// Plain $unwind: chats without a matching user drop out.
		bson.D{{Key: "$unwind", Value: "$user"}},
		localizedFieldStage("last_active_at_localized", "$user.last_active_at"),
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: feedbackColl},
			{Key: "localField", Value: "feedback_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "feedback"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$feedback"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user.user_id"},
			{Key: "name", Value: bson.D{{Key: "$first", Value: "$user.name"}}},
			{Key: "total_questions", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total_answers_no_citations", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.D{
					{Key: "if", Value: bson.D{{Key: "$or", Value: bson.A{
						bson.D{{Key: "$eq", Value: bson.A{"$citations", bson.A{}}}},
						bson.D{{Key: "$eq", Value: bson.A{"$citations", ""}}},
					}}}},
					{Key: "then", Value: 1},
					{Key: "else", Value: 0},
				}},
			}}}},
			// $sum skips the missing feedback fields of unmatched left
			// joins, so chats without feedback contribute 0.
			{Key: "total_thumbs_up", Value: bson.D{{Key: "$sum", Value: "$feedback.thumbs_up"}}},
			{Key: "total_thumbs_down", Value: bson.D{{Key: "$sum", Value: "$feedback.thumbs_down"}}},
			{Key: "date_set", Value: bson.D{{Key: "$addToSet", Value: bson.D{
				{Key: "$dateToString", Value: bson.D{
					{Key: "format", Value: "%Y-%m-%d"},
					{Key: "date", Value: "$created_at"},
				}},
			}}}},
			{Key: "created_at", Value: bson.D{{Key: "$first", Value: "$created_at_localized"}}},
			{Key: "last_active_at", Value: bson.D{{Key: "$first", Value: "$last_active_at_localized"}}},
			{Key: "timezone", Value: bson.D{{Key: "$first", Value: "$timezone"}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "user_id", Value: "$_id"},
			{Key: "name", Value: 1},
			{Key: "total_questions", Value: 1},
			{Key: "total_answers_no_citations", Value: 1},
			{Key: "total_thumbs_up", Value: 1},
			{Key: "total_thumbs_down", Value: 1},
			{Key: "total_visits", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$gte", Value: bson.A{
					bson.D{{Key: "$size", Value: "$date_set"}}, 1,
				}}}},
				{Key: "then", Value: bson.D{{Key: "$size", Value: "$date_set"}}},
				{Key: "else", Value: 0},
			}}}},
			{Key: "timezone", Value: 1},
		}}},
		// Page and count come from the same grouped set so they cannot
		// drift apart.
		bson.D{{Key: "$facet", Value: bson.D{
			{Key: "paginatedResults", Value: bson.A{
				bson.D{{Key: "$sort", Value: bson.D{{Key: sortBy, Value: int(order)}}}},
			}},
			{Key: "totalCount", Value: bson.A{
				bson.D{{Key: "$count", Value: "user_id"}},
			}},
		}}},
	}, nil
}

// localizedFieldStage renders a stored UTC instant as a wall-clock string
// in the record's timezone, remapping legacy zone aliases first.
func localizedFieldStage(field, dateExpr string) bson.D {
	branches := bson.A{}
	for _, alias := range zoneAliases {
		branches = append(branches, bson.D{
			{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$timezone", alias.legacy}}}},
			{Key: "then", Value: alias.canonical},
		})
	}

	return bson.D{{Key: "$addFields", Value: bson.D{
		{Key: field, Value: bson.D{
			{Key: "$dateToString", Value: bson.D{
				{Key: "date", Value: dateExpr},
				{Key: "format", Value: localizedTimeFormat},
				{Key: "timezone", Value: bson.D{
					{Key: "$switch", Value: bson.D{
						{Key: "branches", Value: branches},
						{Key: "default", Value: "$timezone"},
					}},
				}},
			}},
		}},
	}}}
}

func reportWindow(start, end string) (string, string, error) {
	startDay, err := parseDate(start)
	if err != nil {
		return "", "", err
	}
	endDay, err := parseDate(end)
	if err != nil {
		return "", "", err
	}

	lower := startDay.Format("2006-01-02") + " 00:00:00"
	upper := endDay.Format("2006-01-02") + " 23:59:59"
	return lower, upper, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: want YYYY-MM-DD or YYYY-MM-DD HH:MM:SS", s)
}
