package chathistory

import (
	"context"

	"chatadmin/internal/models"
)

// facetResult is the shape of the single document the $facet stage emits.
type facetResult struct {
	Rows   []models.UserReportRow `bson:"paginatedResults"`
	Totals []totalCountDoc        `bson:"totalCount"`
}

// totalCountDoc holds the $count output; the count lands in a field named
// after the counted key.
type totalCountDoc struct {
	Count int64 `bson:"user_id"`
}

// UserReport runs the activity report and returns the sorted rows together
// with the total group count. An empty window yields no rows and a zero
// count rather than an error.
func (s *Store) UserReport(ctx context.Context, opts ReportOptions) ([]models.UserReportRow, int64, error) {
	pipeline, err := BuildUserReportPipeline(opts, s.users.Name(), s.feedback.Name())
	if err != nil {
		return nil, 0, err
	}

	cursor, err := s.chats.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, storeErr("aggregate user report", err)
	}

	var results []facetResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, storeErr("decode user report", err)
	}

	rows, total := unpackFacet(results)
	s.log.Info().
		Int("rows", len(rows)).
		Int64("total", total).
		Str("start", opts.StartDate).
		Str("end", opts.EndDate).
		Msg("user report aggregated")
	return rows, total, nil
}

// unpackFacet guards against an empty totalCount facet: zero groups means
// an empty page and count 0, never an index panic.
func unpackFacet(results []facetResult) ([]models.UserReportRow, int64) {
	if len(results) == 0 || len(results[0].Totals) == 0 {
		return []models.UserReportRow{}, 0
	}

	rows := results[0].Rows
	if rows == nil {
		rows = []models.UserReportRow{}
	}
	return rows, results[0].Totals[0].Count
}
