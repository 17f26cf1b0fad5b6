// Package report serializes user report rows to JSON or spreadsheet files.
package report

import (
	"bytes"
	"encoding/json"

	"chatadmin/internal/models"
)

// Field is one key/value cell of a report row.
type Field struct {
	Key   string
	Value interface{}
}

// Row is an ordered sequence of fields. Order is significant: it fixes both
// the JSON key order and the spreadsheet column order.
type Row []Field

// Keys returns the row's keys in order.
func (r Row) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// MarshalJSON writes the row as an object with keys in field order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FieldsOf fixes the output order for a user report row.
func FieldsOf(row models.UserReportRow) Row {
	return Row{
		{Key: "user_id", Value: row.UserID},
		{Key: "name", Value: row.Name},
		{Key: "total_questions", Value: row.TotalQuestions},
		{Key: "total_answers_no_citations", Value: row.TotalAnswersNoCitations},
		{Key: "total_thumbs_up", Value: row.TotalThumbsUp},
		{Key: "total_thumbs_down", Value: row.TotalThumbsDown},
		{Key: "total_visits", Value: row.TotalVisits},
		{Key: "timezone", Value: row.Timezone},
	}
}
