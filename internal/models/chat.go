package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatRecord is one question/answer exchange written by the chat service.
// This tooling only reads chats, except for the feedback migration which
// clears the legacy thumbs fields.
type ChatRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	Question   string             `bson:"question"`
	Citations  interface{}        `bson:"citations,omitempty"` // list of sources or a plain string
	CreatedAt  time.Time          `bson:"created_at"`
	Timezone   string             `bson:"timezone"` // IANA zone name captured at chat time
	FeedbackID primitive.ObjectID `bson:"feedback_id,omitempty"`

	// Legacy per-chat thumbs, moved into FeedbackRecord by the migration.
	ThumbsUp   int `bson:"thumbs_up,omitempty"`
	ThumbsDown int `bson:"thumbs_down,omitempty"`
}

// UserRecord mirrors the chat service's user document.
type UserRecord struct {
	UserID       string    `bson:"user_id"`
	Name         string    `bson:"name"`
	LastActiveAt time.Time `bson:"last_active_at"`
}

// FeedbackRecord holds thumbs and free-form feedback for a single chat.
// After the migration at most one feedback document is linked back from a
// chat via feedback_id.
type FeedbackRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	ShardID         string             `bson:"shard_id"`
	ChatID          primitive.ObjectID `bson:"chat_id"`
	ThumbsUp        int                `bson:"thumbs_up"`
	ThumbsDown      int                `bson:"thumbs_down"`
	FeedbackChoices []string           `bson:"feedback_choices"`
	FeedbackDetails string             `bson:"feedback_details"`
	CreatedAt       time.Time          `bson:"created_at"`
	Timezone        string             `bson:"timezone"`
}

// Article is a help-center article stored for summarization and FAQ
// question generation.
type Article struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Body         string             `bson:"body"` // raw HTML
	Summary      string             `bson:"summary,omitempty"`
	FAQQuestions []string           `bson:"faq_questions,omitempty"`
	UpdatedAt    time.Time          `bson:"updated_at,omitempty"`
}

// UserReportRow is one aggregated row of the user activity report. Rows are
// computed fresh per report run and never persisted beyond the output file.
type UserReportRow struct {
	UserID                  string `bson:"user_id" json:"user_id"`
	Name                    string `bson:"name" json:"name"`
	TotalQuestions          int64  `bson:"total_questions" json:"total_questions"`
	TotalAnswersNoCitations int64  `bson:"total_answers_no_citations" json:"total_answers_no_citations"`
	TotalThumbsUp           int64  `bson:"total_thumbs_up" json:"total_thumbs_up"`
	TotalThumbsDown         int64  `bson:"total_thumbs_down" json:"total_thumbs_down"`
	TotalVisits             int64  `bson:"total_visits" json:"total_visits"`
	Timezone                string `bson:"timezone" json:"timezone"`
}
