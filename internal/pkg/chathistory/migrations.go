package chathistory

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatadmin/internal/models"
)

// The feedback migration moves the legacy per-chat thumbs fields into
// standalone feedback documents. Run the operations in order:
// TransferThumbsToFeedback, LinkFeedbackToChats, SyncFeedbackTimestamps,
// RemoveThumbFields. After LinkFeedbackToChats at most one feedback
// document is linked back from any chat.

// TransferThumbsToFeedback inserts a feedback document for every chat that
// still carries a legacy thumb. Returns the number of documents created.
func (s *Store) TransferThumbsToFeedback(ctx context.Context) (int, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "thumbs_up", Value: bson.D{{Key: "$eq", Value: 1}}}},
		bson.D{{Key: "thumbs_down", Value: bson.D{{Key: "$eq", Value: 1}}}},
	}}}

	cursor, err := s.chats.Find(ctx, filter)
	if err != nil {
		return 0, storeErr("find chats with legacy thumbs", err)
	}
	defer cursor.Close(ctx)

	migrated := 0
	for cursor.Next(ctx) {
		var chat models.ChatRecord
		if err := cursor.Decode(&chat); err != nil {
			return migrated, storeErr("decode chat", err)
		}

		feedback := models.FeedbackRecord{
			ShardID:         uuid.NewString(),
			ChatID:          chat.ID,
			ThumbsUp:        chat.ThumbsUp,
			ThumbsDown:      chat.ThumbsDown,
			FeedbackChoices: []string{},
			FeedbackDetails: "",
			CreatedAt:       chat.CreatedAt,
			Timezone:        chat.Timezone,
		}
		if _, err := s.feedback.InsertOne(ctx, feedback); err != nil {
			return migrated, storeErr("insert feedback", err)
		}

		migrated++
		s.log.Debug().
			Str("chat_id", chat.ID.Hex()).
			Int("thumbs_up", chat.ThumbsUp).
			Int("thumbs_down", chat.ThumbsDown).
			Msg("thumbs transferred")
	}
	if err := cursor.Err(); err != nil {
		return migrated, storeErr("iterate chats", err)
	}
	return migrated, nil
}

// LinkFeedbackToChats backfills chat.feedback_id from every feedback
// document's chat_id.
func (s *Store) LinkFeedbackToChats(ctx context.Context) (int, error) {
	cursor, err := s.feedback.Find(ctx, bson.D{})
	if err != nil {
		return 0, storeErr("find feedback", err)
	}
	defer cursor.Close(ctx)

	linked := 0
	for cursor.Next(ctx) {
		var feedback models.FeedbackRecord
		if err := cursor.Decode(&feedback); err != nil {
			return linked, storeErr("decode feedback", err)
		}

		res, err := s.chats.UpdateMany(ctx,
			bson.D{{Key: "_id", Value: feedback.ChatID}},
			bson.D{{Key: "$set", Value: bson.D{{Key: "feedback_id", Value: feedback.ID}}}},
		)
		if err != nil {
			return linked, storeErr("link feedback to chat", err)
		}
		linked += int(res.ModifiedCount)
	}
	if err := cursor.Err(); err != nil {
		return linked, storeErr("iterate feedback", err)
	}
	return linked, nil
}

// SyncFeedbackTimestamps copies created_at and timezone from each chat onto
// its linked feedback document.
func (s *Store) SyncFeedbackTimestamps(ctx context.Context) (int, error) {
	filter := bson.D{{Key: "feedback_id", Value: bson.D{{Key: "$exists", Value: true}}}}

	cursor, err := s.chats.Find(ctx, filter)
	if err != nil {
		return 0, storeErr("find linked chats", err)
	}
	defer cursor.Close(ctx)

	synced := 0
	for cursor.Next(ctx) {
		var chat models.ChatRecord
		if err := cursor.Decode(&chat); err != nil {
			return synced, storeErr("decode chat", err)
		}

		res, err := s.feedback.UpdateMany(ctx,
			bson.D{{Key: "_id", Value: chat.FeedbackID}},
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "created_at", Value: chat.CreatedAt},
				{Key: "timezone", Value: chat.Timezone},
			}}},
		)
		if err != nil {
			return synced, storeErr("sync feedback timestamps", err)
		}
		synced += int(res.ModifiedCount)
	}
	if err := cursor.Err(); err != nil {
		return synced, storeErr("iterate linked chats", err)
	}
	return synced, nil
}

// RemoveThumbFields drops the legacy thumbs fields from every chat. Run
// only after the transfer has been verified.
func (s *Store) RemoveThumbFields(ctx context.Context) (int, error) {
	res, err := s.chats.UpdateMany(ctx, bson.D{}, bson.D{
		{Key: "$unset", Value: bson.D{
			{Key: "thumbs_up", Value: 1},
			{Key: "thumbs_down", Value: 1},
		}},
	})
	if err != nil {
		return 0, storeErr("unset legacy thumbs", err)
	}
	return int(res.ModifiedCount), nil
}

// FindPromptInjections sweeps questions for the known jailbreak phrasing
// and returns the matching chats for manual review.
func (s *Store) FindPromptInjections(ctx context.Context) ([]models.ChatRecord, error) {
	filter := bson.D{{Key: "question", Value: bson.D{
		{Key: "$regex", Value: primitive.Regex{Pattern: ".*disregard all previous instructions.*", Options: "i"}},
	}}}

	cursor, err := s.chats.Find(ctx, filter)
	if err != nil {
		return nil, storeErr("find prompt injections", err)
	}
	defer cursor.Close(ctx)

	var chats []models.ChatRecord
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, storeErr("decode prompt injections", err)
	}
	return chats, nil
}

// Articles returns every stored help-center article.
func (s *Store) Articles(ctx context.Context) ([]models.Article, error) {
	cursor, err := s.articles.Find(ctx, bson.D{})
	if err != nil {
		return nil, storeErr("find articles", err)
	}
	defer cursor.Close(ctx)

	var articles []models.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, storeErr("decode articles", err)
	}
	return articles, nil
}

// UpdateArticleInsights stores the generated summary and FAQ questions on
// an article.
func (s *Store) UpdateArticleInsights(ctx context.Context, id primitive.ObjectID, summary string, questions []string) error {
	_, err := s.articles.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "summary", Value: summary},
			{Key: "faq_questions", Value: questions},
		}}},
	)
	return storeErr("update article insights", err)
}
