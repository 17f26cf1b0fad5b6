// Package chathistory is the record-store layer: the user activity report
// pipeline and the feedback migration operations.
package chathistory

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"chatadmin/internal/config"
)

// Store owns the connection to the chat product's document database. It is
// constructed once per run and passed into the commands that need it.
type Store struct {
	client   *mongo.Client
	chats    *mongo.Collection
	users    *mongo.Collection
	feedback *mongo.Collection
	articles *mongo.Collection
	log      zerolog.Logger
}

// NewStore connects over TLS using the system trust bundle and pings the
// deployment before returning.
func NewStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Store, error) {
	roots, err := x509.SystemCertPool()
	if err != nil {
		return nil, fmt.Errorf("load system cert pool: %w", err)
	}

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetTLSConfig(&tls.Config{RootCAs: roots})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, storeErr("connect", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, storeErr("ping", err)
	}

	db := client.Database(cfg.MongoDBName)
	return &Store{
		client:   client,
		chats:    db.Collection(cfg.ChatHistoryCollection),
		users:    db.Collection(cfg.UsersCollection),
		feedback: db.Collection(cfg.FeedbackCollection),
		articles: db.Collection(cfg.ArticlesCollection),
		log:      logger,
	}, nil
}

// Close disconnects from the store.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return storeErr("disconnect", err)
	}
	return nil
}
