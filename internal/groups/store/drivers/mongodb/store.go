// Package mongodb is the MongoDB store driver. A group's roster is embedded in
// the group document, so every membership precondition is checked by the same
// filter that performs the write.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/docket/internal/groups/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	collectionGroups   = "groups"
	collectionInvites  = "invites"
	collectionUsers    = "users"
	collectionContent  = "content"
	collectionActivity = "activity"
)

// binder attaches the transaction session, if any, to a caller context.
type binder func(context.Context) context.Context

func noSession(ctx context.Context) context.Context { return ctx }

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to uri and uses the named database. Transactions need a
// replica set or sharded cluster.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// ApplyMigrations ensures the indexes the repositories rely on.
func (s *Store) ApplyMigrations() error {
	ctx := context.Background()

	indexes := map[string][]mongo.IndexModel{
		collectionGroups: {
			{Keys: bson.D{{Key: "members.user_id", Value: 1}}},
		},
		collectionInvites: {
			{Keys: bson.D{{Key: "token_hash", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "group_id", Value: 1}}},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
		collectionContent: {
			{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "kind", Value: 1}}},
			{Keys: bson.D{{Key: "parent_id", Value: 1}}},
		},
		collectionActivity: {
			{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongodb indexes %s: %w", coll, err)
		}
	}
	return nil
}

// Tx starts a session-bound transaction.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, err
	}
	if err := sess.StartTransaction(); err != nil {
		sess.EndSession(ctx)
		return nil, err
	}
	return &txStore{db: s.db, sess: sess, ctx: ctx}, nil
}

// WithTx runs fn inside a session transaction. The driver retries fn on
// transient transaction errors, so fn must not have side effects outside tx.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(&txStore{db: s.db, sess: sess, ctx: sc, managed: true})
	})
	return err
}

func (s *Store) Groups() store.Groups     { return &groupsRepo{db: s.db, bind: noSession} }
func (s *Store) Members() store.Members   { return &membersRepo{db: s.db, bind: noSession} }
func (s *Store) Invites() store.Invites   { return &invitesRepo{db: s.db, bind: noSession} }
func (s *Store) Users() store.Users       { return &usersRepo{db: s.db, bind: noSession} }
func (s *Store) Content() store.Content   { return &contentRepo{db: s.db, bind: noSession} }
func (s *Store) Activity() store.Activity { return &activityRepo{db: s.db, bind: noSession} }

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func mapDuplicate(err error) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %w", store.ErrAlreadyExists, err)
	}
	return err
}
