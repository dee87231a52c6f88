package mongodb

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/docket/internal/groups/store"
	"go.mongodb.org/mongo-driver/mongo"
)

var errNestedTx = errors.New("mongodb: nested transactions are not supported")

type txStore struct {
	db   *mongo.Database
	sess mongo.Session
	ctx  context.Context

	// managed transactions are committed by WithTransaction itself.
	managed bool
	done    bool
}

func (t *txStore) bind(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, t.sess)
}

func (t *txStore) Commit() error {
	if t.managed || t.done {
		return nil
	}
	t.done = true
	defer t.sess.EndSession(t.ctx)
	return t.sess.CommitTransaction(t.ctx)
}

func (t *txStore) Rollback() error {
	if t.managed || t.done {
		return nil
	}
	t.done = true
	defer t.sess.EndSession(t.ctx)
	return t.sess.AbortTransaction(t.ctx)
}

func (t *txStore) Close() error                         { return nil }
func (t *txStore) Ping(ctx context.Context) error       { return nil }
func (t *txStore) ApplyMigrations() error               { return nil }
func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error { return errNestedTx }

func (t *txStore) Groups() store.Groups     { return &groupsRepo{db: t.db, bind: t.bind} }
func (t *txStore) Members() store.Members   { return &membersRepo{db: t.db, bind: t.bind} }
func (t *txStore) Invites() store.Invites   { return &invitesRepo{db: t.db, bind: t.bind} }
func (t *txStore) Users() store.Users       { return &usersRepo{db: t.db, bind: t.bind} }
func (t *txStore) Content() store.Content   { return &contentRepo{db: t.db, bind: t.bind} }
func (t *txStore) Activity() store.Activity { return &activityRepo{db: t.db, bind: t.bind} }
