package mongodb

import (
	"context"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type usersRepo struct {
	db   *mongo.Database
	bind binder
}

func (r *usersRepo) coll() *mongo.Collection { return r.db.Collection(collectionUsers) }

func (r *usersRepo) UpsertUser(ctx context.Context, u domain.User) error {
	_, err := r.coll().UpdateOne(r.bind(ctx),
		bson.D{{Key: "_id", Value: u.ID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "username", Value: u.Username},
			{Key: "updated_at", Value: u.UpdatedAt.UTC()},
		}}},
		options.Update().SetUpsert(true),
	)
	return mapDuplicate(err)
}

func (r *usersRepo) GetUser(ctx context.Context, id string) (domain.User, error) {
	var doc userDoc
	if err := r.coll().FindOne(r.bind(ctx), bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return domain.User{ID: doc.ID, Username: doc.Username, UpdatedAt: doc.UpdatedAt.UTC()}, nil
}
