package mongodb

import (
	"context"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type groupsRepo struct {
	db   *mongo.Database
	bind binder
}

func (r *groupsRepo) coll() *mongo.Collection { return r.db.Collection(collectionGroups) }

func (r *groupsRepo) CreateGroup(ctx context.Context, g domain.Group) error {
	_, err := r.coll().InsertOne(r.bind(ctx), toGroupDoc(g))
	return mapDuplicate(err)
}

func (r *groupsRepo) GetGroup(ctx context.Context, id string) (domain.Group, error) {
	ctx = r.bind(ctx)

	var doc groupDoc
	if err := r.coll().FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		return domain.Group{}, mapNotFound(err)
	}

	names, err := usernames(ctx, r.db, doc)
	if err != nil {
		return domain.Group{}, err
	}
	return doc.toDomain(names), nil
}

func (r *groupsRepo) ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	ctx = r.bind(ctx)

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll().Find(ctx, bson.D{{Key: "members.user_id", Value: userID}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []groupDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	names, err := usernames(ctx, r.db, docs...)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Group, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain(names))
	}
	return out, nil
}

func (r *groupsRepo) UpdateGroup(ctx context.Context, g domain.Group) error {
	res, err := r.coll().UpdateOne(r.bind(ctx),
		bson.D{{Key: "_id", Value: g.ID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "name", Value: g.Name},
			{Key: "description", Value: g.Description},
			{Key: "icon", Value: g.Icon},
			{Key: "color", Value: g.Color},
			{Key: "updated_at", Value: g.UpdatedAt.UTC()},
		}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *groupsRepo) DeleteGroup(ctx context.Context, id string) error {
	res, err := r.coll().DeleteOne(r.bind(ctx), bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// usernames resolves display names for every member of docs in one query.
func usernames(ctx context.Context, db *mongo.Database, docs ...groupDoc) (map[string]string, error) {
	var ids []string
	seen := make(map[string]struct{})
	for _, d := range docs {
		for _, m := range d.Members {
			if _, ok := seen[m.UserID]; !ok {
				seen[m.UserID] = struct{}{}
				ids = append(ids, m.UserID)
			}
		}
	}
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	cursor, err := db.Collection(collectionUsers).Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []userDoc
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}
