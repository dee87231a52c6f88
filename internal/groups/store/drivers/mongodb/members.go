package mongodb

import (
	"context"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type membersRepo struct {
	db   *mongo.Database
	bind binder
}

func (r *membersRepo) coll() *mongo.Collection { return r.db.Collection(collectionGroups) }

func (r *membersRepo) AddMember(ctx context.Context, groupID string, m domain.Member) error {
	ctx = r.bind(ctx)

	res, err := r.coll().UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: groupID},
			{Key: "members.user_id", Value: bson.D{{Key: "$ne", Value: m.UserID}}},
		},
		bson.D{{Key: "$push", Value: bson.D{{Key: "members", Value: toMemberDoc(m)}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.coll().CountDocuments(ctx, bson.D{{Key: "_id", Value: groupID}})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return store.ErrAlreadyExists
}

// guardFilter matches the group only while g holds for userID.
func guardFilter(groupID, userID string, g store.Guard) bson.D {
	conds := bson.A{
		bson.D{{Key: "members", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
			{Key: "user_id", Value: userID},
			{Key: "role", Value: string(g.TargetRole)},
		}}}}},
	}
	if g.ActorID != "" {
		conds = append(conds, bson.D{{Key: "members", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
			{Key: "user_id", Value: g.ActorID},
			{Key: "role", Value: string(g.ActorRole)},
		}}}}})
	}
	return bson.D{{Key: "_id", Value: groupID}, {Key: "$and", Value: conds}}
}

func (r *membersRepo) RemoveMember(ctx context.Context, groupID, userID string, g store.Guard) error {
	res, err := r.coll().UpdateOne(r.bind(ctx),
		guardFilter(groupID, userID, g),
		bson.D{{Key: "$pull", Value: bson.D{{Key: "members", Value: bson.D{{Key: "user_id", Value: userID}}}}}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *membersRepo) SetRole(ctx context.Context, groupID, userID string, role domain.Role, g store.Guard) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []any{bson.D{{Key: "t.user_id", Value: userID}}},
	})
	res, err := r.coll().UpdateOne(r.bind(ctx),
		guardFilter(groupID, userID, g),
		bson.D{{Key: "$set", Value: bson.D{{Key: "members.$[t].role", Value: string(role)}}}},
		opts,
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *membersRepo) UpdateSettings(ctx context.Context, groupID string, m domain.Member) error {
	res, err := r.coll().UpdateOne(r.bind(ctx),
		bson.D{{Key: "_id", Value: groupID}, {Key: "members.user_id", Value: m.UserID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "members.$.is_pinned", Value: m.Pinned},
			{Key: "members.$.notification_preferences", Value: toPrefsDoc(m.Preferences)},
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

func (r *membersRepo) CountMembers(ctx context.Context, groupID string) (int, error) {
	var doc struct {
		Members []struct {
			UserID string `bson:"user_id"`
		} `bson:"members"`
	}
	opts := options.FindOne().SetProjection(bson.D{{Key: "members.user_id", Value: 1}})
	err := r.coll().FindOne(r.bind(ctx), bson.D{{Key: "_id", Value: groupID}}, opts).Decode(&doc)
	if err != nil {
		if mapNotFound(err) == store.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return len(doc.Members), nil
}
