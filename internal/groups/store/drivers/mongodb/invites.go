package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type invitesRepo struct {
	db   *mongo.Database
	bind binder
}

func (r *invitesRepo) coll() *mongo.Collection { return r.db.Collection(collectionInvites) }

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.coll().InsertOne(r.bind(ctx), toInviteDoc(inv))
	return mapDuplicate(err)
}

func (r *invitesRepo) GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	var doc inviteDoc
	if err := r.coll().FindOne(r.bind(ctx), bson.D{{Key: "token_hash", Value: hash}}).Decode(&doc); err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return doc.toDomain(), nil
}

// usableFilter matches invites that are unexpired at now and below their cap.
func usableFilter(now time.Time) bson.D {
	return bson.D{
		{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: now}}},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "max_uses", Value: domain.UnlimitedUses}},
			bson.D{{Key: "$expr", Value: bson.D{{Key: "$lt", Value: bson.A{"$uses_count", "$max_uses"}}}}},
		}},
	}
}

func (r *invitesRepo) ConsumeInvite(ctx context.Context, hash string, now time.Time) (domain.Invite, error) {
	ctx = r.bind(ctx)
	now = now.UTC()

	filter := append(bson.D{{Key: "token_hash", Value: hash}}, usableFilter(now)...)
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "uses_count", Value: 1}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: now}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc inviteDoc
	err := r.coll().FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Invite{}, err
	}

	inv, err := r.GetInviteByTokenHash(ctx, hash)
	if err != nil {
		return domain.Invite{}, err
	}
	return inv, store.ErrConflict
}

func (r *invitesRepo) DeleteInvite(ctx context.Context, id string) error {
	_, err := r.coll().DeleteOne(r.bind(ctx), bson.D{{Key: "_id", Value: id}})
	return err
}

func (r *invitesRepo) DeleteInvitesByGroup(ctx context.Context, groupID string) (int, error) {
	res, err := r.coll().DeleteMany(r.bind(ctx), bson.D{{Key: "group_id", Value: groupID}})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

func (r *invitesRepo) DeleteUnusableInvites(ctx context.Context, now time.Time) (int, error) {
	res, err := r.coll().DeleteMany(r.bind(ctx), bson.D{{Key: "$nor", Value: bson.A{usableFilter(now.UTC())}}})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

func (r *invitesRepo) DeleteOrphanedInvites(ctx context.Context) (int, error) {
	ctx = r.bind(ctx)

	referenced, err := r.coll().Distinct(ctx, "group_id", bson.D{})
	if err != nil {
		return 0, err
	}
	if len(referenced) == 0 {
		return 0, nil
	}

	existing, err := r.db.Collection(collectionGroups).Distinct(ctx, "_id",
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: referenced}}}})
	if err != nil {
		return 0, err
	}

	res, err := r.coll().DeleteMany(ctx, bson.D{{Key: "group_id", Value: bson.D{{Key: "$nin", Value: existing}}}})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}
