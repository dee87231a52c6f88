package mongodb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type activityRepo struct {
	db   *mongo.Database
	bind binder
}

func (r *activityRepo) coll() *mongo.Collection { return r.db.Collection(collectionActivity) }

func (r *activityRepo) AppendActivity(ctx context.Context, a domain.Activity) error {
	_, err := r.coll().InsertOne(r.bind(ctx), activityDoc{
		ID:          a.ID,
		GroupID:     a.GroupID,
		Category:    string(a.Category),
		Message:     a.Message,
		AuthorID:    a.AuthorID,
		AuthorName:  a.AuthorName,
		ContentKind: string(a.ContentKind),
		ContentID:   a.ContentID,
		CreatedAt:   a.CreatedAt.UTC(),
	})
	return mapDuplicate(err)
}

func (r *activityRepo) GetActivity(ctx context.Context, id string) (domain.Activity, error) {
	var doc activityDoc
	if err := r.coll().FindOne(r.bind(ctx), bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		return domain.Activity{}, mapNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r *activityRepo) ListActivity(ctx context.Context, groupID string, page domain.Page) ([]domain.Activity, int, error) {
	ctx = r.bind(ctx)
	filter := bson.D{{Key: "group_id", Value: groupID}}

	total, err := r.coll().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size))
	cursor, err := r.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []activityDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	out := make([]domain.Activity, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, int(total), nil
}

func (r *activityRepo) DeleteActivity(ctx context.Context, id string) error {
	res, err := r.coll().DeleteOne(r.bind(ctx), bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *activityRepo) DeleteGroupActivity(ctx context.Context, groupID string) (int, error) {
	res, err := r.coll().DeleteMany(r.bind(ctx), bson.D{{Key: "group_id", Value: groupID}})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

func (r *activityRepo) DeleteActivityBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.coll().DeleteMany(r.bind(ctx),
		bson.D{{Key: "created_at", Value: bson.D{{Key: "$lt", Value: cutoff.UTC()}}}})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}
