package mongodb

import (
	"context"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type contentRepo struct {
	db   *mongo.Database
	bind binder
}

func (r *contentRepo) coll() *mongo.Collection { return r.db.Collection(collectionContent) }

func (r *contentRepo) CreateContent(ctx context.Context, c domain.Content) error {
	_, err := r.coll().InsertOne(r.bind(ctx), contentDoc{
		ID:        c.ID,
		GroupID:   c.GroupID,
		Kind:      string(c.Kind),
		ParentID:  c.ParentID,
		AuthorID:  c.AuthorID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt.UTC(),
	})
	return mapDuplicate(err)
}

func (r *contentRepo) GetContent(ctx context.Context, kind domain.ContentKind, id string) (domain.Content, error) {
	var doc contentDoc
	err := r.coll().FindOne(r.bind(ctx), bson.D{{Key: "_id", Value: id}, {Key: "kind", Value: string(kind)}}).Decode(&doc)
	if err != nil {
		return domain.Content{}, mapNotFound(err)
	}
	return doc.toDomain(), nil
}

func (r *contentRepo) DeleteContent(ctx context.Context, kind domain.ContentKind, id string) (domain.ContentCounts, error) {
	ctx = r.bind(ctx)

	res, err := r.coll().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "kind", Value: string(kind)}})
	if err != nil {
		return domain.ContentCounts{}, err
	}
	if res.DeletedCount == 0 {
		return domain.ContentCounts{}, nil
	}

	counts := countOf(kind, 1)
	if kind == domain.ContentList {
		items, err := r.coll().DeleteMany(ctx, bson.D{{Key: "parent_id", Value: id}})
		if err != nil {
			return domain.ContentCounts{}, err
		}
		counts.Items = int(items.DeletedCount)
	}
	return counts, nil
}

func (r *contentRepo) DeleteGroupContent(ctx context.Context, groupID string) (domain.ContentCounts, error) {
	ctx = r.bind(ctx)

	cursor, err := r.coll().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "group_id", Value: groupID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$kind"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return domain.ContentCounts{}, err
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Kind string `bson:"_id"`
		N    int    `bson:"n"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return domain.ContentCounts{}, err
	}

	var counts domain.ContentCounts
	for _, g := range groups {
		counts = counts.Add(countOf(domain.ContentKind(g.Kind), g.N))
	}

	if _, err := r.coll().DeleteMany(ctx, bson.D{{Key: "group_id", Value: groupID}}); err != nil {
		return domain.ContentCounts{}, err
	}
	return counts, nil
}

func countOf(kind domain.ContentKind, n int) domain.ContentCounts {
	switch kind {
	case domain.ContentList:
		return domain.ContentCounts{Lists: n}
	case domain.ContentItem:
		return domain.ContentCounts{Items: n}
	case domain.ContentNote:
		return domain.ContentCounts{Notes: n}
	case domain.ContentPoll:
		return domain.ContentCounts{Polls: n}
	}
	return domain.ContentCounts{}
}
