package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincalendar "staycal/internal/domain/calendar"
)

const (
	blockedDateCollection = "cal_blocked_date"
	feedConfigCollection  = "cal_feed_config"
)

type BlockRepository struct {
	col *mongo.Collection
}

func NewBlockRepository(db *mongo.Database) *BlockRepository {
	return &BlockRepository{col: db.Collection(blockedDateCollection)}
}

func (r *BlockRepository) ByProperty(ctx context.Context, propertyID string) ([]domaincalendar.BlockedDate, error) {
	cursor, err := r.col.Find(ctx, bson.M{"property_id": propertyID}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domaincalendar.BlockedDate
	for cursor.Next(ctx) {
		var doc blockedDateDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

func (r *BlockRepository) Save(ctx context.Context, block domaincalendar.BlockedDate) error {
	_, err := r.col.InsertOne(ctx, newBlockedDateDocument(block))
	return err
}

func (r *BlockRepository) Delete(ctx context.Context, propertyID string, date time.Time) error {
	res, err := r.col.DeleteMany(ctx, bson.M{
		"property_id": propertyID,
		"date":        domaincalendar.Midnight(date).UnixMilli(),
		"source":      bson.M{"$ne": string(domaincalendar.SourceBooking)},
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domaincalendar.ErrBlockNotFound
	}
	return nil
}

type blockedDateDocument struct {
	ID         string `bson:"_id"`
	PropertyID string `bson:"property_id"`
	Date       int64  `bson:"date"`
	Source     string `bson:"source"`
	CreatedAt  int64  `bson:"created_at"`
}

func newBlockedDateDocument(b domaincalendar.BlockedDate) blockedDateDocument {
	return blockedDateDocument{
		ID:         b.ID,
		PropertyID: b.PropertyID,
		Date:       b.Date.UnixMilli(),
		Source:     string(b.Source),
		CreatedAt:  b.CreatedAt.UnixMilli(),
	}
}

func (d blockedDateDocument) toEntity() domaincalendar.BlockedDate {
	return domaincalendar.BlockedDate{
		ID:         d.ID,
		PropertyID: d.PropertyID,
		Date:       timestampToTime(d.Date),
		Source:     domaincalendar.BlockSource(d.Source),
		CreatedAt:  timestampToTime(d.CreatedAt),
	}
}

type FeedConfigRepository struct {
	col *mongo.Collection
}

func NewFeedConfigRepository(db *mongo.Database) *FeedConfigRepository {
	return &FeedConfigRepository{col: db.Collection(feedConfigCollection)}
}

func (r *FeedConfigRepository) ByID(ctx context.Context, id string) (domaincalendar.FeedConfig, error) {
	var doc feedConfigDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domaincalendar.FeedConfig{}, domaincalendar.ErrFeedNotFound
		}
		return domaincalendar.FeedConfig{}, err
	}
	return doc.toEntity(), nil
}

func (r *FeedConfigRepository) ByProperty(ctx context.Context, propertyID string) ([]domaincalendar.FeedConfig, error) {
	return r.list(ctx, bson.M{"property_id": propertyID})
}

func (r *FeedConfigRepository) ListActiveImports(ctx context.Context) ([]domaincalendar.FeedConfig, error) {
	return r.list(ctx, bson.M{"is_active": true, "type": string(domaincalendar.FeedImport)})
}

func (r *FeedConfigRepository) list(ctx context.Context, filter bson.M) ([]domaincalendar.FeedConfig, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domaincalendar.FeedConfig
	for cursor.Next(ctx) {
		var doc feedConfigDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

func (r *FeedConfigRepository) Save(ctx context.Context, cfg domaincalendar.FeedConfig) error {
	doc := newFeedConfigDocument(cfg)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *FeedConfigRepository) MarkSynced(ctx context.Context, id string, at time.Time) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_sync": at.UnixMilli()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domaincalendar.ErrFeedNotFound
	}
	return nil
}

type feedConfigDocument struct {
	ID           string `bson:"_id"`
	PropertyID   string `bson:"property_id"`
	Name         string `bson:"name"`
	URL          string `bson:"url"`
	Type         string `bson:"type"`
	IsActive     bool   `bson:"is_active"`
	SyncInterval int64  `bson:"sync_interval_hours"`
	LastSync     int64  `bson:"last_sync"`
}

func newFeedConfigDocument(cfg domaincalendar.FeedConfig) feedConfigDocument {
	doc := feedConfigDocument{
		ID:           cfg.ID,
		PropertyID:   cfg.PropertyID,
		Name:         cfg.Name,
		URL:          cfg.URL,
		Type:         string(cfg.Direction),
		IsActive:     cfg.Active,
		SyncInterval: int64(cfg.SyncInterval / time.Hour),
	}
	if !cfg.LastSync.IsZero() {
		doc.LastSync = cfg.LastSync.UnixMilli()
	}
	return doc
}

func (d feedConfigDocument) toEntity() domaincalendar.FeedConfig {
	cfg := domaincalendar.FeedConfig{
		ID:           d.ID,
		PropertyID:   d.PropertyID,
		Name:         d.Name,
		URL:          d.URL,
		Direction:    domaincalendar.FeedDirection(d.Type),
		Active:       d.IsActive,
		SyncInterval: time.Duration(d.SyncInterval) * time.Hour,
	}
	if d.LastSync > 0 {
		cfg.LastSync = timestampToTime(d.LastSync)
	}
	return cfg
}
