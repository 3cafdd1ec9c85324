package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincalendar "staycal/internal/domain/calendar"
	domainpricing "staycal/internal/domain/pricing"
	"staycal/internal/domain/shared/money"
)

const specialPriceCollection = "cal_special_price"

type SpecialPriceRepository struct {
	col *mongo.Collection
}

func NewSpecialPriceRepository(db *mongo.Database) *SpecialPriceRepository {
	return &SpecialPriceRepository{col: db.Collection(specialPriceCollection)}
}

func (r *SpecialPriceRepository) ByProperty(ctx context.Context, propertyID string) ([]domainpricing.SpecialPrice, error) {
	cursor, err := r.col.Find(ctx, bson.M{"property_id": propertyID}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainpricing.SpecialPrice
	for cursor.Next(ctx) {
		var doc specialPriceDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

// Upsert keys on (property, date) so re-pricing a day replaces the row; the
// unique index backs this up at the store level.
func (r *SpecialPriceRepository) Upsert(ctx context.Context, sp domainpricing.SpecialPrice) error {
	doc := newSpecialPriceDocument(sp)
	filter := bson.M{"property_id": doc.PropertyID, "date": doc.Date}
	update := bson.M{
		"$set":         bson.M{"price": doc.Price, "currency": doc.Currency},
		"$setOnInsert": bson.M{"_id": doc.ID, "property_id": doc.PropertyID, "date": doc.Date},
	}
	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *SpecialPriceRepository) Delete(ctx context.Context, propertyID string, date time.Time) error {
	res, err := r.col.DeleteOne(ctx, bson.M{
		"property_id": propertyID,
		"date":        domaincalendar.Midnight(date).UnixMilli(),
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainpricing.ErrPriceNotFound
	}
	return nil
}

type specialPriceDocument struct {
	ID         string `bson:"_id"`
	PropertyID string `bson:"property_id"`
	Date       int64  `bson:"date"`
	Price      int64  `bson:"price"`
	Currency   string `bson:"currency"`
}

func newSpecialPriceDocument(sp domainpricing.SpecialPrice) specialPriceDocument {
	return specialPriceDocument{
		ID:         sp.ID,
		PropertyID: sp.PropertyID,
		Date:       sp.Date.UnixMilli(),
		Price:      sp.Price.Amount,
		Currency:   sp.Price.Currency,
	}
}

func (d specialPriceDocument) toEntity() domainpricing.SpecialPrice {
	return domainpricing.SpecialPrice{
		ID:         d.ID,
		PropertyID: d.PropertyID,
		Date:       timestampToTime(d.Date),
		Price:      money.Money{Amount: d.Price, Currency: d.Currency},
	}
}
