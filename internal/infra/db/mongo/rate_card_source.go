package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainpricing "staycal/internal/domain/pricing"
	"staycal/internal/domain/shared/money"
)

const rateCardCollection = "cal_rate_card"

// RateCardSource reads base nightly rates maintained by property CRUD.
type RateCardSource struct {
	col *mongo.Collection
}

func NewRateCardSource(db *mongo.Database) *RateCardSource {
	return &RateCardSource{col: db.Collection(rateCardCollection)}
}

func (r *RateCardSource) RateCard(ctx context.Context, propertyID string) (domainpricing.RateCard, error) {
	var doc rateCardDocument
	err := r.col.FindOne(ctx, bson.M{"_id": propertyID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domainpricing.RateCard{}, domainpricing.ErrRateCardNotFound
	}
	if err != nil {
		return domainpricing.RateCard{}, err
	}
	return doc.toEntity(), nil
}

type rateCardDocument struct {
	PropertyID string `bson:"_id"`
	Weekday    int64  `bson:"weekday"`
	Weekend    int64  `bson:"weekend"`
	Monthly    int64  `bson:"monthly"`
	Daily      int64  `bson:"daily"`
	Currency   string `bson:"currency"`
}

func (d rateCardDocument) toEntity() domainpricing.RateCard {
	return domainpricing.RateCard{
		Weekday: money.Money{Amount: d.Weekday, Currency: d.Currency},
		Weekend: money.Money{Amount: d.Weekend, Currency: d.Currency},
		Monthly: money.Money{Amount: d.Monthly, Currency: d.Currency},
		Daily:   money.Money{Amount: d.Daily, Currency: d.Currency},
	}
}

var _ domainpricing.RateCardSource = (*RateCardSource)(nil)
