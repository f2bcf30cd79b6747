package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	rates "github.com/malusev998/exchange-rates"
)

type (
	mongoRate struct {
		ID        primitive.ObjectID   `bson:"_id,omitempty"`
		Date      string               `bson:"rateDate"`
		Currency  string               `bson:"currency"`
		Provider  string               `bson:"provider"`
		Sale      primitive.Decimal128 `bson:"sale"`
		Purchase  primitive.Decimal128 `bson:"purchase"`
		CreatedAt time.Time            `bson:"createdAt"`
	}

	// MongoStorage keeps one document per currency and date.
	MongoStorage struct {
		client     *mongo.Client
		collection *mongo.Collection
	}
)

var _ rates.Storage = (*MongoStorage)(nil)

func NewMongoStorage(ctx context.Context, config MongoDBConfig) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.ConnectionString))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	st := &MongoStorage{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
	}

	if config.Migrate {
		if err := st.Migrate(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
	}

	return st, nil
}

func toMongoRate(row rates.StoredRate) (mongoRate, error) {
	sale, err := primitive.ParseDecimal128(row.Sale.String())
	if err != nil {
		return mongoRate{}, fmt.Errorf("sale %s: %w", row.Sale, err)
	}

	purchase, err := primitive.ParseDecimal128(row.Purchase.String())
	if err != nil {
		return mongoRate{}, fmt.Errorf("purchase %s: %w", row.Purchase, err)
	}

	return mongoRate{
		Date:      row.Date.Format(dateFormat),
		Currency:  row.Currency,
		Provider:  string(row.Provider),
		Sale:      sale,
		Purchase:  purchase,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (m mongoRate) toStored(date time.Time) (rates.StoredRateWithID, error) {
	sale, err := decimal.NewFromString(m.Sale.String())
	if err != nil {
		return rates.StoredRateWithID{}, err
	}

	purchase, err := decimal.NewFromString(m.Purchase.String())
	if err != nil {
		return rates.StoredRateWithID{}, err
	}

	return rates.StoredRateWithID{
		StoredRate: rates.StoredRate{
			Date:      date,
			Currency:  m.Currency,
			Provider:  rates.Provider(m.Provider),
			Sale:      sale,
			Purchase:  purchase,
			CreatedAt: m.CreatedAt,
		},
		ID: m.ID,
	}, nil
}

func (s *MongoStorage) Store(ctx context.Context, rows []rates.StoredRate) ([]rates.StoredRateWithID, error) {
	if len(rows) == 0 {
		return []rates.StoredRateWithID{}, nil
	}

	rows = withCreatedAt(rows)
	documents := make([]interface{}, 0, len(rows))

	for _, row := range rows {
		document, err := toMongoRate(row)
		if err != nil {
			return nil, err
		}

		documents = append(documents, document)
	}

	result, err := s.collection.InsertMany(ctx, documents)
	if err != nil {
		return nil, err
	}

	stored := make([]rates.StoredRateWithID, 0, len(rows))

	for i, id := range result.InsertedIDs {
		stored = append(stored, rates.StoredRateWithID{StoredRate: rows[i], ID: id})
	}

	return stored, nil
}

func (s *MongoStorage) GetByDate(ctx context.Context, date time.Time, provider rates.Provider) ([]rates.StoredRateWithID, error) {
	filter := bson.M{
		"rateDate": date.Format(dateFormat),
		"provider": string(provider),
	}

	cursor, err := s.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var documents []mongoRate

	if err := cursor.All(ctx, &documents); err != nil {
		return nil, err
	}

	result := make([]rates.StoredRateWithID, 0, len(documents))

	for _, document := range documents {
		row, err := document.toStored(date)
		if err != nil {
			return nil, err
		}

		result = append(result, row)
	}

	return result, nil
}

func (s *MongoStorage) GetStorageProviderName() string {
	return string(MongoDB)
}

func (s *MongoStorage) Migrate(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "rateDate", Value: 1}, {Key: "provider", Value: 1}},
	})

	return err
}

func (s *MongoStorage) Drop(ctx context.Context) error {
	return s.collection.Drop(ctx)
}

func (s *MongoStorage) Close() error {
	return s.client.Disconnect(context.Background())
}
