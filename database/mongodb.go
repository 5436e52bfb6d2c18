package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	WalletsCollection     = "wallets"
	DistributorCollection = "distributorData"
	OrderEventsCollection = "orderEvents"
)

func ConnectDB(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongodb")
	}

	// Ping the database
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "ping mongodb")
	}

	log.Info().Str("database", dbName).Msg("connected to MongoDB")
	return client.Database(dbName), nil
}

// EnsureIndexes creates the unique walletId indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := mongo.IndexModel{
		Keys:    bson.D{{Key: "walletId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	for _, name := range []string{WalletsCollection, DistributorCollection} {
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, unique); err != nil {
			return errors.Wrapf(err, "create walletId index on %s", name)
		}
	}

	events := mongo.IndexModel{
		Keys:    bson.D{{Key: "txHash", Value: 1}, {Key: "logIndex", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection(OrderEventsCollection).Indexes().CreateOne(ctx, events); err != nil {
		return errors.Wrap(err, "create orderEvents index")
	}
	return nil
}
