package database

import (
	"context"
	"time"

	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WalletStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewWalletStore(db *mongo.Database) *WalletStore {
	return &WalletStore{coll: db.Collection(WalletsCollection), now: time.Now}
}

// FindWalletBySlugOwner returns the wallet document for walletID, or nil when
// none exists.
func (s *WalletStore) FindWalletBySlugOwner(ctx context.Context, walletID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.coll.FindOne(ctx, bson.D{{Key: "walletId", Value: walletID}}).Decode(&wallet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		log.Ctx(ctx).Error().Err(err).Str("component", "FindWalletBySlugOwner").Msg("")
		return nil, errors.Wrap(err, "find wallet")
	}
	return &wallet, nil
}

// UpsertSlug adds slug to the wallet's slug set, creating the wallet when
// needed, and returns the updated document.
func (s *WalletStore) UpsertSlug(ctx context.Context, walletID, slug string) (*models.Wallet, error) {
	now := s.now()
	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "slugs", Value: slug}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var wallet models.Wallet
	err := s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "walletId", Value: walletID}}, update, opts).Decode(&wallet)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpsertSlug").Msg("")
		return nil, errors.Wrap(err, "upsert slug")
	}
	return &wallet, nil
}

// InsertWalletIfAbsent stores a new wallet document. When walletID is already
// present the existing document is returned with models.ErrWalletExists.
func (s *WalletStore) InsertWalletIfAbsent(ctx context.Context, walletID, data1, data2 string) (*models.Wallet, error) {
	existing, err := s.FindWalletBySlugOwner(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, models.ErrWalletExists
	}

	now := s.now()
	wallet := models.Wallet{
		WalletID:  walletID,
		Data1:     data1,
		Data2:     data2,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := s.coll.InsertOne(ctx, wallet)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// lost a race with a concurrent insert
			existing, ferr := s.FindWalletBySlugOwner(ctx, walletID)
			if ferr != nil {
				return nil, ferr
			}
			return existing, models.ErrWalletExists
		}
		log.Ctx(ctx).Error().Err(err).Str("component", "InsertWalletIfAbsent").Msg("")
		return nil, errors.Wrap(err, "insert wallet")
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		wallet.ID = id
	}
	return &wallet, nil
}
