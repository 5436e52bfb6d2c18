package database

import (
	"context"
	"time"

	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// DistributorSettings is the writable part of a delivery agent profile.
type DistributorSettings struct {
	Name     string
	Phone    string
	IDNumber string
}

type DistributorStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewDistributorStore(db *mongo.Database) *DistributorStore {
	return &DistributorStore{coll: db.Collection(DistributorCollection), now: time.Now}
}

// Get returns the settings for walletID. A wallet without stored settings gets
// the defaults.
func (s *DistributorStore) Get(ctx context.Context, walletID string) (*models.Distributor, error) {
	var d models.Distributor
	err := s.coll.FindOne(ctx, bson.D{{Key: "walletId", Value: walletID}}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &models.Distributor{WalletID: walletID, Phone: models.DefaultDistributorPhone}, nil
		}
		log.Ctx(ctx).Error().Err(err).Str("component", "GetDistributor").Msg("")
		return nil, errors.Wrap(err, "find distributor")
	}
	return &d, nil
}

// Upsert replaces the settings for walletID. The id number is stored only as a
// bcrypt hash and its last four characters; an empty id number keeps the
// stored one.
func (s *DistributorStore) Upsert(ctx context.Context, walletID string, in DistributorSettings) (*models.Distributor, error) {
	phone := in.Phone
	if phone == "" {
		phone = models.DefaultDistributorPhone
	}

	set := bson.D{
		{Key: "name", Value: in.Name},
		{Key: "phone", Value: phone},
		{Key: "updatedAt", Value: s.now()},
	}
	if in.IDNumber != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.IDNumber), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.Wrap(err, "hash id number")
		}
		set = append(set,
			bson.E{Key: "idNumberHash", Value: string(hash)},
			bson.E{Key: "idNumberLast", Value: lastFour(in.IDNumber)},
		)
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var d models.Distributor
	err := s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "walletId", Value: walletID}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&d)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpsertDistributor").Msg("")
		return nil, errors.Wrap(err, "upsert distributor")
	}
	return &d, nil
}

func lastFour(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}
