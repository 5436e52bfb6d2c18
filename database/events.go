package database

import (
	"context"

	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventStore struct {
	coll *mongo.Collection
}

func NewEventStore(db *mongo.Database) *EventStore {
	return &EventStore{coll: db.Collection(OrderEventsCollection)}
}

// InsertOrderEvent stores event. A log already stored (same tx hash and log
// index, e.g. replayed after a reconnect) is ignored.
func (s *EventStore) InsertOrderEvent(ctx context.Context, event models.OrderEvent) error {
	if _, err := s.coll.InsertOne(ctx, event); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		log.Ctx(ctx).Error().Err(err).Str("component", "InsertOrderEvent").Msg("")
		return errors.Wrap(err, "insert order event")
	}
	return nil
}

// EventsForOrder returns the stored events of orderID, oldest first.
func (s *EventStore) EventsForOrder(ctx context.Context, orderID uint64) ([]models.OrderEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "blockNumber", Value: 1}, {Key: "logIndex", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.D{{Key: "orderId", Value: orderID}}, opts)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "EventsForOrder").Msg("")
		return nil, errors.Wrap(err, "find order events")
	}

	events := []models.OrderEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, errors.Wrap(err, "decode order events")
	}
	return events, nil
}
