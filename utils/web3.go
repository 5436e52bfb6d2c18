package utils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Madhav-Gupta-28/barterx-backend-go/contracts"
	"github.com/Madhav-Gupta-28/barterx-backend-go/metrics"
	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"
)

const defaultReconnectDelay = 5 * time.Second

// LogSubscriber is satisfied by a websocket ethclient.Client.
type LogSubscriber interface {
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
	Close()
}

// Dialer opens a new subscription connection.
type Dialer func(ctx context.Context) (LogSubscriber, error)

// OrderEventSink persists decoded ledger events.
type OrderEventSink interface {
	InsertOrderEvent(ctx context.Context, event models.OrderEvent) error
}

type HealthStatus struct {
	IsHealthy         bool      `json:"isHealthy"`
	IsListening       bool      `json:"isListening"`
	LastEventTime     time.Time `json:"lastEventTime"`
	Uptime            string    `json:"uptime"`
	ProcessedEvents   int64     `json:"processedEvents"`
	FailedEvents      int64     `json:"failedEvents"`
	ReconnectAttempts int       `json:"reconnectAttempts"`
	LastError         string    `json:"lastError,omitempty"`
}

// OrderEventListener follows OrderPlaced, OrderPaid and OrderDelivered logs
// of the ledger and stores them.
type OrderEventListener struct {
	dial     Dialer
	filterer *contracts.MarketplaceFilterer
	sink     OrderEventSink
	now      func() time.Time

	reconnectDelay time.Duration

	mu                sync.Mutex
	isListening       bool
	startTime         time.Time
	lastEventTime     time.Time
	processedEvents   int64
	failedEvents      int64
	reconnectAttempts int
	lastError         string
}

func NewOrderEventListener(dial Dialer, marketplace common.Address, sink OrderEventSink) *OrderEventListener {
	return &OrderEventListener{
		dial:     dial,
		filterer: contracts.NewMarketplaceFilterer(marketplace),
		sink:     sink,
		now:      time.Now,

		reconnectDelay: defaultReconnectDelay,
	}
}

func (b *OrderEventListener) GetHealth() HealthStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	return HealthStatus{
		IsHealthy:         b.isListening && b.lastError == "",
		IsListening:       b.isListening,
		LastEventTime:     b.lastEventTime,
		Uptime:            time.Since(b.startTime).String(),
		ProcessedEvents:   b.processedEvents,
		FailedEvents:      b.failedEvents,
		ReconnectAttempts: b.reconnectAttempts,
		LastError:         b.lastError,
	}
}

// Run subscribes and processes logs until ctx is done, reconnecting after
// subscription failures.
func (b *OrderEventListener) Run(ctx context.Context) error {
	b.mu.Lock()
	if b.isListening {
		b.mu.Unlock()
		return errors.New("already listening")
	}
	b.isListening = true
	b.startTime = b.now()
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.isListening = false
		b.mu.Unlock()
	}()

	for {
		err := b.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}

		b.mu.Lock()
		b.reconnectAttempts++
		if err != nil {
			b.lastError = err.Error()
		}
		b.mu.Unlock()
		log.Warn().Err(err).Str("component", "OrderEventListener").Msg("subscription ended, reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.reconnectDelay):
		}
	}
}

func (b *OrderEventListener) listen(ctx context.Context) error {
	client, err := b.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	query := ethereum.FilterQuery{
		Addresses: []common.Address{b.filterer.Address()},
		Topics:    [][]common.Hash{b.filterer.Topics()},
	}

	logs := make(chan types.Log)
	sub, err := client.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	b.mu.Lock()
	b.lastError = ""
	b.mu.Unlock()
	log.Info().Str("contract", b.filterer.Address().Hex()).Msg("listening for ledger events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return err
		case vLog := <-logs:
			if err := b.HandleLog(ctx, vLog); err != nil {
				log.Error().Err(err).Str("tx", vLog.TxHash.Hex()).Str("component", "OrderEventListener").Msg("failed to handle event")
			}
		}
	}
}

// HandleLog decodes one ledger log and stores it.
func (b *OrderEventListener) HandleLog(ctx context.Context, vLog types.Log) error {
	event, err := b.decode(vLog)
	if err != nil {
		b.recordFailure()
		return err
	}

	metrics.OrderEvents.WithLabelValues(string(event.Kind)).Inc()

	storeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := b.sink.InsertOrderEvent(storeCtx, *event); err != nil {
		b.recordFailure()
		return err
	}

	b.mu.Lock()
	b.processedEvents++
	b.lastEventTime = event.Timestamp
	b.mu.Unlock()

	log.Info().
		Str("event", string(event.Kind)).
		Uint64("orderId", event.OrderID).
		Str("tx", event.TxHash).
		Msg("stored ledger event")
	return nil
}

func (b *OrderEventListener) recordFailure() {
	b.mu.Lock()
	b.failedEvents++
	b.mu.Unlock()
}

func (b *OrderEventListener) decode(vLog types.Log) (*models.OrderEvent, error) {
	event := &models.OrderEvent{
		TxHash:      vLog.TxHash.Hex(),
		BlockNumber: vLog.BlockNumber,
		LogIndex:    vLog.Index,
		Timestamp:   b.now(),
	}

	switch b.filterer.EventName(vLog) {
	case string(models.EventOrderPlaced):
		ev, err := b.filterer.ParseOrderPlaced(vLog)
		if err != nil {
			return nil, err
		}
		event.Kind = models.EventOrderPlaced
		event.OrderID = ev.OrderId.Uint64()
		event.ProductID = ev.ProductId.Uint64()
		event.Buyer = ev.Buyer.Hex()
		event.Seller = ev.Seller.Hex()
		event.IsPaid = ev.IsPaid
	case string(models.EventOrderPaid):
		ev, err := b.filterer.ParseOrderPaid(vLog)
		if err != nil {
			return nil, err
		}
		event.Kind = models.EventOrderPaid
		event.OrderID = ev.OrderId.Uint64()
		event.IsPaid = true
		event.AmountPaid = ev.AmountPaid.String()
	case string(models.EventOrderDelivered):
		ev, err := b.filterer.ParseOrderDelivered(vLog)
		if err != nil {
			return nil, err
		}
		event.Kind = models.EventOrderDelivered
		event.OrderID = ev.OrderId.Uint64()
	default:
		return nil, errors.New("unknown ledger event")
	}

	return event, nil
}
