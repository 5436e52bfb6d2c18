package utils

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/Madhav-Gupta-28/barterx-backend-go/contracts"
	"github.com/Madhav-Gupta-28/barterx-backend-go/models"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu     sync.Mutex
	events []models.OrderEvent
	err    error
}

func (s *memorySink) InsertOrderEvent(_ context.Context, event models.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

var ledger = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func paidLog(t *testing.T, orderID, amount int64) types.Log {
	t.Helper()
	ev := contracts.ParsedMarketplaceABI().Events["OrderPaid"]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(amount))
	require.NoError(t, err)
	return types.Log{
		Address:     ledger,
		Topics:      []common.Hash{ev.ID, common.BigToHash(big.NewInt(orderID))},
		Data:        data,
		TxHash:      common.HexToHash("0xabc"),
		BlockNumber: 12,
		Index:       3,
	}
}

func TestOrderEventListener_HandleLog(t *testing.T) {
	sink := &memorySink{}
	l := NewOrderEventListener(nil, ledger, sink)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	require.NoError(t, l.HandleLog(context.Background(), paidLog(t, 9, 500)))

	require.Len(t, sink.events, 1)
	got := sink.events[0]
	assert.Equal(t, models.EventOrderPaid, got.Kind)
	assert.Equal(t, uint64(9), got.OrderID)
	assert.Equal(t, "500", got.AmountPaid)
	assert.True(t, got.IsPaid)
	assert.Equal(t, uint64(12), got.BlockNumber)
	assert.Equal(t, uint(3), got.LogIndex)

	health := l.GetHealth()
	assert.Equal(t, int64(1), health.ProcessedEvents)
	assert.Equal(t, fixed, health.LastEventTime)
}

func TestOrderEventListener_Delivered(t *testing.T) {
	sink := &memorySink{}
	l := NewOrderEventListener(nil, ledger, sink)

	ev := contracts.ParsedMarketplaceABI().Events["OrderDelivered"]
	vLog := types.Log{Address: ledger, Topics: []common.Hash{ev.ID, common.BigToHash(big.NewInt(4))}}

	require.NoError(t, l.HandleLog(context.Background(), vLog))
	require.Len(t, sink.events, 1)
	assert.Equal(t, models.EventOrderDelivered, sink.events[0].Kind)
	assert.Equal(t, uint64(4), sink.events[0].OrderID)
}

func TestOrderEventListener_Failures(t *testing.T) {
	sink := &memorySink{}
	l := NewOrderEventListener(nil, ledger, sink)

	err := l.HandleLog(context.Background(), types.Log{Topics: []common.Hash{{0x01}}})
	assert.Error(t, err)

	sink.err = errors.New("mongo unavailable")
	err = l.HandleLog(context.Background(), paidLog(t, 1, 1))
	assert.Error(t, err)

	health := l.GetHealth()
	assert.Equal(t, int64(2), health.FailedEvents)
	assert.Equal(t, int64(0), health.ProcessedEvents)
	assert.False(t, health.IsListening)
}

func TestOrderEventListener_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dials := 0
	dial := func(context.Context) (LogSubscriber, error) {
		dials++
		cancel()
		return nil, errors.New("no websocket")
	}
	l := NewOrderEventListener(dial, ledger, &memorySink{})

	assert.NoError(t, l.Run(ctx))
	assert.Equal(t, 1, dials)
	assert.False(t, l.GetHealth().IsListening)
}

type fakeSubscription struct {
	errc chan error
	once sync.Once
}

func (s *fakeSubscription) Unsubscribe() { s.once.Do(func() { close(s.errc) }) }

func (s *fakeSubscription) Err() <-chan error { return s.errc }

// scriptedSubscriber either fails the subscription right away with subErr or
// delivers logs and stays open.
type scriptedSubscriber struct {
	subErr error
	logs   []types.Log
}

func (s *scriptedSubscriber) SubscribeFilterLogs(ctx context.Context, _ ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	sub := &fakeSubscription{errc: make(chan error, 1)}
	if s.subErr != nil {
		sub.errc <- s.subErr
		return sub, nil
	}
	go func() {
		for _, l := range s.logs {
			select {
			case ch <- l:
			case <-ctx.Done():
				return
			}
		}
	}()
	return sub, nil
}

func (s *scriptedSubscriber) Close() {}

func TestOrderEventListener_Reconnects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paid := paidLog(t, 9, 500)
	release := make(chan struct{})
	var mu sync.Mutex
	dials := 0
	dial := func(ctx context.Context) (LogSubscriber, error) {
		mu.Lock()
		dials++
		n := dials
		mu.Unlock()

		switch n {
		case 1:
			return &scriptedSubscriber{subErr: errors.New("connection reset")}, nil
		case 2:
			return nil, errors.New("dial refused")
		default:
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return &scriptedSubscriber{logs: []types.Log{paid}}, nil
		}
	}
	sink := &memorySink{}
	l := NewOrderEventListener(dial, ledger, sink)
	l.reconnectDelay = time.Millisecond

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return dials == 3
	}, time.Second, time.Millisecond)

	health := l.GetHealth()
	assert.Equal(t, 2, health.ReconnectAttempts)
	assert.Equal(t, "dial refused", health.LastError)
	assert.True(t, health.IsListening)
	assert.False(t, health.IsHealthy)

	close(release)
	require.Eventually(t, func() bool {
		return l.GetHealth().ProcessedEvents == 1
	}, time.Second, time.Millisecond)

	health = l.GetHealth()
	assert.Equal(t, 2, health.ReconnectAttempts)
	assert.Empty(t, health.LastError)
	assert.True(t, health.IsHealthy)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
	assert.False(t, l.GetHealth().IsListening)
}
