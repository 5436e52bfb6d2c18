package utils

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// PaymentCheck reports whether a payment has landed.
type PaymentCheck func(ctx context.Context) (bool, error)

// PaymentDetector polls a PaymentCheck a bounded number of times. It is a
// convenience for the UI flow; the ledger contract stays the authority on
// whether an order is paid.
type PaymentDetector struct {
	Attempts int
	Delay    time.Duration
}

func NewPaymentDetector(attempts int, delay time.Duration) *PaymentDetector {
	if attempts < 1 {
		attempts = 1
	}
	return &PaymentDetector{Attempts: attempts, Delay: delay}
}

// Detect runs check up to d.Attempts times with d.Delay between attempts and
// returns true on the first success. A check error counts as a failed attempt.
func (d *PaymentDetector) Detect(ctx context.Context, check PaymentCheck) bool {
	for i := 0; i < d.Attempts; i++ {
		paid, err := check(ctx)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Int("attempt", i+1).Str("component", "PaymentDetector").Msg("payment check failed")
		} else if paid {
			return true
		}

		if i == d.Attempts-1 {
			break
		}
		timer := time.NewTimer(d.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
	return false
}
