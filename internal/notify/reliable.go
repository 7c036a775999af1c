package notify

import (
	"context"
	"time"

	"github.com/myrtlewealth/blueprint/internal/resilience"
)

// Reliable wraps a Mailer with retry on transient failures and a circuit
// breaker that fails fast while the provider is down. Permanent rejections
// such as a bad recipient do not count against the provider.
type Reliable struct {
	next    Mailer
	policy  resilience.Policy
	breaker *resilience.Breaker
}

// NewReliable decorates next.
func NewReliable(next Mailer, policy resilience.Policy) *Reliable {
	return &Reliable{
		next:    next,
		policy:  policy,
		breaker: resilience.NewBreaker(next.Name(), 5, time.Minute).TripOn(resilience.IsTransient),
	}
}

func (r *Reliable) Name() string { return r.next.Name() }

func (r *Reliable) Send(ctx context.Context, msg Message) error {
	return r.breaker.Run(ctx, func(ctx context.Context) error {
		return resilience.Do(ctx, r.policy, r.next.Name()+".send", func(ctx context.Context) error {
			return r.next.Send(ctx, msg)
		})
	})
}
