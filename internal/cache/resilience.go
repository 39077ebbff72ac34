package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/ByLCY/justify/layout"
)

// Guarded 在后端缓存前加熔断器。缓存只是加速手段，后端故障时读按未命中处理、
// 写直接丢弃，断行请求本身不受影响。
type Guarded struct {
	inner   Cache
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

var _ Cache = (*Guarded)(nil)

// NewGuarded wraps inner with a circuit breaker that opens after at least
// five requests with a failure ratio of one half.
func NewGuarded(name string, inner Cache, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("cache circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &Guarded{inner: inner, breaker: gobreaker.NewCircuitBreaker(settings), logger: logger}
}

type lookup struct {
	res *layout.Result
	ok  bool
}

func (g *Guarded) Get(ctx context.Context, key string) (*layout.Result, bool, error) {
	out, err := g.breaker.Execute(func() (interface{}, error) {
		res, ok, err := g.inner.Get(ctx, key)
		return lookup{res: res, ok: ok}, err
	})
	if err != nil {
		g.logger.Debug("cache get skipped", "error", err)
		return nil, false, nil
	}
	l := out.(lookup)
	return l.res, l.ok, nil
}

func (g *Guarded) Set(ctx context.Context, key string, res *layout.Result) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, g.inner.Set(ctx, key, res)
	})
	if err != nil {
		g.logger.Debug("cache set skipped", "error", err)
	}
	return nil
}

// State reports the breaker state, for health output.
func (g *Guarded) State() string { return g.breaker.State().String() }

// Pinger is implemented by backends that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitReady 以指数退避重试 Ping，最多 maxRetries 次。
func WaitReady(ctx context.Context, p Pinger, maxRetries uint64) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	operation := func() error {
		err := p.Ping(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)); err != nil {
		return fmt.Errorf("cache: 后端不可用: %w", err)
	}
	return nil
}
