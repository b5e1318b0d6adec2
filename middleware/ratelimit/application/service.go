package application

import (
	"context"
	"time"

	"vibecoding-gateway/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store domain.CounterStore
	Now   func() time.Time
}

// Decide verifica key contra policy, trocando o teto pelo premium para clientes
// pagos. Premium e free dividem o mesmo contador da chave.
func (s Service) Decide(ctx context.Context, key domain.Key, policy domain.Policy, premium bool) (domain.Decision, error) {
	return s.Check(ctx, key, policy.Window, policy.Ceiling(premium))
}

// Check admite ou rejeita uma requisição numa janela fixa de max requisições.
func (s Service) Check(ctx context.Context, key domain.Key, window time.Duration, max int) (domain.Decision, error) {
	if s.Store == nil {
		return domain.Decision{Allowed: true, Limit: max, Remaining: max}, nil
	}

	u, taken, err := s.Store.Take(ctx, key, window, max)
	if err != nil {
		return domain.Decision{}, err
	}

	dec := domain.Decision{
		Allowed: taken,
		Limit:   max,
		ResetAt: u.ResetAt,
	}
	if !taken {
		dec.RetryAfter = retryAfter(u.ResetAt, s.now())
		dec.Reason = domain.ErrRateLimitExceeded
		return dec, nil
	}

	dec.Remaining = max - u.Count
	if dec.Remaining < 0 {
		dec.Remaining = 0
	}
	return dec, nil
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// retryAfter arredonda para cima, em segundos inteiros, o tempo restante da janela.
func retryAfter(resetAt, now time.Time) time.Duration {
	left := resetAt.Sub(now)
	if left <= 0 {
		return 0
	}
	secs := (left + time.Second - 1) / time.Second
	return secs * time.Second
}
