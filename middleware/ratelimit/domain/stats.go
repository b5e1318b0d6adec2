package domain

import (
	"context"
	"errors"
	"time"
)

// StatsEvent é uma decisão de rate limit, sem tipos HTTP: Method e Route são
// strings simples.
//
// Cuidado com cardinalidade: gravar chaves ou paths crus no Redis/Prometheus
// pode explodir o número de séries.
type StatsEvent struct {
	Key     Key
	Policy  string
	Allowed bool
	Premium bool

	Method string
	Route  string

	At time.Time
}

// StatsStore persiste estatísticas de rate limit. O registro é best-effort: o
// middleware nunca falha a requisição por causa dele.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// MultiStats repassa o evento para vários stores.
type MultiStats []StatsStore

func (m MultiStats) Record(ctx context.Context, ev StatsEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
