package application

import (
	"context"
	"errors"
	"time"

	"vibecoding-gateway/middleware/ratelimit/domain"
)

var (
	// ErrNoSlot: AcquireTimeout estourou com todas as vagas ocupadas.
	ErrNoSlot = errors.New("no slot available")
	// ErrCallerGone: o contexto do cliente encerrou antes de liberar uma vaga.
	ErrCallerGone = errors.New("caller gone while waiting for a slot")
)

// ConcurrencyService concentra a regra de aquisição/liberação de vagas com timeout,
// sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga e retorna a função de release.
//
// Se AcquireTimeout <= 0, espera até ctx encerrar. Falha com ErrNoSlot quando o
// timeout estourou e com ErrCallerGone quando o próprio ctx encerrou; nos dois
// casos nenhuma vaga fica presa.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return func() {}, nil
	}

	acqCtx := ctx
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acqCtx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(acqCtx)
	if ok {
		return release, nil
	}
	if ctx.Err() != nil {
		return nil, ErrCallerGone
	}
	return nil, ErrNoSlot
}
