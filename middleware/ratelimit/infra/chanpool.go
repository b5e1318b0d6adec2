package infra

import (
	"context"
	"sync"

	"vibecoding-gateway/middleware/ratelimit/domain"
)

// SlotPool é um channel com buffer usado como semáforo.
type SlotPool struct {
	slots chan struct{}
}

var _ domain.SlotPool = (*SlotPool)(nil)

// NewChanPool cria um pool simples baseado em channel com capacidade `max`.
// max < 1 vira 1.
func NewChanPool(max int) *SlotPool {
	if max < 1 {
		max = 1
	}
	return &SlotPool{slots: make(chan struct{}, max)}
}

// Acquire pega uma vaga. O release pode ser chamado mais de uma vez; só a
// primeira chamada libera a vaga.
func (p *SlotPool) Acquire(ctx context.Context) (func(), bool) {
	// select escolhe ao acaso entre casos prontos, então checa ctx antes.
	if ctx.Err() != nil {
		return nil, false
	}
	select {
	case p.slots <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-p.slots }) }, true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *SlotPool) InUse() int { return len(p.slots) }

func (p *SlotPool) Cap() int { return cap(p.slots) }
