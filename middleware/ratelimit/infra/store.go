package infra

import (
	"context"
	"sync"
	"time"

	"vibecoding-gateway/middleware/ratelimit/domain"
)

// MemoryStore é uma tabela de contadores de janela fixa em memória.
//
// Um único mutex protege a tabela inteira, então a sequência
// expira/compara/incrementa do Take é atômica com handlers em paralelo. Janelas
// vencidas são limpas de forma oportunista no Take (no máximo uma vez por
// sweepEvery) e, opcionalmente, por uma goroutine janitor. Nada é persistido: um
// restart zera os contadores e instâncias separadas não dividem estado.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[domain.Key]*window
	lastSweep time.Time

	sweepEvery time.Duration
	now        func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

type MemoryStoreOption func(*MemoryStore)

// WithSweepEvery define o intervalo mínimo entre duas limpezas oportunistas.
// Zero limpa a cada Take.
func WithSweepEvery(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) { s.sweepEvery = d }
}

// WithClock substitui time.Now (testes).
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		entries:    make(map[domain.Key]*window),
		sweepEvery: time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Take implementa domain.CounterStore.
func (s *MemoryStore) Take(_ context.Context, key domain.Key, d time.Duration, max int) (domain.Usage, bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= s.sweepEvery {
		s.sweepLocked(now)
	}

	w, ok := s.entries[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(d)}
		s.entries[key] = w
	}

	if w.count >= max {
		return domain.Usage{Count: w.count, ResetAt: w.resetAt}, false, nil
	}
	w.count++
	return domain.Usage{Count: w.count, ResetAt: w.resetAt}, true, nil
}

// Sweep remove toda janela cujo reset já chegou.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

func (s *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for k, w := range s.entries {
		if !now.Before(w.resetAt) {
			delete(s.entries, k)
			removed++
		}
	}
	s.lastSweep = now
	return removed
}

// Len informa quantas chaves têm janela no momento.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartJanitor inicia uma goroutine que limpa janelas vencidas periodicamente.
// Pare cancelando o contexto. Intervalo <= 0 desliga.
func (s *MemoryStore) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Sweep()
			}
		}
	}()
}
