package domain

// Camada de domínio do rate limit.
//
// Contadores de janela fixa por chave. Sem dependência de net/http.

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimitExceeded é o Reason de uma Decision negada. O limiter nunca o
// retorna como erro; quem chama traduz para 429.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

type Key string

// Policy é a cota aplicada a uma classe de endpoints.
//
// PremiumMax substitui Max para clientes com assinatura paga, na mesma chave e
// no mesmo contador. Políticas com PremiumEligible=false (tentativas de auth)
// ignoram o sinal premium.
type Policy struct {
	Name            string
	Window          time.Duration
	Max             int
	PremiumMax      int
	PremiumEligible bool
}

// Ceiling retorna o teto de admissão para o cliente.
func (p Policy) Ceiling(premium bool) int {
	if premium && p.PremiumEligible && p.PremiumMax > 0 {
		return p.PremiumMax
	}
	return p.Max
}

// Usage é o estado do contador da janela depois de um Take.
type Usage struct {
	Count   int
	ResetAt time.Time
}

// CounterStore guarda um contador de janela fixa por chave.
//
// Take deve rodar a sequência expira/compara/incrementa de forma atômica para a
// chave: se a janela venceu (now >= resetAt), uma nova {0, now+window} entra no
// lugar; se Count >= max nada muda e taken=false; senão Count é incrementado e
// taken=true. A tabela pode ficar em memória ou num store compartilhado.
type CounterStore interface {
	Take(ctx context.Context, key Key, window time.Duration, max int) (u Usage, taken bool, err error)
}

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter é ceil(ResetAt-now) em segundos inteiros quando negado, 0 quando permitido.
	RetryAfter time.Duration
	// Reason é ErrRateLimitExceeded quando negado.
	Reason error
}
