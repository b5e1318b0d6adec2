package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

const unknownClient = "unknown"

type KeyFunc func(r *http.Request) string

// PremiumFunc diz se a requisição pertence a uma assinatura paga.
// Só deve confiar em sinais definidos depois da autenticação.
type PremiumFunc func(r *http.Request) bool

// ClientIP resolve o endereço do cliente.
//
// Com trustForwarded vale o primeiro IP do X-Forwarded-For (cliente original),
// depois X-Real-IP, depois "unknown": todos os clientes atrás de um proxy que não
// envia nenhum dos dois dividem a mesma identidade. Sem trustForwarded usa o
// host de RemoteAddr.
func ClientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
		return unknownClient
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return unknownClient
}

// DefaultKeyFunc gera a chave "{clientIP}:{path}".
func DefaultKeyFunc(trustForwarded bool) KeyFunc {
	return func(r *http.Request) string {
		return ClientIP(r, trustForwarded) + ":" + r.URL.Path
	}
}

// HeaderKeyFunc usa o valor de header como chave (ex: API key) e cai em
// fallback quando o header está vazio.
func HeaderKeyFunc(header string, fallback KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			return header + "=" + v + ":" + r.URL.Path
		}
		if fallback == nil {
			return unknownClient + ":" + r.URL.Path
		}
		return fallback(r)
	}
}

// UserAgentKeyFunc chaveia webhooks pela origem (User-Agent do remetente) e
// não pelo IP, que os provedores trocam.
func UserAgentKeyFunc() KeyFunc {
	return func(r *http.Request) string {
		ua := strings.TrimSpace(r.UserAgent())
		if ua == "" {
			ua = unknownClient
		}
		return "webhook:" + ua
	}
}

// HeaderPremiumFunc lê o plano do cliente em header (normalmente definido pela
// camada de auth na frente do gateway) e pergunta a isPremium.
func HeaderPremiumFunc(header string, isPremium func(value string) bool) PremiumFunc {
	return func(r *http.Request) bool {
		v := strings.TrimSpace(r.Header.Get(header))
		if v == "" || isPremium == nil {
			return false
		}
		return isPremium(v)
	}
}
