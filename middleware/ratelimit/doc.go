// Package ratelimit fornece adapters HTTP (net/http) para o rate limit de
// janela fixa e para o limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (allow/deny com teto premium, acquire/timeout) sem net/http
//   - infra: stores concretos (tabela em memória, script Redis), estatísticas, semáforo
//   - ratelimit (este pacote): middlewares HTTP, extração de chave, detecção de
//     premium, presets de política, tradução para status/headers
//
// Fluxo no gateway:
//
//  1. Extrai a chave ("{clientIP}:{path}" ou a origem do webhook)
//  2. Chama a camada application para obter a decisão pela política da rota
//  3. Define X-RateLimit-Limit, X-RateLimit-Remaining e X-RateLimit-Reset
//  4. Se bloqueado, responde 429 com Retry-After; senão chama o próximo handler
//
// O store em memória guarda os contadores por processo. Instâncias atrás de um
// load balancer só dividem o limite com o store Redis.
package ratelimit
