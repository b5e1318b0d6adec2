// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - MemoryStore: contadores de janela fixa em memória, com mutex e limpeza
//   - RedisStore: as mesmas janelas no Redis via script Lua, divididas entre instâncias
//   - MemoryStatsStore, RedisStatsStore, PrometheusStatsStore: registro das decisões
//   - ChanPool: semáforo simples para limite de concorrência
package infra
