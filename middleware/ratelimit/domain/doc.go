// Package domain define os contratos e tipos do rate limit: políticas de
// janela fixa, stores de contador, decisões, estatísticas e pools de vagas.
//
// Não depende de net/http nem de store concreto: as regras são testadas
// isoladas e a tabela em memória pode ser trocada por uma compartilhada sem
// mexer em quem chama.
package domain
