package ratelimit

import (
	"time"

	"vibecoding-gateway/middleware/ratelimit/domain"
)

// Presets por classe de endpoint. São só configuração: toda classe passa pela
// mesma verificação de janela fixa.
var (
	GeneralPolicy = domain.Policy{Name: "general", Window: time.Minute, Max: 60, PremiumMax: 200, PremiumEligible: true}
	AIChatPolicy  = domain.Policy{Name: "ai-chat", Window: time.Minute, Max: 10, PremiumMax: 50, PremiumEligible: true}
	UploadPolicy  = domain.Policy{Name: "upload", Window: time.Minute, Max: 5, PremiumMax: 20, PremiumEligible: true}
	// Tentativas de auth nunca afrouxam com sinal premium.
	AuthPolicy    = domain.Policy{Name: "auth", Window: 15 * time.Minute, Max: 5}
	WebhookPolicy = domain.Policy{Name: "webhook", Window: time.Minute, Max: 100}
)

// Presets retorna as políticas embutidas indexadas por nome.
func Presets() map[string]domain.Policy {
	return map[string]domain.Policy{
		GeneralPolicy.Name: GeneralPolicy,
		AIChatPolicy.Name:  AIChatPolicy,
		UploadPolicy.Name:  UploadPolicy,
		AuthPolicy.Name:    AuthPolicy,
		WebhookPolicy.Name: WebhookPolicy,
	}
}
