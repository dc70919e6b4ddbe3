// Package assistant talks to the remote OpenAI-compatible chat service
// that answers free-form questions the local templates cannot.
package assistant

import "errors"

// Typed upstream failures. The chat service maps them to fixed user-facing
// messages and never retries them.
var (
	ErrUpstreamAuth        = errors.New("upstream authentication rejected")
	ErrUpstreamRateLimited = errors.New("upstream rate limit reached")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ErrorKind returns the metric label for an upstream failure.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrUpstreamAuth):
		return "auth"
	case errors.Is(err, ErrUpstreamRateLimited):
		return "rate_limited"
	default:
		return "unavailable"
	}
}

// UserMessage maps an upstream failure to the message shown in the chat.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrUpstreamAuth):
		return "❌ **API Key inválida**\n\nVerifique se sua chave da OpenAI está correta e ativa."
	case errors.Is(err, ErrUpstreamRateLimited):
		return "❌ **Limite de uso atingido**\n\nVocê atingiu o limite de requisições. Aguarde alguns minutos e tente novamente."
	default:
		return "❌ **Erro na comunicação com a IA**\n\nVerifique sua conexão e tente novamente."
	}
}
