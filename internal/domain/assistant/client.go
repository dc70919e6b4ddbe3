package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ericlbarreto/conta-ai/internal/domain/document"
	"github.com/ericlbarreto/conta-ai/pkg/config"
)

const systemPrompt = `Você é um assistente contábil especializado chamado ContaBot Pro. Suas responsabilidades:

REGRAS FUNDAMENTAIS:
- Responda APENAS com base nos documentos contábeis fornecidos no contexto
- NUNCA invente ou crie informações que não estão nos documentos
- Se não tiver a informação, diga claramente "❌ Não encontrei essa informação nos documentos enviados"
- Seja gentil, profissional e use emojis moderadamente
- Formate suas respostas em markdown para melhor legibilidade
- Foque em análises contábeis: receitas, despesas, lucros, impostos, tendências

FORMATO DAS RESPOSTAS:
- Use títulos com ## para seções
- Use listas com • para pontos importantes
- Use **negrito** para destacar valores e métricas
- Seja conciso mas informativo

LIMITAÇÕES:
- Não responda sobre assuntos não relacionados à contabilidade
- Não forneça aconselhamento jurídico ou fiscal específico
- Sempre se baseie apenas nos dados fornecidos`

// fallbackAnswer is returned when the upstream completes without choices.
const fallbackAnswer = "Desculpe, não consegui processar sua solicitação."

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient builds the upstream client from configuration.
func NewClient(cfg config.UpstreamConfig, logger *slog.Logger) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		api:     openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
		logger:  logger,
	}
}

// Ask sends the question with the session documents as context. Each call
// carries its own timeout and is cancellable through ctx.
func (c *Client) Ask(ctx context.Context, question string, docs []document.Document) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Contexto dos documentos contábeis:\n%s\n\nPergunta do usuário: %s",
		buildDocumentContext(docs), question)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1500,
	})
	if err != nil {
		c.logger.Warn("chat completion failed", slog.Any("error", err))
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return fallbackAnswer, nil
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
		case 429:
			return fmt.Errorf("%w: %v", ErrUpstreamRateLimited, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}

// buildDocumentContext renders each document as a context block: name,
// kind, textual content and the extracted dataset as JSON.
func buildDocumentContext(docs []document.Document) string {
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		var b strings.Builder
		fmt.Fprintf(&b, "Documento: %s (%s)\n", doc.Name, doc.Kind)
		if doc.RawContent != "" {
			fmt.Fprintf(&b, "Conteúdo textual: %s\n", doc.RawContent)
		}
		if data, err := json.MarshalIndent(doc.Dataset, "", "  "); err == nil {
			fmt.Fprintf(&b, "Dados estruturados: %s\n", data)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n---\n")
}
