package presenter

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clinicware/agendabot/pkg/logging"
)

const systemPrompt = "Você é o assistente de agendamento de uma clínica médica. Reescreva a mensagem a seguir para soar natural e acolhedora em português brasileiro, mantendo exatamente os mesmos horários, datas, opções numeradas e instruções. Não adicione informações novas, não remova opções e não prometa nada além do que está na mensagem."

var tracer = otel.Tracer("agendabot.internal.presenter")

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Presenter polishes the state machine's deterministic replies before they
// go out. It never changes meaning, only phrasing.
type Presenter interface {
	Rewrite(ctx context.Context, text string) string
}

// Noop passes replies through untouched. Used when no LLM is configured.
type Noop struct{}

func (Noop) Rewrite(_ context.Context, text string) string { return text }

// LLM rewrites replies through an OpenAI-compatible chat endpoint. The
// rewrite is strictly best-effort: any error, timeout, or empty completion
// falls back to the original text so the dialogue never stalls on the model.
type LLM struct {
	client  chatClient
	model   string
	timeout time.Duration
	logger  *logging.Logger
}

// Config describes the chat endpoint used for rewriting.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewLLM builds the rewriting presenter. Returns Noop when no API key is set.
func NewLLM(cfg Config, logger *logging.Logger) Presenter {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Noop{}
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "deepseek-chat"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LLM{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Rewrite returns the polished text, or the input unchanged on any failure.
func (p *LLM) Rewrite(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	ctx, span := tracer.Start(ctx, "presenter.rewrite")
	defer span.End()
	span.SetAttributes(attribute.Int("agendabot.reply_chars", len(text)))

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.4,
		MaxTokens:   400,
	})
	if err != nil {
		span.RecordError(err)
		p.logger.Warn("reply rewrite failed, using original text", "error", err)
		return text
	}
	if len(resp.Choices) == 0 {
		return text
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return text
	}
	return out
}
