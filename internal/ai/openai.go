package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/nhle/lenah/internal/model"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIGenerator calls the Chat Completions API with a strict JSON schema
// response format.
type OpenAIGenerator struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
	rules       string
	logger      *log.Logger
}

// NewOpenAI creates a generator. Extra options are applied after the
// defaults, which disable client-side retries.
func NewOpenAI(
	apiKey string,
	cfg model.AIConfig,
	signOff string,
	logger *log.Logger,
	opts ...option.RequestOption,
) *OpenAIGenerator {
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAIGenerator{
		client:      openai.NewClient(reqOpts...),
		model:       modelName,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		rules:       SystemRules(signOff),
		logger:      logger,
	}
}

// Name returns the provider and model.
func (g *OpenAIGenerator) Name() string {
	return "openai/" + g.model
}

// Generate sends the rules, any system notes and the chat turns.
func (g *OpenAIGenerator) Generate(ctx context.Context, msgs []model.Message) (Result, error) {
	notes, turns := splitSystem(msgs)

	system := g.rules
	if len(notes) > 0 {
		system += "\nContext:\n" + strings.Join(notes, "\n")
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(g.model),
		Messages:    g.buildMessages(system, turns),
		Temperature: openai.Float(g.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   SchemaName,
					Schema: Schema,
					Strict: openai.Bool(true),
				},
			},
		},
	}
	if g.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(g.maxTokens))
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("calling OpenAI: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Result{}, &ContractError{Reason: "response has no choices"}
	}

	msg := completion.Choices[0].Message
	if msg.Refusal != "" {
		return Result{}, &ContractError{Reason: "model refused: " + msg.Refusal}
	}

	g.logger.Debug("openai reply",
		"model", completion.Model,
		"finish", completion.Choices[0].FinishReason,
		"tokens", completion.Usage.TotalTokens,
	)
	return Decode([]byte(strings.TrimSpace(msg.Content)))
}

func (g *OpenAIGenerator) buildMessages(system string, turns []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	out = append(out, openai.SystemMessage(system))
	for _, m := range turns {
		switch m.Role {
		case model.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
