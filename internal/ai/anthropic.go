package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nhle/lenah/internal/model"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	defaultMaxTokens      = 1024
	anthropicURL          = "https://api.anthropic.com/v1/messages"
	anthropicVersion      = "2023-06-01"
)

// AnthropicGenerator calls the Messages API and forces a single tool call
// whose input schema is the reply schema.
type AnthropicGenerator struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	rules       string
	client      *http.Client
	logger      *log.Logger
}

// NewAnthropic creates a generator. An empty cfg.Model, or an OpenAI
// model name left over from the defaults, selects the default Claude model.
func NewAnthropic(apiKey string, cfg model.AIConfig, signOff string, logger *log.Logger) *AnthropicGenerator {
	modelName := cfg.Model
	if modelName == "" || strings.HasPrefix(modelName, "gpt-") {
		modelName = defaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &AnthropicGenerator{
		apiKey:      apiKey,
		baseURL:     anthropicURL,
		model:       modelName,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		rules:       SystemRules(signOff),
		client:      &http.Client{},
		logger:      logger,
	}
}

// Name returns the provider and model.
func (g *AnthropicGenerator) Name() string {
	return "anthropic/" + g.model
}

// Generate sends the conversation and decodes the forced tool call.
func (g *AnthropicGenerator) Generate(ctx context.Context, msgs []model.Message) (Result, error) {
	notes, turns := splitSystem(msgs)

	system := g.rules
	if len(notes) > 0 {
		system += "\nContext:\n" + strings.Join(notes, "\n")
	}

	schema, err := json.Marshal(Schema)
	if err != nil {
		return Result{}, fmt.Errorf("marshaling schema: %w", err)
	}

	reqBody := apiRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		System:      system,
		Messages:    buildAPIMessages(turns),
		Tools: []apiTool{{
			Name:        SchemaName,
			Description: "Reply to the user and optionally propose an email draft.",
			InputSchema: schema,
		}},
		ToolChoice: &apiToolChoice{Type: "tool", Name: SchemaName},
	}

	resp, err := g.callAPI(ctx, reqBody)
	if err != nil {
		return Result{}, err
	}

	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == SchemaName {
			g.logger.Debug("anthropic reply", "model", resp.Model, "stop", resp.StopReason)
			return Decode(block.Input)
		}
	}
	return Result{}, &ContractError{Reason: "response has no " + SchemaName + " tool call"}
}

// callAPI makes a single request to the Messages API.
func (g *AnthropicGenerator) callAPI(ctx context.Context, reqBody apiRequest) (*apiResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, truncate(string(respBody), 256))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &ContractError{Reason: "decoding response: " + err.Error(), Raw: truncate(string(respBody), 512)}
	}
	return &result, nil
}

// buildAPIMessages converts chat turns to the Messages API format. The API
// requires the first message to come from the user, so leading assistant
// turns such as the greeting are dropped.
func buildAPIMessages(turns []model.Message) []apiMessage {
	var messages []apiMessage
	for _, m := range turns {
		role := "user"
		if m.Role == model.RoleAssistant {
			role = "assistant"
		}
		if len(messages) == 0 && role == "assistant" {
			continue
		}
		messages = append(messages, apiMessage{
			Role:    role,
			Content: []apiContentBlock{{Type: "text", Text: m.Content}},
		})
	}
	return messages
}

// --- Claude API types ---

type apiRequest struct {
	Model       string         `json:"model"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
	System      string         `json:"system"`
	Messages    []apiMessage   `json:"messages"`
	Tools       []apiTool      `json:"tools,omitempty"`
	ToolChoice  *apiToolChoice `json:"tool_choice,omitempty"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`

	// For text blocks
	Text string `json:"text,omitempty"`

	// For tool_use blocks
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type apiTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type apiToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}
