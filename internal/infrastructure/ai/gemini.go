package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
)

// GeminiClient calls the Google Generative Language REST API.
type GeminiClient struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
	logger     *logging.ChanneledLogger
}

// NewGeminiClient builds a client from the process configuration.
func NewGeminiClient(logger *logging.ChanneledLogger) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{Timeout: config.GeminiTimeout},
		endpoint:   config.GeminiEndpoint,
		model:      config.GeminiModel,
		apiKey:     config.GeminiAPIKey,
		logger:     logger,
	}
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the prompt and returns the model's JSON payload.
func (c *GeminiClient) Generate(ctx context.Context, req *GenerationRequest) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = config.GeminiTemperature
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.UserPrompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:      temperature,
			MaxOutputTokens:  config.GeminiMaxOutTokens,
			ResponseMimeType: "application/json",
		},
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemPrompt}}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	c.logger.AI().Debug("Sending generation request", "promptType", req.PromptType, "model", c.model)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.AI().Error("Generation request failed", "promptType", req.PromptType, "error", err.Error())
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read generation response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		c.logger.AI().Error("Generation request rejected", "promptType", req.PromptType, "status", resp.StatusCode, "message", msg)
		return nil, fmt.Errorf("generation request rejected: %s", msg)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("generation response contained no candidates")
	}

	text := parsed.Candidates[0].Content.Parts[0].Text
	if !json.Valid([]byte(text)) {
		// The JSON mime type is requested but not guaranteed. Wrap stray
		// prose so callers and the cache always see a JSON payload.
		c.logger.AI().Warn("Generation response was not valid JSON, wrapping", "promptType", req.PromptType)
		wrapped, err := json.Marshal(map[string]string{"text": text})
		if err != nil {
			return nil, fmt.Errorf("failed to wrap generation response: %w", err)
		}
		text = string(wrapped)
	}

	c.logger.AI().Info("Generation completed",
		"promptType", req.PromptType,
		"model", c.model,
		"duration", time.Since(start),
		"responseBytes", len(text))
	return json.RawMessage(text), nil
}
