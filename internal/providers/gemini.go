package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	GeminiName           = "gemini"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-1.5-flash"
)

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

type GeminiConfig struct {
	Options
	Model       string
	MaxRetries  int
	RetryDelays []time.Duration
}

// GeminiClient calls the Gemini generateContent endpoint.
type GeminiClient struct {
	apiKey      string
	baseURL     string
	model       string
	maxRetries  int
	retryDelays []time.Duration
	http        httpCaller
	logger      *zap.Logger
}

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	delays := cfg.RetryDelays
	if len(delays) == 0 {
		delays = []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}
	}
	return &GeminiClient{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		maxRetries:  max(cfg.MaxRetries, 0),
		retryDelays: delays,
		http:        newHTTPCaller(GeminiName, cfg.Options),
		logger:      cfg.logger().With(zap.String("provider", GeminiName)),
	}
}

func (c *GeminiClient) Name() string {
	return GeminiName
}

func (c *GeminiClient) Configured() bool {
	return c.apiKey != ""
}

func (c *GeminiClient) Model() string {
	return c.model
}

// GenerateContent sends prompt as a single user turn and returns the text of
// the first candidate. Rate limiting and server errors are retried.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", NewProviderError(GeminiName, ErrMissingCredential)
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 4096,
		},
	})
	if err != nil {
		return "", NewProviderError(GeminiName, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delayIdx := min(attempt-1, len(c.retryDelays)-1)
			select {
			case <-time.After(c.retryDelays[delayIdx]):
			case <-ctx.Done():
				return "", NewProviderError(GeminiName, ctx.Err())
			}
		}

		text, err := c.generateOnce(ctx, body)
		if err == nil {
			return text, nil
		}

		lastErr = err
		c.logger.Warn("generate attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
		if !Transient(err) {
			break
		}
	}

	return "", lastErr
}

func (c *GeminiClient) generateOnce(ctx context.Context, body []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", NewProviderError(GeminiName, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	var resp geminiResponse
	if err := c.http.do(req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", NewProviderError(GeminiName, fmt.Errorf("%w: no candidates", ErrMalformedResponse))
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", NewProviderError(GeminiName, fmt.Errorf("%w: empty candidate", ErrMalformedResponse))
	}
	return sb.String(), nil
}
