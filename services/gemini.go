package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Completer is the single seam to the hosted chat-completion service.
// Every AI-backed feature (lesson generation, assessment generation,
// tutoring, free-text grading) goes through it, so tests can swap in a stub.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error)
}

// geminiTimeout bounds every upstream call; the service is network-bound and
// must not hang a request forever.
const geminiTimeout = 60 * time.Second

type GeminiClient struct {
	model string
}

func NewGeminiClient() *GeminiClient {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiClient{model: model}
}

func (g *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, geminiTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return "", fmt.Errorf("cannot create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no usable candidate")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// CleanJSON strips the markdown code fences Gemini likes to wrap JSON in,
// even when asked for raw JSON.
func CleanJSON(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "`")
	clean = strings.TrimPrefix(clean, "json")
	return strings.TrimSpace(clean)
}

// ParseJSONObject decodes an upstream response into a generic object. The
// service is asked for JSON but not trusted to return it; malformed payloads
// collapse to an empty object instead of an error.
func ParseJSONObject(raw string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &obj); err != nil || obj == nil {
		return map[string]any{}
	}
	return obj
}
