// Package openrouter implements the naming collaborator against an
// OpenAI-compatible chat completions endpoint.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/logger"

	"teamdraw/internal/services"
)

// Client implements services.TeamNamer and services.Announcer via the OpenRouter API.
type Client struct {
	httpClient     *http.Client
	apiKey         string
	baseURL        string
	model          string
	fallbackModels []string
}

func NewClient(httpClient *http.Client, apiKey, baseURL, model string, fallbackModels []string) *Client {
	return &Client{
		httpClient:     httpClient,
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		model:          model,
		fallbackModels: fallbackModels,
	}
}

// chatRequest / chatResponse mirror the OpenAI-compatible API shapes.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const namesSystemPrompt = `You name teams for workplace activities.
Respond with ONLY a JSON array of strings (no markdown, no code fences, no extra text), e.g. ["Name one", "Name two"].`

const announceSystemPrompt = `You write one short, enthusiastic sentence announcing a lucky draw winner.
Respond with the sentence only.`

// TeamNames asks for count team names, trying each configured model in turn.
// A response that is not a JSON array is retried once on the same model.
func (c *Client) TeamNames(ctx context.Context, count int) ([]string, error) {
	user := fmt.Sprintf("Generate %d creative, professional, and slightly fun team names for a corporate environment.", count)

	var lastErr error
	for _, model := range c.models() {
		names, err := c.teamNamesWithModel(ctx, model, user)
		if err == nil {
			if len(names) > count {
				names = names[:count]
			}
			return names, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		logger.Warningf("model %s failed to name teams: %v", model, err)
	}
	return nil, lastErr
}

func (c *Client) teamNamesWithModel(ctx context.Context, model, user string) ([]string, error) {
	content, err := c.complete(ctx, model, namesSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", services.ErrNamingUnavailable, err)
	}

	names, err := decodeNames(content)
	if err != nil {
		logger.Warningf("model %s returned invalid team names, retrying: %v", model, err)
		content, err = c.complete(ctx, model, namesSystemPrompt, retryPrompt(content))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", services.ErrNamingUnavailable, err)
		}
		if names, err = decodeNames(content); err != nil {
			return nil, fmt.Errorf("%w: %w", services.ErrNamingUnavailable, err)
		}
	}
	return names, nil
}

// Announce asks for a congratulation sentence, trying each configured model in turn.
func (c *Client) Announce(ctx context.Context, name, prize string) (string, error) {
	user := fmt.Sprintf("The winner is %s and the prize is %s.", name, prize)

	var lastErr error
	for _, model := range c.models() {
		content, err := c.complete(ctx, model, announceSystemPrompt, user)
		if err == nil {
			return content, nil
		}
		lastErr = fmt.Errorf("%w: %w", services.ErrNamingUnavailable, err)
		if ctx.Err() != nil {
			break
		}
		logger.Warningf("model %s failed to announce winner: %v", model, err)
	}
	return "", lastErr
}

func (c *Client) models() []string {
	models := make([]string, 0, 1+len(c.fallbackModels))
	models = append(models, c.model)
	return append(models, c.fallbackModels...)
}

// maxErrorBody bounds how much of a failed response ends up in the error.
const maxErrorBody = 512

// complete sends one system+user exchange to model and returns the trimmed
// text of the first choice.
func (c *Client) complete(ctx context.Context, model, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("new chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%s: status %d: %s", model, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%s: decode chat response: %w", model, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%s: empty choices", model)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func decodeNames(content string) ([]string, error) {
	var names []string
	if err := json.Unmarshal([]byte(content), &names); err != nil {
		return nil, fmt.Errorf("decode team names: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no team names returned")
	}
	return names, nil
}

func retryPrompt(bad string) string {
	return "That reply could not be read as a JSON array of team names:\n" + bad +
		"\n\nSend the names again as a bare JSON array of strings and nothing else."
}
