// Package gemini implements the naming collaborator on top of the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"teamdraw/internal/services"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// generator is the subset of *genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements services.TeamNamer and services.Announcer.
type Client struct {
	models generator
	model  string
}

// NewClient creates a Gemini API client authenticated with apiKey.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newClient(client.Models, model), nil
}

func newClient(models generator, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{models: models, model: model}
}

// TeamNames asks for count team names as a JSON array of strings.
func (c *Client) TeamNames(ctx context.Context, count int) ([]string, error) {
	prompt := fmt.Sprintf("Generate %d creative, professional, and slightly fun team names "+
		"for a corporate environment. Return as a plain list.", count)

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generate team names: %w", services.ErrNamingUnavailable, err)
	}

	names, err := parseNames(responseText(resp))
	if err != nil {
		return nil, err
	}
	if len(names) > count {
		names = names[:count]
	}
	return names, nil
}

// Announce asks for a one-sentence congratulation.
func (c *Client) Announce(ctx context.Context, name, prize string) (string, error) {
	prompt := fmt.Sprintf("Write a short, enthusiastic one-sentence announcement for a lucky draw "+
		"winner named %s who won %s.", name, prize)

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%w: generate announcement: %w", services.ErrNamingUnavailable, err)
	}
	return strings.TrimSpace(responseText(resp)), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Text()
}

// parseNames decodes a JSON array of strings. Anything else, including an
// empty array, is reported as unavailable so the caller pads with its own labels.
func parseNames(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty response", services.ErrNamingUnavailable)
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("%w: decode team names: %w", services.ErrNamingUnavailable, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no team names returned", services.ErrNamingUnavailable)
	}
	return names, nil
}
