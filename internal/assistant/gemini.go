package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

var (
	// ErrEmptyQuestion is returned for blank questions
	ErrEmptyQuestion = errors.New("empty question")
	// ErrEmptyAnswer is returned when the model produced no text
	ErrEmptyAnswer = errors.New("model returned an empty answer")
)

// Generator is the subset of the genai models service used here
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini forwards free-form questions to a Gemini model
type Gemini struct {
	models       Generator
	model        string
	systemPrompt string
}

// NewGemini creates a Gemini API client
func NewGemini(ctx context.Context, apiKey, model, systemPrompt string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return NewWithGenerator(client.Models, model, systemPrompt), nil
}

// NewWithGenerator wraps an existing generator
func NewWithGenerator(models Generator, model, systemPrompt string) *Gemini {
	return &Gemini{
		models:       models,
		model:        model,
		systemPrompt: systemPrompt,
	}
}

// Ask sends the question to the model and returns its text answer
func (g *Gemini) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	var config *genai.GenerateContentConfig
	if g.systemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(g.systemPrompt, ""),
		}
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(question), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}
