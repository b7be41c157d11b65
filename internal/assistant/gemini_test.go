package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	answer string
	err    error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(f.answer, genai.RoleModel)},
		},
	}, nil
}

func TestGemini_Ask(t *testing.T) {
	gen := &fakeGenerator{answer: "  Bitcoin is a cryptocurrency.  "}
	g := NewWithGenerator(gen, "gemini-test", "be brief")

	answer, err := g.Ask(context.Background(), " what is bitcoin? ")
	require.NoError(t, err)

	assert.Equal(t, "Bitcoin is a cryptocurrency.", answer)
	assert.Equal(t, "gemini-test", gen.model)
	require.Len(t, gen.contents, 1)
	assert.Equal(t, "what is bitcoin?", gen.contents[0].Parts[0].Text)
	require.NotNil(t, gen.config)
	assert.Equal(t, "be brief", gen.config.SystemInstruction.Parts[0].Text)
	assert.Empty(t, gen.config.SystemInstruction.Role, "system instruction is not a user turn")
}

func TestGemini_AskWithoutSystemPrompt(t *testing.T) {
	gen := &fakeGenerator{answer: "ok"}
	g := NewWithGenerator(gen, "gemini-test", "")

	_, err := g.Ask(context.Background(), "hi")
	require.NoError(t, err)
	assert.Nil(t, gen.config)
}

func TestGemini_AskErrors(t *testing.T) {
	t.Run("empty question", func(t *testing.T) {
		gen := &fakeGenerator{answer: "unused"}
		_, err := NewWithGenerator(gen, "m", "").Ask(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrEmptyQuestion)
		assert.Empty(t, gen.model, "model must not be called")
	})

	t.Run("empty answer", func(t *testing.T) {
		_, err := NewWithGenerator(&fakeGenerator{answer: " "}, "m", "").Ask(context.Background(), "hi")
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	})

	t.Run("api failure", func(t *testing.T) {
		apiErr := errors.New("quota exceeded")
		_, err := NewWithGenerator(&fakeGenerator{err: apiErr}, "m", "").Ask(context.Background(), "hi")
		assert.ErrorIs(t, err, apiErr)
	})
}
