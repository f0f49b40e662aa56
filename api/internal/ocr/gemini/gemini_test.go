package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(parts ...genai.Part) *genai.Candidate {
	return &genai.Candidate{
		Content:      &genai.Content{Role: "model", Parts: parts},
		FinishReason: genai.FinishReasonStop,
	}
}

func TestResponseTextJoinsParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			candidate(genai.Text("RECEIPT\n"), genai.Blob{MIMEType: "image/png"}, genai.Text("Total: 12.50")),
			candidate(genai.Text("ignored")),
		},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "RECEIPT\nTotal: 12.50", text)
}

func TestResponseTextStripsFences(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{candidate(genai.Text("```\nHello World\n```"))},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", text)
}

func TestResponseTextEmpty(t *testing.T) {
	for _, resp := range []*genai.GenerateContentResponse{
		{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}}},
		{Candidates: []*genai.Candidate{candidate()}},
		{Candidates: []*genai.Candidate{candidate(genai.Text("  \n"))}},
	} {
		text, err := responseText(resp)
		require.NoError(t, err)
		assert.Empty(t, text)
	}
}

func TestResponseTextErrors(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"nil response": nil,
		"no candidates": {},
		"prompt blocked": {
			PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
		},
		"safety filters": {
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		},
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := responseText(resp)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "gemini")
		})
	}
}

func TestRecognizeWithoutKey(t *testing.T) {
	_, err := New("  ", "gemini-2.5-flash").Recognize(context.Background(), []byte{0xFF, 0xD8, 0xFF})
	require.EqualError(t, err, "GEMINI_API_KEY is empty")
}

func TestNew(t *testing.T) {
	e := New(" key ", " gemini-2.5-flash ")
	assert.Equal(t, "key", e.APIKey)
	assert.Equal(t, "gemini-2.5-flash", e.Model)
	assert.Equal(t, "gemini", e.Name())
}
