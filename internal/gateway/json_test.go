package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docscan/internal/model"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Here you go: {\"a\":1} hope that helps", `{"a":1}`},
		{"no object", "nothing here", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.input))
		})
	}
}

func TestDecodeLikelihood(t *testing.T) {
	got, err := decodeLikelihood(`{"likelihood": " Medium ", "reasoning": "no errors found"}`)
	require.NoError(t, err)
	assert.Equal(t, model.LikelihoodMedium, got.Likelihood)
	assert.Equal(t, "no errors found", got.Reasoning)

	_, err = decodeLikelihood("Medium")
	assert.Error(t, err)
}

func TestDecodeSources(t *testing.T) {
	got, err := decodeSources(`{"sources":[{"url":"https://a.example","title":"A","snippet":"s"}]}`)
	require.NoError(t, err)
	assert.Equal(t, []model.SourceMatch{{URL: "https://a.example", Title: "A", Snippet: "s"}}, got)

	got, err = decodeSources(`{}`)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = decodeSources(`{"sources": null}`)
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = decodeSources(`{"sources": "none"}`)
	assert.Error(t, err)
}

func TestKeepGrounded(t *testing.T) {
	sources := []model.SourceMatch{
		{URL: "https://A.example/page/"},
		{URL: "https://wikipedia.org/"},
		{URL: " https://b.example/x "},
	}
	got := keepGrounded(sources, []string{"https://a.example/page", "https://b.example/x"})
	require.Len(t, got, 2)
	assert.Equal(t, "https://A.example/page/", got[0].URL)
	assert.Equal(t, " https://b.example/x ", got[1].URL)

	assert.Empty(t, keepGrounded(sources, nil))
}
