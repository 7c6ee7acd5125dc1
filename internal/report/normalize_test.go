package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docscan/internal/model"
)

func TestNormalizeLikelihood(t *testing.T) {
	tests := []struct {
		in   model.Likelihood
		want model.Likelihood
	}{
		{model.LikelihoodVeryLow, model.LikelihoodLow},
		{model.LikelihoodLow, model.LikelihoodLow},
		{model.LikelihoodMedium, model.LikelihoodMedium},
		{model.LikelihoodHigh, model.LikelihoodHigh},
		{model.LikelihoodVeryHigh, model.LikelihoodHigh},
		{model.LikelihoodError, model.LikelihoodLow},
		{"", model.LikelihoodLow},
		{"very high", model.LikelihoodLow},
		{"Certain", model.LikelihoodLow},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLikelihood(tt.in))
		})
	}
}

func TestNormalizeLikelihood_AlwaysThreeValued(t *testing.T) {
	allowed := []model.Likelihood{model.LikelihoodLow, model.LikelihoodMedium, model.LikelihoodHigh}
	for _, in := range []model.Likelihood{
		model.LikelihoodVeryLow, model.LikelihoodLow, model.LikelihoodMedium,
		model.LikelihoodHigh, model.LikelihoodVeryHigh, model.LikelihoodError,
		"garbage", " Low", "LOW",
	} {
		assert.Contains(t, allowed, NormalizeLikelihood(in), "input %q", in)
	}
}

func TestNormalize(t *testing.T) {
	sources := model.SourceReport{Sources: []model.SourceMatch{
		{URL: "https://a.example", Title: "A", Snippet: "one"},
		{URL: "https://b.example", Title: "B", Snippet: "two"},
	}}

	got := Normalize(model.LikelihoodReport{Likelihood: model.LikelihoodVeryHigh, Reasoning: "flawless"}, sources)

	assert.Equal(t, model.LikelihoodHigh, got.AILikelihood)
	assert.Equal(t, "flawless", got.AIReasoning)
	assert.Equal(t, sources.Sources, got.OnlineSources)
	assert.Equal(t, 2, got.OnlineSourcesCount)

	// Output does not alias the input.
	got.OnlineSources[0].URL = "changed"
	assert.Equal(t, "https://a.example", sources.Sources[0].URL)
}

func TestNormalize_CountMatchesLength(t *testing.T) {
	cases := map[string]model.SourceReport{
		"nil sources":    {},
		"empty sources":  {Sources: []model.SourceMatch{}},
		"failed search":  {Sources: []model.SourceMatch{}, Error: "search failed"},
		"partial fields": {Sources: []model.SourceMatch{{URL: "https://x.example"}}},
	}
	for name, sr := range cases {
		t.Run(name, func(t *testing.T) {
			got := Normalize(model.LikelihoodReport{Likelihood: model.LikelihoodError}, sr)
			assert.Equal(t, len(got.OnlineSources), got.OnlineSourcesCount)
			assert.NotNil(t, got.OnlineSources)
			assert.Equal(t, model.LikelihoodLow, got.AILikelihood)
		})
	}
}

func TestNormalize_JSONShape(t *testing.T) {
	got := Normalize(model.LikelihoodReport{Likelihood: model.LikelihoodMedium}, model.SourceReport{})

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ai_likelihood":"Medium","ai_reasoning":"","online_sources":[],"online_sources_count":0}`, string(raw))
}
