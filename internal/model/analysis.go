package model

// Likelihood is a verdict on how likely a document is machine-generated.
type Likelihood string

// Raw verdicts produced by the classification call.
const (
	LikelihoodVeryLow  Likelihood = "Very Low"
	LikelihoodLow      Likelihood = "Low"
	LikelihoodMedium   Likelihood = "Medium"
	LikelihoodHigh     Likelihood = "High"
	LikelihoodVeryHigh Likelihood = "Very High"
	LikelihoodError    Likelihood = "Error"
)

// LikelihoodReport is the decoded output of the classification call.
type LikelihoodReport struct {
	Likelihood Likelihood `json:"likelihood"`
	Reasoning  string     `json:"reasoning,omitempty"`
}

// SourceMatch is one online source resembling the submitted text.
type SourceMatch struct {
	URL     string `json:"url" yaml:"url"`
	Title   string `json:"title" yaml:"title"`
	Snippet string `json:"snippet" yaml:"snippet"`
}

// SourceReport is the decoded output of the retrieval call. Error is set
// only when the call failed and Sources was replaced by an empty list.
type SourceReport struct {
	Sources []SourceMatch `json:"sources"`
	Error   string        `json:"error,omitempty"`
}

// AnalysisReport is the caller-facing, persisted report. AILikelihood is
// always one of Low, Medium or High.
type AnalysisReport struct {
	AILikelihood       Likelihood    `json:"ai_likelihood" yaml:"ai_likelihood"`
	AIReasoning        string        `json:"ai_reasoning" yaml:"ai_reasoning"`
	OnlineSources      []SourceMatch `json:"online_sources" yaml:"online_sources"`
	OnlineSourcesCount int           `json:"online_sources_count" yaml:"online_sources_count"`
}
